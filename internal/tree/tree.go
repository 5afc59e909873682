// Package tree implements the nested value model backing a configuration
// instance: dotted path traversal, flattening into dotted paths and deep
// merges over map[string]any trees.
package tree

import "strings"

// Separator splits a dotted path into its segments.
const Separator = "."

// Split breaks a dotted path into its segments.
func Split(path string) []string {
	return strings.Split(path, Separator)
}

// Join concatenates a path prefix with a segment.
func Join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + Separator + key
}

// Copy returns a deep copy of v. Maps and slices are duplicated
// recursively, anything else is returned as is.
func Copy(v any) any {
	switch w := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(w))
		for k, e := range w {
			m[k] = Copy(e)
		}
		return m
	case []any:
		s := make([]any, len(w))
		for i, e := range w {
			s[i] = Copy(e)
		}
		return s
	case []string:
		s := make([]string, len(w))
		copy(s, w)
		return s
	}
	return v
}

// Flatten maps every leaf of m to its dotted path. Arrays are atomic
// values and an empty map is itself a leaf. stop, when non nil, marks
// paths that must not be recursed into even when they hold a map.
func Flatten(m map[string]any, stop func(path string) bool) map[string]any {
	flat := make(map[string]any)
	flatten(flat, "", m, stop)
	return flat
}

func flatten(flat map[string]any, prefix string, m map[string]any, stop func(string) bool) {
	for k, v := range m {
		path := Join(prefix, k)
		if child, ok := v.(map[string]any); ok && len(child) > 0 && (stop == nil || !stop(path)) {
			flatten(flat, path, child, stop)
			continue
		}
		flat[path] = v
	}
}

// Walk descends path into m and reports whether every segment resolved.
func Walk(m map[string]any, path string) (any, bool) {
	var v any = m
	for _, k := range Split(path) {
		node, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok = node[k]
		if !ok {
			return nil, false
		}
	}
	return v, true
}

// WalkCreate descends to the parent of path, materializing missing or
// non-map intermediate nodes, and returns the parent map along with the
// final path segment.
func WalkCreate(m map[string]any, path string) (map[string]any, string) {
	keys := Split(path)
	for _, k := range keys[:len(keys)-1] {
		child, ok := m[k].(map[string]any)
		if !ok {
			child = make(map[string]any)
			m[k] = child
		}
		m = child
	}
	return m, keys[len(keys)-1]
}

// Merge deep-overlays src onto dst. Maps merge key by key; any other
// value, arrays included, replaces the destination wholesale. opaque,
// when non nil, marks paths replaced atomically even when both sides
// hold maps.
func Merge(dst, src map[string]any, opaque func(path string) bool) {
	merge(dst, src, "", opaque)
}

func merge(dst, src map[string]any, prefix string, opaque func(string) bool) {
	for k, v := range src {
		path := Join(prefix, k)
		sv, sok := v.(map[string]any)
		dv, dok := dst[k].(map[string]any)
		if sok && dok && (opaque == nil || !opaque(path)) {
			merge(dv, sv, path, opaque)
			continue
		}
		dst[k] = Copy(v)
	}
}

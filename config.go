package schematic

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schematic-go/schematic/internal/tree"
)

// Redacted replaces the value of sensitive configuration items whenever
// an instance is serialized or reported in an error.
const Redacted = "[Sensitive]"

// ErrParamNotFound is returned by Get and Default for paths the schema
// and the instance know nothing about.
var ErrParamNotFound = errors.New("cannot find configuration param")

// reservedSegments closes writes escaping into object internals. A Set
// with any of these as a path segment is silently discarded.
var reservedSegments = map[string]struct{}{
	"__proto__":   {},
	"constructor": {},
	"prototype":   {},
}

// Config resolves configuration values over a normalized schema,
// layering sources in strict precedence order: schema defaults, then
// loaded objects and files, then environment variables, then command
// line arguments. The environment and argument layers are reapplied
// after every Load or LoadFile so they cannot be shadowed by a file
// loaded later.
//
// A Config is not safe for concurrent mutation; guard it with a mutex
// or confine it to a single owning goroutine.
type Config struct {
	schema   *SchemaNode
	flat     map[string]*SchemaNode // dotted path -> leaf
	tables   *sideTables
	instance map[string]any

	env     map[string]string
	args    map[string]string
	formats *FormatRegistry
	parsers *ParserRegistry
	output  func(format string, args ...any)
}

// New builds a configuration from a raw schema definition. Structural
// schema errors (duplicate env or arg bindings, unknown formats, use of
// the reserved property name) surface here, before any instance is
// produced. The instance is seeded with the schema defaults and the
// environment and argument layers are applied immediately.
func New(schema map[string]any, opts ...Option) (*Config, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := c.init(schema); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromFile is New with the schema definition read from a file,
// parsed by the registered parser for its extension.
func NewFromFile(path string, opts ...Option) (*Config, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	schema, err := c.parseFile(path)
	if err != nil {
		return nil, err
	}
	if err := c.init(schema); err != nil {
		return nil, err
	}
	return c, nil
}

func newConfig(opts []Option) (*Config, error) {
	c := &Config{
		formats: DefaultFormats,
		parsers: DefaultParsers,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.env == nil {
		c.env = environMap(os.Environ())
	}
	if c.args == nil {
		c.args = ParseArgs(os.Args[1:])
	}
	return c, nil
}

func (c *Config) init(schema map[string]any) error {
	root, tables, err := normalizeSchema(schema, c.formats)
	if err != nil {
		return err
	}
	c.schema = root
	c.tables = tables
	c.flat = flattenSchema(root)
	c.instance = seedDefaults(root)
	c.importEnv()
	c.importArgs()
	return nil
}

// environMap splits "KEY=value" entries into a map.
func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			m[kv[:i]] = kv[i+1:]
		}
	}
	return m
}

// schemaNode walks the schema tree along a dotted path.
func (c *Config) schemaNode(path string) *SchemaNode {
	n := c.schema
	for _, k := range tree.Split(path) {
		if n == nil || n.Leaf() {
			return nil
		}
		n = n.Child(k)
	}
	return n
}

// opaque reports whether the schema declares path as an atomic
// sub-object, exempt from flattening and deep merging.
func (c *Config) opaque(path string) bool {
	n := c.flat[path]
	return n != nil && n.tag == "object"
}

// Get returns a deep copy of the resolved value at the dotted path.
// Use Has first when absence is an expected case.
func (c *Config) Get(path string) (any, error) {
	v, ok := tree.Walk(c.instance, path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrParamNotFound, path)
	}
	return tree.Copy(v), nil
}

// Has reports whether Get would succeed for the dotted path.
func (c *Config) Has(path string) bool {
	_, ok := tree.Walk(c.instance, path)
	return ok
}

// Default returns a deep copy of the schema declared baseline value at
// the dotted path, ignoring every overlay applied since construction.
// For a group path it returns the defaults of the whole subtree.
func (c *Config) Default(path string) (any, error) {
	n := c.schemaNode(path)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", ErrParamNotFound, path)
	}
	if n.Leaf() {
		return tree.Copy(n.Default), nil
	}
	return seedDefaults(n), nil
}

// Set writes a value at the dotted path, materializing missing
// intermediate objects. String values are coerced according to the
// declared format of the path; a string that fails coercion is stored
// as is, for Validate to report. Paths containing a reserved structural
// segment are discarded without effect.
func (c *Config) Set(path string, value any) {
	if path == "" {
		return
	}
	for _, k := range tree.Split(path) {
		if _, ok := reservedSegments[k]; ok {
			return
		}
	}
	if s, ok := value.(string); ok {
		if n := c.flat[path]; n != nil && n.coerce != nil {
			if v, err := n.coerce(s); err == nil {
				value = v
			}
		}
	}
	parent, key := tree.WalkCreate(c.instance, path)
	parent[key] = tree.Copy(value)
}

// Reset restores the schema default at the dotted path.
func (c *Config) Reset(path string) error {
	v, err := c.Default(path)
	if err != nil {
		return err
	}
	c.Set(path, v)
	return nil
}

// Load deep-overlays raw onto the instance. Nested objects merge key by
// key; arrays and scalars replace wholesale, as do sub-objects the
// schema declares with the object format. Environment variables and
// command line arguments are reimported afterwards so they remain
// authoritative.
func (c *Config) Load(raw map[string]any) {
	tree.Merge(c.instance, stripReserved(raw), c.opaque)
	c.coerceStrings()
	c.importEnv()
	c.importArgs()
}

// stripReserved returns raw without reserved structural keys at any
// depth, closing the same write escape Set guards against. The input is
// left untouched.
func stripReserved(raw map[string]any) map[string]any {
	clean := make(map[string]any, len(raw))
	for k, v := range raw {
		if _, ok := reservedSegments[k]; ok {
			continue
		}
		if child, ok := v.(map[string]any); ok {
			v = stripReserved(child)
		}
		clean[k] = v
	}
	return clean
}

// coerceStrings applies the declared coercion to every leaf holding a
// string, so values loaded from text based file formats end up with
// their declared type. Strings failing coercion stay as is for Validate
// to report.
func (c *Config) coerceStrings() {
	for path, n := range c.flat {
		if n.coerce == nil {
			continue
		}
		v, ok := tree.Walk(c.instance, path)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			if nv, err := n.coerce(s); err == nil {
				parent, key := tree.WalkCreate(c.instance, path)
				parent[key] = nv
			}
		}
	}
}

// LoadFile loads one or more configuration files in order, later files
// overlaying earlier ones. The parser is selected by file extension and
// falls back to JSON. A file parsing to an empty result is skipped.
func (c *Config) LoadFile(paths ...string) error {
	for _, path := range paths {
		raw, err := c.parseFile(path)
		if err != nil {
			return err
		}
		if len(raw) == 0 {
			continue
		}
		c.Load(raw)
	}
	return nil
}

func (c *Config) parseFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	raw, err := c.parsers.parse(ext, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

// importEnv applies every bound environment variable present in the
// environment map onto its schema path.
func (c *Config) importEnv() {
	for name, path := range c.tables.envPaths {
		if v, ok := c.env[name]; ok {
			c.Set(path, v)
		}
	}
}

// importArgs applies every bound command line flag present in the
// argument map onto its schema path.
func (c *Config) importArgs() {
	for name, path := range c.tables.argPaths {
		if v, ok := c.args[name]; ok {
			c.Set(path, v)
		}
	}
}

// GetProperties returns a deep copy of the whole live instance.
func (c *Config) GetProperties() map[string]any {
	return tree.Copy(c.instance).(map[string]any)
}

// GetEnv returns the environment map the configuration was built with.
func (c *Config) GetEnv() map[string]string { return c.env }

// GetArgs returns the parsed argument map the configuration was built
// with.
func (c *Config) GetArgs() map[string]string { return c.args }

// GetSchema returns the normalized schema serialized into nested maps,
// with the children of every group stored under PropertiesKey.
func (c *Config) GetSchema() map[string]any {
	return describeSchema(c.schema)
}

// GetSchemaString returns the normalized schema as indented JSON.
func (c *Config) GetSchemaString() string {
	b, err := json.MarshalIndent(c.GetSchema(), "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

// String returns the live instance as indented JSON with every
// sensitive leaf masked, whether or not it still holds its default.
func (c *Config) String() string {
	masked := c.GetProperties()
	for path := range c.tables.sensitive {
		if _, ok := tree.Walk(masked, path); ok {
			parent, key := tree.WalkCreate(masked, path)
			parent[key] = Redacted
		}
	}
	b, err := json.MarshalIndent(masked, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

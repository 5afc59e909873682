package schematic

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/schematic-go/schematic/internal/tree"
)

// PropertiesKey is the property name reserved for the normalized child
// mapping when a schema is serialized. It may never appear as a literal
// property name in a schema definition.
const PropertiesKey = "_schematic"

// SchemaNode is a node of the normalized schema tree: either a group
// holding child nodes, or a leaf describing one configuration item.
type SchemaNode struct {
	// Default is the baseline value of a leaf. Every leaf has one,
	// possibly nil when the leaf is nullable.
	Default any

	// Format is the format specifier as declared: a format name, a
	// slice of allowed values, or a validation function. Nil when the
	// format was inferred from the default value.
	Format any

	Doc       string
	Env       string
	Arg       string
	Sensitive bool
	Nullable  bool

	// tag is the resolved structural type name when the format is a
	// named or inferred one, e.g. "object" for opaque sub-objects.
	tag string

	children map[string]*SchemaNode
	validate ValidateFunc
	coerce   CoerceFunc
}

// Leaf reports whether the node describes a configuration item rather
// than a group.
func (n *SchemaNode) Leaf() bool { return n.children == nil }

// Child returns the named child of a group node, or nil.
func (n *SchemaNode) Child(name string) *SchemaNode { return n.children[name] }

// Validate runs the compiled format check against v.
func (n *SchemaNode) Validate(v any) error { return n.validate(v, n) }

// sideTables collects the bindings discovered during normalization.
type sideTables struct {
	envPaths  map[string]string // environment variable name -> dotted path
	argPaths  map[string]string // command line flag name -> dotted path
	sensitive map[string]struct{}
}

func newSideTables() *sideTables {
	return &sideTables{
		envPaths:  make(map[string]string),
		argPaths:  make(map[string]string),
		sensitive: make(map[string]struct{}),
	}
}

// normalizeSchema walks a raw schema definition and produces the
// normalized tree along with the env/arg/sensitive side tables.
// All structural schema errors are raised here, eagerly.
func normalizeSchema(raw map[string]any, reg *FormatRegistry) (*SchemaNode, *sideTables, error) {
	tables := newSideTables()
	root, err := normalizeGroup(raw, "", reg, tables)
	if err != nil {
		return nil, nil, err
	}
	return root, tables, nil
}

func normalizeGroup(raw map[string]any, prefix string, reg *FormatRegistry, tables *sideTables) (*SchemaNode, error) {
	node := &SchemaNode{children: make(map[string]*SchemaNode, len(raw))}
	for name, v := range raw {
		if name == PropertiesKey {
			return nil, fmt.Errorf("schema: %q is a reserved property name (under %q)", PropertiesKey, prefix)
		}
		path := tree.Join(prefix, name)
		child, err := normalizeNode(v, path, reg, tables)
		if err != nil {
			return nil, err
		}
		node.children[name] = child
	}
	return node, nil
}

// normalizeNode decides leaf versus group: a map holding its own
// "default" key (or no keys at all) is a leaf descriptor, a map with
// child keys and no default is a group, and any other value is
// shorthand for {default: value}.
func normalizeNode(v any, path string, reg *FormatRegistry, tables *sideTables) (*SchemaNode, error) {
	desc, ok := v.(map[string]any)
	if !ok || len(desc) == 0 {
		return normalizeLeaf(map[string]any{"default": v}, path, reg, tables)
	}
	if _, ok := desc["default"]; !ok {
		return normalizeGroup(desc, path, reg, tables)
	}
	return normalizeLeaf(desc, path, reg, tables)
}

func normalizeLeaf(desc map[string]any, path string, reg *FormatRegistry, tables *sideTables) (*SchemaNode, error) {
	node := &SchemaNode{Default: tree.Copy(desc["default"])}

	var err error
	if node.Doc, err = stringProp(desc, "doc", path); err != nil {
		return nil, err
	}
	if node.Env, err = stringProp(desc, "env", path); err != nil {
		return nil, err
	}
	if node.Arg, err = stringProp(desc, "arg", path); err != nil {
		return nil, err
	}
	if node.Sensitive, err = boolProp(desc, "sensitive", path); err != nil {
		return nil, err
	}
	if node.Nullable, err = boolProp(desc, "nullable", path); err != nil {
		return nil, err
	}

	if err := compileFormat(node, desc["format"], path, reg); err != nil {
		return nil, err
	}
	if node.Sensitive {
		tables.sensitive[path] = struct{}{}
	}
	if node.Env != "" {
		if prev, ok := tables.envPaths[node.Env]; ok {
			return nil, fmt.Errorf("schema: environment variable %q bound to both %q and %q", node.Env, prev, path)
		}
		tables.envPaths[node.Env] = path
	}
	if node.Arg != "" {
		if prev, ok := tables.argPaths[node.Arg]; ok {
			return nil, fmt.Errorf("schema: argument %q bound to both %q and %q", node.Arg, prev, path)
		}
		tables.argPaths[node.Arg] = path
	}
	return node, nil
}

func stringProp(desc map[string]any, name, path string) (string, error) {
	v, ok := desc[name]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("schema %q: %s must be a string, got %T", path, name, v)
	}
	return s, nil
}

func boolProp(desc map[string]any, name, path string) (bool, error) {
	v, ok := desc[name]
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("schema %q: %s must be a boolean, got %T", path, name, v)
	}
	return b, nil
}

// compileFormat resolves the format specifier into a single validator
// closure, wrapping in the nullable short-circuit so it is not
// re-dispatched on every validation call.
func compileFormat(node *SchemaNode, spec any, path string, reg *FormatRegistry) error {
	var validate ValidateFunc

	switch w := spec.(type) {
	case nil:
		// No declared format: check against the type of the default.
		if node.Default == nil {
			validate = validateAny
		} else {
			tag := typeTag(node.Default)
			node.tag = tag
			validate = typeValidator(tag)
			if f, ok := reg.lookup(tag); ok {
				node.coerce = f.Coerce
			}
		}
	case string:
		f, ok := reg.lookup(w)
		if !ok {
			return fmt.Errorf("schema %q: unknown format %q", path, w)
		}
		node.Format = w
		node.tag = w
		node.coerce = f.Coerce
		validate = f.Validate
		if w == "password" {
			node.Sensitive = true
		}
	case []any:
		node.Format = tree.Copy(w)
		validate = enumValidator(w)
	case ValidateFunc:
		node.Format = w
		validate = w
	case func(any, *SchemaNode) error:
		node.Format = ValidateFunc(w)
		validate = w
	case Format:
		node.Format = w.Validate
		node.coerce = w.Coerce
		validate = w.Validate
	default:
		return fmt.Errorf("schema %q: invalid format specifier of type %T", path, spec)
	}

	if node.Nullable {
		inner := validate
		validate = func(v any, n *SchemaNode) error {
			if v == nil {
				return nil
			}
			return inner(v, n)
		}
	}
	node.validate = validate
	return nil
}

// enumValidator compiles a membership check against the literal set of
// allowed values.
func enumValidator(allowed []any) ValidateFunc {
	return func(v any, _ *SchemaNode) error {
		for _, a := range allowed {
			if equalValue(v, a) {
				return nil
			}
		}
		return fmt.Errorf("must be one of %v", allowed)
	}
}

// equalValue compares two values, treating all integral numbers alike
// so enum members survive json round-trips. Allowed values may be of
// any type, uncomparable ones included, so the fallback is a deep
// comparison rather than ==.
func equalValue(a, b any) bool {
	an, aok := toInt64(a)
	bn, bok := toInt64(b)
	if aok && bok {
		return an == bn
	}
	return reflect.DeepEqual(a, b)
}

// seedDefaults assembles the instance tree holding every leaf default.
func seedDefaults(node *SchemaNode) map[string]any {
	m := make(map[string]any, len(node.children))
	for name, child := range node.children {
		if child.Leaf() {
			m[name] = tree.Copy(child.Default)
			continue
		}
		m[name] = seedDefaults(child)
	}
	return m
}

// flattenSchema maps every leaf node to its dotted path.
func flattenSchema(node *SchemaNode) map[string]*SchemaNode {
	flat := make(map[string]*SchemaNode)
	var walk func(n *SchemaNode, prefix string)
	walk = func(n *SchemaNode, prefix string) {
		for name, child := range n.children {
			path := tree.Join(prefix, name)
			if child.Leaf() {
				flat[path] = child
				continue
			}
			walk(child, path)
		}
	}
	walk(node, "")
	return flat
}

// schemaPaths returns the sorted dotted paths of every schema leaf.
func schemaPaths(node *SchemaNode) []string {
	flat := flattenSchema(node)
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// describeSchema serializes the normalized tree into nested maps, with
// group children stored under PropertiesKey.
func describeSchema(node *SchemaNode) map[string]any {
	if node.Leaf() {
		desc := map[string]any{"default": tree.Copy(node.Default)}
		switch f := node.Format.(type) {
		case nil:
			if node.tag != "" {
				desc["format"] = node.tag
			}
		case string:
			desc["format"] = f
		case []any:
			desc["format"] = tree.Copy(f)
		default:
			desc["format"] = "custom"
		}
		if node.Doc != "" {
			desc["doc"] = node.Doc
		}
		if node.Env != "" {
			desc["env"] = node.Env
		}
		if node.Arg != "" {
			desc["arg"] = node.Arg
		}
		if node.Sensitive {
			desc["sensitive"] = true
		}
		if node.Nullable {
			desc["nullable"] = true
		}
		return desc
	}
	children := make(map[string]any, len(node.children))
	for name, child := range node.children {
		children[name] = describeSchema(child)
	}
	return map[string]any{PropertiesKey: children}
}

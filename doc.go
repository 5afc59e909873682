// Package schematic resolves hierarchical configuration over a declared
// schema, layering values from multiple sources in strict order of
// priority, each one overriding the previous:
//   - schema default values
//   - loaded objects and configuration files
//   - environment variables
//   - command line flags
//
// A schema is a nested map of property names. A property holding its
// own "default" key (or any non-map value, shorthand for a default) is
// a leaf; anything else is a group of further properties. A leaf may
// additionally declare:
//   - format: a format name, a slice of allowed values, or a
//     validation function
//   - env: the environment variable bound to the leaf
//   - arg: the command line flag bound to the leaf
//   - sensitive: mask the value in serialized and error output
//   - nullable: additionally accept nil regardless of format
//   - doc: free documentation text
//
// String values coming from the environment, flags or files are coerced
// into the leaf's declared type before validation. Validate checks the
// whole instance in one pass and reports every problem at once.
//
// File formats other than JSON are routed through a parser registry;
// the parsers package provides ready-made INI, TOML and YAML parsers,
// and the presets package provides ready-made schema sections.
package schematic

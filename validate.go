package schematic

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/schematic-go/schematic/internal/tree"
)

// Allowed values for ValidateOptions controlling the treatment of
// instance paths not declared in the schema.
const (
	AllowedWarn   = "warn"
	AllowedStrict = "strict"
)

// ValidateOptions customizes a Validate call. The zero value warns
// about undeclared paths through the configured output sink.
type ValidateOptions struct {
	// Allowed is either AllowedWarn (the default) or AllowedStrict.
	Allowed string

	// Output overrides the warning sink for this call.
	Output func(format string, args ...any)
}

// FieldError is one validation finding for one configuration path.
type FieldError struct {
	Path    string
	Message string

	// Value is the offending value. It is never populated for
	// sensitive paths.
	Value    any
	HasValue bool
}

// Error returns the finding as a single line.
func (e FieldError) Error() string {
	if !e.HasValue {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s: value was %s", e.Path, e.Message, serializeValue(e.Value))
}

func serializeValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// ValidationError aggregates every fatal finding of one Validate call.
type ValidationError struct {
	Errors []FieldError
}

// Error concatenates all findings, one per line.
func (e ValidationError) Error() string {
	lines := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		lines[i] = fe.Error()
	}
	return strings.Join(lines, "\n")
}

// Validate checks the live instance against every schema leaf and
// aggregates all findings before deciding the outcome: format failures
// and missing leaves are always fatal and returned together as one
// ValidationError; instance paths not declared in the schema are
// reported through the output sink in warn mode and escalated to fatal
// in strict mode. The walk always covers the whole schema, so a single
// call surfaces every problem at once.
func (c *Config) Validate(opts ...ValidateOptions) error {
	var o ValidateOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	output := o.Output
	if output == nil {
		output = c.output
	}
	if output == nil {
		output = log.Printf
	}

	instFlat := tree.Flatten(c.instance, c.opaque)
	covered := make(map[string]struct{}, len(instFlat))
	var fatal []FieldError

	for _, path := range schemaPaths(c.schema) {
		node := c.flat[path]
		value, ok := instFlat[path]
		if ok {
			covered[path] = struct{}{}
		} else {
			// Declared leaves holding plain sub-objects are expanded
			// by the flattening; look the whole value up so the format
			// check still sees it.
			if value, ok = tree.Walk(c.instance, path); ok {
				prefix := path + tree.Separator
				for p := range instFlat {
					if strings.HasPrefix(p, prefix) {
						covered[p] = struct{}{}
					}
				}
			}
		}
		if !ok {
			fatal = append(fatal, FieldError{
				Path:    path,
				Message: "configuration param missing, maybe a parent value overrode it",
			})
			continue
		}
		if err := node.Validate(value); err != nil {
			fe := FieldError{Path: path, Message: err.Error()}
			if !node.Sensitive {
				fe.Value = value
				fe.HasValue = true
			}
			fatal = append(fatal, fe)
		}
	}

	var undeclared []string
	for path := range instFlat {
		if _, ok := covered[path]; !ok {
			undeclared = append(undeclared, path)
		}
	}
	sort.Strings(undeclared)

	switch o.Allowed {
	case AllowedStrict:
		for _, path := range undeclared {
			fatal = append(fatal, FieldError{
				Path:    path,
				Message: "configuration param not declared in the schema",
			})
		}
		sort.Slice(fatal, func(i, j int) bool { return fatal[i].Path < fatal[j].Path })
	default:
		for _, path := range undeclared {
			output("warning: configuration param %q not declared in the schema", path)
		}
	}

	if len(fatal) > 0 {
		return ValidationError{Errors: fatal}
	}
	return nil
}

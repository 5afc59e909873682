package schematic

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/schematic-go/schematic/internal/tree"
)

// joinEnum renders the allowed values of an enum format as a comma
// separated list.
func joinEnum(allowed []any) string {
	items := make([]string, len(allowed))
	for i, v := range allowed {
		items[i] = fmt.Sprintf("%v", v)
	}
	s, err := tree.JoinList(items...)
	if err != nil {
		return serializeValue(allowed)
	}
	return s
}

// Doc writes out a table documenting every schema leaf to the given
// Writer: dotted path, format, default, env and arg bindings and doc
// text. Sensitive defaults are masked.
func (c *Config) Doc(out io.Writer) error {
	tabw := tabwriter.NewWriter(out, 8, 0, 1, ' ', 0)
	if _, err := fmt.Fprintln(tabw, "name\tformat\tdefault\tenv\targ\tdoc"); err != nil {
		return err
	}
	for _, path := range schemaPaths(c.schema) {
		node := c.flat[path]
		def := serializeValue(node.Default)
		if node.Sensitive {
			def = Redacted
		}
		format := node.tag
		switch f := node.Format.(type) {
		case string:
			format = f
		case []any:
			format = joinEnum(f)
		default:
			if format == "" {
				if node.Format != nil {
					format = "custom"
				} else {
					format = "*"
				}
			}
		}
		_, err := fmt.Fprintf(tabw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			path, format, def, node.Env, node.Arg, node.Doc)
		if err != nil {
			return err
		}
	}
	return tabw.Flush()
}

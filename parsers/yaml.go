package parsers

import (
	"fmt"

	yaml "gopkg.in/yaml.v2"

	"github.com/schematic-go/schematic"
)

// YAML parses yaml formatted files.
var YAML = schematic.Parser{
	Extensions: []string{"yaml", "yml"},
	Parse:      parseYAML,
}

func parseYAML(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	m, ok := stringify(raw).(map[string]any)
	if !ok && raw != nil {
		return nil, fmt.Errorf("yaml: not a mapping")
	}
	return m, nil
}

// stringify converts the map[interface{}]interface{} trees produced by
// the yaml decoder into string keyed maps.
func stringify(v any) any {
	switch w := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(w))
		for k, e := range w {
			m[fmt.Sprintf("%v", k)] = stringify(e)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(w))
		for k, e := range w {
			m[k] = stringify(e)
		}
		return m
	case []any:
		s := make([]any, len(w))
		for i, e := range w {
			s[i] = stringify(e)
		}
		return s
	}
	return v
}

package parsers

import (
	"bytes"

	ini "github.com/pierrec/go-ini"

	"github.com/schematic-go/schematic"
)

// INI parses ini formatted files. Keys of the global section become top
// level properties and every named section becomes a nested group. All
// values are strings, left to the schema coercions to type.
var INI = schematic.Parser{
	Extensions: []string{"ini"},
	Parse:      parseINI,
}

func parseINI(data []byte) (map[string]any, error) {
	v, err := ini.New(ini.Comment("# "))
	if err != nil {
		return nil, err
	}
	if _, err := v.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	m := make(map[string]any)
	for _, key := range v.Keys("") {
		m[key] = v.Get("", key)
	}
	for _, section := range v.Sections() {
		group := make(map[string]any)
		for _, key := range v.Keys(section) {
			group[key] = v.Get(section, key)
		}
		m[section] = group
	}
	return m, nil
}

package parsers

import (
	toml "github.com/pelletier/go-toml"

	"github.com/schematic-go/schematic"
)

// TOML parses toml formatted files.
var TOML = schematic.Parser{
	Extensions: []string{"toml"},
	Parse:      parseTOML,
}

func parseTOML(data []byte) (map[string]any, error) {
	t, err := toml.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	return t.ToMap(), nil
}

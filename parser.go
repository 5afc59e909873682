package schematic

import (
	"encoding/json"
	"strings"
)

// ParseFunc converts raw file contents into a nested configuration
// tree. Parse errors propagate to the LoadFile caller unwrapped.
type ParseFunc func(data []byte) (map[string]any, error)

// Parser binds a parse function to one or more file extensions.
type Parser struct {
	Extensions []string
	Parse      ParseFunc
}

// ParserRegistry maps file extensions to parse functions. Unregistered
// extensions, and paths with no extension at all, fall back to JSON.
// The zero value is not usable, use NewParserRegistry.
type ParserRegistry struct {
	parsers map[string]ParseFunc
}

// NewParserRegistry returns a registry holding only the JSON parser.
func NewParserRegistry() *ParserRegistry {
	return &ParserRegistry{parsers: map[string]ParseFunc{
		"json": ParseJSON,
	}}
}

// Add registers parsers for their extensions, overwriting any previous
// registration.
func (r *ParserRegistry) Add(parsers ...Parser) {
	for _, p := range parsers {
		for _, ext := range p.Extensions {
			r.parsers[strings.ToLower(ext)] = p.Parse
		}
	}
}

func (r *ParserRegistry) parse(ext string, data []byte) (map[string]any, error) {
	p, ok := r.parsers[strings.ToLower(ext)]
	if !ok {
		p = ParseJSON
	}
	return p(data)
}

// DefaultParsers is the registry used by configurations built without
// OptionParsers.
var DefaultParsers = NewParserRegistry()

// AddParser registers parsers on the default registry.
func AddParser(parsers ...Parser) {
	DefaultParsers.Add(parsers...)
}

// ParseJSON is the default parser. Empty input yields an empty tree
// rather than an error so that empty files are skipped by LoadFile.
func ParseJSON(data []byte) (map[string]any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

package schematic_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/schematic-go/schematic"
)

func TestParserFallbackJSON(t *testing.T) {
	dir := t.TempDir()
	// Unregistered extension and no extension both fall back to JSON.
	for _, name := range []string{"conf.unknown", "conf"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(`{"name":"file"}`), 0o600); err != nil {
			t.Fatal(err)
		}
		c := newConfig(t, map[string]any{"name": "app"})
		if err := c.LoadFile(path); err != nil {
			t.Fatal(err)
		}
		if got, want := get(t, c, "name"), "file"; got != want {
			t.Errorf("%s: got %v; want %v", name, got, want)
		}
	}
}

func TestParserRegistry(t *testing.T) {
	reg := schematic.NewParserRegistry()
	reg.Add(schematic.Parser{
		Extensions: []string{"kv", "props"},
		Parse: func(data []byte) (map[string]any, error) {
			m := make(map[string]any)
			for _, line := range strings.Split(string(data), "\n") {
				if k, v, ok := strings.Cut(line, "="); ok {
					m[k] = v
				}
			}
			return m, nil
		},
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "conf.props")
	if err := os.WriteFile(path, []byte("name=props"), 0o600); err != nil {
		t.Fatal(err)
	}

	c := newConfig(t, map[string]any{"name": "app"}, schematic.OptionParsers(reg))
	if err := c.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if got, want := get(t, c, "name"), "props"; got != want {
		t.Errorf("got %v; want %v", got, want)
	}

	// Re-registering an extension overwrites the previous parser.
	reg.Add(schematic.Parser{
		Extensions: []string{"props"},
		Parse: func([]byte) (map[string]any, error) {
			return map[string]any{"name": "overridden"}, nil
		},
	})
	if err := c.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if got, want := get(t, c, "name"), "overridden"; got != want {
		t.Errorf("got %v; want %v", got, want)
	}
}

func TestParserMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	c := newConfig(t, map[string]any{"name": "app"})
	if err := c.LoadFile(path); err == nil {
		t.Error("error expected")
	}
}

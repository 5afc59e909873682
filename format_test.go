package schematic_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/schematic-go/schematic"
)

func TestBuiltinFormats(t *testing.T) {
	for _, tc := range []struct {
		format string
		ok     []any
		bad    []any
	}{
		{"*", []any{nil, "x", 12, map[string]any{}}, nil},
		{"int", []any{0, -3, float64(42)}, []any{"x", 1.5, true}},
		{"nat", []any{0, 7}, []any{-1, "x"}},
		{"port", []any{0, 80, 65535}, []any{-1, 65536, "x"}},
		{"windows_named_pipe", []any{`\\.\pipe\test`, `\\?\pipe\x`}, []any{"pipe", 80}},
		{"port_or_windows_named_pipe", []any{80, `\\.\pipe\test`}, []any{"pipe", -1}},
		{"string", []any{"x"}, []any{1, nil}},
		{"number", []any{1, 1.5}, []any{"x", true}},
		{"boolean", []any{true, false}, []any{1, nil}},
		{"array", []any{[]any{1}, []string{"a"}}, []any{1, map[string]any{"k": 1}}},
		{"object", []any{map[string]any{}}, []any{[]any{}, "x"}},
		{"duration", []any{time.Second}, []any{1, "zzz"}},
		{"bytes", []any{schematic.BytesSize(10), 10}, []any{-1, "zzz"}},
		{"url", []any{"https://example.com/x"}, []any{"not a url", 1}},
		{"ipaddress", []any{"127.0.0.1", "::1"}, []any{"localhost", 1}},
	} {
		schema := map[string]any{
			"x": map[string]any{"default": tc.ok[0], "format": tc.format},
		}
		c := newConfig(t, schema)
		for _, v := range tc.ok {
			c.Set("x", v)
			if err := c.Validate(); err != nil {
				t.Errorf("format %s: value %v rejected: %v", tc.format, v, err)
			}
		}
		for _, v := range tc.bad {
			c.Set("x", v)
			if err := c.Validate(); err == nil {
				t.Errorf("format %s: value %v accepted", tc.format, v)
			}
		}
	}
}

func TestFormatCoercions(t *testing.T) {
	env := map[string]string{
		"INT":      "42",
		"NUM":      "1.5",
		"BOOL":     "anything",
		"ARR":      `a,b,"c,d"`,
		"OBJ":      `{"k":"v"}`,
		"DUR":      "1m30s",
		"BYTES":    "1MB",
		"PIPE":     `\\.\pipe\test`,
		"PORTPIPE": "8080",
	}
	schema := map[string]any{
		"i":  map[string]any{"default": 0, "format": "int", "env": "INT"},
		"n":  map[string]any{"default": 0.0, "format": "number", "env": "NUM"},
		"b":  map[string]any{"default": false, "format": "boolean", "env": "BOOL"},
		"a":  map[string]any{"default": []any{}, "format": "array", "env": "ARR"},
		"o":  map[string]any{"default": map[string]any{}, "format": "object", "env": "OBJ"},
		"d":  map[string]any{"default": time.Duration(0), "format": "duration", "env": "DUR"},
		"sz": map[string]any{"default": schematic.BytesSize(0), "format": "bytes", "env": "BYTES"},
		"p1": map[string]any{"default": 80, "format": "port_or_windows_named_pipe", "env": "PIPE"},
		"p2": map[string]any{"default": 80, "format": "port_or_windows_named_pipe", "env": "PORTPIPE"},
	}
	c := newConfig(t, schema, schematic.OptionEnviron(env))
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}

	for path, want := range map[string]any{
		"i":  42,
		"n":  1.5,
		"b":  true,
		"d":  90 * time.Second,
		"sz": schematic.BytesSize(1000000),
		"p1": `\\.\pipe\test`,
		"p2": 8080,
	} {
		if got := get(t, c, path); got != want {
			t.Errorf("%s: got %v (%T); want %v", path, got, got, want)
		}
	}
	if got := get(t, c, "a").([]string); len(got) != 3 || got[2] != "c,d" {
		t.Errorf("a: got %v; want [a b c,d]", got)
	}
	if got := get(t, c, "o").(map[string]any); got["k"] != "v" {
		t.Errorf("o: got %v; want map[k:v]", got)
	}
}

func TestAddFormat(t *testing.T) {
	reg := schematic.NewFormatRegistry()
	reg.Add("hex", schematic.Format{
		Validate: func(v any, _ *schematic.SchemaNode) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("must be a hex string")
			}
			if strings.Trim(strings.ToLower(s), "0123456789abcdef") != "" {
				return fmt.Errorf("must be a hex string")
			}
			return nil
		},
	})

	schema := map[string]any{
		"id": map[string]any{"default": "c0ffee", "format": "hex"},
	}
	c := newConfig(t, schema, schematic.OptionFormats(reg))
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	c.Set("id", "nope")
	if err := c.Validate(); err == nil {
		t.Error("error expected")
	}

	// Last registration wins.
	reg.Add("hex", schematic.Format{Validate: func(any, *schematic.SchemaNode) error { return nil }})
	c = newConfig(t, schema, schematic.OptionFormats(reg))
	c.Set("id", "nope")
	if err := c.Validate(); err != nil {
		t.Errorf("overridden format still active: %v", err)
	}
}

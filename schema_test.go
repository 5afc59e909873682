package schematic_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/schematic-go/schematic"
)

func TestSchemaShorthand(t *testing.T) {
	schema := map[string]any{
		"name":  "app",
		"count": 3,
		"tags":  []any{"a", "b"},
	}
	c := newConfig(t, schema)

	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}

	// The format of a shorthand leaf is inferred from its value.
	c.Set("count", "not a number")
	if err := c.Validate(); err == nil {
		t.Error("error expected")
	} else if !strings.Contains(err.Error(), "count") {
		t.Errorf("error %q does not name the path", err)
	}
}

func TestSchemaGroupVsLeaf(t *testing.T) {
	// A default-free node with children is a group, even deeply nested.
	schema := map[string]any{
		"server": map[string]any{
			"tls": map[string]any{
				"cert": map[string]any{"default": ""},
				"key":  map[string]any{"default": ""},
			},
		},
	}
	c := newConfig(t, schema)

	if got, want := get(t, c, "server.tls.cert"), ""; got != want {
		t.Errorf("got %v; want %v", got, want)
	}

	// A node holding its own default key is a leaf.
	schema = map[string]any{
		"limits": map[string]any{
			"default": map[string]any{"rate": 10},
			"format":  "object",
		},
	}
	c = newConfig(t, schema)
	if err := c.Validate(schematic.ValidateOptions{Allowed: schematic.AllowedStrict}); err != nil {
		t.Fatal(err)
	}
}

func TestSchemaReservedName(t *testing.T) {
	schema := map[string]any{
		"group": map[string]any{
			schematic.PropertiesKey: map[string]any{"default": 1},
		},
	}
	_, err := schematic.New(schema,
		schematic.OptionEnviron(map[string]string{}),
		schematic.OptionArgs(nil),
	)
	if err == nil {
		t.Fatal("error expected")
	}
	if !strings.Contains(err.Error(), schematic.PropertiesKey) {
		t.Errorf("error %q does not name the reserved property", err)
	}
}

func TestSchemaUnknownFormat(t *testing.T) {
	schema := map[string]any{
		"x": map[string]any{"default": 1, "format": "no_such_format"},
	}
	if _, err := schematic.New(schema,
		schematic.OptionEnviron(map[string]string{}),
		schematic.OptionArgs(nil),
	); err == nil {
		t.Fatal("error expected")
	}
}

func TestSchemaInvalidFormatSpecifier(t *testing.T) {
	schema := map[string]any{
		"x": map[string]any{"default": 1, "format": 42},
	}
	if _, err := schematic.New(schema,
		schematic.OptionEnviron(map[string]string{}),
		schematic.OptionArgs(nil),
	); err == nil {
		t.Fatal("error expected")
	}
}

func TestSchemaFunctionFormat(t *testing.T) {
	even := func(v any, _ *schematic.SchemaNode) error {
		n, ok := v.(int)
		if !ok || n%2 != 0 {
			return fmt.Errorf("must be an even integer")
		}
		return nil
	}
	schema := map[string]any{
		"workers": map[string]any{"default": 2, "format": even},
	}
	c := newConfig(t, schema)

	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	c.Set("workers", 3)
	if err := c.Validate(); err == nil {
		t.Error("error expected")
	}
}

func TestSchemaEnumFormat(t *testing.T) {
	schema := map[string]any{
		"env": map[string]any{
			"format":  []any{"production", "development", "test"},
			"default": "development",
		},
	}
	c := newConfig(t, schema)
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}

	c.Load(map[string]any{"env": "qa"})
	err := c.Validate()
	if err == nil {
		t.Fatal("error expected")
	}
	for _, want := range []string{"env", "production", "development", "test"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q misses %q", err, want)
		}
	}
}

func TestSchemaEnumUncomparableValues(t *testing.T) {
	// Allowed values may themselves be slices or maps; membership
	// checks must reject non-members instead of panicking.
	schema := map[string]any{
		"mode": map[string]any{
			"format":  []any{[]any{1, 2}, []any{3}},
			"default": []any{1, 2},
		},
		"limits": map[string]any{
			"format":  []any{map[string]any{"rate": 10}},
			"default": map[string]any{"rate": 10},
		},
	}
	c := newConfig(t, schema)
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}

	c.Set("mode", []any{3})
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}

	c.Set("mode", []any{9})
	c.Set("limits", map[string]any{"rate": 99})
	err := c.Validate()
	if err == nil {
		t.Fatal("error expected")
	}
	for _, want := range []string{"mode", "limits"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q misses %q", err, want)
		}
	}
}

func TestSchemaPasswordFormatIsSensitive(t *testing.T) {
	schema := map[string]any{
		"db": map[string]any{
			"password": map[string]any{"default": "", "format": "password"},
		},
	}
	c := newConfig(t, schema)
	c.Set("db.password", "hunter2")

	if s := c.String(); strings.Contains(s, "hunter2") {
		t.Errorf("serialized instance leaks the password: %s", s)
	}
}

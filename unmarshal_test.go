package schematic_test

import (
	"testing"
	"time"

	"github.com/schematic-go/schematic"
)

func TestUnmarshal(t *testing.T) {
	schema := map[string]any{
		"db": map[string]any{
			"host":    map[string]any{"default": "localhost"},
			"port":    map[string]any{"format": "port", "default": 5432},
			"timeout": map[string]any{"format": "duration", "default": 30 * time.Second},
			"name":    map[string]any{"default": "app", "arg": "db-name"},
		},
	}
	c := newConfig(t, schema, schematic.OptionArgs([]string{"--db-name", "orders"}))

	type db struct {
		Host    string
		Port    int
		Timeout time.Duration
		Name    string `config:"name"`
	}
	var got db
	if err := c.Unmarshal("db", &got); err != nil {
		t.Fatal(err)
	}
	want := db{Host: "localhost", Port: 5432, Timeout: 30 * time.Second, Name: "orders"}
	if got != want {
		t.Errorf("got %+v; want %+v", got, want)
	}

	// An empty path decodes the whole instance.
	var root struct{ DB db `config:"db"` }
	if err := c.Unmarshal("", &root); err != nil {
		t.Fatal(err)
	}
	if root.DB != want {
		t.Errorf("got %+v; want %+v", root.DB, want)
	}

	if err := c.Unmarshal("nope", &got); err == nil {
		t.Error("error expected")
	}
}

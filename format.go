package schematic

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/schematic-go/schematic/internal/tree"
)

// ValidateFunc checks a candidate value against a format. It returns a
// non nil error to signal invalidity.
type ValidateFunc func(value any, node *SchemaNode) error

// CoerceFunc converts a raw string, as found in environment variables,
// command line arguments or string-typed file values, into the target
// type before validation.
type CoerceFunc func(s string) (any, error)

// Format pairs a validation function with an optional string coercion.
type Format struct {
	Validate ValidateFunc
	Coerce   CoerceFunc
}

// FormatRegistry maps format names to their validation and coercion
// functions. The zero value is not usable, use NewFormatRegistry.
type FormatRegistry struct {
	formats map[string]Format
}

// NewFormatRegistry returns a registry populated with the built-in
// formats.
func NewFormatRegistry() *FormatRegistry {
	r := &FormatRegistry{formats: make(map[string]Format, len(builtinFormats))}
	for name, f := range builtinFormats {
		r.formats[name] = f
	}
	return r
}

// Add registers a named format, overwriting any previous registration
// with the same name.
func (r *FormatRegistry) Add(name string, f Format) {
	r.formats[name] = f
}

func (r *FormatRegistry) lookup(name string) (Format, bool) {
	f, ok := r.formats[name]
	return f, ok
}

// DefaultFormats is the registry used by configurations built without
// OptionFormats.
var DefaultFormats = NewFormatRegistry()

// AddFormat registers a named format on the default registry.
// Registering an existing name overwrites it.
func AddFormat(name string, validate ValidateFunc, coerce CoerceFunc) {
	DefaultFormats.Add(name, Format{Validate: validate, Coerce: coerce})
}

// AddFormats registers several named formats on the default registry.
func AddFormats(formats map[string]Format) {
	for name, f := range formats {
		DefaultFormats.Add(name, f)
	}
}

// windowsNamedPipe matches windows named pipe paths such as
// \\.\pipe\name and \\?\pipe\name.
var windowsNamedPipe = regexp.MustCompile(`^\\\\[.?]\\pipe\\`)

var builtinFormats = map[string]Format{
	"*":       {Validate: validateAny},
	"int":     {Validate: validateInt, Coerce: coerceInt},
	"integer": {Validate: validateInt, Coerce: coerceInt},
	"nat":     {Validate: validateNat, Coerce: coerceInt},
	"port":    {Validate: validatePort, Coerce: coerceInt},
	"windows_named_pipe": {
		Validate: validatePipe,
	},
	"port_or_windows_named_pipe": {
		Validate: validatePortOrPipe,
		Coerce:   coercePortOrPipe,
	},
	"string":    {Validate: typeValidator("string")},
	"number":    {Validate: typeValidator("number"), Coerce: coerceNumber},
	"boolean":   {Validate: typeValidator("boolean"), Coerce: coerceBool},
	"array":     {Validate: typeValidator("array"), Coerce: coerceArray},
	"object":    {Validate: typeValidator("object"), Coerce: coerceObject},
	"regexp":    {Validate: typeValidator("regexp"), Coerce: coerceRegexp},
	"duration":  {Validate: validateDuration, Coerce: coerceDuration},
	"bytes":     {Validate: validateBytes, Coerce: coerceBytes},
	"url":       {Validate: validateURL},
	"ipaddress": {Validate: validateIP},
	"password":  {Validate: validatePassword, Coerce: coercePassword},
}

func validateAny(any, *SchemaNode) error { return nil }

// toInt64 reports whether v holds an integral number and returns it.
func toInt64(v any) (int64, bool) {
	switch w := v.(type) {
	case int:
		return int64(w), true
	case int8:
		return int64(w), true
	case int16:
		return int64(w), true
	case int32:
		return int64(w), true
	case int64:
		return w, true
	case uint:
		return int64(w), true
	case uint8:
		return int64(w), true
	case uint16:
		return int64(w), true
	case uint32:
		return int64(w), true
	case uint64:
		return int64(w), true
	case float32:
		if float32(int64(w)) == w {
			return int64(w), true
		}
	case float64:
		// Parsed json numbers land here.
		if float64(int64(w)) == w {
			return int64(w), true
		}
	}
	return 0, false
}

func validateInt(v any, _ *SchemaNode) error {
	if _, ok := toInt64(v); !ok {
		return fmt.Errorf("must be an integer")
	}
	return nil
}

func validateNat(v any, _ *SchemaNode) error {
	n, ok := toInt64(v)
	if !ok || n < 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func validatePort(v any, _ *SchemaNode) error {
	n, ok := toInt64(v)
	if !ok || n < 0 || n > 65535 {
		return fmt.Errorf("ports must be within range 0 - 65535")
	}
	return nil
}

func validatePipe(v any, _ *SchemaNode) error {
	s, ok := v.(string)
	if !ok || !windowsNamedPipe.MatchString(s) {
		return fmt.Errorf("must be a valid windows named pipe")
	}
	return nil
}

func validatePortOrPipe(v any, node *SchemaNode) error {
	if s, ok := v.(string); ok && windowsNamedPipe.MatchString(s) {
		return nil
	}
	return validatePort(v, node)
}

func coercePortOrPipe(s string) (any, error) {
	if windowsNamedPipe.MatchString(s) {
		return s, nil
	}
	return coerceInt(s)
}

// typeTag classifies a runtime value the way format names do.
func typeTag(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case bool:
		return "boolean"
	case *regexp.Regexp:
		return "regexp"
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map:
		return "object"
	}
	return reflect.TypeOf(v).String()
}

// typeValidator compiles a structural check comparing the type tag of
// the candidate value against the named type.
func typeValidator(tag string) ValidateFunc {
	return func(v any, _ *SchemaNode) error {
		if typeTag(v) != tag {
			return fmt.Errorf("must be of type %s", tag)
		}
		return nil
	}
}

func coerceInt(s string) (any, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

func coerceNumber(s string) (any, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// coerceBool treats anything but the literal string "false" as true.
func coerceBool(s string) (any, error) {
	return strings.ToLower(s) != "false", nil
}

func coerceArray(s string) (any, error) {
	items, err := tree.SplitList(s)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func coerceObject(s string) (any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func coerceRegexp(s string) (any, error) {
	return regexp.Compile(s)
}

func validateDuration(v any, _ *SchemaNode) error {
	if _, ok := v.(time.Duration); !ok {
		return fmt.Errorf("must be a duration")
	}
	return nil
}

func coerceDuration(s string) (any, error) {
	return time.ParseDuration(s)
}

func validateBytes(v any, _ *SchemaNode) error {
	switch v.(type) {
	case BytesSize, uint64:
		return nil
	}
	if n, ok := toInt64(v); ok && n >= 0 {
		return nil
	}
	return fmt.Errorf("must be a bytes size")
}

func coerceBytes(s string) (any, error) {
	u, err := humanize.ParseBytes(s)
	if err != nil {
		return nil, err
	}
	return BytesSize(u), nil
}

func validateURL(v any, _ *SchemaNode) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("must be a URL")
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be a URL")
	}
	return nil
}

func validateIP(v any, _ *SchemaNode) error {
	s, ok := v.(string)
	if !ok || net.ParseIP(s) == nil {
		return fmt.Errorf("must be an IP address")
	}
	return nil
}

func validatePassword(v any, _ *SchemaNode) error {
	switch v.(type) {
	case Password, string:
		return nil
	}
	return fmt.Errorf("must be a password")
}

// coercePassword decrypts serialized passwords when PasswordBlock is
// set, and otherwise stores the raw string.
func coercePassword(s string) (any, error) {
	if PasswordBlock == nil {
		return Password(s), nil
	}
	var p Password
	if err := p.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	return p, nil
}

package schematic

import (
	"github.com/go-viper/mapstructure/v2"
)

// UnmarshalTag is the struct field tag consulted by Unmarshal.
const UnmarshalTag = "config"

// Unmarshal decodes the configuration subtree at the dotted path into
// target, which must be a pointer to a struct or map. An empty path
// decodes the whole instance. Field names are matched case
// insensitively, or explicitly through the UnmarshalTag struct tag;
// string values decode into time.Duration fields.
func (c *Config) Unmarshal(path string, target any) error {
	var src any
	if path == "" {
		src = c.GetProperties()
	} else {
		v, err := c.Get(path)
		if err != nil {
			return err
		}
		src = v
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          UnmarshalTag,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(src)
}

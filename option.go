package schematic

// Option is used to customize the behaviour of a Config at construction
// time.
type Option func(*Config) error

// OptionEnviron substitutes the environment map used for bound env
// variables. The process environment is used when not set. Useful for
// tests.
func OptionEnviron(env map[string]string) Option {
	return func(c *Config) error {
		c.env = env
		return nil
	}
}

// OptionArgs substitutes the command line tokens used for bound flags.
// The process argv tail is used when not set.
func OptionArgs(args []string) Option {
	return func(c *Config) error {
		c.args = ParseArgs(args)
		return nil
	}
}

// OptionFormats makes the Config resolve formats against an isolated
// registry instead of the package level DefaultFormats.
func OptionFormats(r *FormatRegistry) Option {
	return func(c *Config) error {
		c.formats = r
		return nil
	}
}

// OptionParsers makes the Config look up file parsers in an isolated
// registry instead of the package level DefaultParsers.
func OptionParsers(r *ParserRegistry) Option {
	return func(c *Config) error {
		c.parsers = r
		return nil
	}
}

// OptionOutput sets the sink receiving non fatal validation warnings.
//
// If nil, it defaults to the standard logger.
func OptionOutput(output func(format string, args ...any)) Option {
	return func(c *Config) error {
		c.output = output
		return nil
	}
}

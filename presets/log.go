// Package presets provides ready-made schema sections for concerns most
// applications share, together with the code applying their resolved
// values.
package presets

import (
	"io"
	"log"
	"os"

	"comail.io/go/colog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/schematic-go/schematic"
)

// Log is a schema group describing the logging facility. Merge it into
// an application schema under a "log" property, then call ApplyLog once
// the configuration is loaded and validated.
//
// The logger is based on CoLog
// (https://texlution.com/post/colog-prefix-based-logging-in-golang/)
// with optional file rotation.
var Log = map[string]any{
	"filename": map[string]any{
		"default": "",
		"doc":     "file to write logs to (default=stderr)",
		"env":     "LOG_FILENAME",
		"arg":     "log-filename",
	},
	"level": map[string]any{
		"default": "error",
		"format":  []any{"trace", "debug", "info", "warning", "error"},
		"doc":     "logging level",
		"env":     "LOG_LEVEL",
		"arg":     "log-level",
	},
	"maxsize": map[string]any{
		"default": schematic.BytesSize(10 << 20),
		"format":  "bytes",
		"doc":     "maximum size of the log file",
		"arg":     "log-maxsize",
	},
	"maxage": map[string]any{
		"default": 30,
		"format":  "nat",
		"doc":     "maximum number of days to retain old log files",
		"arg":     "log-maxage",
	},
	"maxbackups": map[string]any{
		"default": 3,
		"format":  "nat",
		"doc":     "maximum number of old log files to retain",
		"arg":     "log-maxbackups",
	},
	"localtime": map[string]any{
		"default": true,
		"format":  "boolean",
		"doc":     "use local time for formatting the timestamps in files",
		"arg":     "log-localtime",
	},
}

type logSettings struct {
	Filename   string
	Level      string
	MaxSize    schematic.BytesSize `config:"maxsize"`
	MaxAge     int                 `config:"maxage"`
	MaxBackups int                 `config:"maxbackups"`
	LocalTime  bool                `config:"localtime"`
}

// ApplyLog configures the standard logger from the resolved values of a
// Log group at the given dotted path.
func ApplyLog(c *schematic.Config, path string) error {
	var settings logSettings
	if err := c.Unmarshal(path, &settings); err != nil {
		return err
	}

	lvl, err := colog.ParseLevel(settings.Level)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stderr
	if settings.Filename != "" {
		out = &lumberjack.Logger{
			Filename:   settings.Filename,
			MaxSize:    int(settings.MaxSize),
			MaxBackups: settings.MaxBackups,
			MaxAge:     settings.MaxAge,
			LocalTime:  settings.LocalTime,
		}
	}
	flags := log.Ldate | log.Ltime | log.Lshortfile
	if !settings.LocalTime {
		flags |= log.LUTC
	}
	cl := colog.NewCoLog(out, "", flags)
	cl.SetMinLevel(lvl)

	// Disable default settings by the log library and register colog.
	log.SetPrefix("")
	log.SetFlags(0)
	log.SetOutput(cl)

	return nil
}

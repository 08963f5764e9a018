// Package logging builds the zerolog loggers injected into the server, the worker pool and
// the database helper. There's no global logger: every component receives its own at
// construction.
//
// Example usage:
//
//	log := logging.New(logging.Config{Level: "debug", Format: "console"})
//	log.Info().Uint16("port", 8080).Msg("server started")
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Nop logger for discarding output.
var Nop = zerolog.Nop()

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum level to output. Unknown levels fall back to info.
	Level string
	// Format is either console (human-readable) or json.
	Format string
	// Output is the destination. Defaults to os.Stderr.
	Output io.Writer
}

// New creates a logger from the config.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	level := ParseLevel(cfg.Level)
	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()

	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	return logger
}

// ParseLevel returns the zerolog level, defaulting to info.
func ParseLevel(str string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(str))
	if err != nil || str == "" {
		return zerolog.InfoLevel
	}

	return level
}

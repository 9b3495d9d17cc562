// Package logging builds the zerolog loggers used across voicebridge.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a console logger tagged with app at the given level, and
// installs it as the global zerolog logger. Unknown levels fall back to info.
func New(app, level string) zerolog.Logger {
	return NewWithWriter(os.Stderr, app, level)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, app, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(lvl).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

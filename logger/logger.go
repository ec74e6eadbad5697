// Package logger holds the structured logger shared by the regressor and the command line tool.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the package wide logger. It writes json lines to stderr at info level until changed.
var Log = newLogger(os.Stderr)

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("component", "pls").Logger().Level(zerolog.InfoLevel)
}

// SetOutput redirects all log output to w keeping the current level
func SetOutput(w io.Writer) {
	lvl := Log.GetLevel()
	Log = newLogger(w).Level(lvl)
}

// SetLevel changes the minimum level that is written
func SetLevel(lvl zerolog.Level) {
	Log = Log.Level(lvl)
}

// Console switches to human readable output on w
func Console(w io.Writer) {
	SetOutput(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
}

// ParseLevel converts a level name such as "debug" or "warn" into a zerolog level
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(name)
}

// Package logging configures structured logging for tablero using log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Output formats accepted by Setup.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Level picks the level from the verbosity flags. Quiet wins over verbose.
//
//   - quiet mode:   only WARN and ERROR messages
//   - normal mode:  INFO and above
//   - verbose mode: DEBUG and above
func Level(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelWarn
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Setup installs the default logger on stderr. Text output goes through a
// tint console handler; "json" selects slog's JSON handler.
func Setup(verbose, quiet bool, format string, noColor bool) *slog.Logger {
	logger := slog.New(NewHandler(os.Stderr, Level(verbose, quiet), format, noColor))
	slog.SetDefault(logger)
	return logger
}

// NewHandler builds the handler Setup installs, writing to w.
func NewHandler(w io.Writer, level slog.Level, format string, noColor bool) slog.Handler {
	if format == FormatJSON {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
		AddSource:  level <= slog.LevelDebug,
	})
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

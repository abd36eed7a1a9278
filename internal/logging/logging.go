// Package logging builds the slog logger used across focusdim.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Options configures New.
type Options struct {
	Level  string
	Output io.Writer
	// Prefix is shown before every message in text output.
	Prefix string
}

// Logger bundles the slog logger with its adjustable level.
type Logger struct {
	*slog.Logger
	Level *slog.LevelVar
}

// New returns a logger backed by charmbracelet/log. Terminal output is
// colored text; anything else gets logfmt.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := new(slog.LevelVar)
	level.Set(ParseLevel(opts.Level))

	handler := clog.NewWithOptions(out, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          opts.Prefix,
		Level:           clog.DebugLevel,
	})
	if !isTerminal(out) {
		handler.SetFormatter(clog.LogfmtFormatter)
		handler.SetTimeFormat(time.RFC3339)
	}

	return &Logger{
		Logger: slog.New(&levelHandler{level: level, next: handler}),
		Level:  level,
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a config level name to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

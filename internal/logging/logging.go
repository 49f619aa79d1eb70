// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Options selects the handler and level.
type Options struct {
	Level   string // debug, info, warn, error
	JSON    bool
	Verbose bool // forces debug
}

// New returns a logger writing to w. Text output is the default.
func New(w io.Writer, opts Options) *slog.Logger {
	cfg := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	if opts.Verbose {
		cfg.Level = slog.LevelDebug
	}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(w, cfg)
	} else {
		h = slog.NewTextHandler(w, cfg)
	}
	return slog.New(h)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

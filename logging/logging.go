// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/temify/core/config"
)

// New returns a logger writing to stderr.
func New(c config.LogConfig) *slog.Logger {
	return NewWithWriter(os.Stderr, c)
}

// NewWithWriter returns a text or JSON logger writing to w at the configured
// level. An unknown level falls back to info.
func NewWithWriter(w io.Writer, c config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: Level(c.Level)}
	if c.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Level parses a level name, case-insensitively.
func Level(s string) slog.Level {
	var l slog.Level
	if s == "" || l.UnmarshalText([]byte(s)) != nil {
		return slog.LevelInfo
	}
	return l
}

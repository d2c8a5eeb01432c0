// Package logging provides structured logging configuration and utilities.
package logging

import (
	"log/slog"
	"os"
)

// Config holds logging configuration.
type Config struct {
	Level  string
	Format string
}

// NewLogger builds a slog.Logger from the configuration. The returned
// LevelVar can be adjusted at runtime to change the level without swapping
// the handler (used by the config hot-reload path).
func NewLogger(cfg Config) (*slog.Logger, *slog.LevelVar) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(ParseLevel(cfg.Level))

	opts := &slog.HandlerOptions{Level: levelVar}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), levelVar
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

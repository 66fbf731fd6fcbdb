package log

import (
	"io"
	"log/slog"
	"os"
)

type LoggerConfiguration struct {
	LogLevel slog.Level
	Writer   io.Writer
}

// NewLogger builds a JSON structured logger for the given sink. Terminal
// backends own stdout, so callers normally pass a log file.
func NewLogger(config *LoggerConfiguration) *slog.Logger {
	if config.Writer == nil {
		config.Writer = os.Stderr
	}

	return slog.New(slog.NewJSONHandler(config.Writer, &slog.HandlerOptions{
		Level:     config.LogLevel,
		AddSource: true,
	}))
}

// SetDefault sets the default logger
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}

// Discard routes the default logger nowhere. Tests use it to keep output clean.
func Discard() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

// G returns the global logger instance
func G() *slog.Logger {
	return slog.Default()
}

// Engine returns a logger scoped to the navigation engine.
func Engine() *slog.Logger {
	return slog.With("component", "engine")
}

// Cache returns a logger scoped to the render and resource caches.
func Cache() *slog.Logger {
	return slog.With("component", "cache")
}

// Backend returns a logger scoped to a drawing backend.
func Backend(name string) *slog.Logger {
	return slog.With("component", "backend", "backend", name)
}

// Source returns a logger scoped to a view source.
func Source(name string) *slog.Logger {
	return slog.With("component", "source", "source", name)
}

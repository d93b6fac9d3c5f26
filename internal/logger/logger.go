package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// InitLogger initializes and configures the application logger based on environment.
// Development logs are verbose text unless jsonOutput is set.
// Returns a configured slog.Logger instance
func InitLogger(environment string, jsonOutput bool) *slog.Logger {
	logger := New(os.Stdout, environment, jsonOutput)

	// Set as default logger so it can be used throughout the application
	slog.SetDefault(logger)

	return logger
}

// New builds a logger writing to w without touching the default logger
func New(w io.Writer, environment string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if environment == "development" {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Printf adapts l to printf-style logging hooks used by third-party
// packages. A leading "[LEVEL]" tag selects the slog level.
func Printf(l *slog.Logger, component string) func(format string, args ...interface{}) {
	return func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		level := slog.LevelInfo
		switch {
		case strings.HasPrefix(msg, "[DEBUG]"):
			level = slog.LevelDebug
			msg = strings.TrimSpace(strings.TrimPrefix(msg, "[DEBUG]"))
		case strings.HasPrefix(msg, "[WARN]"):
			level = slog.LevelWarn
			msg = strings.TrimSpace(strings.TrimPrefix(msg, "[WARN]"))
		case strings.HasPrefix(msg, "[ERROR]"):
			level = slog.LevelError
			msg = strings.TrimSpace(strings.TrimPrefix(msg, "[ERROR]"))
		case strings.HasPrefix(msg, "[INFO]"):
			msg = strings.TrimSpace(strings.TrimPrefix(msg, "[INFO]"))
		}
		l.Log(context.Background(), level, msg, "component", component)
	}
}

// internal/logging/logging.go
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	envProduction = "production"
)

// New builds the process logger: JSON in production, text otherwise.
func New(env, level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if env == envProduction {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("env", env)
}

// Setup builds the process logger and installs it as the slog default.
func Setup(env, level string) *slog.Logger {
	logger := New(env, level, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

// Named returns a child logger tagged with the component name.
func Named(logger *slog.Logger, name string) *slog.Logger {
	return logger.With("logger", name)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

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

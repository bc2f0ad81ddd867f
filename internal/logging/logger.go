// Package logging provides structured logging configuration using log/slog.
//
// Logs go to stderr so that a command's stdout stays clean for its own
// output (for example the headers listing).
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type jobKey struct{}

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stderr, level, format))
}

// New builds a logger writing to w with the given level and format.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// WithJob stores the pipeline job name in ctx for FromContext.
func WithJob(ctx context.Context, job string) context.Context {
	if job == "" {
		return ctx
	}
	return context.WithValue(ctx, jobKey{}, job)
}

// FromContext returns the default logger, tagged with the job name when ctx
// carries one.
//
// Usage:
//
//	log := logging.FromContext(ctx)
//	log.Info("input loaded", "rows", n)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if job, ok := ctx.Value(jobKey{}).(string); ok && job != "" {
		logger = logger.With("job", job)
	}
	return logger
}

// WithFields returns a logger with additional structured fields.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}

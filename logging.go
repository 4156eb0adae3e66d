package memcache

import (
	"context"
	"log/slog"
	"os"
)

// LogConfig holds configuration for the cache logger.
type LogConfig struct {
	// Level sets the minimum log level.
	Level slog.Level
	// AddSource includes file and line information in log records.
	AddSource bool
}

// Logger provides structured logging for cache events. A nil Logger is
// valid and discards all records, so the cache never has to nil-check before
// logging.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a logger writing slog text records to stderr.
func NewLogger(config LogConfig) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     config.Level,
		AddSource: config.AddSource,
	})
	return &Logger{logger: slog.New(handler)}
}

// NewLoggerWithHandler creates a logger backed by an existing slog handler,
// letting the host application route cache logs through its own pipeline.
func NewLoggerWithHandler(handler slog.Handler) *Logger {
	return &Logger{logger: slog.New(handler)}
}

// With returns a logger carrying additional context fields.
func (l *Logger) With(args ...any) *Logger {
	if l == nil || l.logger == nil {
		return l
	}
	return &Logger{logger: l.logger.With(args...)}
}

// Debug logs a debug-level record.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.DebugContext(ctx, msg, args...)
}

// Info logs an info-level record.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.InfoContext(ctx, msg, args...)
}

// Warn logs a warning-level record.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.WarnContext(ctx, msg, args...)
}

// Error logs an error-level record.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.ErrorContext(ctx, msg, args...)
}

// logEvictions reports entries removed to satisfy capacity or memory
// limits. Keys are obscured before logging.
func (l *Logger) logEvictions(ctx context.Context, keys []string, bytesFreed int64) {
	if l == nil || l.logger == nil || len(keys) == 0 {
		return
	}
	excerpts := make([]string, len(keys))
	for i, k := range keys {
		excerpts[i] = obscureKey(k)
	}
	l.Debug(ctx, "cache entries evicted",
		"keys", excerpts,
		"count", len(keys),
		"bytes_freed", bytesFreed,
		"reason", "capacity",
	)
}

// Package log provides structured logging for the execution core. It wraps
// Go's log/slog with per-module child loggers so embedders can route or
// silence core output.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with module-scoped context.
type Logger struct {
	inner *slog.Logger
}

// defaultLogger is the process-wide logger used by the package-level
// convenience functions.
var defaultLogger *Logger

func init() {
	defaultLogger = New(slog.LevelInfo)
}

// New creates a Logger that writes JSON to stderr at the given level.
func New(level slog.Level) *Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{inner: slog.New(h)}
}

// NewWithHandler creates a Logger backed by the supplied slog.Handler. This
// is useful for testing or for writing to a custom destination.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// Discard returns a Logger that drops all records.
func Discard() *Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)})
	return &Logger{inner: slog.New(h)}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger {
	return defaultLogger
}

// Module returns a child logger with an additional "module" attribute.
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.With("module", name)}
}

// With returns a child logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) { l.inner.Info(msg, args...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) { l.inner.Warn(msg, args...) }

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// Package-level convenience functions on the default logger.

func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { defaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { defaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

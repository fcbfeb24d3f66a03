package vecsky

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with vecsky-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(ctx context.Context, name string, dimension, points int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"collection", name,
			"dimension", dimension,
			"points", points,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "add completed",
			"collection", name,
			"dimension", dimension,
			"points", points,
		)
	}
}

// LogCreate logs the creation of a collection.
func (l *Logger) LogCreate(ctx context.Context, name string, dimension int) {
	l.InfoContext(ctx, "collection created",
		"collection", name,
		"dimension", dimension,
	)
}

// LogQuery logs a query request. Query errors are caller errors and are
// logged at warn level.
func (l *Logger) LogQuery(ctx context.Context, name string, dimension int, radiusSquared float32, err error) {
	if err != nil {
		l.WarnContext(ctx, "query rejected",
			"collection", name,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query started",
			"collection", name,
			"dimension", dimension,
			"radius_squared", radiusSquared,
		)
	}
}

// LogScan logs a finished scan.
func (l *Logger) LogScan(ctx context.Context, name string, scanned, matched int, duration time.Duration, err error) {
	if err != nil {
		l.DebugContext(ctx, "scan stopped early",
			"collection", name,
			"scanned", scanned,
			"matched", matched,
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "scan completed",
			"collection", name,
			"scanned", scanned,
			"matched", matched,
			"duration", duration,
		)
	}
}

package qsql

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with query-specific helpers so every component
// logs with the same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler to stderr at info level is used.
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

// NewJSONLogger creates a Logger that writes JSON to stderr at level.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithQuery tags the logger with a query ID.
func (l *Logger) WithQuery(id uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("query", id),
	}
}

// WithMode tags the logger with the scoring mode.
func (l *Logger) WithMode(mode string) *Logger {
	return &Logger{
		Logger: l.Logger.With("mode", mode),
	}
}

// WithRows adds a row count field to the logger.
func (l *Logger) WithRows(rows int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", rows),
	}
}

// LogCompile logs the outcome of compiling a condition.
func (l *Logger) LogCompile(ctx context.Context, raw, normalized, tree string, dropped int, err error) {
	if err != nil {
		l.DebugContext(ctx, "condition rejected",
			"condition", raw,
			"error", err,
		)
		return
	}
	if dropped > 0 {
		l.WarnContext(ctx, "condition contained unrecognized characters",
			"condition", raw,
			"dropped", dropped,
		)
	}
	l.DebugContext(ctx, "condition compiled",
		"normalized", normalized,
		"ast", tree,
	)
}

// LogMode logs the selected scoring mode.
func (l *Logger) LogMode(ctx context.Context, mode string, rows, units int, pinned bool) {
	l.DebugContext(ctx, "scoring mode selected",
		"mode", mode,
		"rows", rows,
		"units", units,
		"pinned", pinned,
	)
}

// LogBatch logs one finished batch.
func (l *Logger) LogBatch(ctx context.Context, id, rows, qubits int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "batch failed",
			"batch", id,
			"rows", rows,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "batch completed",
		"batch", id,
		"rows", rows,
		"qubits", qubits,
		"duration", d,
	)
}

// LogBatches logs the partitioning of a query.
func (l *Logger) LogBatches(ctx context.Context, batches, workers int) {
	l.DebugContext(ctx, "query partitioned",
		"batches", batches,
		"workers", workers,
	)
}

// LogQuery logs a finished query.
func (l *Logger) LogQuery(ctx context.Context, mode string, rows, matches int, threshold float64, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"mode", mode,
			"rows", rows,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "query completed",
		"mode", mode,
		"rows", rows,
		"matches", matches,
		"threshold", threshold,
		"duration", d,
	)
}

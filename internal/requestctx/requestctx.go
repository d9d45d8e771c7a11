// Package requestctx carries correlation ids through a context so domain code
// can tag its logs without depending on the HTTP layer.
package requestctx

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	jobRunKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestID(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithJobRun marks ctx as belonging to a background job run.
func WithJobRun(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, jobRunKey, runID)
}

func JobRun(ctx context.Context) string {
	value, _ := ctx.Value(jobRunKey).(string)
	return value
}

// Logger returns the default logger with whichever ids ctx carries attached.
func Logger(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if id := RequestID(ctx); id != "" {
		logger = logger.With("requestId", id)
	}
	if id := JobRun(ctx); id != "" {
		logger = logger.With("jobRunId", id)
	}
	return logger
}

package slogx

import (
	"context"
	"log/slog"
)

// loggerKey is the context key for the request-scoped logger.
type loggerKey struct{}

// WithContext returns a child context carrying logger. Handlers and
// services retrieve it with FromContext, so request attributes travel
// down the call chain instead of being re-derived at every layer.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored by WithContext. A context that
// carries none (tests, background jobs) yields slog.Default rather than
// nil, so call sites never need to guard.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithRequestID stamps req_id onto the contextual logger.
func WithRequestID(ctx context.Context, id string) context.Context {
	return WithContext(ctx, FromContext(ctx).With("req_id", id))
}

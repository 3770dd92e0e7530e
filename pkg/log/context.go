package log

import (
	"context"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

// WithLogger returns a child context carrying the logger. The HTTP
// middleware uses this to thread a request-scoped logger down to the
// handlers and the audit trail.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Ctx returns the logger carried by ctx, falling back to the global one
// for contexts that never passed through the middleware (upstream
// adapters, the liveness supervisor).
func Ctx(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
		return l
	}
	return L()
}

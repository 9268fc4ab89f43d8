// Package logger carries request-scoped zap loggers and the gin access log.
package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey struct{}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, log)
}

// FromContext returns the request-scoped logger, falling back to the global.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(contextKey{}).(*zap.Logger); ok && log != nil {
			return log
		}
	}
	return zap.L()
}

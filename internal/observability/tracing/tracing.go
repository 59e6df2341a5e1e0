package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type traceIDKey struct{}

// InjectTraceID attaches a fresh trace id to the context and to the zerolog
// logger carried by it, so every log line of one request shares the id.
func InjectTraceID(ctx context.Context) context.Context {
	traceID := uuid.New().String()
	ctx = context.WithValue(ctx, traceIDKey{}, traceID)

	logger := log.Logger.With().Str("trace_id", traceID).Logger()
	return logger.WithContext(ctx)
}

// TraceID returns the trace id stored in the context, or an empty string.
func TraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey{}).(string); ok {
		return v
	}
	return ""
}

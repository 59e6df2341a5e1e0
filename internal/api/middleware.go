package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PublicAI01/publicai-staking/internal/observability/tracing"
)

// traceMiddleware attaches a per-request trace id to the context logger so
// every log line emitted while serving the request carries it.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.InjectTraceID(r.Context())

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))

		log.Ctx(ctx).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request served")
	})
}

package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	platformlogging "github.com/halcyon-cloud/accountflow/platform/go/logging"
	"github.com/halcyon-cloud/accountflow/platform/go/requesttrace"
)

// RequestTrace seeds the context with an operator-origin TraceInfo carrying the
// request ID, so downstream handlers and services can stamp trace fields. The
// event ingest path upgrades the trace to an eventbridge origin once an
// envelope is accepted.
func RequestTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, _ := r.Context().Value(middleware.RequestIDKey).(string)
		trace := requesttrace.Operator(requestID)

		ctx := requesttrace.IntoContext(r.Context(), trace)
		if logger := platformlogging.FromRequest(r, nil); logger != nil {
			logger = logger.With(zap.String("origin", string(trace.Origin)))
			ctx = platformlogging.WithLogger(ctx, logger)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/pkg/logger"
)

var httpPanicsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_http_panics_total",
		Help: "Handler panics recovered by the storefront API, by route",
	},
	[]string{"route"},
)

// Recovery turns a handler panic into a 500 envelope, logs the stack with
// the request's correlation ID and counts it per route. http.ErrAbortHandler
// is re-raised so net/http can abort the connection.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				route := "unknown"
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					route = rctx.RoutePattern()
				}
				httpPanicsTotal.WithLabelValues(route).Inc()

				l.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("route", route),
					slog.String("correlation_id", logger.CorrelationIDFromContext(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
			}()

			next.ServeHTTP(w, r)
		})
	}
}

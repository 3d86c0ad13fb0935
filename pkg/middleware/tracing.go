package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/pkg/logger"
)

// Tracing starts a server span per request, continuing any W3C trace context
// sent by the client. Mount it after RequestLogging so the span carries the
// correlation ID. The span is renamed to the chi route pattern once routing
// has run.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	tracer := otel.Tracer("github.com/utafrali/storefront/" + serviceName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			propagator := otel.GetTextMapPropagator()
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			attrs := []attribute.KeyValue{
				semconv.HTTPMethod(r.Method),
				semconv.HTTPTarget(r.URL.RequestURI()),
				semconv.HTTPScheme(scheme(r)),
				semconv.UserAgentOriginal(r.UserAgent()),
			}
			if id := logger.CorrelationIDFromContext(ctx); id != "" {
				attrs = append(attrs, attribute.String("storefront.correlation_id", id))
			}

			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					span.SetName(r.Method + " " + pattern)
					span.SetAttributes(attribute.String("http.route", pattern))
				}
			}

			span.SetAttributes(
				semconv.HTTPStatusCode(rec.status),
				attribute.Int("http.response_content_length", rec.bytes),
			)
			switch {
			case rec.status >= http.StatusInternalServerError:
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			case rec.Header().Get(StaleHeader) != "":
				span.AddEvent("served from offline cache")
			}
		})
	}
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}

// Package middleware holds HTTP middlewares shared by local servers.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/httplog/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Logging logs HTTP requests with method, path, status, and duration.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return httplog.RequestLogger(logger, &httplog.Options{
		Schema: httplog.SchemaECS.Concise(true),

		// Never log auth headers or bodies
		LogRequestHeaders:  []string{"Content-Type", "Origin"},
		LogResponseHeaders: []string{},
		LogRequestBody:     nil,
		LogResponseBody:    nil,

		RecoverPanics: false, // use dedicated middleware, panics are logged regardless
	})
}

// Propagation extracts W3C trace context from incoming headers into the request
// context, so outbound API calls continue the caller's trace. The trace ID is
// attached to the request log line when present.
func Propagation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			httplog.SetAttrs(ctx, slog.String("trace.id", sc.TraceID().String()))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Chain applies middlewares to a handler in the order they appear.
// The first middleware in the slice is the outermost (executes first).
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

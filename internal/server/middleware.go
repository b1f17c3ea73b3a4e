// internal/server/middleware.go

package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"octopal/internal/metrics"
)

// prometheusMiddleware records request counts and latencies per route. The
// chi route pattern is used as the path label to keep cardinality bounded.
func prometheusMiddleware(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			path := r.URL.Path
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}

			duration := time.Since(start).Seconds()
			statusCode := strconv.Itoa(ww.Status())

			metrics.HttpRequestsTotal.WithLabelValues(
				r.Method,
				path,
				statusCode,
				serviceName,
			).Inc()

			metrics.HttpRequestDuration.WithLabelValues(
				r.Method,
				path,
				serviceName,
			).Observe(duration)
		})
	}
}

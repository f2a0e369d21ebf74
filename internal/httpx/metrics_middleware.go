package httpx

import (
	"net/http"
	"strconv"
	"time"

	"libraryapi/internal/platform/metrics"
)

// MetricsMiddleware records request counts and latency labelled by the
// matched route pattern, so path parameters do not explode label cardinality.
// It must sit inside the chain such that the ServeMux receives the same
// *http.Request it passes on.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		rw := wrapResponseWriter(w)
		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

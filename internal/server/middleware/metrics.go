package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/facialanalyzer/internal/server/metrics"
)

// unmatchedRoute - метка для запросов, не попавших ни в один маршрут
const unmatchedRoute = "unmatched"

// MetricsMiddleware считает запросы и их длительность.
// Маршрут берется из r.Pattern, который выставляет http.ServeMux,
// поэтому кардинальность метки ограничена числом маршрутов.
func MetricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			route := r.Pattern
			if route == "" {
				route = unmatchedRoute
			}
			m.RecordHTTPRequest(r.Method, route, strconv.Itoa(wrapped.statusCode), time.Since(start))
		})
	}
}

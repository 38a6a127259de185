package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	uploadedFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_uploaded_files_total",
			Help: "Files stored by successful uploads.",
		},
		[]string{"country"},
	)

	uploadedBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_uploaded_bytes_total",
			Help: "Bytes stored by successful uploads.",
		},
		[]string{"country"},
	)

	deletedFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_deleted_files_total",
			Help: "Files removed through the API.",
		},
		[]string{"country"},
	)
)

// MetricsMiddleware records request counts and latency per route pattern.
// Route patterns keep label cardinality bounded.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Package metrics provides Prometheus instrumentation for the scenario backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ProjectionsTotal counts computed scenario projections.
	ProjectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenario_projections_total",
		Help: "Total number of scenario projections computed",
	})

	// PriceLookupsTotal counts successful price lookups, partitioned by source.
	PriceLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenario_price_lookups_total",
		Help: "Total number of successful price lookups",
	}, []string{"source"})

	// PriceLookupFailuresTotal counts failed price lookups, partitioned by source.
	PriceLookupFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenario_price_lookup_failures_total",
		Help: "Total number of failed price lookups",
	}, []string{"source"})

	// PriceRefreshDuration tracks the duration of bulk price refresh passes.
	PriceRefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scenario_price_refresh_duration_seconds",
		Help:    "Duration of bulk price refresh passes in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenario_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scenario_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "craftshare_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "pattern", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "craftshare_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "pattern"},
	)
)

// Monitoring records request counts and latencies per route pattern.
type Monitoring struct{}

func NewMonitoring() *Monitoring {
	return &Monitoring{}
}

func (m *Monitoring) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(recorder, r)

		// The mux fills in the matched pattern during routing; unmatched
		// requests collapse into one series instead of one per raw path.
		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(recorder.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}

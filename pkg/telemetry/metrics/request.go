package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"vantage-hq/saturn/pkg/config"
)

// RequestMetrics tracks HTTP request processing.
//
// Metrics:
//   - saturn_requests_total: Total request count by endpoint, method, status
//   - saturn_request_duration_seconds: Request duration histogram
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the registry.
func NewRequestMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"endpoint", "method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"endpoint", "method"},
		),
	}

	registry.MustRegister(rm.requestsTotal, rm.requestDuration)
	return rm
}

// Record records one completed request.
func (rm *RequestMetrics) Record(endpoint, method, status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(endpoint, method, status).Inc()
	rm.requestDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"vantage-hq/saturn/pkg/config"
)

// PublishMetrics tracks Kafka publishing.
//
// Metrics:
//   - saturn_kafka_publishes_total: Publish attempts by topic, status
//   - saturn_kafka_publish_duration_seconds: Publish latency by topic
type PublishMetrics struct {
	publishesTotal  *prometheus.CounterVec
	publishDuration *prometheus.HistogramVec
}

// NewPublishMetrics creates and registers publish metrics with the registry.
func NewPublishMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *PublishMetrics {
	pm := &PublishMetrics{
		publishesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "kafka_publishes_total",
				Help:      "Total number of Kafka publish attempts",
			},
			[]string{"topic", "status"},
		),

		publishDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "kafka_publish_duration_seconds",
				Help:      "Duration of Kafka publish attempts in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"topic"},
		),
	}

	registry.MustRegister(pm.publishesTotal, pm.publishDuration)
	return pm
}

// Record records one publish attempt.
func (pm *PublishMetrics) Record(topic, status string, duration time.Duration) {
	pm.publishesTotal.WithLabelValues(topic, status).Inc()
	pm.publishDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

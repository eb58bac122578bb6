package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"vantage-hq/saturn/pkg/config"
)

// ScreeningMetrics tracks the fraud screening pipeline.
//
// Metrics:
//   - saturn_screenings_total: Screened transactions by gateway, outcome
//   - saturn_screening_score: Risk score distribution by gateway
//   - saturn_rule_hits_total: Rule match count by rule
type ScreeningMetrics struct {
	screeningsTotal *prometheus.CounterVec
	screeningScore  *prometheus.HistogramVec
	ruleHitsTotal   *prometheus.CounterVec
}

// NewScreeningMetrics creates and registers screening metrics with the
// registry.
func NewScreeningMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *ScreeningMetrics {
	sm := &ScreeningMetrics{
		screeningsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "screenings_total",
				Help:      "Total number of transactions screened",
			},
			[]string{"gateway", "outcome"},
		),

		screeningScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "screening_score",
				Help:      "Risk score distribution of screened transactions",
				Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 100, 150},
			},
			[]string{"gateway"},
		),

		ruleHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rule_hits_total",
				Help:      "Total number of fraud rule matches",
			},
			[]string{"rule"},
		),
	}

	registry.MustRegister(sm.screeningsTotal, sm.screeningScore, sm.ruleHitsTotal)
	return sm
}

// Record records one screened transaction.
func (sm *ScreeningMetrics) Record(gateway, outcome string, score int) {
	sm.screeningsTotal.WithLabelValues(gateway, outcome).Inc()
	sm.screeningScore.WithLabelValues(gateway).Observe(float64(score))
}

// RecordRuleHit records one rule match.
func (sm *ScreeningMetrics) RecordRuleHit(rule string) {
	sm.ruleHitsTotal.WithLabelValues(rule).Inc()
}

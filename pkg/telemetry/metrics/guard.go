package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"vantage-hq/saturn/pkg/cardinality"
	"vantage-hq/saturn/pkg/config"
)

// GuardMetrics tracks the cardinality guard itself. These metrics are
// registered directly, never guard-checked, so enforcement stays observable
// while circuits are open. Their labels come from small closed sets.
//
// Metrics:
//   - saturn_guard_decisions_total: Evaluate outcomes by decision
//   - saturn_guard_violations_total: Guard events by kind
//   - saturn_guard_open_circuits: Metrics with an open circuit
//   - saturn_guard_label_combinations: Distinct combinations tracked
type GuardMetrics struct {
	decisionsTotal  *prometheus.CounterVec
	violationsTotal *prometheus.CounterVec
}

// NewGuardMetrics creates and registers guard self-metrics with the registry.
// The gauges read the guard's atomic counters on scrape.
func NewGuardMetrics(cfg config.MetricsConfig, guard *cardinality.Guard, registry *prometheus.Registry) *GuardMetrics {
	gm := &GuardMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "guard_decisions_total",
				Help:      "Total cardinality guard evaluations by decision",
			},
			[]string{"decision"},
		),

		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "guard_violations_total",
				Help:      "Total cardinality guard events by kind",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(gm.decisionsTotal, gm.violationsTotal)

	if guard != nil {
		registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "guard_open_circuits",
				Help:      "Number of metrics whose circuit is currently open",
			},
			func() float64 { return float64(guard.OpenCircuits()) },
		))

		registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "guard_label_combinations",
				Help:      "Distinct label combinations tracked across all metrics",
			},
			func() float64 { return float64(guard.TotalCombinations()) },
		))
	}

	return gm
}

// RecordDecision counts one Evaluate outcome.
func (gm *GuardMetrics) RecordDecision(decision cardinality.Decision) {
	gm.decisionsTotal.WithLabelValues(string(decision)).Inc()
}

// Emit implements cardinality.Sink, counting guard events by kind.
func (gm *GuardMetrics) Emit(ev cardinality.Event) {
	gm.violationsTotal.WithLabelValues(string(ev.Kind)).Inc()
}

package cardinality

// Stats is a point-in-time snapshot of the guard's accounting, intended for
// an operational stats endpoint. It may be briefly stale under concurrent
// writers; this is a monitoring surface, not a correctness-critical one.
type Stats struct {
	// TotalCombinations is the distinct combination count across all
	// metrics.
	TotalCombinations int64 `json:"total_combinations"`

	// OpenCircuits is the number of metrics whose circuit is open.
	OpenCircuits int64 `json:"open_circuits"`

	// Metrics is the per-metric breakdown, keyed by metric name.
	Metrics map[string]MetricStats `json:"metrics"`
}

// MetricStats is the per-metric portion of a Stats snapshot.
type MetricStats struct {
	// Combinations is the distinct label combination count.
	Combinations int `json:"combinations"`

	// LabelValues maps each label name to its distinct value count.
	LabelValues map[string]int `json:"label_values"`

	// CircuitState is the breaker state: closed, open, or half_open.
	CircuitState string `json:"circuit_state"`

	// ViolationStreak is the consecutive violation count since the last
	// allow.
	ViolationStreak int `json:"violation_streak"`
}

// Stats returns an eventually-consistent snapshot. Totals come from atomics;
// the per-metric breakdown copies each shard under its read lock one shard at
// a time, so a snapshot never holds the hot write path's exclusive lock.
func (g *Guard) Stats() Stats {
	stats := Stats{
		TotalCombinations: g.TotalCombinations(),
		OpenCircuits:      g.OpenCircuits(),
		Metrics:           make(map[string]MetricStats),
	}

	for i := range g.counter.shards {
		sh := &g.counter.shards[i]
		sh.mu.RLock()
		for metric, r := range sh.records {
			labelValues := make(map[string]int, len(r.labelValues))
			for name, values := range r.labelValues {
				labelValues[name] = len(values)
			}
			stats.Metrics[metric] = MetricStats{
				Combinations:    len(r.combinations),
				LabelValues:     labelValues,
				CircuitState:    r.state.String(),
				ViolationStreak: r.streak,
			}
		}
		sh.mu.RUnlock()
	}

	return stats
}

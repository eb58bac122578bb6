package cardinality

import (
	"fmt"
	"sort"
	"time"
)

// Decision is the outcome of a single Evaluate call. Violations are routine
// conditions returned as data, never as errors.
type Decision string

const (
	// Allow permits the recording. Also returned for every repeat of a
	// previously accepted combination, regardless of current counts.
	Allow Decision = "allow"

	// AllowWithWarning permits the recording but reports a violation.
	// Returned when the violation action is "warn".
	AllowWithWarning Decision = "allow_with_warning"

	// Drop rejects this recording only. The call site should substitute an
	// overflow label value or skip the sample.
	Drop Decision = "drop"

	// CircuitOpenReject rejects the recording because the metric's circuit
	// is open. Counters are not touched on this path.
	CircuitOpenReject Decision = "circuit_open_reject"
)

// Allowed reports whether the call site should proceed with the recording.
func (d Decision) Allowed() bool {
	return d == Allow || d == AllowWithWarning
}

// ViolationAction is the deployment-chosen reaction to a single cardinality
// violation while the circuit is still closed.
type ViolationAction string

const (
	// ActionWarn records and reports the violation but never blocks.
	ActionWarn ViolationAction = "warn"

	// ActionDrop rejects violating recordings without opening the circuit.
	ActionDrop ViolationAction = "drop"

	// ActionCircuitBreak rejects violating recordings and opens the
	// metric's circuit once the violation streak reaches the threshold.
	ActionCircuitBreak ViolationAction = "circuit_break"
)

// Config contains the guard's enforcement thresholds. The zero value of any
// field takes its default in New; explicitly negative values are
// configuration errors.
type Config struct {
	// MaxValuesPerLabel bounds the distinct values observed for any single
	// label of a metric.
	// Default: 100
	MaxValuesPerLabel int `yaml:"max_values_per_label"`

	// MaxCombinationsPerMetric bounds the distinct label combinations
	// observed for a metric.
	// Default: 1000
	MaxCombinationsPerMetric int `yaml:"max_combinations_per_metric"`

	// OnViolation selects the reaction to a violation: warn, drop, or
	// circuit_break.
	// Default: warn
	OnViolation ViolationAction `yaml:"on_violation"`

	// BreakerThreshold is the consecutive-violation count that opens a
	// metric's circuit (only under circuit_break).
	// Default: 5
	BreakerThreshold int `yaml:"breaker_threshold"`

	// BreakerCooldown is how long an open circuit rejects new combinations
	// before permitting a half-open trial.
	// Default: 5m
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// DefaultConfig returns the default guard configuration.
func DefaultConfig() Config {
	return Config{
		MaxValuesPerLabel:        100,
		MaxCombinationsPerMetric: 1000,
		OnViolation:              ActionWarn,
		BreakerThreshold:         5,
		BreakerCooldown:          5 * time.Minute,
	}
}

// applyDefaults fills zero-valued fields with defaults.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.MaxValuesPerLabel == 0 {
		c.MaxValuesPerLabel = d.MaxValuesPerLabel
	}
	if c.MaxCombinationsPerMetric == 0 {
		c.MaxCombinationsPerMetric = d.MaxCombinationsPerMetric
	}
	if c.OnViolation == "" {
		c.OnViolation = d.OnViolation
	}
	if c.BreakerThreshold == 0 {
		c.BreakerThreshold = d.BreakerThreshold
	}
	if c.BreakerCooldown == 0 {
		c.BreakerCooldown = d.BreakerCooldown
	}
}

// validate checks the configuration after defaults are applied.
// A misconfigured guard must never initialize; this is the only fatal path.
func (c Config) validate() error {
	if c.MaxValuesPerLabel < 1 {
		return fmt.Errorf("max_values_per_label must be at least 1, got %d", c.MaxValuesPerLabel)
	}
	if c.MaxCombinationsPerMetric < 1 {
		return fmt.Errorf("max_combinations_per_metric must be at least 1, got %d", c.MaxCombinationsPerMetric)
	}
	switch c.OnViolation {
	case ActionWarn, ActionDrop, ActionCircuitBreak:
	default:
		return fmt.Errorf("on_violation must be one of warn, drop, circuit_break, got %q", c.OnViolation)
	}
	if c.BreakerThreshold < 1 {
		return fmt.Errorf("breaker_threshold must be at least 1, got %d", c.BreakerThreshold)
	}
	if c.BreakerCooldown < 0 {
		return fmt.Errorf("breaker_cooldown must be non-negative, got %s", c.BreakerCooldown)
	}
	return nil
}

// violation describes which bound a newly observed combination exceeded.
// An empty Label means the whole-combination bound tripped.
type violation struct {
	label string
	count int
	limit int
}

// checkBounds is the pure policy check: given a record that has just absorbed
// a new combination, report the first exceeded bound, or nil when every bound
// holds. Labels are checked in sorted order so the reported offender is
// deterministic. Bounds are evaluated post-insertion: count > limit is a
// violation, so the limit itself is still allowed. Caller must hold the shard
// lock.
func (c Config) checkBounds(r *record, labels map[string]string) *violation {
	if len(labels) > 0 {
		names := make([]string, 0, len(labels))
		for name := range labels {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if count := len(r.labelValues[name]); count > c.MaxValuesPerLabel {
				return &violation{label: name, count: count, limit: c.MaxValuesPerLabel}
			}
		}
	}

	if count := len(r.combinations); count > c.MaxCombinationsPerMetric {
		return &violation{count: count, limit: c.MaxCombinationsPerMetric}
	}
	return nil
}

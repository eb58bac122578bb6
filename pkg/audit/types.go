package audit

import (
	"time"

	"github.com/google/uuid"

	"vantage-hq/saturn/pkg/cardinality"
)

// Entry is one persisted guard event.
type Entry struct {
	// ID uniquely identifies the entry.
	ID string `json:"id"`

	// Metric is the metric name the event concerned.
	Metric string `json:"metric"`

	// Kind is the event classification (violation or circuit_transition).
	Kind string `json:"kind"`

	// Label is the offending label for per-label violations.
	Label string `json:"label,omitempty"`

	// Decision is the outcome of the triggering evaluation.
	Decision string `json:"decision,omitempty"`

	// State is the breaker state after a transition.
	State string `json:"state,omitempty"`

	// Count and Limit describe the exceeded bound for violations.
	Count int `json:"count,omitempty"`
	Limit int `json:"limit,omitempty"`

	// OccurredAt is when the guard emitted the event.
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEntry converts a guard event into a persistable entry with a fresh ID.
func NewEntry(ev cardinality.Event) *Entry {
	return &Entry{
		ID:         uuid.New().String(),
		Metric:     ev.Metric,
		Kind:       string(ev.Kind),
		Label:      ev.Label,
		Decision:   string(ev.Decision),
		State:      ev.State,
		Count:      ev.Count,
		Limit:      ev.Limit,
		OccurredAt: ev.Time,
	}
}

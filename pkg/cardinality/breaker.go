package cardinality

import "time"

// breakerState is the per-metric circuit breaker state.
//
// Transitions:
//
//	closed    -> open       when the violation streak reaches the threshold
//	open      -> half-open  when a call arrives after the cooldown elapsed
//	half-open -> closed     on trial success
//	half-open -> open       on trial failure
//
// The open -> half-open transition is lazy: the cooldown is a passive
// timestamp comparison performed on the next Evaluate call, there is no
// background timer. The machine has no terminal state and cycles for the
// life of the metric.
type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// String returns the state name used in events, stats, and logs.
func (s breakerState) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// cooldownElapsed reports whether an open record has been open long enough to
// permit a half-open trial. Caller must hold the shard lock.
func (r *record) cooldownElapsed(now time.Time, cooldown time.Duration) bool {
	return now.Sub(r.openedAt) >= cooldown
}

// open moves the record to the open state. Caller must hold the shard write
// lock; the caller is responsible for ensuring only one goroutine performs a
// given transition, which holding the lock guarantees.
func (r *record) open(now time.Time) {
	r.state = stateOpen
	r.openedAt = now
}

// close returns the record to the closed state and resets the violation
// streak. Caller must hold the shard write lock.
func (r *record) close() {
	r.state = stateClosed
	r.streak = 0
	r.openedAt = time.Time{}
}

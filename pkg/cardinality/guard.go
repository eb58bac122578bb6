package cardinality

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Guard is the single entry point for cardinality enforcement. It composes
// the counter, the policy, and the per-metric circuit breakers behind one
// non-blocking Evaluate call.
//
// A Guard is built once per process and shared by reference with every
// instrumented call site. All methods are safe for concurrent use.
type Guard struct {
	config  Config
	counter *counter
	sink    Sink
	now     func() time.Time
	logger  *slog.Logger

	// openCircuits counts metrics whose circuit is currently open, kept in
	// an atomic so monitoring reads never contend with hot-path writers.
	openCircuits atomic.Int64
}

// Option configures optional Guard collaborators.
type Option func(*Guard)

// WithSink sets the warning event sink. Defaults to a LogSink on the default
// logger.
func WithSink(s Sink) Option {
	return func(g *Guard) { g.sink = s }
}

// WithClock overrides the time source, used by tests to control the breaker
// cooldown.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithLogger sets the logger for internal warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

// New creates a Guard. Zero-valued config fields take their defaults;
// invalid thresholds are fatal and prevent the guard from initializing.
func New(config Config, opts ...Option) (*Guard, error) {
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid cardinality config: %w", err)
	}

	g := &Guard{
		config:  config,
		counter: newCounter(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default().With("component", "cardinality")
	}
	if g.sink == nil {
		g.sink = NewLogSink(g.logger)
	}
	return g, nil
}

// Config returns the guard's effective configuration.
func (g *Guard) Config() Config {
	return g.config
}

// Evaluate decides whether a metric may be recorded with the given label set.
// It updates the counters, consults the policy and the metric's circuit
// breaker, and returns the decision. It never blocks and never returns an
// error: violations are data.
//
// Call sites should proceed on Allow and AllowWithWarning, substitute an
// overflow label value on Drop, and skip the sample on CircuitOpenReject.
func (g *Guard) Evaluate(metric string, labels map[string]string) Decision {
	key := Canonicalize(labels)
	sh := g.counter.shardFor(metric)

	// Fast path: a previously accepted combination recurring on a healthy
	// metric. Read-locked, touches no violation state.
	sh.mu.RLock()
	if r, ok := sh.records[metric]; ok && r.state == stateClosed && r.streak == 0 {
		if _, seen := r.combinations[key]; seen {
			sh.mu.RUnlock()
			return Allow
		}
	}
	sh.mu.RUnlock()

	sh.mu.Lock()
	r := sh.getOrCreate(metric)
	decision, events := g.evaluateLocked(r, metric, labels, key)
	sh.mu.Unlock()

	// Events are emitted after the lock is released so a slow sink can
	// never extend the critical section.
	for _, ev := range events {
		g.sink.Emit(ev)
	}
	return decision
}

// evaluateLocked runs the decision algorithm for one recording attempt.
// Caller must hold the shard write lock.
func (g *Guard) evaluateLocked(r *record, metric string, labels map[string]string, key Key) (Decision, []Event) {
	now := g.now()
	var events []Event

	trial := false
	switch r.state {
	case stateOpen:
		if !r.cooldownElapsed(now, g.config.BreakerCooldown) {
			// Rejected without touching the counters.
			return CircuitOpenReject, nil
		}
		r.state = stateHalfOpen
		g.openCircuits.Add(-1)
		events = append(events, g.transitionEvent(metric, r, now))
		trial = true
	case stateHalfOpen:
		trial = true
	}

	isNew := r.observe(labels, key)
	if isNew {
		g.counter.combinations.Add(1)
	}

	// A previously accepted combination recurring must never be penalized,
	// whatever the current counts.
	if !isNew {
		events = g.resolveAllow(r, metric, trial, now, events)
		return Allow, events
	}

	v := g.config.checkBounds(r, labels)
	if v == nil {
		events = g.resolveAllow(r, metric, trial, now, events)
		return Allow, events
	}

	switch g.config.OnViolation {
	case ActionWarn:
		// Recorded and reported, never blocked. Counts as an allow for
		// streak purposes.
		events = append(events, violationEvent(metric, v, AllowWithWarning, now))
		events = g.resolveAllow(r, metric, trial, now, events)
		return AllowWithWarning, events

	case ActionDrop:
		r.streak++
		events = append(events, violationEvent(metric, v, Drop, now))
		if trial {
			events = g.reopen(r, metric, now, events)
		}
		return Drop, events

	case ActionCircuitBreak:
		r.streak++
		events = append(events, violationEvent(metric, v, Drop, now))
		if trial {
			events = g.reopen(r, metric, now, events)
		} else if r.state == stateClosed && r.streak >= g.config.BreakerThreshold {
			r.open(now)
			g.openCircuits.Add(1)
			events = append(events, g.transitionEvent(metric, r, now))
		}
		return Drop, events

	default:
		// Unreachable after config validation. Fail open: losing
		// observability is worse than a temporary cardinality bump.
		g.logger.Warn("unknown violation action, allowing recording",
			"metric", metric,
			"action", string(g.config.OnViolation),
		)
		return Allow, events
	}
}

// resolveAllow applies the state changes common to every allow-class
// decision: the streak resets, and a half-open trial success closes the
// circuit. Caller must hold the shard write lock.
func (g *Guard) resolveAllow(r *record, metric string, trial bool, now time.Time, events []Event) []Event {
	r.streak = 0
	if trial {
		r.close()
		events = append(events, g.transitionEvent(metric, r, now))
	}
	return events
}

// reopen returns a half-open record to the open state after a failed trial,
// refreshing the open timestamp. Caller must hold the shard write lock.
func (g *Guard) reopen(r *record, metric string, now time.Time, events []Event) []Event {
	r.open(now)
	g.openCircuits.Add(1)
	return append(events, g.transitionEvent(metric, r, now))
}

func (g *Guard) transitionEvent(metric string, r *record, now time.Time) Event {
	return Event{
		Metric: metric,
		Kind:   KindTransition,
		State:  r.state.String(),
		Time:   now,
	}
}

func violationEvent(metric string, v *violation, decision Decision, now time.Time) Event {
	return Event{
		Metric:   metric,
		Kind:     KindViolation,
		Label:    v.label,
		Decision: decision,
		Count:    v.count,
		Limit:    v.limit,
		Time:     now,
	}
}

// DistinctValues reports how many distinct values have been observed for one
// label of a metric.
func (g *Guard) DistinctValues(metric, label string) int {
	return g.counter.distinctValues(metric, label)
}

// Combinations reports how many distinct label combinations have been
// observed for a metric.
func (g *Guard) Combinations(metric string) int {
	return g.counter.distinctCombinations(metric)
}

// TotalCombinations returns the distinct combination count across all
// metrics. The read is a single atomic load and never takes a lock.
func (g *Guard) TotalCombinations() int64 {
	return g.counter.combinations.Load()
}

// OpenCircuits returns the number of metrics whose circuit is currently
// open. The read is a single atomic load and never takes a lock.
func (g *Guard) OpenCircuits() int64 {
	return g.openCircuits.Load()
}

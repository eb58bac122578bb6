package cardinality

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// EventKind classifies a warning event.
type EventKind string

const (
	// KindViolation reports a cardinality bound being exceeded.
	KindViolation EventKind = "violation"

	// KindTransition reports a circuit breaker state change.
	KindTransition EventKind = "circuit_transition"
)

// Event is the structured warning the guard emits on a violation or a
// breaker transition. Delivery is fire-and-forget: sinks must never block or
// fail the Evaluate call that produced the event.
type Event struct {
	// Metric is the metric name the event concerns.
	Metric string `json:"metric"`

	// Kind is the event classification.
	Kind EventKind `json:"kind"`

	// Label is the offending label for a per-label violation. Empty when
	// the whole-combination bound tripped or for transitions.
	Label string `json:"label,omitempty"`

	// Decision is the outcome of the triggering Evaluate call.
	Decision Decision `json:"decision,omitempty"`

	// State is the breaker state after a transition.
	State string `json:"state,omitempty"`

	// Count and Limit describe the exceeded bound for violations.
	Count int `json:"count,omitempty"`
	Limit int `json:"limit,omitempty"`

	// Time is when the event occurred.
	Time time.Time `json:"time"`
}

// Sink receives warning events from the guard. Implementations must not
// block: the guard emits from the metric-recording hot path.
type Sink interface {
	Emit(Event)
}

// LogSink writes events to a structured logger. This is the guard's default
// sink.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that logs events at warn level.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "cardinality")}
}

// Emit logs the event.
func (s *LogSink) Emit(ev Event) {
	switch ev.Kind {
	case KindTransition:
		s.logger.Warn("circuit breaker transition",
			"metric", ev.Metric,
			"state", ev.State,
		)
	default:
		s.logger.Warn("cardinality violation",
			"metric", ev.Metric,
			"label", ev.Label,
			"decision", ev.Decision,
			"count", ev.Count,
			"limit", ev.Limit,
		)
	}
}

// FanoutSink delivers each event to every member sink in order.
type FanoutSink []Sink

// Emit delivers the event to all member sinks.
func (f FanoutSink) Emit(ev Event) {
	for _, s := range f {
		s.Emit(ev)
	}
}

// AsyncSink decouples event emission from delivery with a buffered channel
// and a single worker goroutine. When the buffer is full the event is dropped
// and counted rather than blocking the caller, keeping slow downstream sinks
// off the hot path.
type AsyncSink struct {
	next    Sink
	events  chan Event
	dropped atomic.Int64
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewAsyncSink creates an async sink delivering to next with the given buffer
// size. A non-positive buffer defaults to 1000.
func NewAsyncSink(next Sink, buffer int) *AsyncSink {
	if buffer <= 0 {
		buffer = 1000
	}
	s := &AsyncSink{
		next:   next,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

// Emit enqueues the event, dropping it when the buffer is full.
func (s *AsyncSink) Emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns the number of events dropped due to a full buffer.
func (s *AsyncSink) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops the worker after draining buffered events.
func (s *AsyncSink) Close() error {
	close(s.done)
	s.wg.Wait()
	return nil
}

func (s *AsyncSink) worker() {
	defer s.wg.Done()

	for {
		select {
		case ev := <-s.events:
			s.next.Emit(ev)
		case <-s.done:
			// Drain remaining events before exiting.
			for {
				select {
				case ev := <-s.events:
					s.next.Emit(ev)
				default:
					return
				}
			}
		}
	}
}

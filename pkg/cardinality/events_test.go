package cardinality

import (
	"sync"
	"testing"
	"time"
)

// blockingSink holds every delivery until released, to prove AsyncSink never
// blocks its caller.
type blockingSink struct {
	release chan struct{}
	mu      sync.Mutex
	seen    int
}

func (s *blockingSink) Emit(Event) {
	<-s.release
	s.mu.Lock()
	s.seen++
	s.mu.Unlock()
}

func (s *blockingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen
}

func TestAsyncSink_NeverBlocks(t *testing.T) {
	blocked := &blockingSink{release: make(chan struct{})}
	sink := NewAsyncSink(blocked, 2)

	// The worker takes one event and blocks inside Emit; two more fill the
	// buffer; everything beyond that is dropped, not blocked on.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			sink.Emit(Event{Metric: "m", Kind: KindViolation, Time: time.Now()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a slow downstream sink")
	}

	if sink.Dropped() == 0 {
		t.Error("Expected dropped events with a full buffer, got 0")
	}

	close(blocked.release)
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestAsyncSink_DeliversAndDrains(t *testing.T) {
	capture := &captureSink{}
	sink := NewAsyncSink(capture, 100)

	for i := 0; i < 10; i++ {
		sink.Emit(Event{Metric: "m", Kind: KindViolation, Time: time.Now()})
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if got := len(capture.byKind(KindViolation)); got != 10 {
		t.Errorf("Expected 10 delivered events after drain, got %d", got)
	}
	if sink.Dropped() != 0 {
		t.Errorf("Expected no drops, got %d", sink.Dropped())
	}
}

func TestFanoutSink_DeliversToAll(t *testing.T) {
	a := &captureSink{}
	b := &captureSink{}
	fanout := FanoutSink{a, b}

	fanout.Emit(Event{Metric: "m", Kind: KindTransition, State: "open", Time: time.Now()})

	if len(a.byKind(KindTransition)) != 1 {
		t.Error("Expected first sink to receive the event")
	}
	if len(b.byKind(KindTransition)) != 1 {
		t.Error("Expected second sink to receive the event")
	}
}

func TestGuard_EmitsThroughAsyncSink(t *testing.T) {
	capture := &captureSink{}
	async := NewAsyncSink(capture, 100)

	guard, err := New(
		Config{MaxValuesPerLabel: 1, OnViolation: ActionWarn},
		WithSink(async),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	guard.Evaluate("m", map[string]string{"l": "a"})
	guard.Evaluate("m", map[string]string{"l": "b"})

	if err := async.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if got := len(capture.byKind(KindViolation)); got != 1 {
		t.Errorf("Expected 1 violation event through async sink, got %d", got)
	}
}

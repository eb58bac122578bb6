package cardinality

import (
	"sync"
	"sync/atomic"
	"time"
)

// shardCount is the number of lock stripes in the counter. 64 keeps
// contention negligible at production call rates without wasting memory on
// small deployments.
const shardCount = 64

// record holds everything the guard tracks for one metric name: the
// distinct-value sets, the distinct-combination set, and the circuit breaker
// state. A record is created lazily on the first recording attempt and lives
// for the rest of the process. All fields are guarded by the owning shard's
// lock.
type record struct {
	// labelValues maps each label name to the set of distinct values
	// observed for it across all recordings of this metric.
	labelValues map[string]map[string]struct{}

	// combinations is the set of canonical label combinations observed.
	combinations map[Key]struct{}

	// streak counts consecutive violations since the last allow.
	streak int

	// Breaker state. openedAt is set on transition to open and cleared on
	// return to closed.
	state    breakerState
	openedAt time.Time
}

// observe adds the label values and the combination into the record's sets.
// Each insertion is an idempotent set-add. It reports whether the combination
// is new; the policy depends on this to avoid penalizing already-seen,
// legitimately repeating combinations. Caller must hold the shard write lock.
func (r *record) observe(labels map[string]string, key Key) bool {
	for name, value := range labels {
		values, ok := r.labelValues[name]
		if !ok {
			values = make(map[string]struct{})
			r.labelValues[name] = values
		}
		values[value] = struct{}{}
	}

	if _, ok := r.combinations[key]; ok {
		return false
	}
	r.combinations[key] = struct{}{}
	return true
}

// shard is one lock stripe of the counter.
type shard struct {
	mu      sync.RWMutex
	records map[string]*record
}

// getOrCreate returns the record for metric, creating it lazily.
// Caller must hold the shard write lock.
func (s *shard) getOrCreate(metric string) *record {
	r, ok := s.records[metric]
	if !ok {
		r = &record{
			labelValues:  make(map[string]map[string]struct{}),
			combinations: make(map[Key]struct{}),
		}
		s.records[metric] = r
	}
	return r
}

// counter is the sharded, process-wide store of per-metric cardinality
// records. It strictly accumulates and reports; rejection is the policy's
// job, never the counter's. Sizes are monotonically non-decreasing, there is
// no eviction.
type counter struct {
	shards [shardCount]shard

	// combinations is the global distinct-combination total, kept in an
	// atomic so summary reads never take shard locks.
	combinations atomic.Int64
}

func newCounter() *counter {
	c := &counter{}
	for i := range c.shards {
		c.shards[i].records = make(map[string]*record)
	}
	return c
}

func (c *counter) shardFor(metric string) *shard {
	return &c.shards[shardIndex(metric)]
}

// distinctValues reports how many distinct values have been observed for one
// label of a metric. It never mutates state.
func (c *counter) distinctValues(metric, label string) int {
	s := c.shardFor(metric)
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[metric]
	if !ok {
		return 0
	}
	return len(r.labelValues[label])
}

// distinctCombinations reports how many distinct label combinations have been
// observed for a metric. It never mutates state.
func (c *counter) distinctCombinations(metric string) int {
	s := c.shardFor(metric)
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[metric]
	if !ok {
		return 0
	}
	return len(r.combinations)
}

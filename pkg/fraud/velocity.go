package fraud

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// velocityTracker counts recent transactions per card over a sliding window.
// Cards are held in a bounded LRU so the tracker itself cannot leak memory
// under an unbounded card population; evicting a cold card merely forgets
// history the window would soon expire anyway.
type velocityTracker struct {
	cards *lru.Cache[string, *cardWindow]
}

// cardWindow holds one card's recent transaction times.
type cardWindow struct {
	mu    sync.Mutex
	times []time.Time
}

func newVelocityTracker(size int) (*velocityTracker, error) {
	cards, err := lru.New[string, *cardWindow](size)
	if err != nil {
		return nil, err
	}
	return &velocityTracker{cards: cards}, nil
}

// observe records a transaction for the card at the given time and returns
// how many transactions the card has made within the window, including this
// one.
func (v *velocityTracker) observe(cardID string, now time.Time, window time.Duration) int {
	w, ok := v.cards.Get(cardID)
	if !ok {
		w = &cardWindow{}
		// On a racing first insert one goroutine's window wins; the
		// loser's single observation is at most a one-off undercount.
		if prev, found, _ := v.cards.PeekOrAdd(cardID, w); found {
			w = prev
		}
	}

	cutoff := now.Add(-window)

	w.mu.Lock()
	defer w.mu.Unlock()

	// Expire observations that slid out of the window.
	kept := w.times[:0]
	for _, t := range w.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.times = append(kept, now)

	return len(w.times)
}

package market

import (
	"sync"
	"time"
)

const (
	// only every sampleEvery-th observation of an item is kept
	sampleEvery = 5
	// number of samples kept per item
	changeHistory = 5
)

// Change is one sampled last price.
type Change struct {
	Timestamp int64 `json:"timestamp"` // unix milliseconds
	LastPrice int64 `json:"lastPrice"`
}

// ChangeTracker keeps a short history of last prices per item.
type ChangeTracker struct {
	mu       sync.Mutex
	counters map[string]int
	changes  map[string][]Change
}

func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{
		counters: make(map[string]int),
		changes:  make(map[string][]Change),
	}
}

// Record counts one observation of every quote; on each item's fifth
// observation its last price is appended and the history trimmed to the newest entries.
func (t *ChangeTracker) Record(quotes map[string]Quote, at time.Time) {
	ts := at.UnixMilli()

	t.mu.Lock()
	defer t.mu.Unlock()

	for id, q := range quotes {
		t.counters[id]++
		if t.counters[id] < sampleEvery {
			continue
		}
		t.counters[id] = 0

		last := q.High
		if q.LowTime > q.HighTime {
			last = q.Low
		}

		history := append(t.changes[id], Change{Timestamp: ts, LastPrice: last})
		if len(history) > changeHistory {
			history = history[len(history)-changeHistory:]
		}
		t.changes[id] = history
	}
}

// Snapshot returns a copy of the recorded changes.
func (t *ChangeTracker) Snapshot() map[string][]Change {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string][]Change, len(t.changes))
	for id, history := range t.changes {
		cp := make([]Change, len(history))
		copy(cp, history)
		out[id] = cp
	}
	return out
}

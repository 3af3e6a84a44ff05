// Package progress tracks per-document recognition progress.
package progress

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long a document's progress stays readable after its
// last update.
const DefaultTTL = 15 * time.Minute

// Tracker holds one percentage per document id. Values are clamped to 0..100
// and never move backwards within a run, so concurrent recognitions cannot
// clobber each other's progress. Entries expire ttl after their last update.
type Tracker struct {
	mu      sync.Mutex
	percent *gocache.Cache
}

func NewTracker() *Tracker {
	return NewTrackerWithTTL(DefaultTTL)
}

func NewTrackerWithTTL(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{percent: gocache.New(ttl, 2*ttl)}
}

// Set records progress for id and returns the stored value.
func (t *Tracker) Set(id string, percent int) int {
	percent = min(max(percent, 0), 100)

	t.mu.Lock()
	defer t.mu.Unlock()

	if current, ok := t.get(id); ok && current >= percent {
		return current
	}
	t.percent.SetDefault(id, percent)
	return percent
}

// Reset starts a new run for id at 0, discarding what an earlier run left.
func (t *Tracker) Reset(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.percent.SetDefault(id, 0)
}

func (t *Tracker) Get(id string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.get(id)
}

func (t *Tracker) get(id string) (int, bool) {
	val, found := t.percent.Get(id)
	if !found {
		return 0, false
	}
	return val.(int), true
}

// Snapshot copies the unexpired entries.
func (t *Tracker) Snapshot() map[string]int {
	items := t.percent.Items()
	out := make(map[string]int, len(items))
	for id, item := range items {
		out[id] = item.Object.(int)
	}
	return out
}

func (t *Tracker) Remove(id string) {
	t.percent.Delete(id)
}

// Reporter returns a callback that records progress for id.
func (t *Tracker) Reporter(id string) func(int) {
	return func(percent int) {
		t.Set(id, percent)
	}
}

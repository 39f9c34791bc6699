package utils

import "sync"

// DedupTracker tracks composite record keys to drop listings repeated
// across pages, cities and previous runs. Insert-only.
type DedupTracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDedupTracker creates an empty tracker
func NewDedupTracker() *DedupTracker {
	return &DedupTracker{seen: make(map[string]struct{})}
}

// Seed marks keys from previously persisted output as already seen.
func (t *DedupTracker) Seed(keys []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, k := range keys {
		t.seen[k] = struct{}{}
	}
}

// Contains reports whether the key has been seen.
func (t *DedupTracker) Contains(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.seen[key]
	return ok
}

// Add returns true if the key is new (not seen before), false if duplicate
func (t *DedupTracker) Add(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.seen[key]; exists {
		return false
	}
	t.seen[key] = struct{}{}
	return true
}

// Count returns the number of tracked keys
func (t *DedupTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

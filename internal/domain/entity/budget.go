package entity

import "sync"

type ResourceKind string

const (
	ResourceSearches    ResourceKind = "searches"
	ResourceScreenshots ResourceKind = "screenshots"
)

const (
	DefaultMaxSearches    = 5
	DefaultMaxScreenshots = 5
)

// ResourceBudget caps costly tool usage per agent session. An attempt counts
// whether or not the underlying call succeeds. Created fresh per invocation,
// never shared across sessions, but tool calls within one turn run
// concurrently, so the counters are mutex-guarded.
type ResourceBudget struct {
	mu              sync.Mutex
	maxSearches     int
	maxScreenshots  int
	searchesUsed    int
	screenshotsUsed int
}

func NewResourceBudget(maxSearches, maxScreenshots int) *ResourceBudget {
	return &ResourceBudget{
		maxSearches:    maxSearches,
		maxScreenshots: maxScreenshots,
	}
}

func DefaultResourceBudget() *ResourceBudget {
	return NewResourceBudget(DefaultMaxSearches, DefaultMaxScreenshots)
}

func (b *ResourceBudget) Remaining(kind ResourceKind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch kind {
	case ResourceSearches:
		return b.maxSearches - b.searchesUsed
	case ResourceScreenshots:
		return b.maxScreenshots - b.screenshotsUsed
	}
	return 0
}

// Consume records one attempt. It is a no-op once the cap is reached, so the
// counters never exceed their maxima.
func (b *ResourceBudget) Consume(kind ResourceKind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch kind {
	case ResourceSearches:
		if b.searchesUsed < b.maxSearches {
			b.searchesUsed++
		}
	case ResourceScreenshots:
		if b.screenshotsUsed < b.maxScreenshots {
			b.screenshotsUsed++
		}
	}
}

func (b *ResourceBudget) Used(kind ResourceKind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch kind {
	case ResourceSearches:
		return b.searchesUsed
	case ResourceScreenshots:
		return b.screenshotsUsed
	}
	return 0
}

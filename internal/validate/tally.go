package validate

import (
	"sync"

	"github.com/kestrelgs/kestrel/internal/gds"
)

// Tally keeps running counts of a categorical field across incoming items,
// independent of the drop and latency bookkeeping. The dashboard uses one to
// count event severities.
type Tally struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewTally creates a Tally seeded with the given classes. Seeding makes the
// zero counts visible before any item arrives.
func NewTally(classes ...string) *Tally {
	counts := make(map[string]int64, len(classes))
	for _, class := range classes {
		counts[class] = 0
	}
	return &Tally{counts: counts}
}

// Add increments the count for one class.
func (t *Tally) Add(class string) {
	t.mu.Lock()
	t.counts[class]++
	t.mu.Unlock()
}

// Count returns the running count for one class.
func (t *Tally) Count(class string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[class]
}

// Counts returns a copy of all running counts.
func (t *Tally) Counts() map[string]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	dup := make(map[string]int64, len(t.counts))
	for class, n := range t.counts {
		dup[class] = n
	}
	return dup
}

// WrapTally returns a handler that tallies each item's class and forwards the
// batch unchanged. It composes with Wrap on the same handler chain.
func WrapTally[T any](t *Tally, classify func(T) string, next func(gds.History[T])) func(gds.History[T]) {
	return func(batch gds.History[T]) {
		for _, item := range batch.Items {
			t.Add(classify(item))
		}
		next(batch)
	}
}

package poll

import (
	"sync"
	"time"
)

// Source is the scheduling descriptor for one polled category. All mutation
// happens on the source's own poll loop; readers (the validator, the UI) go
// through the locked accessors.
type Source struct {
	name string

	mu       sync.Mutex
	interval time.Duration
	inFlight bool
	queued   bool
	last     time.Duration
	hasLast  bool
}

// Name returns the category name this source polls.
func (s *Source) Name() string {
	return s.name
}

// Interval returns the current polling cadence.
func (s *Source) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// InFlight reports whether a fetch is currently outstanding.
func (s *Source) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Queued reports whether a re-fetch has been coalesced behind the outstanding
// request.
func (s *Source) Queued() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queued
}

// Last returns the round-trip time of the most recently completed fetch. The
// second return is false until one fetch has completed.
func (s *Source) Last() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

func (s *Source) setInterval(d time.Duration) {
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
}

// beginFetch marks the source busy and clears any coalesced request.
func (s *Source) beginFetch() {
	s.mu.Lock()
	s.inFlight = true
	s.queued = false
	s.mu.Unlock()
}

// markQueued coalesces a tick that arrived while a fetch was outstanding.
// At most one re-fetch is ever pending, no matter how many ticks elapse.
func (s *Source) markQueued() {
	s.mu.Lock()
	s.queued = true
	s.mu.Unlock()
}

// endFetch records the completed round trip and reports whether a coalesced
// re-fetch should be issued immediately.
func (s *Source) endFetch(elapsed time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = elapsed
	s.hasLast = true
	s.inFlight = false
	requeue := s.queued
	s.queued = false
	return requeue
}

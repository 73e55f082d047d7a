package history

import (
	"sync"
	"time"
)

// Consumer receives incremental updates from a Store. Implementations should
// be pointer-typed so registration identity is well defined.
type Consumer[T any] interface {
	Send(items []T)
}

// FaultFunc receives consumer faults recovered during fan-out.
type FaultFunc func(source string, fault any)

// Policy selects how a Store reconciles incoming items into its canonical
// contents. It is fixed at construction time.
type Policy int

const (
	// AppendBounded appends in arrival order and trims the oldest items
	// once the configured limit is exceeded.
	AppendBounded Policy = iota
	// FullReplace discards the current contents on every update.
	FullReplace
	// KeyedLatest keeps the newest record per key, rejecting updates older
	// than the stored one.
	KeyedLatest
)

// defaultActivityWindow is how long the activity flag stays set after an
// update with no further data.
const defaultActivityWindow = 3 * time.Second

// Store is the canonical in-memory container for one data category. It is
// written only from the category's poll loop and read from anywhere.
type Store[T any] struct {
	name   string
	policy Policy
	limit  int
	key    func(T) string
	stamp  func(T) time.Time

	mu        sync.RWMutex
	items     []T
	index     map[string]int
	consumers []Consumer[T]
	onFault   FaultFunc

	activityWindow time.Duration
	activeMu       sync.Mutex
	active         bool
	activeTimer    *time.Timer
}

// NewAppend creates an append-bounded store. A limit of zero means unbounded.
func NewAppend[T any](name string, limit int) *Store[T] {
	return &Store[T]{
		name:           name,
		policy:         AppendBounded,
		limit:          limit,
		activityWindow: defaultActivityWindow,
	}
}

// NewReplace creates a full-replace store.
func NewReplace[T any](name string) *Store[T] {
	return &Store[T]{
		name:           name,
		policy:         FullReplace,
		activityWindow: defaultActivityWindow,
	}
}

// NewKeyed creates a last-writer-wins store keyed by key and ordered per key
// by stamp.
func NewKeyed[T any](name string, key func(T) string, stamp func(T) time.Time) *Store[T] {
	return &Store[T]{
		name:           name,
		policy:         KeyedLatest,
		key:            key,
		stamp:          stamp,
		index:          make(map[string]int),
		activityWindow: defaultActivityWindow,
	}
}

// Name returns the category name.
func (s *Store[T]) Name() string {
	return s.name
}

// SetFaultReporter routes consumer faults recovered during fan-out. Without
// one, faults are swallowed silently.
func (s *Store[T]) SetFaultReporter(fn FaultFunc) {
	s.mu.Lock()
	s.onFault = fn
	s.mu.Unlock()
}

// SetActivityWindow adjusts how long the activity flag lingers after an
// update. Zero or negative disables the flag.
func (s *Store[T]) SetActivityWindow(d time.Duration) {
	s.activeMu.Lock()
	s.activityWindow = d
	s.activeMu.Unlock()
}

// Register adds a consumer. Adding a consumer twice is a no-op; delivery
// order is registration order.
func (s *Store[T]) Register(c Consumer[T]) {
	if c == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.consumers {
		if existing == c {
			return
		}
	}
	s.consumers = append(s.consumers, c)
}

// Deregister removes a consumer. Removing an unknown consumer is a no-op.
func (s *Store[T]) Deregister(c Consumer[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.consumers {
		if existing == c {
			s.consumers = append(s.consumers[:i], s.consumers[i+1:]...)
			return
		}
	}
}

// Push reconciles incoming items under the store's policy, then fans the
// accepted delta out to every registered consumer. The canonical mutation
// completes, atomically, before any consumer runs.
func (s *Store[T]) Push(items []T) {
	s.mu.Lock()
	var delta []T
	switch s.policy {
	case AppendBounded:
		delta = items
		s.items = append(s.items, items...)
		if s.limit > 0 {
			if overflow := len(s.items) - s.limit; overflow > 0 {
				s.items = append([]T(nil), s.items[overflow:]...)
			}
		}
	case FullReplace:
		delta = items
		s.items = append([]T(nil), items...)
	case KeyedLatest:
		delta = s.mergeKeyed(items)
	}
	consumers := append([]Consumer[T](nil), s.consumers...)
	s.mu.Unlock()

	if len(delta) > 0 {
		s.markActive()
	}
	// A full replacement is meaningful even when empty (the set was
	// cleared); the other policies have nothing to say about an empty
	// delta.
	if len(delta) == 0 && s.policy != FullReplace {
		return
	}
	for _, c := range consumers {
		s.deliver(c, delta)
	}
}

// mergeKeyed applies last-writer-wins per key. Callers hold s.mu.
func (s *Store[T]) mergeKeyed(items []T) []T {
	var accepted []T
	for _, item := range items {
		k := s.key(item)
		pos, ok := s.index[k]
		if ok && s.stamp(item).Before(s.stamp(s.items[pos])) {
			// Older than the stored record for this key; a late
			// arrival must never overwrite newer data.
			continue
		}
		if ok {
			s.items[pos] = item
		} else {
			s.index[k] = len(s.items)
			s.items = append(s.items, item)
		}
		accepted = append(accepted, item)
	}
	return accepted
}

// deliver runs one consumer, isolating its faults so the remaining consumers
// still receive the update. A faulty consumer stays registered.
func (s *Store[T]) deliver(c Consumer[T], items []T) {
	defer func() {
		if r := recover(); r != nil {
			s.mu.RLock()
			onFault := s.onFault
			s.mu.RUnlock()
			if onFault != nil {
				onFault(s.name, r)
			}
		}
	}()
	c.Send(items)
}

// Items returns a copy of the canonical contents in store order.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return nil
	}
	dup := make([]T, len(s.items))
	copy(dup, s.items)
	return dup
}

// Len returns the canonical length.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Active reports whether data has flowed recently. This is a best-effort
// liveness indicator, not a correctness mechanism.
func (s *Store[T]) Active() bool {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	return s.active
}

func (s *Store[T]) markActive() {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	if s.activityWindow <= 0 {
		return
	}
	s.active = true
	if s.activeTimer != nil {
		s.activeTimer.Stop()
	}
	s.activeTimer = time.AfterFunc(s.activityWindow, func() {
		s.activeMu.Lock()
		s.active = false
		s.activeMu.Unlock()
	})
}

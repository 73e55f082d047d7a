package validate

import (
	"fmt"
	"sync"
	"time"

	"github.com/kestrelgs/kestrel/internal/gds"
	"github.com/kestrelgs/kestrel/internal/poll"
)

const (
	// latencyWindow is the wall-clock span the rolling round-trip samples
	// should cover at the category's current polling interval.
	latencyWindow = 5 * time.Minute

	// stallThreshold is how long a category must stay behind its cadence
	// before one error is logged and the marker resets.
	stallThreshold = 5 * time.Second
)

// TimingSource supplies round-trip timing for one category. *poll.Source
// satisfies it.
type TimingSource interface {
	Last() (time.Duration, bool)
	Interval() time.Duration
}

// Health is a read-only snapshot of one category's link quality.
type Health struct {
	Received      int64
	SeenCount     int64 // -1 when the server reports no counter
	Dropped       int64
	FallingBehind bool
	MeanLatency   time.Duration
	Samples       int
}

type category struct {
	src TimingSource

	received     int64
	seen         int64
	hasSeen      bool
	dropped      int64
	samples      []time.Duration
	fallingSince time.Time
}

// Validator audits every polled response before the synchronizer sees it:
// it derives dropped-item counts from the server's seen counter, folds
// server-reported errors into the rolling log, and watches round-trip timing
// for categories falling behind their cadence.
type Validator struct {
	log *Log

	mu         sync.Mutex
	categories map[string]*category
	now        func() time.Time
}

// New creates a Validator around the given rolling log.
func New(log *Log) *Validator {
	if log == nil {
		log = NewLog()
	}
	return &Validator{
		log:        log,
		categories: make(map[string]*category),
		now:        time.Now,
	}
}

// Log returns the rolling error log the validator writes to.
func (v *Validator) Log() *Log {
	return v.log
}

// Wrap returns a handler that audits each response for the category and then
// forwards it, unchanged, to next. Bind the category's timing source with
// BindSource once registration has produced one; until then the timing and
// stall checks are skipped, which lines up with the first-cycle rule anyway.
func Wrap[T any](v *Validator, name string, next func(gds.History[T])) func(gds.History[T]) {
	v.track(name, nil)
	return func(batch gds.History[T]) {
		v.observe(name, len(batch.Items), batch.SeenCount, batch.HasSeenCount(), batch.Errors)
		next(batch)
	}
}

// BindSource attaches round-trip timing for a category.
func (v *Validator) BindSource(name string, src TimingSource) {
	v.track(name, src)
}

// ErrorHandler returns the function to bind as the scheduler's error handler.
// A transport failure updates the category's timing window and lands in the
// rolling log; it never interrupts polling.
func (v *Validator) ErrorHandler() poll.ErrorHandler {
	return func(source string, err error) {
		v.mu.Lock()
		if c, ok := v.categories[source]; ok {
			v.updateTiming(source, c)
		}
		v.mu.Unlock()
		v.log.Append(source, err.Error())
	}
}

// ConsumerFault records a fan-out consumer failure against the rolling log.
func (v *Validator) ConsumerFault(source string, fault any) {
	v.log.Append(source, fmt.Sprintf("consumer fault: %v", fault))
}

// Health returns the current link snapshot for a category. The zero Health
// is returned for unknown categories.
func (v *Validator) Health(name string) Health {
	v.mu.Lock()
	defer v.mu.Unlock()
	c, ok := v.categories[name]
	if !ok {
		return Health{SeenCount: -1}
	}
	h := Health{
		Received:      c.received,
		SeenCount:     -1,
		Dropped:       c.dropped,
		FallingBehind: !c.fallingSince.IsZero(),
		Samples:       len(c.samples),
	}
	if c.hasSeen {
		h.SeenCount = c.seen
	}
	if len(c.samples) > 0 {
		var total time.Duration
		for _, d := range c.samples {
			total += d
		}
		h.MeanLatency = total / time.Duration(len(c.samples))
	}
	return h
}

func (v *Validator) track(name string, src TimingSource) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if c, ok := v.categories[name]; ok {
		if src != nil {
			c.src = src
		}
		return
	}
	v.categories[name] = &category{src: src}
}

func (v *Validator) observe(name string, count int, seen int64, hasSeen bool, errs []string) {
	v.mu.Lock()
	c, ok := v.categories[name]
	if !ok {
		c = &category{}
		v.categories[name] = c
	}

	c.received += int64(count)
	if hasSeen {
		// The server's counter is authoritative: anything it counted but
		// never delivered was discarded upstream.
		c.seen = seen
		c.hasSeen = true
		c.dropped = seen - c.received
		if c.dropped < 0 {
			c.dropped = 0
		}
	}
	// Without a server counter the local count is trusted and the dropped
	// metric stays zero. "Unknown" and "zero" are indistinguishable here.

	v.updateTiming(name, c)
	v.mu.Unlock()

	for _, msg := range errs {
		v.log.Append(name, msg)
	}
}

// updateTiming pushes the source's last round trip into the rolling window
// and runs stall detection. Callers hold v.mu.
func (v *Validator) updateTiming(name string, c *category) {
	if c.src == nil {
		return
	}
	last, ok := c.src.Last()
	if !ok {
		// First completion for this category: no prior round trip yet.
		return
	}

	interval := c.src.Interval()
	if interval <= 0 {
		return
	}

	// Size the window to cover latencyWindow of wall-clock time at the
	// current cadence; recomputed every cycle so interval changes take
	// effect immediately.
	limit := int(latencyWindow / interval)
	if limit < 1 {
		limit = 1
	}
	c.samples = append(c.samples, last)
	if overflow := len(c.samples) - limit; overflow > 0 {
		c.samples = append([]time.Duration(nil), c.samples[overflow:]...)
	}

	now := v.now()
	if last <= interval {
		c.fallingSince = time.Time{}
		return
	}
	if c.fallingSince.IsZero() {
		c.fallingSince = now
		return
	}
	if now.Sub(c.fallingSince) >= stallThreshold {
		v.log.Append(name, fmt.Sprintf("falling behind: round trip %v exceeds %v polling interval", last.Round(time.Millisecond), interval))
		c.fallingSince = time.Time{}
	}
}

package poll

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultInterval = time.Second

// ErrorHandler receives transport failures. Failures never stop a source's
// cadence; the next tick retries unconditionally.
type ErrorHandler func(source string, err error)

// runner performs a fetch and, on success, returns the delivery closure that
// hands the decoded payload to the category's handler chain. The fetch runs on
// a worker goroutine; delivery always happens back on the source's loop so
// per-category handler order matches request-issue order.
type runner func(ctx context.Context) (deliver func(), err error)

type update struct {
	interval time.Duration
	run      runner
	onError  ErrorHandler
}

type completion struct {
	deliver func()
	elapsed time.Duration
	err     error
}

type entry struct {
	src      *Source
	ctx      context.Context
	cancel   context.CancelFunc
	reconfig chan update
}

// Scheduler owns the polling cadence for every registered source and
// guarantees at most one in-flight request per source at any time.
type Scheduler struct {
	ctx   context.Context
	group errgroup.Group

	mu      sync.Mutex
	entries map[string]*entry
}

// New creates a Scheduler. All poll loops stop when ctx is cancelled.
func New(ctx context.Context) *Scheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Scheduler{
		ctx:     ctx,
		entries: make(map[string]*entry),
	}
}

// Register establishes a repeating fetch for the named source, issuing the
// first request immediately. Registering an existing name live-updates the
// cadence and handlers without cancelling an outstanding request.
func Register[T any](s *Scheduler, name string, interval time.Duration, fetch func(context.Context) (T, error), handler func(T), onError ErrorHandler) *Source {
	run := func(ctx context.Context) (func(), error) {
		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return func() { handler(data) }, nil
	}
	return s.register(name, interval, run, onError)
}

func (s *Scheduler) register(name string, interval time.Duration, run runner, onError ErrorHandler) *Source {
	if interval <= 0 {
		interval = defaultInterval
	}
	upd := update{interval: interval, run: run, onError: onError}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[name]; ok {
		// Replace any pending reconfiguration; only the latest matters.
		select {
		case <-e.reconfig:
		default:
		}
		e.reconfig <- upd
		return e.src
	}

	ctx, cancel := context.WithCancel(s.ctx)
	e := &entry{
		src:      &Source{name: name},
		ctx:      ctx,
		cancel:   cancel,
		reconfig: make(chan update, 1),
	}
	s.entries[name] = e
	s.group.Go(func() error {
		s.loop(e, upd)
		return nil
	})
	return e.src
}

// Source returns the descriptor for a registered source, or nil.
func (s *Scheduler) Source(name string) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[name]; ok {
		return e.src
	}
	return nil
}

// Stop clears the named source's timer. An outstanding request is not
// aborted; its response is still delivered before the loop exits.
func (s *Scheduler) Stop(name string) {
	s.mu.Lock()
	e, ok := s.entries[name]
	if ok {
		delete(s.entries, name)
	}
	s.mu.Unlock()
	if ok {
		e.cancel()
	}
}

// Wait blocks until every poll loop has drained. Loops exit when the
// scheduler's context is cancelled or their source is stopped.
func (s *Scheduler) Wait() error {
	return s.group.Wait()
}

func (s *Scheduler) loop(e *entry, cfg update) {
	e.src.setInterval(cfg.interval)
	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	done := make(chan completion, 1)

	// Prime the store before the first tick, mirroring an initial refresh.
	launch(e, cfg, done)

	for {
		select {
		case <-e.ctx.Done():
			if e.src.InFlight() {
				res := <-done
				deliver(e, cfg, res)
				e.src.endFetch(res.elapsed)
			}
			return

		case upd := <-e.reconfig:
			cfg = upd
			e.src.setInterval(upd.interval)
			ticker.Reset(upd.interval)

		case <-ticker.C:
			if e.src.InFlight() {
				e.src.markQueued()
				continue
			}
			launch(e, cfg, done)

		case res := <-done:
			deliver(e, cfg, res)
			if requeue := e.src.endFetch(res.elapsed); requeue && e.ctx.Err() == nil {
				launch(e, cfg, done)
			}
		}
	}
}

func launch(e *entry, cfg update, done chan completion) {
	e.src.beginFetch()
	run := cfg.run
	ctx := e.ctx
	go func() {
		start := time.Now()
		fn, err := run(ctx)
		done <- completion{deliver: fn, elapsed: time.Since(start), err: err}
	}()
}

// deliver invokes exactly one of the handler pair for a completed fetch. It
// runs before the round trip is recorded, so handlers observing Source.Last
// see the previous cycle's timing.
func deliver(e *entry, cfg update, res completion) {
	if res.err != nil {
		if cfg.onError != nil {
			cfg.onError(e.src.name, res.err)
		}
		return
	}
	if res.deliver != nil {
		res.deliver()
	}
}

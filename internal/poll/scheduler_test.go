package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fetchRecorder counts fetch starts and tracks how many run concurrently.
type fetchRecorder struct {
	mu         sync.Mutex
	starts     []time.Time
	inFlight   int32
	maxFlight  int32
	sleepEach  time.Duration
	sleepFirst time.Duration
}

func (f *fetchRecorder) fetch(ctx context.Context) (int, error) {
	now := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		max := atomic.LoadInt32(&f.maxFlight)
		if now <= max || atomic.CompareAndSwapInt32(&f.maxFlight, max, now) {
			break
		}
	}

	f.mu.Lock()
	n := len(f.starts)
	f.starts = append(f.starts, time.Now())
	f.mu.Unlock()

	sleep := f.sleepEach
	if n == 0 && f.sleepFirst > 0 {
		sleep = f.sleepFirst
	}
	if sleep > 0 {
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
		}
	}
	return n, nil
}

func (f *fetchRecorder) startTimes() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.starts...)
}

func TestScheduler_SingleFlightAndCoalescing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	// Every fetch outlasts several ticks; queued ticks must coalesce into
	// at most one immediate re-fetch each.
	rec := &fetchRecorder{sleepEach: 35 * time.Millisecond}
	var handled atomic.Int32

	s := New(ctx)
	Register(s, "events", 10*time.Millisecond, rec.fetch, func(int) {
		handled.Add(1)
	}, nil)

	time.Sleep(200 * time.Millisecond)
	cancel()
	if err := s.Wait(); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}

	if max := atomic.LoadInt32(&rec.maxFlight); max != 1 {
		t.Fatalf("max concurrent fetches = %d, want 1", max)
	}
	starts := rec.startTimes()
	// Back-to-back 35ms fetches over 200ms: roughly six starts; far fewer
	// than the twenty the 10ms cadence would issue without coalescing.
	if len(starts) < 3 || len(starts) > 9 {
		t.Fatalf("fetch starts = %d, want back-to-back pacing (3..9)", len(starts))
	}
	if got := int(handled.Load()); got == 0 || got > len(starts) {
		t.Fatalf("handled = %d with %d starts", got, len(starts))
	}
}

func TestScheduler_QueuedRefetchIsImmediate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	// First fetch spans one tick (at 50ms); the coalesced re-fetch must
	// begin when the first completes (~75ms), not at the next tick (100ms).
	rec := &fetchRecorder{sleepFirst: 75 * time.Millisecond}

	s := New(ctx)
	Register(s, "events", 50*time.Millisecond, rec.fetch, func(int) {}, nil)

	time.Sleep(95 * time.Millisecond)
	cancel()
	_ = s.Wait()

	starts := rec.startTimes()
	if len(starts) < 2 {
		t.Fatalf("fetch starts = %d, want at least 2", len(starts))
	}
	gap := starts[1].Sub(starts[0])
	if gap < 70*time.Millisecond || gap > 92*time.Millisecond {
		t.Fatalf("second fetch after %v, want immediately after the 75ms first fetch", gap)
	}
}

func TestScheduler_ErrorHandlerKeepsPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var fails atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		return 0, errors.New("connection refused")
	}

	s := New(ctx)
	Register(s, "channels", 10*time.Millisecond, fetch, func(int) {
		t.Error("handler called for failed fetch")
	}, func(source string, err error) {
		if source != "channels" {
			t.Errorf("error source = %q, want channels", source)
		}
		fails.Add(1)
	})

	time.Sleep(60 * time.Millisecond)
	cancel()
	_ = s.Wait()

	if n := fails.Load(); n < 3 {
		t.Fatalf("error handler calls = %d, want repeated retries", n)
	}
}

func TestScheduler_ReRegisterUpdatesInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rec := &fetchRecorder{}

	s := New(ctx)
	src := Register(s, "stats", 250*time.Millisecond, rec.fetch, func(int) {}, nil)
	if got := src.Interval(); got != 250*time.Millisecond {
		t.Fatalf("interval = %v, want 250ms", got)
	}

	again := Register(s, "stats", 10*time.Millisecond, rec.fetch, func(int) {}, nil)
	if again != src {
		t.Fatal("re-registration created a second source")
	}

	time.Sleep(80 * time.Millisecond)
	cancel()
	_ = s.Wait()

	if got := src.Interval(); got != 10*time.Millisecond {
		t.Fatalf("interval after re-register = %v, want 10ms", got)
	}
	// One immediate fetch plus the faster cadence; the original 250ms
	// cadence alone would have produced a single start.
	if len(rec.startTimes()) < 4 {
		t.Fatalf("fetch starts = %d, want the faster cadence to take effect", len(rec.startTimes()))
	}
}

func TestScheduler_StopDeliversOutstandingFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var delivered atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		time.Sleep(40 * time.Millisecond)
		return 1, nil
	}

	s := New(ctx)
	Register(s, "logs", time.Second, fetch, func(int) {
		delivered.Add(1)
	}, nil)

	// The immediate first fetch is outstanding; stopping must let it land.
	time.Sleep(10 * time.Millisecond)
	s.Stop("logs")
	if err := s.Wait(); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}

	if n := delivered.Load(); n != 1 {
		t.Fatalf("delivered = %d, want the outstanding fetch handled once", n)
	}
	if s.Source("logs") != nil {
		t.Fatal("Source still registered after Stop")
	}
}

func TestSource_LastRecordedAfterDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	type seen struct {
		ok bool
	}
	results := make(chan seen, 8)

	s := New(ctx)
	ready := make(chan struct{})
	var src *Source
	src = Register(s, "events", 30*time.Millisecond, func(ctx context.Context) (int, error) {
		return 0, nil
	}, func(int) {
		<-ready
		_, ok := src.Last()
		results <- seen{ok: ok}
	}, nil)
	close(ready)

	time.Sleep(100 * time.Millisecond)
	cancel()
	_ = s.Wait()
	close(results)

	var all []seen
	for r := range results {
		all = append(all, r)
	}
	if len(all) < 2 {
		t.Fatalf("handled = %d cycles, want at least 2", len(all))
	}
	// Handlers observe the previous cycle's round trip: absent on the
	// first delivery, present afterwards.
	if all[0].ok {
		t.Fatal("first cycle saw a round-trip time, want none")
	}
	for i, r := range all[1:] {
		if !r.ok {
			t.Fatalf("cycle %d saw no round-trip time, want previous cycle's", i+2)
		}
	}
}

package window

import "time"

// Edge identifies which boundary of the rendered viewport a scroll event hit.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeTop
	EdgeBottom
)

// userScrollWindow is the proximity heuristic separating user-originated
// scroll from programmatic scroll restoration: an event arriving within this
// span of the previous one is treated as user-driven.
const userScrollWindow = 800 * time.Millisecond

// State is a read-only snapshot of a window's geometry for rendering scroll
// affordances.
type State struct {
	Offset    int
	Count     int
	Total     int
	Following bool
	Locked    bool
}

// Window maintains a fixed-size display slice over an arbitrarily large
// backing sequence, preserving the viewer's place while the sequence grows
// and shrinks underneath it.
//
// A Window is not safe for concurrent use; it belongs to the single
// goroutine that renders it.
type Window[T any] struct {
	id func(T) string

	data      []T
	displayed []T
	offset    int
	count     int
	step      int
	following bool
	locked    bool

	lastScroll time.Time
}

// New creates a window of count items scrolled step items at a time. The id
// function gives items a stable identity for anchor preservation; it may be
// nil, in which case anchoring is disabled and non-following updates keep
// their numeric offset. Windows start out following the tail.
func New[T any](count, step int, id func(T) string) *Window[T] {
	if count < 1 {
		count = 1
	}
	if step < 1 {
		step = 1
	}
	return &Window[T]{
		id:        id,
		count:     count,
		step:      step,
		following: true,
	}
}

// Update replaces the backing sequence. It returns true when the window was
// following and had to advance, signalling the display to scroll to bottom.
func (w *Window[T]) Update(data []T) bool {
	prev := w.displayed
	prevOffset := w.offset
	w.data = data

	scrollBottom := false
	switch {
	case w.locked || w.following:
		max := w.maxOffset()
		if w.following && prevOffset != max {
			scrollBottom = true
		}
		w.offset = max
	default:
		// Keep the viewer's place: the first previously displayed item
		// still present anchors the window at its old visual position.
		if idx, pos, ok := w.findAnchor(prev, data); ok {
			w.offset = idx - pos
		}
	}

	w.clampAndRefresh()
	return scrollBottom
}

// Move shifts the window by delta items. Moving before the head snaps to
// First (following off); moving past the last full window snaps to Last
// (following on). Interior moves leave the window parked, not following.
func (w *Window[T]) Move(delta int) {
	if w.locked {
		return
	}
	target := w.offset + delta
	switch {
	case target < 0:
		w.First()
	case target > w.maxOffset():
		w.Last()
	default:
		w.offset = target
		w.following = false
		w.clampAndRefresh()
	}
}

// First jumps to the head of the sequence and stops following.
func (w *Window[T]) First() {
	if w.locked {
		return
	}
	w.offset = 0
	w.following = false
	w.clampAndRefresh()
}

// Last jumps to the tail of the sequence and starts following.
func (w *Window[T]) Last() {
	if w.locked {
		return
	}
	w.jumpLast()
}

// ToggleLock flips the lock and pins the window to the tail. While locked,
// all movement is ignored.
func (w *Window[T]) ToggleLock() {
	w.locked = !w.locked
	w.jumpLast()
}

// OnScroll reacts to a viewport boundary event. Only user-originated scroll
// moves the window, distinguished by timestamp proximity to the previous
// event; the first event after a quiet period is presumed to be the render
// layer restoring its own scroll position.
func (w *Window[T]) OnScroll(edge Edge, now time.Time) {
	user := !w.lastScroll.IsZero() && now.Sub(w.lastScroll) <= userScrollWindow
	w.lastScroll = now
	if !user || w.locked {
		return
	}
	switch edge {
	case EdgeTop:
		w.Move(-w.step)
	case EdgeBottom:
		w.Move(w.step)
	}
}

// Slice returns the displayed slice. It always reflects the most recent
// Update or movement; the returned slice is valid until the next mutation.
func (w *Window[T]) Slice() []T {
	return w.displayed
}

// State returns the window geometry for rendering.
func (w *Window[T]) State() State {
	return State{
		Offset:    w.offset,
		Count:     w.count,
		Total:     len(w.data),
		Following: w.following,
		Locked:    w.locked,
	}
}

// Resize changes the window size, keeping the offset clamped.
func (w *Window[T]) Resize(count int) {
	if count < 1 {
		count = 1
	}
	w.count = count
	if w.following || w.locked {
		w.offset = w.maxOffset()
	}
	w.clampAndRefresh()
}

func (w *Window[T]) jumpLast() {
	w.offset = w.maxOffset()
	w.following = true
	w.clampAndRefresh()
}

func (w *Window[T]) maxOffset() int {
	if m := len(w.data) - w.count; m > 0 {
		return m
	}
	return 0
}

func (w *Window[T]) findAnchor(prev, data []T) (newIndex, windowPos int, ok bool) {
	if len(prev) == 0 || len(data) == 0 || w.id == nil {
		return 0, 0, false
	}
	index := make(map[string]int, len(data))
	for i, item := range data {
		k := w.id(item)
		if _, exists := index[k]; !exists {
			index[k] = i
		}
	}
	for pos, item := range prev {
		if idx, found := index[w.id(item)]; found {
			return idx, pos, true
		}
	}
	return 0, 0, false
}

func (w *Window[T]) clampAndRefresh() {
	if w.offset > w.maxOffset() {
		w.offset = w.maxOffset()
	}
	if w.offset < 0 {
		w.offset = 0
	}
	end := w.offset + w.count
	if end > len(w.data) {
		end = len(w.data)
	}
	w.displayed = w.data[w.offset:end]
}

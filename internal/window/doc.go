// Package window bounds what the display renders over unbounded sequences.
//
// # Overview
//
// Event and command histories grow without limit, but a terminal can only
// usefully show a screenful. A Window exposes a fixed-size slice of a backing
// sequence and keeps that slice meaningful while the sequence mutates:
// following the tail for live data, or holding the viewer's place while they
// browse history.
//
// # Anchor Preservation
//
// When the window is parked (not following) and the backing sequence changes,
// the window looks for the first item it was displaying that still exists in
// the new sequence and relocates so that item keeps its on-screen position.
// Insertions and removals elsewhere in the sequence then cause no visual
// jump. If every displayed item vanished, the numeric offset is simply
// clamped.
//
// # Scroll Attribution
//
// Render layers cannot reliably distinguish a user's scroll from their own
// programmatic scroll restoration, so OnScroll uses timestamp proximity: an
// event within 800ms of the previous one counts as user-driven. The
// heuristic accepts a small error rate in exchange for not threading an
// explicit origin flag through the render path.
package window

// Package poll schedules the periodic fetches that feed the dashboard.
//
// # Overview
//
// Each data category (channels, events, commands, ...) registers a fetch
// function with a polling interval. The scheduler runs one loop goroutine per
// source and enforces two rules that keep a slow endpoint from piling up work:
//
//  1. At most one request is in flight per source. A tick that fires while a
//     request is outstanding only marks the source queued.
//  2. The queue is one deep. When the outstanding request completes, a queued
//     source re-fetches immediately, once, regardless of how many ticks
//     elapsed in the meantime.
//
// # Failure Policy
//
// Transport failures are routed to the registered ErrorHandler and never stop
// the cadence; every future tick retries. There is no retry counter and no
// backoff beyond the interval itself, because the interval already bounds the
// request rate.
//
// # Reconfiguration
//
// Re-registering a source replaces its interval and handlers live. The change
// affects future ticks only; an in-flight request completes and is delivered
// normally. Stopping a source likewise clears the timer without aborting an
// outstanding request.
//
// # Ordering
//
// Fetches run on worker goroutines, but delivery always happens on the
// source's loop goroutine. Within a category, handler invocations therefore
// occur in request-issue order; across categories there is no ordering
// relationship.
package poll

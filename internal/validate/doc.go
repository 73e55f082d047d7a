// Package validate audits polled responses for data loss and staleness.
//
// # Overview
//
// Every category's handler chain passes through a Validator wrapper before
// the history stores see the data. The wrapper is transparent to the payload:
// it only keeps books and forwards the response unchanged.
//
// # Drop Detection
//
// Incrementally polled endpoints report a monotonic per-session seen counter
// alongside the delivered items. When that counter advances further than the
// running count of items actually received, the difference is data silently
// discarded upstream (buffer overflow, rate limiting). Categories whose
// server reports no counter (-1) trust the local count, so their dropped
// metric is always zero. That fallback cannot distinguish "no loss" from
// "loss unknown"; the metric is presented as-is.
//
// # Latency and Stall Detection
//
// Each completed fetch's round-trip time is pushed into a rolling window
// sized to cover five minutes of wall clock at the category's current
// polling interval. A round trip longer than the interval marks the category
// as falling behind; only when that condition has persisted uninterrupted
// for five seconds is a single error logged, after which the marker resets.
// The delay keeps a sustained slow link from flooding the error log.
//
// # The Rolling Log
//
// Transport failures, server-reported item errors, consumer faults, and
// stall warnings all accumulate in one capped log (oldest evicted) that the
// UI renders directly. Nothing in this package ever aborts polling.
package validate

// Package history owns the canonical in-memory stores for each data category.
//
// # Overview
//
// A Store reconciles validated poll responses into bounded canonical contents
// and fans each accepted update out to registered consumers (display views,
// windowers, counters). One policy is fixed per store at construction:
//
//   - AppendBounded: growing sequences (events, command history) trimmed from
//     the front past a configured limit, so memory stays bounded under
//     unbounded input.
//   - FullReplace: small enumerable sets (open log files, transfer sets)
//     replaced wholesale each update.
//   - KeyedLatest: latest-value maps (telemetry channels) merged per key with
//     last-writer-wins; a late-arriving older record never overwrites a
//     newer one.
//
// # Fan-out
//
// The canonical mutation is applied first, under the store lock, so consumers
// never observe a partially merged batch. Consumers then receive the accepted
// delta in registration order. Each delivery is isolated: a panicking
// consumer is recovered, reported through the fault reporter (normally the
// validator's rolling log), and the remaining consumers still receive the
// same update. A faulty consumer is never deregistered automatically.
//
// # Writer Discipline
//
// Each store is written only from its category's poll loop, so updates are
// naturally serialized; the internal lock exists for readers (the UI) and
// makes the snapshot accessors clone-on-read.
package history

// Package app provides the orchestration layer for the Kestrel application.
//
// # Overview
//
// This package wires together configuration, the ground data system client,
// the polling scheduler, validation, the canonical stores and the UI. It is
// the composition root where all dependencies are initialized and connected.
//
// # Architecture
//
// Run follows a simple initialization pattern:
//
//  1. Load configuration from ~/.config/kestrel/config.toml
//  2. Load user preferences (theme)
//  3. Initialize the HTTP client with a fresh session key
//  4. Build the pipeline: one poll loop per data category
//  5. Start the TUI and block until the user exits or the context cancels
//  6. Drain the poll loops before returning
//
// # Data Flow
//
//	Run()
//	  ├─> config.Load()        read endpoint, cadences, limits
//	  ├─> gds.NewClient()      HTTP client + session key
//	  ├─> NewPipeline()        scheduler + validator + stores
//	  └─> ui.Run()             TUI (blocks)
//
//	Per-category poll loop:
//	  fetch ──> validate.Wrap (drops, latency, server errors)
//	        ──> validate.WrapTally (events only: severity counts)
//	        ──> history store Push (merge under category policy)
//	        ──> consumers (UI wake)
//
// # Polling Behavior
//
// Each category polls at its configured cadence with at most one request in
// flight; a tick that lands mid-request queues exactly one immediate refetch.
// Transport failures are recorded in the rolling validation log and polling
// continues unconditionally.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file invalid
//   - Client initialization failure
//
// Recoverable errors (logged in the Errors view, polling continues):
//   - Fetch failures and timeouts
//   - Server-reported validation errors
//   - Consumer faults during fan-out
//
// A ground system that is down at startup is not fatal; the dashboard shows
// the failures and picks the link up when it returns.
package app

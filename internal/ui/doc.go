// Package ui provides the terminal user interface for Kestrel.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program layered on top of the polling pipeline's
// canonical stores. It never fetches telemetry itself; the poll loops write
// into history stores and the UI reads from them on every render. The one
// exception is server log bodies, which are fetched lazily when the user
// opens a log.
//
// # Package Structure
//
//   - app.go: the root Model, message and key routing, and the Run function
//   - header.go: status bar, tab bar, command hints and the help overlay
//   - views.go: per-tab content rendering
//   - theme.go: color themes and pre-built lipgloss styles
//   - keys.go: key bindings
//   - style_helpers.go: background-consistent text rendering
//
// # Views
//
// Seven tabs are available:
//
//   - Channels: the latest reading per telemetry channel
//   - Events: a bounded scrolling window over the event history, with
//     follow, park and lock modes
//   - Commands: the command history
//   - Transfers: uplink and downlink file sets with progress
//   - Logs: server log files, bodies fetched on demand
//   - Stats: server counters grouped by section
//   - Errors: the rolling validation log (drops, stalls, server errors)
//
// # Data Flow
//
// Store consumers registered by the app layer send RefreshMsg into the
// program whenever a store accepts new data, so the display tracks the
// downlink without a fast render tick. A slow one-second tick keeps
// relative timestamps and activity dots current during quiet periods.
//
// The events tab is driven by a window.Window anchored on event identity:
// while the user is scrolled back, history growth and eviction underneath
// do not move what they are reading.
package ui

// Package config handles loading and parsing Kestrel configuration files.
//
// # Overview
//
// This package reads Kestrel's TOML configuration to discover the ground
// system's HTTP endpoint and to shape the client's local buffers: how often
// each data category is polled, how much history is retained, and the
// geometry of the scrolling event viewport.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/kestrel/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults per field
//
// # Default Values
//
//   - Config file: ~/.config/kestrel/config.toml
//   - API endpoint: 127.0.0.1:5000
//   - Polling: channels/events/commands 1s, transfers 2s, stats 5s, logs 10s
//   - History: 10000 events, 1000 command records
//   - Viewport: 40 rows, scrolled 10 at a time
//
// # TOML Format
//
// Example config.toml:
//
//	api_bind = "127.0.0.1:5000"
//
//	[poll]
//	channels = "500ms"
//	logs = "30s"
//
//	[history]
//	events = 50000
//
//	[viewport]
//	rows = 60
//
// Every field is optional. Intervals are Go duration strings and must be
// positive; history limits must not be negative (zero means unbounded).
// Tilde expansion is performed on the config path automatically.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors, malformed intervals, negative limits
//
// Missing config files are NOT an error; defaults are used instead, so
// Kestrel works out-of-the-box against a ground system on localhost.
//
// # Usage Example
//
//	// Use default config path
//	cfg, err := config.Load("")
//	if err != nil {
//		log.Fatalf("failed to load config: %v", err)
//	}
//
//	// Use explicit config path
//	cfg, err := config.Load("/etc/kestrel/config.toml")
//	if err != nil {
//		log.Fatalf("failed to load config: %v", err)
//	}
//
//	client, err := gds.NewClient(cfg.APIBind)
//
// The config package is read-only and stateless. It loads configuration once
// at startup and returns an immutable Config struct.
package config

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything Kestrel needs to talk to a ground system and
// shape its local buffers.
type Config struct {
	APIBind string

	Poll     PollConfig
	History  HistoryConfig
	Viewport ViewportConfig
}

// PollConfig holds per-category polling cadences.
type PollConfig struct {
	Channels  time.Duration
	Events    time.Duration
	Commands  time.Duration
	Logs      time.Duration
	Uploads   time.Duration
	Downloads time.Duration
	Stats     time.Duration
}

// HistoryConfig bounds the append-only histories. Zero means unbounded.
type HistoryConfig struct {
	Events   int
	Commands int
}

// ViewportConfig shapes the scrolling event viewport.
type ViewportConfig struct {
	Rows int
	Step int
}

const (
	defaultConfigPath = "~/.config/kestrel/config.toml"
	defaultAPIBind    = "127.0.0.1:5000"
)

func defaults() Config {
	return Config{
		APIBind: defaultAPIBind,
		Poll: PollConfig{
			Channels:  time.Second,
			Events:    time.Second,
			Commands:  time.Second,
			Logs:      10 * time.Second,
			Uploads:   2 * time.Second,
			Downloads: 2 * time.Second,
			Stats:     5 * time.Second,
		},
		History: HistoryConfig{
			Events:   10000,
			Commands: 1000,
		},
		Viewport: ViewportConfig{
			Rows: 40,
			Step: 10,
		},
	}
}

// rawConfig mirrors the on-disk TOML shape. Durations are strings so users can
// write "500ms" or "2s".
type rawConfig struct {
	APIBind string `toml:"api_bind"`

	Poll struct {
		Channels  string `toml:"channels"`
		Events    string `toml:"events"`
		Commands  string `toml:"commands"`
		Logs      string `toml:"logs"`
		Uploads   string `toml:"uploads"`
		Downloads string `toml:"downloads"`
		Stats     string `toml:"stats"`
	} `toml:"poll"`

	History struct {
		Events   *int `toml:"events"`
		Commands *int `toml:"commands"`
	} `toml:"history"`

	Viewport struct {
		Rows int `toml:"rows"`
		Step int `toml:"step"`
	} `toml:"viewport"`
}

// Load locates and parses the kestrel config, falling back to defaults when
// the file is missing. An empty path means the default location.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if bind := strings.TrimSpace(raw.APIBind); bind != "" {
		cfg.APIBind = bind
	}

	intervals := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"poll.channels", raw.Poll.Channels, &cfg.Poll.Channels},
		{"poll.events", raw.Poll.Events, &cfg.Poll.Events},
		{"poll.commands", raw.Poll.Commands, &cfg.Poll.Commands},
		{"poll.logs", raw.Poll.Logs, &cfg.Poll.Logs},
		{"poll.uploads", raw.Poll.Uploads, &cfg.Poll.Uploads},
		{"poll.downloads", raw.Poll.Downloads, &cfg.Poll.Downloads},
		{"poll.stats", raw.Poll.Stats, &cfg.Poll.Stats},
	}
	for _, iv := range intervals {
		trimmed := strings.TrimSpace(iv.raw)
		if trimmed == "" {
			continue
		}
		d, err := time.ParseDuration(trimmed)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: %s: %w", iv.name, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("parse config: %s: interval must be positive", iv.name)
		}
		*iv.dst = d
	}

	if raw.History.Events != nil {
		if *raw.History.Events < 0 {
			return Config{}, fmt.Errorf("parse config: history.events: limit must not be negative")
		}
		cfg.History.Events = *raw.History.Events
	}
	if raw.History.Commands != nil {
		if *raw.History.Commands < 0 {
			return Config{}, fmt.Errorf("parse config: history.commands: limit must not be negative")
		}
		cfg.History.Commands = *raw.History.Commands
	}

	if raw.Viewport.Rows > 0 {
		cfg.Viewport.Rows = raw.Viewport.Rows
	}
	if raw.Viewport.Step > 0 {
		cfg.Viewport.Step = raw.Viewport.Step
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != defaultAPIBind {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, defaultAPIBind)
	}
	if cfg.Poll.Channels != time.Second || cfg.Poll.Logs != 10*time.Second {
		t.Fatalf("Poll = %+v, want default cadences", cfg.Poll)
	}
	if cfg.History.Events != 10000 || cfg.History.Commands != 1000 {
		t.Fatalf("History = %+v, want default limits", cfg.History)
	}
	if cfg.Viewport.Rows != 40 || cfg.Viewport.Step != 10 {
		t.Fatalf("Viewport = %+v, want default geometry", cfg.Viewport)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_bind = "  10.0.0.5:9999  "

[poll]
channels = "250ms"
logs = " 30s "

[history]
events = 50000
commands = 0

[viewport]
rows = 60
step = 20
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != "10.0.0.5:9999" {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, "10.0.0.5:9999")
	}
	if cfg.Poll.Channels != 250*time.Millisecond {
		t.Fatalf("Poll.Channels = %v, want 250ms", cfg.Poll.Channels)
	}
	if cfg.Poll.Logs != 30*time.Second {
		t.Fatalf("Poll.Logs = %v, want 30s", cfg.Poll.Logs)
	}
	// Unset cadences keep their defaults.
	if cfg.Poll.Events != time.Second {
		t.Fatalf("Poll.Events = %v, want default 1s", cfg.Poll.Events)
	}
	if cfg.History.Events != 50000 {
		t.Fatalf("History.Events = %d, want 50000", cfg.History.Events)
	}
	// Explicit zero means unbounded, not "use the default".
	if cfg.History.Commands != 0 {
		t.Fatalf("History.Commands = %d, want explicit 0 honored", cfg.History.Commands)
	}
	if cfg.Viewport.Rows != 60 || cfg.Viewport.Step != 20 {
		t.Fatalf("Viewport = %+v, want 60/20", cfg.Viewport)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_bind = "   "

[poll]
events = "  "
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != defaultAPIBind {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, defaultAPIBind)
	}
	if cfg.Poll.Events != time.Second {
		t.Fatalf("Poll.Events = %v, want default 1s", cfg.Poll.Events)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_bind = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_BadIntervalFails(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed", "[poll]\nchannels = \"soon\"\n"},
		{"negative", "[poll]\nchannels = \"-1s\"\n"},
		{"zero", "[poll]\nchannels = \"0s\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.body), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatalf("Load returned nil error, want interval error")
			}
			if !strings.Contains(err.Error(), "poll.channels") {
				t.Fatalf("Load error = %q, want it to name the field", err.Error())
			}
		})
	}
}

func TestLoad_NegativeLimitFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[history]\nevents = -5\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load returned nil error, want limit error")
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

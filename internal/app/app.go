package app

import (
	"context"
	"fmt"

	"github.com/kestrelgs/kestrel/internal/config"
	"github.com/kestrelgs/kestrel/internal/gds"
	"github.com/kestrelgs/kestrel/internal/prefs"
	"github.com/kestrelgs/kestrel/internal/ui"
)

// Options configure the Kestrel application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/kestrel/prefs.toml
	APIBind    string // overrides the configured endpoint when set
}

// Run boots the Kestrel TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.APIBind != "" {
		cfg.APIBind = opts.APIBind
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	client, err := gds.NewClient(cfg.APIBind)
	if err != nil {
		return fmt.Errorf("init gds client: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pipeline := NewPipeline(ctx, client, cfg)

	uiErr := ui.Run(ui.Options{
		Context:   ctx,
		Client:    client,
		Data:      pipeline.Data,
		Validator: pipeline.Validator,
		Severity:  pipeline.Severity,
		Config:    &cfg,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		Notify:    pipeline.Notify,
	})

	// The UI has exited; wind the poll loops down before returning.
	cancel()
	if err := pipeline.Wait(); err != nil {
		return err
	}
	return uiErr
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kestrelgs/kestrel/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override kestrel config path (optional)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	apiBind := flag.String("api", "", "ground system endpoint host:port (overrides config)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		APIBind:    *apiBind,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "kestrel: %v\n", err)
		return 1
	}
	return 0
}

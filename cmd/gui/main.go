package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/skobkin/gpsreader/internal/app"
	"github.com/skobkin/gpsreader/internal/platform"
	"github.com/skobkin/gpsreader/internal/ui"
)

type launchOptions struct {
	StartHidden bool
}

func main() {
	opts, err := parseLaunchOptions(os.Args[1:])
	if err != nil {
		slog.Error("parse launch options", "error", err)
		os.Exit(2)
	}

	guard, err := platform.AcquireInstance(app.Name)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			slog.Error("gpsreader is already running in this session")
			os.Exit(1)
		}
		slog.Warn("single instance guard unavailable", "error", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.InitializeWithOptions(ctx, app.Options{
		Startup: platform.NewStartupRegistrar(app.Name, app.DisplayName),
	})
	if err != nil {
		slog.Error("initialize app runtime", "error", err)
		os.Exit(1)
	}

	var closeOnce sync.Once
	closeRuntime := func() {
		closeOnce.Do(func() {
			_ = rt.Close()
		})
	}
	defer closeRuntime()

	startHidden := opts.StartHidden || rt.CurrentConfig().UI.StartHidden
	dep := ui.BuildRuntimeDependencies(rt, ui.LaunchOptions{StartHidden: startHidden}, func() {
		stop()
		closeRuntime()
	})
	if err := ui.Run(dep); err != nil {
		slog.Error("run ui", "error", err)
		closeRuntime()
		os.Exit(1)
	}
}

func parseLaunchOptions(args []string) (launchOptions, error) {
	var opts launchOptions

	fs := flag.NewFlagSet(app.Name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.StartHidden, strings.TrimPrefix(platform.StartHiddenArg, "--"), false, "start minimized to the system tray")
	if err := fs.Parse(args); err != nil {
		return launchOptions{}, err
	}
	if fs.NArg() > 0 {
		return launchOptions{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return opts, nil
}

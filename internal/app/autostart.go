package app

import (
	"fmt"
	"log/slog"

	"github.com/skobkin/gpsreader/internal/config"
	"github.com/skobkin/gpsreader/internal/platform"
)

// AutostartSyncWarning is returned by SaveAndApplyConfig when the config was
// saved and applied but the login launch entry could not be updated.
type AutostartSyncWarning struct {
	Err error
}

func (w *AutostartSyncWarning) Error() string {
	if w == nil || w.Err == nil {
		return "launch at login was not updated"
	}

	return fmt.Sprintf("launch at login was not updated: %v", w.Err)
}

func (w *AutostartSyncWarning) Unwrap() error {
	if w == nil {
		return nil
	}

	return w.Err
}

func startupEntryFromConfig(cfg config.AutostartConfig) platform.StartupEntry {
	mode := platform.StartupModeWindow
	if cfg.Mode == config.AutostartModeTray {
		mode = platform.StartupModeTray
	}

	return platform.StartupEntry{Enabled: cfg.Enabled, Mode: mode}
}

func (r *Runtime) applyAutostart(cfg config.AutostartConfig, trigger string) error {
	if r.Startup == nil {
		return nil
	}

	entry := startupEntryFromConfig(cfg)
	if err := r.Startup.Apply(entry); err != nil {
		slog.Warn("launch at login update failed", "trigger", trigger, "enabled", entry.Enabled, "mode", entry.Mode, "error", err)

		return err
	}
	slog.Debug("launch at login updated", "trigger", trigger, "enabled", entry.Enabled, "mode", entry.Mode)

	return nil
}

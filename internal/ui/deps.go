package ui

import (
	"fyne.io/fyne/v2"

	"github.com/skobkin/gpsreader/internal/bus"
	"github.com/skobkin/gpsreader/internal/config"
	"github.com/skobkin/gpsreader/internal/connectors"
	"github.com/skobkin/gpsreader/internal/domain"
)

type DataDependencies struct {
	Bus               bus.MessageBus
	CurrentConfig     func() config.AppConfig
	CurrentConnStatus func() (connectors.ConnectionStatus, bool)

	// CurrentQuality returns the tracked quality level and whether
	// positioning is currently permitted.
	CurrentQuality       func() (domain.QualityLevel, bool)
	CurrentAuthorization func() domain.AuthorizationState
}

type ActionDependencies struct {
	OnSave func(cfg config.AppConfig) error
	OnQuit func()
}

type PlatformDependencies struct {
	ListSerialPorts func() ([]string, error)
}

type UIHooks struct {
	RunOnUI func(func())
}

type LaunchOptions struct {
	StartHidden bool
}

type RuntimeDependencies struct {
	Data     DataDependencies
	Actions  ActionDependencies
	Platform PlatformDependencies
	UIHooks  UIHooks
	Launch   LaunchOptions
}

func (d RuntimeDependencies) currentConfig() config.AppConfig {
	if d.Data.CurrentConfig == nil {
		return config.Default()
	}

	return d.Data.CurrentConfig()
}

func (d RuntimeDependencies) runOnUI(fn func()) {
	if d.UIHooks.RunOnUI != nil {
		d.UIHooks.RunOnUI(fn)

		return
	}
	fyne.Do(fn)
}

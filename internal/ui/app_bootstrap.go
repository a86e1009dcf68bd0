package ui

import (
	"fyne.io/fyne/v2"

	"github.com/skobkin/gpsreader/internal/connectors"
	"github.com/skobkin/gpsreader/internal/domain"
	"github.com/skobkin/gpsreader/internal/resources"
)

func runWithApp(dep RuntimeDependencies, fyApp fyne.App) error {
	fyApp.SetIcon(resources.AppIconResource())
	appLogger.Info("starting UI runtime", "start_hidden", dep.Launch.StartHidden)

	initialStatus := resolveInitialConnStatus(dep)

	window := fyApp.NewWindow("")
	window.Resize(fyne.NewSize(420, 520))
	view := buildMainView(dep, window, initialStatus)
	window.SetContent(view.content)

	stopNotifications := startNotificationService(dep, fyApp, dep.Launch.StartHidden)

	uiRuntime := newUIRuntime(fyApp, window, stopNotifications, nil, dep.Actions.OnQuit)
	uiRuntime.BindCloseIntercept()

	setTrayIcon := configureSystemTray(fyApp, window, view.signal.Level().Lost(), uiRuntime.Quit)

	uiRuntime.stopUIListeners = startUIEventListeners(dep.Data.Bus, uiEventHandlers{
		onConnStatus: func(status connectors.ConnectionStatus) {
			dep.runOnUI(func() {
				view.connStatusPresenter.Set(status)
			})
		},
		onQuality: func(change domain.QualityChange) {
			dep.runOnUI(func() {
				view.signal.SetQuality(change.Level)
				setTrayIcon(change.Level.Lost())
			})
		},
		onPermission: func(change domain.PermissionChange) {
			dep.runOnUI(func() {
				view.signal.SetPermission(change.State, change.Enabled)
			})
		},
	})

	uiRuntime.Run(dep.Launch.StartHidden)

	return nil
}

package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	gpsapp "github.com/skobkin/gpsreader/internal/app"
	"github.com/skobkin/gpsreader/internal/resources"
)

// configureSystemTray installs the tray menu and returns a setter that swaps
// the tray icon between the normal and the signal-lost variant.
func configureSystemTray(fyApp fyne.App, window fyne.Window, signalLost bool, quit func()) func(bool) {
	setTrayIcon := func(bool) {}

	desk, ok := fyApp.(desktop.App)
	if !ok {
		return setTrayIcon
	}

	setTrayIcon = func(lost bool) {
		desk.SetSystemTrayIcon(resources.TrayIconResource(lost))
	}
	setTrayIcon(signalLost)
	desk.SetSystemTrayMenu(fyne.NewMenu(gpsapp.DisplayName,
		fyne.NewMenuItem("Show", func() {
			appLogger.Debug("system tray show action invoked")
			window.Show()
			window.RequestFocus()
		}),
		fyne.NewMenuItem("Quit", func() {
			appLogger.Debug("system tray quit action invoked")
			if quit != nil {
				quit()
			}
		}),
	))

	return setTrayIcon
}

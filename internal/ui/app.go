package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	gpsapp "github.com/skobkin/gpsreader/internal/app"
)

var appLogger = slog.With("component", "ui")

var newFyneApp = func() fyne.App {
	return fyneapp.NewWithID(gpsapp.Name)
}

// Run builds the main window and blocks until the UI quits.
func Run(dep RuntimeDependencies) error {
	return runWithApp(dep, newFyneApp())
}

package ui

import (
	"context"
	"log/slog"
	"sync/atomic"

	"fyne.io/fyne/v2"

	gpsapp "github.com/skobkin/gpsreader/internal/app"
	"github.com/skobkin/gpsreader/internal/notifications"
)

func startNotificationService(dep RuntimeDependencies, fyApp fyne.App, startHidden bool) func() {
	var appForeground atomic.Bool
	appForeground.Store(!startHidden)
	fyApp.Lifecycle().SetOnEnteredForeground(func() {
		appForeground.Store(true)
	})
	fyApp.Lifecycle().SetOnExitedForeground(func() {
		appForeground.Store(false)
	})

	notificationsCtx, stopNotifications := context.WithCancel(context.Background())
	notificationService := gpsapp.NewNotificationService(
		dep.Data.Bus,
		dep.currentConfig,
		appForeground.Load,
		NewFyneNotificationSender(fyApp, notifications.NewBeeepSender(slog.With("component", "ui.notifications.urgent"))),
		slog.With("component", "ui.notifications"),
	)
	notificationService.Start(notificationsCtx)

	return stopNotifications
}

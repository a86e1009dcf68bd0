package ui

import (
	"strings"

	"fyne.io/fyne/v2"

	"github.com/skobkin/gpsreader/internal/notifications"
)

// FyneNotificationSender bridges app notifications to native Fyne notifications.
// Fyne has no urgency hint, so urgent payloads go to the fallback sender when set.
type FyneNotificationSender struct {
	app    fyne.App
	urgent notifications.Sender
	runOn  func(func())
}

func NewFyneNotificationSender(app fyne.App, urgent notifications.Sender) *FyneNotificationSender {
	return &FyneNotificationSender{app: app, urgent: urgent, runOn: fyne.Do}
}

func (s *FyneNotificationSender) Send(notification notifications.Payload) {
	if s == nil || s.app == nil {
		return
	}

	title := strings.TrimSpace(notification.Title)
	content := strings.TrimSpace(notification.Content)
	if title == "" && content == "" {
		return
	}
	if notification.Urgent && s.urgent != nil {
		s.urgent.Send(notification)

		return
	}

	s.runOn(func() {
		s.app.SendNotification(fyne.NewNotification(title, content))
	})
}

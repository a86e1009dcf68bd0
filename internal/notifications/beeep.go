package notifications

import (
	"log/slog"
	"strings"

	"github.com/gen2brain/beeep"
)

// BeeepSender delivers notifications through the OS notification service.
type BeeepSender struct {
	notify func(title, message string) error
	alert  func(title, message string) error
	logger *slog.Logger
}

func NewBeeepSender(logger *slog.Logger) *BeeepSender {
	if logger == nil {
		logger = slog.Default().With("component", "notifications.beeep")
	}

	return &BeeepSender{
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		alert: func(title, message string) error {
			return beeep.Alert(title, message, "")
		},
		logger: logger,
	}
}

func (s *BeeepSender) Send(payload Payload) {
	if s == nil {
		return
	}

	title := strings.TrimSpace(payload.Title)
	content := strings.TrimSpace(payload.Content)
	if title == "" && content == "" {
		return
	}

	send := s.notify
	if payload.Urgent {
		send = s.alert
	}
	if err := send(title, content); err != nil {
		s.logger.Warn("send desktop notification", "title", title, "error", err)
	}
}

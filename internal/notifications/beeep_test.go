package notifications

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestBeeepSenderRoutesUrgentToAlert(t *testing.T) {
	var notified, alerted []string
	sender := &BeeepSender{
		notify: func(title, _ string) error {
			notified = append(notified, title)
			return nil
		},
		alert: func(title, _ string) error {
			alerted = append(alerted, title)
			return errors.New("alert backend missing")
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	sender.Send(Payload{Title: " info ", Content: "x"})
	sender.Send(Payload{Title: "lost", Content: "y", Urgent: true})
	sender.Send(Payload{Title: "  ", Content: ""})

	if len(notified) != 1 || notified[0] != "info" {
		t.Fatalf("unexpected notify calls: %v", notified)
	}
	if len(alerted) != 1 || alerted[0] != "lost" {
		t.Fatalf("unexpected alert calls: %v", alerted)
	}
}

func TestBeeepSenderNilSafe(t *testing.T) {
	var sender *BeeepSender
	sender.Send(Payload{Title: "ignored"})
}

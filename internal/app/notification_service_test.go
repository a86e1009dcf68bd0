package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/skobkin/gpsreader/internal/bus"
	"github.com/skobkin/gpsreader/internal/config"
	"github.com/skobkin/gpsreader/internal/connectors"
	"github.com/skobkin/gpsreader/internal/domain"
	"github.com/skobkin/gpsreader/internal/notifications"
)

func startTestNotificationService(t *testing.T, currentConfig func() config.AppConfig, isForeground func() bool) (*bus.PubSubBus, *collectingNotificationSender) {
	t.Helper()

	messageBus := newTestMessageBus(t)
	sender := newCollectingNotificationSender()
	service := NewNotificationService(messageBus, currentConfig, isForeground, sender, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	service.Start(ctx)

	return messageBus, sender
}

func TestNotificationServiceSignalLostAndRestored(t *testing.T) {
	cfg := config.Default()
	messageBus, sender := startTestNotificationService(t,
		func() config.AppConfig { return cfg },
		func() bool { return false },
	)

	messageBus.Publish(connectors.TopicSignalQuality, domain.QualityChange{
		Level:    domain.QualityGood,
		Previous: domain.QualityUnknown,
		Cause:    domain.QualityCauseReading,
	})
	sender.assertCount(t, 0)

	messageBus.Publish(connectors.TopicSignalQuality, domain.QualityChange{
		Level:    domain.QualityNoSignal,
		Previous: domain.QualityGood,
		Cause:    domain.QualityCauseStale,
	})
	got := sender.waitForCount(t, 1)
	if got[0].Title != "GPS signal lost" {
		t.Fatalf("expected signal lost title, got %q", got[0].Title)
	}
	if !got[0].Urgent {
		t.Fatalf("expected signal lost to be urgent")
	}
	if got[0].Content != "No position updates from the receiver" {
		t.Fatalf("unexpected stale content %q", got[0].Content)
	}

	messageBus.Publish(connectors.TopicSignalQuality, domain.QualityChange{
		Level:    domain.QualityGood,
		Previous: domain.QualityNoSignal,
		Cause:    domain.QualityCauseReading,
	})
	got = sender.waitForCount(t, 2)
	if got[1].Title != "GPS signal restored" {
		t.Fatalf("expected signal restored title, got %q", got[1].Title)
	}
	if got[1].Content != "Signal quality: good (3/4)" {
		t.Fatalf("unexpected restored content %q", got[1].Content)
	}
	if got[1].Urgent {
		t.Fatalf("did not expect restored notification to be urgent")
	}
}

func TestNotificationServiceIgnoresChangesThatDoNotCrossNoSignal(t *testing.T) {
	cfg := config.Default()
	messageBus, sender := startTestNotificationService(t,
		func() config.AppConfig { return cfg },
		func() bool { return false },
	)

	changes := []domain.QualityChange{
		{Level: domain.QualityFull, Previous: domain.QualityGood},
		{Level: domain.QualityPoor, Previous: domain.QualityFull},
		{Level: domain.QualityUnknown, Previous: domain.QualityNoSignal},
	}
	for _, change := range changes {
		messageBus.Publish(connectors.TopicSignalQuality, change)
	}
	sender.assertCount(t, 0)
}

func TestNotificationServiceNoFixContent(t *testing.T) {
	cfg := config.Default()
	messageBus, sender := startTestNotificationService(t,
		func() config.AppConfig { return cfg },
		func() bool { return false },
	)

	messageBus.Publish(connectors.TopicSignalQuality, domain.QualityChange{
		Level:    domain.QualityNoSignal,
		Previous: domain.QualityUnknown,
		Cause:    domain.QualityCauseReading,
	})
	got := sender.waitForCount(t, 1)
	if got[0].Content != "The receiver has no position fix" {
		t.Fatalf("unexpected no-fix content %q", got[0].Content)
	}
}

func TestNotificationServicePermissionDenied(t *testing.T) {
	cfg := config.Default()
	messageBus, sender := startTestNotificationService(t,
		func() config.AppConfig { return cfg },
		func() bool { return false },
	)

	messageBus.Publish(connectors.TopicSignalPermission, domain.PermissionChange{State: domain.AuthorizationAuthorized, Enabled: true})
	sender.assertCount(t, 0)

	messageBus.Publish(connectors.TopicSignalPermission, domain.PermissionChange{State: domain.AuthorizationDenied})
	got := sender.waitForCount(t, 1)
	if got[0].Title != "GPS receiver access denied" {
		t.Fatalf("unexpected title %q", got[0].Title)
	}
}

func TestNotificationServiceConnectionStatusFilteringAndFormatting(t *testing.T) {
	cfg := config.Default()
	messageBus, sender := startTestNotificationService(t,
		func() config.AppConfig { return cfg },
		func() bool { return false },
	)

	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{
		State:         connectors.ConnectionStateConnected,
		TransportName: "tcp",
		Target:        "192.168.0.156:2947",
	})
	gotNotifications := sender.waitForCount(t, 1)
	if got := gotNotifications[0].Title; got != "TCP - connected" {
		t.Fatalf("expected connected title, got %q", got)
	}

	// Duplicate consecutive state must be ignored.
	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{
		State:         connectors.ConnectionStateConnected,
		TransportName: "tcp",
		Target:        "192.168.0.156:2947",
	})
	sender.assertCount(t, 1)

	// Reconnecting itself should not notify.
	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{
		State:         connectors.ConnectionStateReconnecting,
		TransportName: "tcp",
		Target:        "192.168.0.156:2947",
	})
	sender.assertCount(t, 1)

	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{
		State:         connectors.ConnectionStateConnected,
		TransportName: "tcp",
		Target:        "192.168.0.156:2947",
	})
	gotNotifications = sender.waitForCount(t, 2)
	if got := gotNotifications[1].Title; got != "TCP - connected" {
		t.Fatalf("expected reconnection title, got %q", got)
	}

	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{
		State:         connectors.ConnectionStateDisconnected,
		TransportName: "serial",
		Target:        "/dev/ttyACM0",
		Err:           "read timeout",
	})
	gotNotifications = sender.waitForCount(t, 3)
	if got := gotNotifications[2].Title; got != "Serial - disconnected" {
		t.Fatalf("expected disconnected title, got %q", got)
	}
	if got := gotNotifications[2].Content; got != "/dev/ttyACM0 (error: read timeout)" {
		t.Fatalf("expected disconnected content with error, got %q", got)
	}
}

func TestNotificationServiceForegroundAndPerTypeSettings(t *testing.T) {
	cfg := config.Default()
	var cfgMu sync.RWMutex
	messageBus, sender := startTestNotificationService(t,
		func() config.AppConfig {
			cfgMu.RLock()
			defer cfgMu.RUnlock()

			return cfg
		},
		func() bool { return true },
	)

	lost := domain.QualityChange{Level: domain.QualityNoSignal, Previous: domain.QualityGood, At: time.Now()}

	// Focused app + notify_when_focused=false -> suppressed.
	messageBus.Publish(connectors.TopicSignalQuality, lost)
	sender.assertCount(t, 0)

	cfgMu.Lock()
	cfg.Alerts.Notifications.NotifyWhenFocused = true
	cfgMu.Unlock()
	messageBus.Publish(connectors.TopicSignalQuality, lost)
	sender.waitForCount(t, 1)

	cfgMu.Lock()
	cfg.Alerts.Notifications.Events.SignalLost = false
	cfgMu.Unlock()
	messageBus.Publish(connectors.TopicSignalQuality, lost)
	sender.assertCount(t, 1)
}

func newTestMessageBus(t *testing.T) *bus.PubSubBus {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	messageBus := bus.New(logger)
	t.Cleanup(func() {
		messageBus.Close()
	})

	return messageBus
}

type collectingNotificationSender struct {
	mu            sync.Mutex
	notifications []notifications.Payload
	changes       chan struct{}
}

func newCollectingNotificationSender() *collectingNotificationSender {
	return &collectingNotificationSender{
		changes: make(chan struct{}, 1),
	}
}

func (s *collectingNotificationSender) Send(notification notifications.Payload) {
	s.mu.Lock()
	s.notifications = append(s.notifications, notification)
	s.mu.Unlock()

	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (s *collectingNotificationSender) snapshot() []notifications.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]notifications.Payload, len(s.notifications))
	copy(out, s.notifications)

	return out
}

func (s *collectingNotificationSender) waitForCount(t *testing.T, expected int) []notifications.Payload {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		current := s.snapshot()
		if len(current) >= expected {
			return current
		}
		select {
		case <-s.changes:
		case <-time.After(10 * time.Millisecond):
		}
	}

	t.Fatalf("timed out waiting for %d notifications", expected)

	return nil
}

func (s *collectingNotificationSender) assertCount(t *testing.T, expected int) {
	t.Helper()

	time.Sleep(100 * time.Millisecond)
	current := s.snapshot()
	if len(current) != expected {
		t.Fatalf("expected %d notifications, got %d", expected, len(current))
	}
}

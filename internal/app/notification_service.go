package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/skobkin/gpsreader/internal/bus"
	"github.com/skobkin/gpsreader/internal/config"
	"github.com/skobkin/gpsreader/internal/connectors"
	"github.com/skobkin/gpsreader/internal/domain"
	"github.com/skobkin/gpsreader/internal/notifications"
)

const (
	notificationTitleSignalLost     = "GPS signal lost"
	notificationTitleSignalRestored = "GPS signal restored"
	notificationTitleAccessDenied   = "GPS receiver access denied"
)

// NotificationService listens to bus events and emits user-facing notifications.
type NotificationService struct {
	bus           bus.MessageBus
	currentConfig func() config.AppConfig
	isForeground  func() bool
	sender        notifications.Sender
	logger        *slog.Logger

	connStatusMu     sync.Mutex
	lastConnState    connectors.ConnectionState
	lastConnStateSet bool
}

func NewNotificationService(
	messageBus bus.MessageBus,
	currentConfig func() config.AppConfig,
	isForeground func() bool,
	sender notifications.Sender,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default().With("component", "app.notifications")
	}

	return &NotificationService{
		bus:           messageBus,
		currentConfig: currentConfig,
		isForeground:  isForeground,
		sender:        sender,
		logger:        logger,
	}
}

func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || s.bus == nil || s.sender == nil {
		return
	}

	qualitySub := s.bus.Subscribe(connectors.TopicSignalQuality)
	permissionSub := s.bus.Subscribe(connectors.TopicSignalPermission)
	connSub := s.bus.Subscribe(connectors.TopicConnStatus)

	go func() {
		defer s.bus.Unsubscribe(qualitySub, connectors.TopicSignalQuality)
		defer s.bus.Unsubscribe(permissionSub, connectors.TopicSignalPermission)
		defer s.bus.Unsubscribe(connSub, connectors.TopicConnStatus)

		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-qualitySub:
				if !ok {
					return
				}
				change, ok := raw.(domain.QualityChange)
				if !ok {
					continue
				}
				s.handleQualityChange(change)
			case raw, ok := <-permissionSub:
				if !ok {
					return
				}
				change, ok := raw.(domain.PermissionChange)
				if !ok {
					continue
				}
				s.handlePermissionChange(change)
			case raw, ok := <-connSub:
				if !ok {
					return
				}
				status, ok := raw.(connectors.ConnectionStatus)
				if !ok {
					continue
				}
				s.handleConnectionStatus(status)
			}
		}
	}()
}

func (s *NotificationService) handleQualityChange(change domain.QualityChange) {
	prefs := s.notificationPrefs()

	switch {
	case change.Level.Lost() && !change.Previous.Lost():
		if !s.shouldNotify(prefs, prefs.Events.SignalLost) {
			return
		}
		s.send(notifications.Payload{
			Title:   notificationTitleSignalLost,
			Content: signalLostContent(change.Cause),
			Urgent:  true,
		})
	case change.Previous.Lost() && !change.Level.Lost() && change.Level != domain.QualityUnknown:
		if !s.shouldNotify(prefs, prefs.Events.SignalRestored) {
			return
		}
		s.send(notifications.Payload{
			Title:   notificationTitleSignalRestored,
			Content: fmt.Sprintf("Signal quality: %s (%d/%d)", qualityLabel(change.Level), change.Level.Bars(), domain.MaxBars),
		})
	}
}

func (s *NotificationService) handlePermissionChange(change domain.PermissionChange) {
	if change.State != domain.AuthorizationDenied {
		return
	}
	prefs := s.notificationPrefs()
	if !s.shouldNotify(prefs, prefs.Events.ConnectionStatus) {
		return
	}
	s.send(notifications.Payload{
		Title:   notificationTitleAccessDenied,
		Content: "Check that your user may open the receiver device",
	})
}

func (s *NotificationService) handleConnectionStatus(status connectors.ConnectionStatus) {
	prefs := s.notificationPrefs()
	if status.State == "" {
		return
	}

	s.connStatusMu.Lock()
	if s.lastConnStateSet && s.lastConnState == status.State {
		s.connStatusMu.Unlock()

		return
	}
	s.lastConnState = status.State
	s.lastConnStateSet = true
	s.connStatusMu.Unlock()

	if status.State != connectors.ConnectionStateConnected &&
		status.State != connectors.ConnectionStateDisconnected {
		return
	}
	if !s.shouldNotify(prefs, prefs.Events.ConnectionStatus) {
		return
	}

	transport := notificationTransportName(status.TransportName)
	if transport == "" {
		transport = "Unknown"
	}
	details := strings.TrimSpace(status.Target)
	if details == "" {
		details = "No connection details"
	}
	if status.State == connectors.ConnectionStateDisconnected {
		if errText := strings.TrimSpace(status.Err); errText != "" {
			details = fmt.Sprintf("%s (error: %s)", details, errText)
		}
	}

	s.send(notifications.Payload{
		Title:   fmt.Sprintf("%s - %s", transport, status.State),
		Content: details,
	})
}

func (s *NotificationService) shouldNotify(prefs config.NotificationConfig, kindEnabled bool) bool {
	if !kindEnabled {
		return false
	}
	if prefs.NotifyWhenFocused {
		return true
	}
	if s.isForeground == nil {
		return true
	}

	return !s.isForeground()
}

func (s *NotificationService) notificationPrefs() config.NotificationConfig {
	cfg := config.Default()
	if s.currentConfig != nil {
		cfg = s.currentConfig()
		cfg.FillMissingDefaults()
	}

	return cfg.Alerts.Notifications
}

func (s *NotificationService) send(notification notifications.Payload) {
	title := strings.TrimSpace(notification.Title)
	content := strings.TrimSpace(notification.Content)
	if title == "" && content == "" {
		return
	}
	s.logger.Debug("sending notification", "title", title, "urgent", notification.Urgent)
	s.sender.Send(notifications.Payload{
		Title:   title,
		Content: content,
		Urgent:  notification.Urgent,
	})
}

func signalLostContent(cause domain.QualityCause) string {
	if cause == domain.QualityCauseStale {
		return "No position updates from the receiver"
	}

	return "The receiver has no position fix"
}

func qualityLabel(level domain.QualityLevel) string {
	return strings.ReplaceAll(level.String(), "_", " ")
}

func notificationTransportName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "serial":
		return "Serial"
	case "tcp":
		return "TCP"
	case "replay":
		return "Replay"
	default:
		return strings.TrimSpace(name)
	}
}

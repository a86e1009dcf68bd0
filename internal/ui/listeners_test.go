package ui

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skobkin/gpsreader/internal/bus"
	"github.com/skobkin/gpsreader/internal/connectors"
	"github.com/skobkin/gpsreader/internal/domain"
)

func TestStartUIEventListenersStopPreventsFurtherCallbacks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	messageBus := bus.New(logger)
	defer messageBus.Close()

	var connEvents atomic.Int64
	var qualityEvents atomic.Int64
	var permissionEvents atomic.Int64
	var lastLevel atomic.Int64
	stop := startUIEventListeners(messageBus, uiEventHandlers{
		onConnStatus: func(connectors.ConnectionStatus) {
			connEvents.Add(1)
		},
		onQuality: func(change domain.QualityChange) {
			lastLevel.Store(int64(change.Level))
			qualityEvents.Add(1)
		},
		onPermission: func(domain.PermissionChange) {
			permissionEvents.Add(1)
		},
	})

	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{State: connectors.ConnectionStateConnected})
	messageBus.Publish(connectors.TopicSignalQuality, domain.QualityChange{Level: domain.QualityGood})
	messageBus.Publish(connectors.TopicSignalPermission, domain.PermissionChange{State: domain.AuthorizationAuthorized, Enabled: true})
	messageBus.Publish(connectors.TopicSignalQuality, "unexpected")

	waitForCondition(t, func() bool {
		return connEvents.Load() == 1 && qualityEvents.Load() == 1 && permissionEvents.Load() == 1
	})
	if got := domain.QualityLevel(lastLevel.Load()); got != domain.QualityGood {
		t.Fatalf("expected good quality, got %v", got)
	}

	stop()

	connBefore := connEvents.Load()
	qualityBefore := qualityEvents.Load()
	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{State: connectors.ConnectionStateDisconnected})
	messageBus.Publish(connectors.TopicSignalQuality, domain.QualityChange{Level: domain.QualityNoSignal})
	time.Sleep(100 * time.Millisecond)

	if connEvents.Load() != connBefore {
		t.Fatalf("expected no new connection callbacks after stop: before=%d after=%d", connBefore, connEvents.Load())
	}
	if qualityEvents.Load() != qualityBefore {
		t.Fatalf("expected no new quality callbacks after stop: before=%d after=%d", qualityBefore, qualityEvents.Load())
	}
}

func TestStartUIEventListenersNilBusReturnsNoopStop(t *testing.T) {
	stop := startUIEventListeners(nil, uiEventHandlers{})
	stop()
	stop()
}

func waitForCondition(t *testing.T, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition was not met before timeout")
}

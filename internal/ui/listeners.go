package ui

import (
	"fmt"
	"sync"

	"github.com/skobkin/gpsreader/internal/bus"
	"github.com/skobkin/gpsreader/internal/connectors"
	"github.com/skobkin/gpsreader/internal/domain"
)

type uiEventHandlers struct {
	onConnStatus func(connectors.ConnectionStatus)
	onQuality    func(domain.QualityChange)
	onPermission func(domain.PermissionChange)
}

func startUIEventListeners(messageBus bus.MessageBus, handlers uiEventHandlers) func() {
	if messageBus == nil {
		appLogger.Debug("skipping UI event listeners: message bus is nil")

		return func() {}
	}

	topics := []string{
		connectors.TopicConnStatus,
		connectors.TopicSignalQuality,
		connectors.TopicSignalPermission,
	}
	sub := messageBus.Subscribe(topics...)
	appLogger.Debug("subscribed to UI bus topics", "topics", topics)
	done := make(chan struct{})
	var stopOnce sync.Once

	go func() {
		for {
			select {
			case <-done:
				return
			case raw, ok := <-sub:
				if !ok {
					appLogger.Debug("UI event subscription closed")

					return
				}
				select {
				case <-done:
					return
				default:
				}
				dispatchUIEvent(raw, handlers)
			}
		}
	}()

	return func() {
		stopOnce.Do(func() {
			appLogger.Debug("stopping UI event listeners")
			close(done)
			messageBus.Unsubscribe(sub, topics...)
		})
	}
}

func dispatchUIEvent(raw any, handlers uiEventHandlers) {
	switch msg := raw.(type) {
	case connectors.ConnectionStatus:
		if handlers.onConnStatus != nil {
			handlers.onConnStatus(msg)
		}
	case domain.QualityChange:
		if handlers.onQuality != nil {
			handlers.onQuality(msg)
		}
	case domain.PermissionChange:
		if handlers.onPermission != nil {
			handlers.onPermission(msg)
		}
	default:
		appLogger.Debug("ignoring unexpected UI event payload", "payload_type", fmt.Sprintf("%T", raw))
	}
}

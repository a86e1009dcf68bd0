package watch

import (
	"context"
	"sync"

	"github.com/skobkin/gpsreader/internal/bus"
)

type forwardedEvent struct {
	topic string
	msg   any
}

// eventForwarder publishes to the bus from its own goroutine. enqueue never
// blocks, so a slow bus subscriber cannot stall the tracker writers.
type eventForwarder struct {
	mu    sync.Mutex
	queue []forwardedEvent
	wake  chan struct{}
}

func newEventForwarder() *eventForwarder {
	return &eventForwarder{wake: make(chan struct{}, 1)}
}

func (f *eventForwarder) enqueue(topic string, msg any) {
	f.mu.Lock()
	f.queue = append(f.queue, forwardedEvent{topic: topic, msg: msg})
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// run publishes queued events in order until ctx is done. Events still queued
// at that point are dropped.
func (f *eventForwarder) run(ctx context.Context, b bus.MessageBus) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.wake:
		}

		f.mu.Lock()
		pending := f.queue
		f.queue = nil
		f.mu.Unlock()

		for _, event := range pending {
			if ctx.Err() != nil {
				return
			}
			b.Publish(event.topic, event.msg)
		}
	}
}

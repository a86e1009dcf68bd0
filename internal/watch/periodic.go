package watch

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// PeriodicTask runs fn on a fixed interval until stopped. Start restarts the
// task, so at most one ticker goroutine is alive at any time.
type PeriodicTask struct {
	clock    clockwork.Clock
	interval time.Duration
	fn       func(now time.Time)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPeriodicTask(clock clockwork.Clock, interval time.Duration, fn func(now time.Time)) *PeriodicTask {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &PeriodicTask{
		clock:    clock,
		interval: interval,
		fn:       fn,
	}
}

// Start cancels a running loop, waits for it to exit and starts a fresh one.
// The ticker is created before Start returns.
func (p *PeriodicTask) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ticker := p.clock.NewTicker(p.interval)
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.Chan():
				// Prefer cancellation when both are ready.
				if runCtx.Err() != nil {
					return
				}
				p.fn(p.clock.Now())
			}
		}
	}()
}

// Stop cancels the running loop and waits for it to exit. No-op when idle.
func (p *PeriodicTask) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
}

func (p *PeriodicTask) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *PeriodicTask) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
}

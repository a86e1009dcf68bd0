package watch

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultCheckInterval  = time.Second
	DefaultStaleThreshold = 8 * time.Second
)

// StalenessConfig tunes the no-signal detector.
type StalenessConfig struct {
	Clock     clockwork.Clock
	Interval  time.Duration
	Threshold time.Duration
}

// StalenessMonitor detects that no reading has arrived for longer than the
// threshold. While armed it calls onTick every interval; the tick handler
// decides what to do with a stale verdict.
type StalenessMonitor struct {
	clock     clockwork.Clock
	threshold time.Duration
	task      *PeriodicTask

	mu         sync.RWMutex
	lastUpdate time.Time
	known      bool
}

func NewStalenessMonitor(cfg StalenessConfig, onTick func(now time.Time)) *StalenessMonitor {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultStaleThreshold
	}
	if onTick == nil {
		onTick = func(time.Time) {}
	}

	return &StalenessMonitor{
		clock:     clock,
		threshold: threshold,
		task:      NewPeriodicTask(clock, interval, onTick),
	}
}

// Start arms the monitor. Calling it again replaces the running ticker.
func (m *StalenessMonitor) Start(ctx context.Context) {
	m.task.Start(ctx)
}

func (m *StalenessMonitor) Stop() {
	m.task.Stop()
}

func (m *StalenessMonitor) Armed() bool {
	return m.task.Running()
}

func (m *StalenessMonitor) Threshold() time.Duration {
	return m.threshold
}

// RecordUpdate overwrites the time of the last accepted reading.
func (m *StalenessMonitor) RecordUpdate(ts time.Time) {
	if ts.IsZero() {
		ts = m.clock.Now()
	}

	m.mu.Lock()
	m.lastUpdate = ts
	m.known = true
	m.mu.Unlock()
}

func (m *StalenessMonitor) LastUpdate() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lastUpdate, m.known
}

// Stale reports whether more than the threshold has elapsed since the last
// update. It is false until the first update is recorded.
func (m *StalenessMonitor) Stale(now time.Time) bool {
	last, known := m.LastUpdate()
	if !known {
		return false
	}

	return now.Sub(last) > m.threshold
}

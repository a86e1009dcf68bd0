package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/skobkin/gpsreader/internal/bus"
	"github.com/skobkin/gpsreader/internal/connectors"
	"github.com/skobkin/gpsreader/internal/domain"
)

// TrackerConfig customizes tracker behavior.
type TrackerConfig struct {
	Clock          clockwork.Clock
	CheckInterval  time.Duration
	StaleThreshold time.Duration
	Logger         *slog.Logger
}

// Tracker owns the current signal quality and permission state. Readings and
// staleness ticks both write quality under one mutex, so a tick can never
// overwrite a fresher reading with a stale verdict.
//
// Listeners registered with OnQualityChange and OnPermissionChange run
// synchronously on the writing goroutine with the tracker lock held. They must
// not block and must not call back into HandleReading, HandleAuthorization or
// CheckStaleness. Bus publication started by Start is queued and sent from a
// separate goroutine for that reason.
type Tracker struct {
	clock   clockwork.Clock
	logger  *slog.Logger
	monitor *StalenessMonitor

	mu            sync.Mutex
	quality       *Cell[domain.QualityLevel]
	authorization *Cell[domain.AuthorizationState]
	cause         domain.QualityCause
	runCtx        context.Context
}

func NewTracker(cfg TrackerConfig) *Tracker {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "watch.tracker")
	}

	t := &Tracker{
		clock:         clock,
		logger:        logger,
		quality:       NewCell(domain.QualityUnknown),
		authorization: NewCell(domain.AuthorizationNotDetermined),
		runCtx:        context.Background(),
	}
	t.monitor = NewStalenessMonitor(StalenessConfig{
		Clock:     clock,
		Interval:  cfg.CheckInterval,
		Threshold: cfg.StaleThreshold,
	}, func(now time.Time) {
		t.CheckStaleness(now)
	})

	return t
}

// Start consumes reading and authorization events from the bus and
// republishes state changes. It returns immediately.
func (t *Tracker) Start(ctx context.Context, b bus.MessageBus) {
	t.mu.Lock()
	t.runCtx = ctx
	t.mu.Unlock()

	if b == nil {
		return
	}

	forwarder := newEventForwarder()
	go forwarder.run(ctx, b)

	unsubQuality := t.OnQualityChange(func(change domain.QualityChange) {
		forwarder.enqueue(connectors.TopicSignalQuality, change)
	})
	unsubPermission := t.OnPermissionChange(func(change domain.PermissionChange) {
		forwarder.enqueue(connectors.TopicSignalPermission, change)
	})

	sub := b.Subscribe(connectors.TopicReading, connectors.TopicAuthorization)
	go func() {
		defer b.Unsubscribe(sub, connectors.TopicReading, connectors.TopicAuthorization)
		defer unsubQuality()
		defer unsubPermission()
		defer t.monitor.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-sub:
				if !ok {
					return
				}
				switch msg := raw.(type) {
				case domain.Reading:
					t.HandleReading(msg)
				case domain.AuthorizationState:
					t.HandleAuthorization(msg)
				}
			}
		}
	}()
}

// HandleReading records the update time and publishes the reading's quality.
func (t *Tracker) HandleReading(reading domain.Reading) domain.QualityLevel {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.monitor.RecordUpdate(reading.Timestamp)
	level := domain.Classify(&reading)
	t.cause = domain.QualityCauseReading
	if t.quality.Set(level) {
		t.logger.Debug("quality changed by reading", "level", level, "accuracy_m", reading.HorizontalAccuracy)
	}

	return level
}

// HandleAuthorization updates the permission state. Entering the authorized
// state arms the staleness monitor.
func (t *Tracker) HandleAuthorization(state domain.AuthorizationState) {
	t.mu.Lock()
	previous := t.authorization.Get()
	changed := t.authorization.Set(state)
	ctx := t.runCtx
	t.mu.Unlock()

	if !changed {
		return
	}
	t.logger.Info("authorization changed", "state", state, "previous", previous)
	if state == domain.AuthorizationAuthorized {
		// Outside the lock: Start waits for the previous tick to finish and
		// that tick may be waiting for t.mu.
		t.monitor.Start(ctx)
	}
}

// CheckStaleness forces NoSignal when no reading arrived for longer than the
// threshold. It reports whether the verdict was stale.
func (t *Tracker) CheckStaleness(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.monitor.Stale(now) {
		return false
	}
	t.cause = domain.QualityCauseStale
	if t.quality.Set(domain.QualityNoSignal) {
		last, _ := t.monitor.LastUpdate()
		t.logger.Info("no readings received, signal lost", "since", now.Sub(last).String())
	}

	return true
}

// StartMonitor arms the staleness monitor regardless of authorization.
func (t *Tracker) StartMonitor(ctx context.Context) {
	t.monitor.Start(ctx)
}

func (t *Tracker) StopMonitor() {
	t.monitor.Stop()
}

func (t *Tracker) MonitorArmed() bool {
	return t.monitor.Armed()
}

func (t *Tracker) Quality() domain.QualityLevel {
	return t.quality.Get()
}

func (t *Tracker) Authorization() domain.AuthorizationState {
	return t.authorization.Get()
}

func (t *Tracker) PermissionEnabled() bool {
	return t.authorization.Get().Enabled()
}

// OnQualityChange registers fn for quality changes and returns an unsubscribe func.
func (t *Tracker) OnQualityChange(fn func(domain.QualityChange)) func() {
	return t.quality.Subscribe(func(value, previous domain.QualityLevel) {
		// Set is only called with t.mu held, so cause matches this change.
		fn(domain.QualityChange{
			Level:    value,
			Previous: previous,
			Cause:    t.cause,
			At:       t.clock.Now(),
		})
	})
}

// OnPermissionChange registers fn for permission changes and returns an unsubscribe func.
func (t *Tracker) OnPermissionChange(fn func(domain.PermissionChange)) func() {
	return t.authorization.Subscribe(func(value, _ domain.AuthorizationState) {
		fn(domain.PermissionChange{
			State:   value,
			Enabled: value.Enabled(),
			At:      t.clock.Now(),
		})
	})
}

package alert

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultBeepPeriod = 1500 * time.Millisecond
	DefaultBeepFreq   = 880.0
	// DefaultBeepDuration is in milliseconds.
	DefaultBeepDuration = 400
)

// Player plays the signal loss alarm. Play and Stop are idempotent.
type Player interface {
	Play() error
	Stop() error
	Playing() bool
}

// BeepPlayer repeats a system beep until stopped.
type BeepPlayer struct {
	period   time.Duration
	freq     float64
	duration int
	beep     func(freq float64, duration int) error
	clock    clockwork.Clock
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// BeepPlayerConfig customizes the alarm tone.
type BeepPlayerConfig struct {
	Period time.Duration
	Freq   float64
	// Duration of a single beep in milliseconds.
	Duration int
	// Clock paces the beeps. Defaults to the real clock.
	Clock  clockwork.Clock
	Logger *slog.Logger
}

func NewBeepPlayer(cfg BeepPlayerConfig) *BeepPlayer {
	period := cfg.Period
	if period <= 0 {
		period = DefaultBeepPeriod
	}
	freq := cfg.Freq
	if freq <= 0 {
		freq = DefaultBeepFreq
	}
	duration := cfg.Duration
	if duration <= 0 {
		duration = DefaultBeepDuration
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "alert.player")
	}

	return &BeepPlayer{
		period:   period,
		freq:     freq,
		duration: duration,
		beep:     beeep.Beep,
		clock:    clock,
		logger:   logger,
	}
}

func (p *BeepPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go p.loop(ctx, done)

	return nil
}

func (p *BeepPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel == nil {
		return nil
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil

	return nil
}

func (p *BeepPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cancel != nil
}

func (p *BeepPlayer) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := p.clock.NewTicker(p.period)
	defer ticker.Stop()

	for {
		if err := p.beep(p.freq, p.duration); err != nil {
			p.logger.Warn("play alarm beep", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}
	}
}

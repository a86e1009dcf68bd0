package alert

import (
	"log/slog"
	"sync"

	"github.com/skobkin/gpsreader/internal/domain"
)

// Controller starts the alarm when quality drops to NoSignal and stops it
// when quality leaves NoSignal. Changes that do not cross that edge are ignored.
type Controller struct {
	player  Player
	enabled bool
	logger  *slog.Logger

	mu      sync.Mutex
	last    domain.QualityLevel
	lastSet bool
}

func NewController(player Player, audioEnabled bool, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default().With("component", "alert.controller")
	}

	return &Controller{
		player:  player,
		enabled: audioEnabled && player != nil,
		logger:  logger,
	}
}

// HandleQuality applies a new quality level.
func (c *Controller) HandleQuality(level domain.QualityLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasLost := c.lastSet && c.last.Lost()
	c.last = level
	c.lastSet = true
	if !c.enabled || wasLost == level.Lost() {
		return
	}

	if level.Lost() {
		if c.player.Playing() {
			return
		}
		c.logger.Info("signal lost, starting alarm")
		if err := c.player.Play(); err != nil {
			c.logger.Warn("start alarm", "error", err)
		}

		return
	}

	if !c.player.Playing() {
		return
	}
	c.logger.Info("signal back, stopping alarm", "level", level)
	if err := c.player.Stop(); err != nil {
		c.logger.Warn("stop alarm", "error", err)
	}
}

// SetAudioEnabled toggles the alarm at runtime. Enabling it while the signal
// is lost starts the alarm right away.
func (c *Controller) SetAudioEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	enabled = enabled && c.player != nil
	if enabled == c.enabled {
		return
	}
	c.enabled = enabled
	if c.player == nil {
		return
	}

	switch {
	case !enabled && c.player.Playing():
		if err := c.player.Stop(); err != nil {
			c.logger.Warn("stop alarm", "error", err)
		}
	case enabled && c.lastSet && c.last.Lost() && !c.player.Playing():
		if err := c.player.Play(); err != nil {
			c.logger.Warn("start alarm", "error", err)
		}
	}
}

// HandleChange is a tracker listener adapter.
func (c *Controller) HandleChange(change domain.QualityChange) {
	c.HandleQuality(change.Level)
}

// Close silences the alarm.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled || !c.player.Playing() {
		return nil
	}

	return c.player.Stop()
}

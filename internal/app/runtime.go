package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/skobkin/gpsreader/internal/alert"
	"github.com/skobkin/gpsreader/internal/bus"
	"github.com/skobkin/gpsreader/internal/config"
	"github.com/skobkin/gpsreader/internal/connectors"
	"github.com/skobkin/gpsreader/internal/domain"
	"github.com/skobkin/gpsreader/internal/logging"
	"github.com/skobkin/gpsreader/internal/platform"
	"github.com/skobkin/gpsreader/internal/receiver"
	"github.com/skobkin/gpsreader/internal/watch"
)

// Options tweak runtime initialization. The zero value loads everything from
// the user config directory.
type Options struct {
	// Configure adjusts the loaded config before validation, e.g. with CLI flags.
	Configure func(*config.AppConfig)
	// Player overrides the alarm player.
	Player alert.Player
	Clock  clockwork.Clock
	// Startup manages launch at login. Nil leaves the OS entry untouched.
	Startup platform.StartupRegistrar
}

type Runtime struct {
	mu sync.RWMutex

	Ctx    context.Context
	cancel context.CancelFunc

	Paths  Paths
	Config config.AppConfig
	Clock  clockwork.Clock

	LogManager *logging.Manager
	Bus        *bus.PubSubBus

	Tracker *watch.Tracker
	Alarm   *alert.Controller

	ConnectionTransport *SwitchableTransport
	Receiver            *receiver.Service
	Startup             platform.StartupRegistrar

	stopAlarmListener func()

	connStatusMu    sync.RWMutex
	connStatus      connectors.ConnectionStatus
	connStatusKnown bool
}

func Initialize(parent context.Context) (*Runtime, error) {
	return InitializeWithOptions(parent, Options{})
}

func InitializeWithOptions(parent context.Context, opts Options) (*Runtime, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.Configure != nil {
		opts.Configure(&cfg)
		cfg.FillMissingDefaults()
	}
	cfg.Receiver.ReplayFile = paths.ResolveReplayFile(cfg.Receiver.ReplayFile)

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	ctx, cancel := context.WithCancel(parent)
	rt := &Runtime{
		Ctx:     ctx,
		cancel:  cancel,
		Paths:   paths,
		Config:  cfg,
		Clock:   clock,
		Startup: opts.Startup,
	}

	logMgr := logging.NewManager()
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		_ = logMgr.Close()
		cancel()

		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	slog.Info("starting gpsreader runtime", "version", BuildVersion(), "build_date", BuildDateYMD())

	b := bus.New(logMgr.Logger("bus"))
	rt.Bus = b
	connSub := b.Subscribe(connectors.TopicConnStatus)
	go rt.captureConnStatus(ctx, connSub)

	rt.Tracker = watch.NewTracker(watch.TrackerConfig{
		Clock:          clock,
		CheckInterval:  cfg.Signal.CheckInterval(),
		StaleThreshold: cfg.Signal.StaleThreshold(),
		Logger:         logMgr.Logger("watch"),
	})

	player := opts.Player
	if player == nil {
		player = alert.NewBeepPlayer(alert.BeepPlayerConfig{
			Period: cfg.Alerts.BeepPeriod(),
			Clock:  clock,
			Logger: logMgr.Logger("alert.player"),
		})
	}
	rt.Alarm = alert.NewController(player, cfg.Alerts.AudioEnabled, logMgr.Logger("alert"))
	rt.stopAlarmListener = rt.Tracker.OnQualityChange(rt.Alarm.HandleChange)
	rt.Tracker.Start(ctx, b)

	connTransport, err := NewConnectionTransport(cfg.Receiver, clock)
	if err != nil {
		_ = rt.Close()

		return nil, fmt.Errorf("initialize transport: %w", err)
	}
	rt.ConnectionTransport = connTransport

	codec := receiver.NewNMEACodec(cfg.Receiver.UERE)
	rt.Receiver = receiver.NewService(logMgr.Logger("receiver"), b, rt.ConnectionTransport, codec, clock)
	rt.Receiver.Start(ctx)

	// A moved binary leaves a stale entry behind, so re-register on start.
	_ = rt.applyAutostart(cfg.UI.Autostart, "startup")

	return rt, nil
}

func (r *Runtime) captureConnStatus(ctx context.Context, sub bus.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-sub:
			if !ok {
				return
			}
			status, ok := raw.(connectors.ConnectionStatus)
			if !ok {
				continue
			}
			r.setConnStatus(status)
		}
	}
}

func (r *Runtime) setConnStatus(status connectors.ConnectionStatus) {
	r.connStatusMu.Lock()
	r.connStatus = status
	r.connStatusKnown = true
	r.connStatusMu.Unlock()
}

func (r *Runtime) CurrentConnStatus() (connectors.ConnectionStatus, bool) {
	r.connStatusMu.RLock()
	status := r.connStatus
	known := r.connStatusKnown
	r.connStatusMu.RUnlock()

	return status, known
}

func (r *Runtime) CurrentConfig() config.AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.Config
}

// CurrentQuality reports the tracker state for UI bootstrap.
func (r *Runtime) CurrentQuality() (domain.QualityLevel, bool) {
	if r.Tracker == nil {
		return domain.QualityUnknown, false
	}

	return r.Tracker.Quality(), r.Tracker.PermissionEnabled()
}

func (r *Runtime) CurrentAuthorization() domain.AuthorizationState {
	if r.Tracker == nil {
		return domain.AuthorizationNotDetermined
	}

	return r.Tracker.Authorization()
}

// SaveAndApplyConfig persists cfg and applies what can change at runtime:
// logging, the receiver connector, the audio alarm toggle and launch at login.
// Signal timing takes effect on the next start. A failed launch at login
// update is reported as *AutostartSyncWarning after everything else applied.
func (r *Runtime) SaveAndApplyConfig(cfg config.AppConfig) error {
	cfg.FillMissingDefaults()
	cfg.Receiver.ReplayFile = r.Paths.ResolveReplayFile(cfg.Receiver.ReplayFile)
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if err := config.Save(r.Paths.ConfigFile, cfg); err != nil {
		r.mu.Unlock()

		return err
	}
	previous := r.Config
	r.Config = cfg
	r.mu.Unlock()

	if r.LogManager != nil {
		if err := r.LogManager.Configure(cfg.Logging, r.Paths.LogFile); err != nil {
			return err
		}
	}
	if r.ConnectionTransport != nil && previous.Receiver != cfg.Receiver {
		if err := r.ConnectionTransport.Apply(cfg.Receiver); err != nil {
			return err
		}
		slog.Info("receiver connector switched", "connector", cfg.Receiver.Connector, "target", ConnectionTarget(cfg.Receiver))
	}
	if r.Alarm != nil {
		r.Alarm.SetAudioEnabled(cfg.Alerts.AudioEnabled)
	}
	if previous.UI.Autostart != cfg.UI.Autostart {
		if err := r.applyAutostart(cfg.UI.Autostart, "config_save"); err != nil {
			return &AutostartSyncWarning{Err: err}
		}
	}

	return nil
}

func (r *Runtime) Close() error {
	if r.cancel != nil {
		r.cancel()
	}
	if r.stopAlarmListener != nil {
		r.stopAlarmListener()
	}
	if r.Tracker != nil {
		r.Tracker.StopMonitor()
	}
	if r.Alarm != nil {
		_ = r.Alarm.Close()
	}
	if r.Bus != nil {
		r.Bus.Close()
	}
	if r.ConnectionTransport != nil {
		_ = r.ConnectionTransport.Close()
	}
	if r.LogManager != nil {
		_ = r.LogManager.Close()
	}

	return nil
}

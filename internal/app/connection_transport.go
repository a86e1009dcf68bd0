package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/skobkin/gpsreader/internal/config"
	"github.com/skobkin/gpsreader/internal/transport"
)

// SwitchableTransport wraps the active receiver connector and lets runtime swap it on config updates.
type SwitchableTransport struct {
	mu sync.RWMutex

	clock     clockwork.Clock
	cfg       config.ReceiverConfig
	transport transport.Transport
}

func NewConnectionTransport(cfg config.ReceiverConfig, clock clockwork.Clock) (*SwitchableTransport, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	tr, err := newTransportForReceiver(cfg, clock)
	if err != nil {
		return nil, err
	}

	return &SwitchableTransport{
		clock:     clock,
		cfg:       cfg,
		transport: tr,
	}, nil
}

// Apply replaces the active connector. A pending read on the old one fails,
// which makes the receiver service reconnect through the new one.
func (t *SwitchableTransport) Apply(cfg config.ReceiverConfig) error {
	next, err := newTransportForReceiver(cfg, t.clock)
	if err != nil {
		return err
	}

	t.mu.Lock()
	current := t.transport
	t.transport = next
	t.cfg = cfg
	t.mu.Unlock()

	if current != nil {
		_ = current.Close()
	}

	return nil
}

func (t *SwitchableTransport) Name() string {
	tr := t.current()
	if tr == nil {
		return "unknown"
	}

	return tr.Name()
}

func (t *SwitchableTransport) StatusTarget() string {
	t.mu.RLock()
	tr := t.transport
	cfg := t.cfg
	t.mu.RUnlock()

	if provider, ok := tr.(transport.StatusTargetResolver); ok {
		target := strings.TrimSpace(provider.StatusTarget())
		if target != "" {
			return target
		}
	}

	return ConnectionTarget(cfg)
}

func (t *SwitchableTransport) Connect(ctx context.Context) error {
	tr := t.current()
	if tr == nil {
		return fmt.Errorf("transport is not configured")
	}

	return tr.Connect(ctx)
}

func (t *SwitchableTransport) Close() error {
	tr := t.current()
	if tr == nil {
		return nil
	}

	return tr.Close()
}

func (t *SwitchableTransport) ReadLine(ctx context.Context) (string, error) {
	tr := t.current()
	if tr == nil {
		return "", fmt.Errorf("transport is not configured")
	}

	return tr.ReadLine(ctx)
}

func (t *SwitchableTransport) current() transport.Transport {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.transport
}

func (t *SwitchableTransport) Config() config.ReceiverConfig {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.cfg
}

func NewTransportForReceiver(cfg config.ReceiverConfig, clock clockwork.Clock) (transport.Transport, error) {
	return newTransportForReceiver(cfg, clock)
}

func newTransportForReceiver(cfg config.ReceiverConfig, clock clockwork.Clock) (transport.Transport, error) {
	switch cfg.Connector {
	case config.ConnectorSerial:
		return transport.NewSerialTransport(cfg.SerialPort, cfg.SerialBaud), nil
	case config.ConnectorTCP:
		return transport.NewTCPTransport(cfg.Host, cfg.Port, cfg.GPSDWatch), nil
	case config.ConnectorReplay:
		return transport.NewReplayTransport(cfg.ReplayFile, cfg.ReplayInterval(), clock), nil
	default:
		return nil, fmt.Errorf("unknown connector: %q", cfg.Connector)
	}
}

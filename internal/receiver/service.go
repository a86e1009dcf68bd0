package receiver

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/skobkin/gpsreader/internal/bus"
	"github.com/skobkin/gpsreader/internal/connectors"
	"github.com/skobkin/gpsreader/internal/domain"
	"github.com/skobkin/gpsreader/internal/transport"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 15 * time.Second
	readTimeout    = 30 * time.Second
)

// Service keeps a receiver transport connected and publishes what it reports.
type Service struct {
	logger    *slog.Logger
	transport transport.Transport
	codec     Codec
	bus       bus.MessageBus
	clock     clockwork.Clock

	mu            sync.Mutex
	authorization domain.AuthorizationState
	authPublished bool
}

func NewService(logger *slog.Logger, b bus.MessageBus, tr transport.Transport, codec Codec, clock clockwork.Clock) *Service {
	if logger == nil {
		logger = slog.Default().With("component", "receiver")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		logger:        logger,
		transport:     tr,
		codec:         codec,
		bus:           b,
		clock:         clock,
		authorization: domain.AuthorizationNotDetermined,
	}
}

func (s *Service) Start(ctx context.Context) {
	s.publishAuthorization(domain.AuthorizationNotDetermined)
	go s.runConnector(ctx)
}

func (s *Service) Authorization() domain.AuthorizationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.authorization
}

func (s *Service) runConnector(ctx context.Context) {
	defer s.publishConnStatus(connectors.ConnectionStateDisconnected, nil)

	backoff := initialBackoff
	for {
		if err := ctx.Err(); err != nil {
			return
		}

		s.publishConnStatus(connectors.ConnectionStateConnecting, nil)
		if err := s.transport.Connect(ctx); err != nil {
			if errors.Is(err, transport.ErrPermissionDenied) {
				s.publishAuthorization(domain.AuthorizationDenied)
			}
			s.publishConnStatus(connectors.ConnectionStateReconnecting, err)
			s.logger.Error("transport connect failed", "error", err)
			if !s.sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)

			continue
		}

		backoff = initialBackoff
		s.publishAuthorization(domain.AuthorizationAuthorized)
		s.publishConnStatus(connectors.ConnectionStateConnected, nil)

		err := s.runReader(ctx)
		_ = s.transport.Close()
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("receiver stream ended", "error", err)
		s.publishConnStatus(connectors.ConnectionStateReconnecting, err)

		if !s.sleep(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff)
	}
}

func (s *Service) runReader(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		readCtx, cancel := context.WithTimeout(ctx, readTimeout)
		line, err := s.transport.ReadLine(readCtx)
		cancel()
		if err != nil {
			return err
		}

		s.handleLine(line)
	}
}

func (s *Service) handleLine(line string) {
	now := s.clock.Now()
	decoded, err := s.codec.Decode(line, now)
	s.bus.Publish(connectors.TopicRawSentence, connectors.RawSentence{
		Line:      line,
		Type:      decoded.Type,
		Timestamp: now,
	})
	if err != nil {
		s.logger.Debug("decode sentence failed", "type", decoded.Type, "error", err)

		return
	}
	if decoded.Reading != nil {
		s.bus.Publish(connectors.TopicReading, *decoded.Reading)
	}
}

func (s *Service) publishAuthorization(state domain.AuthorizationState) {
	s.mu.Lock()
	if s.authPublished && s.authorization == state {
		s.mu.Unlock()

		return
	}
	s.authorization = state
	s.authPublished = true
	s.mu.Unlock()

	s.logger.Info("receiver authorization changed", "state", state)
	s.bus.Publish(connectors.TopicAuthorization, state)
}

func (s *Service) publishConnStatus(state connectors.ConnectionState, err error) {
	status := connectors.ConnectionStatus{
		State:         state,
		TransportName: s.transport.Name(),
		Timestamp:     s.clock.Now(),
	}
	if resolver, ok := s.transport.(transport.StatusTargetResolver); ok {
		status.Target = resolver.StatusTarget()
	}
	if err != nil {
		status.Err = err.Error()
	}
	s.bus.Publish(connectors.TopicConnStatus, status)
}

func (s *Service) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-s.clock.After(d):
		return true
	}
}

func nextBackoff(current time.Duration) time.Duration {
	if current >= maxBackoff {
		return maxBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}

	return next
}

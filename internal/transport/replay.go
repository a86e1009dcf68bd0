package transport

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const DefaultReplayInterval = time.Second

// ReplayTransport plays back a recorded NMEA log. It waits one interval after
// every GGA sentence so that a log recorded at 1 Hz replays in real time.
// io.EOF is returned at the end of the file.
type ReplayTransport struct {
	path     string
	interval time.Duration
	clock    clockwork.Clock

	mu      sync.Mutex
	file    *os.File
	reader  *sentenceReader
	pending bool
}

func NewReplayTransport(path string, interval time.Duration, clock clockwork.Clock) *ReplayTransport {
	if interval <= 0 {
		interval = DefaultReplayInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &ReplayTransport{path: path, interval: interval, clock: clock}
}

func (t *ReplayTransport) Name() string {
	return "replay"
}

func (t *ReplayTransport) StatusTarget() string {
	return filepath.Base(t.path)
}

func (t *ReplayTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	logger := transportLogger("replay", "file", t.path)
	if t.file != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(t.path) == "" {
		return errors.New("replay file is empty")
	}

	// #nosec G304 -- replay path comes from user config or command line.
	file, err := os.Open(filepath.Clean(t.path))
	if err != nil {
		logger.Warn("open failed", "error", err)
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: open replay file: %v", ErrPermissionDenied, err)
		}

		return fmt.Errorf("open replay file: %w", err)
	}
	t.file = file
	t.reader = newSentenceReader(file)
	t.pending = false
	logger.Info("replay started")

	return nil
}

func (t *ReplayTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	t.reader = nil

	return err
}

func (t *ReplayTransport) ReadLine(ctx context.Context) (string, error) {
	t.mu.Lock()
	reader := t.reader
	pending := t.pending
	t.mu.Unlock()
	if reader == nil {
		return "", errors.New("transport is not connected")
	}

	if pending {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.clock.After(t.interval):
		}
	}

	line, err := reader.ReadLine(ctx)
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	t.pending = isGGA(line)
	t.mu.Unlock()

	return line, nil
}

func isGGA(line string) bool {
	// $GPGGA, $GNGGA, $GLGGA...
	return len(line) >= 6 && line[3:6] == "GGA"
}

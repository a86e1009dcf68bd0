package transport

import (
	"context"
	"errors"
)

// ErrPermissionDenied is wrapped by Connect when the OS refuses access to the
// receiver device.
var ErrPermissionDenied = errors.New("receiver access denied")

// Transport yields NMEA 0183 sentences from a GNSS receiver, one line at a time.
type Transport interface {
	Name() string
	Connect(ctx context.Context) error
	Close() error
	ReadLine(ctx context.Context) (string, error)
}

type StatusTargetResolver interface {
	StatusTarget() string
}

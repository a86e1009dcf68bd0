package platform

import (
	"errors"
	"sync"
)

// ErrAlreadyRunning is returned by AcquireInstance when another process holds
// the guard for the same name.
var ErrAlreadyRunning = errors.New("another instance is already running")

// InstanceGuard holds the per-user single instance lock until released.
type InstanceGuard struct {
	once    sync.Once
	release func() error
	err     error
}

// AcquireInstance takes the per-user lock for name. Only one process per user
// session may hold it, so two GUI copies never open the same receiver.
func AcquireInstance(name string) (*InstanceGuard, error) {
	release, err := acquireInstanceLock(sanitizeName(name, "app"))
	if err != nil {
		return nil, err
	}

	return &InstanceGuard{release: release}, nil
}

// Release drops the lock. Calling it more than once is safe.
func (g *InstanceGuard) Release() error {
	if g == nil {
		return nil
	}
	g.once.Do(func() {
		if g.release != nil {
			g.err = g.release()
		}
	})

	return g.err
}

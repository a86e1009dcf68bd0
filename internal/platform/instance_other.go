//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package platform

// Platforms without a lock primitive run without the guard.
func acquireInstanceLock(string) (func() error, error) {
	return func() error { return nil }, nil
}

//go:build !linux && !windows

package platform

import (
	"fmt"
	"runtime"
)

type unsupportedStartupRegistrar struct{}

func newStartupRegistrar(startupIdentity) StartupRegistrar {
	return unsupportedStartupRegistrar{}
}

func (unsupportedStartupRegistrar) Apply(entry StartupEntry) error {
	if !entry.Enabled {
		return nil
	}

	return fmt.Errorf("launch at login is not supported on %s", runtime.GOOS)
}

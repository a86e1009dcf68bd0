//go:build windows

package platform

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// runKeyStartupRegistrar manages a value under the per-user Run key.
type runKeyStartupRegistrar struct {
	id startupIdentity
}

func newStartupRegistrar(id startupIdentity) StartupRegistrar {
	return runKeyStartupRegistrar{id: id}
}

func (r runKeyStartupRegistrar) Apply(entry StartupEntry) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open autostart registry key: %w", err)
	}
	defer key.Close()

	if !entry.Enabled {
		if err := key.DeleteValue(r.id.name); err != nil && !isValueNotFound(err) {
			return fmt.Errorf("remove autostart registry value: %w", err)
		}

		return nil
	}

	executable, args, err := launchCommand(entry)
	if err != nil {
		return err
	}
	if err := key.SetStringValue(r.id.name, commandLine(executable, args)); err != nil {
		return fmt.Errorf("set autostart registry value: %w", err)
	}

	return nil
}

func isValueNotFound(err error) bool {
	return errors.Is(err, registry.ErrNotExist) || errors.Is(err, syscall.Errno(windows.ERROR_FILE_NOT_FOUND))
}

func commandLine(executable string, args []string) string {
	fields := make([]string, 0, 1+len(args))
	fields = append(fields, windows.EscapeArg(executable))
	for _, arg := range args {
		fields = append(fields, windows.EscapeArg(arg))
	}

	return strings.Join(fields, " ")
}

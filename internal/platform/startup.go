package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StartHiddenArg is passed to the GUI binary when it is launched into the tray.
const StartHiddenArg = "--start-hidden"

// StartupMode selects how the login session launches the app.
type StartupMode string

const (
	StartupModeWindow StartupMode = "window"
	StartupModeTray   StartupMode = "tray"
)

// StartupEntry describes the desired login launch registration.
type StartupEntry struct {
	Enabled bool
	Mode    StartupMode
}

// StartupRegistrar creates or removes the OS login launch entry for the app.
type StartupRegistrar interface {
	Apply(entry StartupEntry) error
}

// NewStartupRegistrar returns the registrar for the current OS. name is the
// entry identifier, displayName is what session managers show to the user.
func NewStartupRegistrar(name, displayName string) StartupRegistrar {
	return newStartupRegistrar(startupIdentity{
		name:        sanitizeName(name, "app"),
		displayName: strings.TrimSpace(displayName),
	})
}

type startupIdentity struct {
	name        string
	displayName string
}

func (id startupIdentity) label() string {
	if id.displayName != "" {
		return id.displayName
	}

	return id.name
}

func (m StartupMode) normalized() StartupMode {
	if m == StartupModeTray {
		return StartupModeTray
	}

	return StartupModeWindow
}

func startupArgs(mode StartupMode) []string {
	if mode.normalized() == StartupModeTray {
		return []string{StartHiddenArg}
	}

	return nil
}

// launchCommand resolves the running binary so the entry survives cwd changes.
func launchCommand(entry StartupEntry) (string, []string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", nil, fmt.Errorf("resolve executable path: %w", err)
	}
	executable = strings.TrimSpace(executable)
	if executable == "" {
		return "", nil, fmt.Errorf("resolve executable path: path is empty")
	}
	if executable, err = filepath.Abs(executable); err != nil {
		return "", nil, fmt.Errorf("resolve executable absolute path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(executable); err == nil {
		executable = resolved
	}

	return filepath.Clean(executable), startupArgs(entry.Mode), nil
}

// sanitizeName keeps characters that are safe in file names, mutex names and
// registry value names. Everything else becomes an underscore.
func sanitizeName(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, raw)

	cleaned = strings.Trim(cleaned, "_-.")
	if cleaned == "" {
		return fallback
	}

	return cleaned
}

package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths stores resolved runtime file locations for user config, logs, and recorded NMEA logs.
type Paths struct {
	RootDir    string
	ConfigFile string
	LogFile    string
	ReplayDir  string
}

func ResolvePaths() (Paths, error) {
	cfgRoot, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve config dir: %w", err)
	}

	return resolvePathsIn(cfgRoot)
}

func resolvePathsIn(cfgRoot string) (Paths, error) {
	root := filepath.Join(cfgRoot, Name)
	if err := os.MkdirAll(root, 0o750); err != nil {
		return Paths{}, fmt.Errorf("create app config dir: %w", err)
	}

	return Paths{
		RootDir:    root,
		ConfigFile: filepath.Join(root, ConfigFilename),
		LogFile:    filepath.Join(root, LogFilename),
		ReplayDir:  filepath.Join(root, ReplayDir),
	}, nil
}

// ResolveReplayFile resolves a bare replay file name against the replay
// directory. Absolute and relative paths with a directory part are kept.
func (p Paths) ResolveReplayFile(name string) string {
	if name == "" || filepath.IsAbs(name) || filepath.Base(name) != name {
		return name
	}

	return filepath.Join(p.ReplayDir, name)
}

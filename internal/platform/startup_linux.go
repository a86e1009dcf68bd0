//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// xdgStartupRegistrar manages an XDG autostart desktop entry.
type xdgStartupRegistrar struct {
	id startupIdentity
}

func newStartupRegistrar(id startupIdentity) StartupRegistrar {
	return xdgStartupRegistrar{id: id}
}

func (r xdgStartupRegistrar) Apply(entry StartupEntry) error {
	path, err := r.entryPath()
	if err != nil {
		return err
	}

	if !entry.Enabled {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove autostart desktop entry: %w", err)
		}

		return nil
	}

	executable, args, err := launchCommand(entry)
	if err != nil {
		return err
	}
	if err := replaceFile(path, []byte(r.render(execLine(executable, args))), 0o644); err != nil {
		return fmt.Errorf("write autostart desktop entry: %w", err)
	}

	return nil
}

func (r xdgStartupRegistrar) entryPath() (string, error) {
	root := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if root == "" {
		var err error
		if root, err = os.UserConfigDir(); err != nil {
			return "", fmt.Errorf("resolve user config dir: %w", err)
		}
	}

	return filepath.Join(filepath.Clean(root), "autostart", r.id.name+".desktop"), nil
}

func (r xdgStartupRegistrar) render(exec string) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Version=1.0\n")
	fmt.Fprintf(&b, "Name=%s\n", r.id.label())
	b.WriteString("Comment=GNSS signal quality monitor\n")
	fmt.Fprintf(&b, "Exec=%s\n", exec)
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")

	return b.String()
}

// execLine quotes every field as the freedesktop Exec key requires for paths
// that may contain spaces.
func execLine(executable string, args []string) string {
	fields := []string{quoteExecField(executable)}
	for _, arg := range args {
		fields = append(fields, quoteExecField(arg))
	}

	return strings.Join(fields, " ")
}

func quoteExecField(field string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\\"`)

	return `"` + replacer.Replace(field) + `"`
}

func replaceFile(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create dir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

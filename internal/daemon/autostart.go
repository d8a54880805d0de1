package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Autostarter registers the daemon to start with the desktop session.
type Autostarter interface {
	SetEnabled(enabled bool) error
}

// XDGAutostart manages a freedesktop autostart entry.
type XDGAutostart struct {
	// Dir is the autostart directory, usually ~/.config/autostart.
	Dir string
	// Exec is the command line the session runs at login.
	Exec string
}

const desktopFileName = "monofocus.desktop"

// NewXDGAutostart returns an autostart entry that runs "<executable> daemon".
func NewXDGAutostart() (*XDGAutostart, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable: %w", err)
	}
	return &XDGAutostart{
		Dir:  filepath.Join(base, "autostart"),
		Exec: quoteExec(exe) + " daemon",
	}, nil
}

// Path returns the desktop entry path.
func (a *XDGAutostart) Path() string {
	return filepath.Join(a.Dir, desktopFileName)
}

// SetEnabled writes or removes the desktop entry.
func (a *XDGAutostart) SetEnabled(enabled bool) error {
	if !enabled {
		if err := os.Remove(a.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove autostart entry: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create autostart dir: %w", err)
	}
	entry := strings.Join([]string{
		"[Desktop Entry]",
		"Type=Application",
		"Name=MonoFocus",
		"Exec=" + a.Exec,
		"Hidden=false",
		"NoDisplay=false",
		"X-GNOME-Autostart-enabled=true",
		"",
	}, "\n")
	if err := os.WriteFile(a.Path(), []byte(entry), 0644); err != nil {
		return fmt.Errorf("failed to write autostart entry: %w", err)
	}
	return nil
}

// Enabled reports whether the desktop entry exists.
func (a *XDGAutostart) Enabled() bool {
	_, err := os.Stat(a.Path())
	return err == nil
}

// quoteExec quotes a path for the desktop entry Exec key when needed.
func quoteExec(path string) string {
	if !strings.ContainsAny(path, " \t\"'\\$`") {
		return path
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(path) + `"`
}

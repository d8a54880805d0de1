// Package palette shows quick-settings menus through an external launcher
// (rofi, fuzzel, wofi or dmenu) and applies the chosen action through the
// backend gateway.
package palette

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Item is a single row handed to a launcher.
type Item struct {
	Label     string
	Action    string
	Icon      string // icon name for rofi -show-icons
	Meta      string // hidden search keywords
	IsHeader  bool
	IsDivider bool
	IsActive  bool // highlighted as the current value
}

// Selectable reports whether the row can be chosen.
func (it Item) Selectable() bool { return !it.IsHeader && !it.IsDivider }

// Capabilities describes what a launcher can render.
type Capabilities struct {
	Icons         bool
	Markup        bool // pango markup in labels
	NonSelectable bool
	IndexOutput   bool // prints the selected row index instead of its text
	MessageBar    bool
	RowStates     bool // active row highlighting
}

// Backend shows a list of items and returns the one the user picked.
// It returns ErrCancelled when the launcher is closed without a choice.
type Backend interface {
	Show(ctx context.Context, prompt string, items []Item, message string) (Item, error)
	Capabilities() Capabilities
}

// launchers lists supported launcher binaries in detection order.
var launchers = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// DetectBackend returns the first launcher found in PATH.
func DetectBackend() (string, error) {
	for _, name := range launchers {
		if _, err := lookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no launcher found in PATH (looked for: %s)", strings.Join(launchers, ", "))
}

// NewBackend creates a backend by name. "" and "auto" pick the first
// launcher available.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}

	var b *launcher
	switch name {
	case "rofi":
		b = newRofi()
	case "fuzzel":
		b = newFuzzel()
	case "wofi":
		b = newWofi()
	case "dmenu":
		b = newDmenu()
	default:
		return nil, fmt.Errorf("unknown launcher: %q (expected: auto, %s)", name, strings.Join(launchers, ", "))
	}
	if _, err := lookPath(b.command); err != nil {
		return nil, fmt.Errorf("launcher %q not found in PATH", b.command)
	}
	return b, nil
}

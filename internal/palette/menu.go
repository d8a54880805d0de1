package palette

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MenuItem is a node in a menu tree. Leaves carry an Action; parents carry
// a Submenu.
type MenuItem struct {
	Label     string
	Action    string
	Icon      string
	Meta      string
	IsHeader  bool
	IsDivider bool
	IsActive  bool
	Submenu   []MenuItem
}

// IsParent returns true if this item has a submenu.
func (m MenuItem) IsParent() bool {
	return len(m.Submenu) > 0
}

// Menu walks a MenuItem tree with a launcher backend.
type Menu struct {
	backend Backend
	prompt  string
	root    []MenuItem
	message string
}

// NewMenu creates a menu whose top level is shown with prompt.
func NewMenu(backend Backend, prompt string, items []MenuItem) *Menu {
	return &Menu{backend: backend, prompt: prompt, root: items}
}

// SetMessage sets the text of the launcher's message bar.
func (m *Menu) SetMessage(msg string) {
	m.message = msg
}

// Show displays the menu and returns the action of the chosen leaf, or
// ErrCancelled if the user closes the top level.
func (m *Menu) Show(ctx context.Context) (string, error) {
	return m.showLevel(ctx, m.root, nil)
}

const (
	backAction    = "__back__"
	submenuPrefix = "__submenu__:"
)

func (m *Menu) showLevel(ctx context.Context, items []MenuItem, breadcrumb []string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("menu: no items to show")
	}

	for {
		rows := make([]Item, 0, len(items)+1)
		if len(breadcrumb) > 0 {
			rows = append(rows, Item{Label: "← Back", Action: backAction, Icon: "go-previous"})
		}
		for i, item := range items {
			row := Item{
				Label:     item.Label,
				Action:    item.Action,
				Icon:      item.Icon,
				Meta:      item.Meta,
				IsHeader:  item.IsHeader,
				IsDivider: item.IsDivider,
				IsActive:  item.IsActive,
			}
			if item.IsParent() {
				row.Label += " →"
				row.Action = submenuPrefix + strconv.Itoa(i)
			}
			rows = append(rows, row)
		}

		prompt := m.prompt
		if len(breadcrumb) > 0 {
			prompt = breadcrumb[len(breadcrumb)-1]
		}

		picked, err := m.backend.Show(ctx, prompt, rows, m.message)
		if err != nil {
			return "", err
		}

		// Not every launcher can refuse headers; re-show instead.
		if !picked.Selectable() || strings.TrimSpace(picked.Action) == "" {
			continue
		}
		if picked.Action == backAction {
			return "", ErrCancelled
		}

		if strings.HasPrefix(picked.Action, submenuPrefix) {
			idx, err := strconv.Atoi(strings.TrimPrefix(picked.Action, submenuPrefix))
			if err != nil || idx < 0 || idx >= len(items) || !items[idx].IsParent() {
				continue
			}
			crumbs := append(append([]string(nil), breadcrumb...), items[idx].Label)
			action, err := m.showLevel(ctx, items[idx].Submenu, crumbs)
			if errors.Is(err, ErrCancelled) && ctx.Err() == nil {
				continue
			}
			return action, err
		}

		return picked.Action, nil
	}
}

package tui

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/1broseidon/monofocus/internal/i18n"
)

// langItem implements list.Item for the language picker.
type langItem struct {
	lang    i18n.Lang
	current bool
}

func (i langItem) Title() string {
	prefix := "  "
	if i.current {
		prefix = "* "
	}
	return prefix + i18n.NativeName(i.lang)
}

func (i langItem) Description() string { return string(i.lang) }
func (i langItem) FilterValue() string { return i18n.NativeName(i.lang) }

func newLanguagePicker(current i18n.Lang) list.Model {
	items := make([]list.Item, 0, len(i18n.Langs))
	selected := 0
	for idx, lang := range i18n.Langs {
		if lang == current {
			selected = idx
		}
		items = append(items, langItem{lang: lang, current: lang == current})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(items, delegate, 30, len(items)+4)
	l.Title = i18n.T(current, i18n.Language)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Select(selected)
	return l
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/monofocus/internal/mirror"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Width(22).
			Align(lipgloss.Right).
			PaddingRight(2)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238"))
)

// renderStatusBar renders the shield state and the detection status.
func renderStatusBar(enabled bool, status string, failed bool, width int) string {
	var dot string
	if enabled {
		dot = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	} else {
		dot = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
	}
	if failed {
		status = errorStyle.Render(status)
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(dot + " " + status)
}

// stateMarker flags fields whose latest edit is in flight or was reverted.
func stateMarker(s mirror.State) string {
	switch s {
	case mirror.Pending:
		return dimStyle.Render(" …")
	case mirror.RolledBack:
		return errorStyle.Render(" ↺")
	default:
		return ""
	}
}

func row(label, value string, state mirror.State) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + stateMarker(state)
}

// renderHelpBar renders the bottom keybinding bar.
func renderHelpBar(width int) string {
	help := strings.Join([]string{
		"space: shield",
		"+/-: opacity",
		"n: animation",
		"a: auto start",
		"l: language",
		"r: refresh",
		"q: quit",
	}, "  ")
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}

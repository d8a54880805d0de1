package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/controller"
	"github.com/1broseidon/monofocus/internal/i18n"
	"github.com/1broseidon/monofocus/internal/layout"
	"github.com/1broseidon/monofocus/internal/render"
)

const (
	opacityStep = 0.05

	// Terminal cells are roughly twice as tall as wide, so a 400x160
	// viewport maps onto about 2.5 columns per row of height.
	minPreviewCols = 20
	maxPreviewCols = 100
)

// model is the root bubbletea model for the TUI. It hosts the sync
// controller and translates key presses into controller intents.
type model struct {
	ctl controller.Model

	picking bool
	picker  list.Model

	width  int
	height int
}

func newModel(ctl controller.Model) model {
	return model{ctl: ctl}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.ctl.Init()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		if intent := m.intentFor(msg.String()); intent != nil {
			return m.forward(intent)
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "l":
			m.picker = newLanguagePicker(m.ctl.Language())
			m.picking = true
		}
		return m, nil
	}

	return m.forward(msg)
}

func (m model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.ctl, cmd = m.ctl.Update(msg)
	return m, cmd
}

// intentFor maps a key to a controller intent, or nil.
func (m model) intentFor(key string) tea.Msg {
	cfg := m.ctl.Mirror.Config()
	switch key {
	case " ", "e":
		return controller.ToggleEnabledMsg{}
	case "+", "=", "right":
		return controller.SetOpacityMsg{Opacity: stepOpacity(cfg.Opacity, opacityStep)}
	case "-", "_", "left":
		return controller.SetOpacityMsg{Opacity: stepOpacity(cfg.Opacity, -opacityStep)}
	case "n":
		return controller.SetAnimationMsg{Duration: nextAnimation(cfg.AnimationDuration)}
	case "a":
		return controller.SetAutoStartMsg{AutoStart: !cfg.AutoStart}
	case "r":
		return controller.RefreshMsg{}
	}
	return nil
}

func (m model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.picking = false
		return m, nil
	case "enter":
		m.picking = false
		item, ok := m.picker.SelectedItem().(langItem)
		if !ok || item.lang == m.ctl.Language() {
			return m, nil
		}
		return m.forward(controller.SetLanguageMsg{Lang: item.lang})
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lang := m.ctl.Language()
	cfg := m.ctl.Mirror.Config()

	status := m.ctl.StatusText()
	if m.ctl.Loading() {
		status += " " + dimStyle.Render("…")
	}
	statusBar := renderStatusBar(cfg.Enabled, status, m.ctl.Status().Failed(), m.width)
	title := titleStyle.Render("monofocus")

	var body string
	if m.picking {
		body = lipgloss.NewStyle().Padding(1, 2).Render(m.picker.View())
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left,
			previewStyle.Render(m.preview()),
			"",
			m.settings(lang, cfg),
			"",
			dimStyle.Render("  "+i18n.T(lang, i18n.FooterInfo)),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		title,
		body,
		renderHelpBar(m.width),
	)
}

// preview draws the monitor layout onto a cell grid sized to the terminal.
func (m model) preview() string {
	cols, rows := previewSize(m.width)
	cells := render.NewCells(cols, rows, layout.ContainerWidth, layout.ContainerHeight)
	m.ctl.Frame(cells)
	return cells.String()
}

func (m model) settings(lang i18n.Lang, cfg config.Config) string {
	mr := m.ctl.Mirror
	lines := []string{
		row(i18n.T(lang, i18n.EyeCareMode), onOff(cfg.Enabled), mr.Enabled.State()),
		row(i18n.T(lang, i18n.Opacity), fmt.Sprintf("%s %3.0f%%", bar(cfg.Opacity, 20), cfg.Opacity*100), mr.Opacity.State()),
		row(i18n.T(lang, i18n.Animation), i18n.AnimationLabel(lang, cfg.AnimationDuration), mr.Animation.State()),
		row(i18n.T(lang, i18n.AutoStart), onOff(cfg.AutoStart), mr.AutoStart.State()),
		row(i18n.T(lang, i18n.Language), i18n.NativeName(lang), mr.Language.State()),
	}
	return strings.Join(lines, "\n")
}

// previewSize picks a cell grid with the viewport's aspect ratio.
func previewSize(width int) (cols, rows int) {
	cols = width - 4
	if cols > maxPreviewCols {
		cols = maxPreviewCols
	}
	if cols < minPreviewCols {
		cols = minPreviewCols
	}
	rows = int(math.Round(float64(cols) * layout.ContainerHeight / layout.ContainerWidth / 2))
	if rows < 5 {
		rows = 5
	}
	return cols, rows
}

func stepOpacity(v, delta float64) float64 {
	return config.ClampOpacity(math.Round((v+delta)*100) / 100)
}

// nextAnimation cycles through the supported durations.
func nextAnimation(current int) int {
	for i, d := range config.AnimationDurations {
		if d == current {
			return config.AnimationDurations[(i+1)%len(config.AnimationDurations)]
		}
	}
	return config.AnimationDurations[0]
}

func bar(v float64, width int) string {
	filled := int(math.Round(v * float64(width)))
	return strings.Repeat("█", filled) + dimStyle.Render(strings.Repeat("░", width-filled))
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/i18n"
)

// setupForm holds form-bound values; huh inputs are strings and are
// converted on submit.
type setupForm struct {
	fOpacity   string
	fEnabled   bool
	fAutoStart bool
	fAnimation int
	fLanguage  string
	fHotkey    string
	fWebAddr   string
}

// EditConfig runs an interactive form over f and applies the answers.
// f is left untouched if the form is aborted.
func EditConfig(f *config.File) error {
	s := setupForm{
		fOpacity:   strconv.FormatFloat(f.Opacity, 'f', -1, 64),
		fEnabled:   f.Enabled,
		fAutoStart: f.AutoStart,
		fAnimation: f.AnimationDuration,
		fLanguage:  f.Language,
		fHotkey:    f.Daemon.ToggleHotkey,
		fWebAddr:   f.Daemon.WebAddr,
	}

	lang := i18n.Parse(f.Language)
	langOpts := make([]huh.Option[string], 0, len(i18n.Langs))
	for _, l := range i18n.Langs {
		langOpts = append(langOpts, huh.NewOption(i18n.NativeName(l), string(l)))
	}
	animOpts := make([]huh.Option[int], 0, len(config.AnimationDurations))
	for _, d := range config.AnimationDurations {
		animOpts = append(animOpts, huh.NewOption(fmt.Sprintf("%s (%d ms)", i18n.AnimationLabel(lang, d), d), d))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(i18n.T(lang, i18n.EyeCareMode)).
				Value(&s.fEnabled),

			huh.NewInput().
				Title(i18n.T(lang, i18n.Opacity)).
				Description("0.0 - 1.0").
				Validate(validateOpacity).
				Value(&s.fOpacity),

			huh.NewSelect[int]().
				Title(i18n.T(lang, i18n.Animation)).
				Options(animOpts...).
				Value(&s.fAnimation),

			huh.NewConfirm().
				Title(i18n.T(lang, i18n.AutoStart)).
				Value(&s.fAutoStart),

			huh.NewSelect[string]().
				Title(i18n.T(lang, i18n.Language)).
				Options(langOpts...).
				Value(&s.fLanguage),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Toggle Hotkey").
				Description("X11 key sequence that toggles the mask (empty disables)").
				Value(&s.fHotkey),

			huh.NewInput().
				Title("Web Address").
				Description("Listen address for `monofocus web`").
				Value(&s.fWebAddr),
		),
	).WithShowHelp(true).WithShowErrors(true)

	if err := form.Run(); err != nil {
		return err
	}
	return s.apply(f)
}

func (s setupForm) apply(f *config.File) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s.fOpacity), 64)
	if err != nil {
		return fmt.Errorf("invalid opacity %q: %w", s.fOpacity, err)
	}
	f.Opacity = config.ClampOpacity(v)
	f.Enabled = s.fEnabled
	f.AutoStart = s.fAutoStart
	f.AnimationDuration = s.fAnimation
	f.Language = s.fLanguage
	f.Daemon.ToggleHotkey = strings.TrimSpace(s.fHotkey)
	f.Daemon.WebAddr = strings.TrimSpace(s.fWebAddr)
	return f.Validate()
}

func validateOpacity(v string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("enter a number between 0 and 1")
	}
	if f < 0 || f > 1 {
		return fmt.Errorf("opacity must be between 0 and 1")
	}
	return nil
}

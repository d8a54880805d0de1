package palette

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/controller"
	"github.com/1broseidon/monofocus/internal/gateway"
	"github.com/1broseidon/monofocus/internal/i18n"
)

// ActionKind names a settings change picked from the menu.
type ActionKind string

const (
	ActionToggle    ActionKind = "toggle"
	ActionOpacity   ActionKind = "opacity"
	ActionAnimation ActionKind = "animation"
	ActionAutoStart ActionKind = "autostart"
	ActionLanguage  ActionKind = "language"
)

// Action is a decoded menu action string such as "opacity:0.5".
type Action struct {
	Kind     ActionKind
	Opacity  float64
	Duration int
	Enabled  bool
	Language string
}

// OpacityPresets are offered in the opacity submenu.
var OpacityPresets = []float64{0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

// ParseAction decodes an action string produced by SettingsMenu.
func ParseAction(s string) (Action, error) {
	kind, value, _ := strings.Cut(s, ":")
	a := Action{Kind: ActionKind(kind)}
	switch a.Kind {
	case ActionToggle:
		return a, nil
	case ActionOpacity:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(v) {
			return Action{}, fmt.Errorf("invalid opacity %q", value)
		}
		a.Opacity = v
	case ActionAnimation:
		v, err := strconv.Atoi(value)
		if err != nil || !config.ValidAnimationDuration(v) {
			return Action{}, fmt.Errorf("invalid animation duration %q", value)
		}
		a.Duration = v
	case ActionAutoStart:
		switch value {
		case "on":
			a.Enabled = true
		case "off":
		default:
			return Action{}, fmt.Errorf("invalid autostart value %q", value)
		}
	case ActionLanguage:
		if !i18n.Supported(value) {
			return Action{}, fmt.Errorf("unsupported language %q", value)
		}
		a.Language = value
	default:
		return Action{}, fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// SettingsMenu builds the quick-settings tree for cfg, labelled in the
// configured language.
func SettingsMenu(cfg config.Config) []MenuItem {
	lang := i18n.Parse(cfg.Language)

	opacity := make([]MenuItem, 0, len(OpacityPresets))
	for _, v := range OpacityPresets {
		opacity = append(opacity, MenuItem{
			Label:    fmt.Sprintf("%d%%", int(math.Round(v*100))),
			Action:   fmt.Sprintf("%s:%g", ActionOpacity, v),
			IsActive: math.Abs(cfg.Opacity-v) < 0.005,
		})
	}

	animation := make([]MenuItem, 0, len(config.AnimationDurations))
	for _, d := range config.AnimationDurations {
		animation = append(animation, MenuItem{
			Label:    i18n.AnimationLabel(lang, d),
			Action:   fmt.Sprintf("%s:%d", ActionAnimation, d),
			IsActive: cfg.AnimationDuration == d,
		})
	}

	languages := make([]MenuItem, 0, len(i18n.Langs))
	for _, l := range i18n.Langs {
		languages = append(languages, MenuItem{
			Label:    i18n.NativeName(l),
			Action:   fmt.Sprintf("%s:%s", ActionLanguage, l),
			Meta:     string(l),
			IsActive: lang == l,
		})
	}

	autoStart := "on"
	if cfg.AutoStart {
		autoStart = "off"
	}

	return []MenuItem{
		{
			Label:    fmt.Sprintf("%s: %s", i18n.T(lang, i18n.EyeCareMode), onOff(cfg.Enabled)),
			Action:   string(ActionToggle),
			Icon:     "weather-clear-night",
			IsActive: cfg.Enabled,
		},
		{Label: fmt.Sprintf("%s: %d%%", i18n.T(lang, i18n.Opacity), int(math.Round(cfg.Opacity*100))), Icon: "preferences-desktop-display", Submenu: opacity},
		{Label: fmt.Sprintf("%s: %s", i18n.T(lang, i18n.Animation), i18n.AnimationLabel(lang, cfg.AnimationDuration)), Icon: "preferences-system-time", Submenu: animation},
		{
			Label:  fmt.Sprintf("%s: %s", i18n.T(lang, i18n.AutoStart), onOff(cfg.AutoStart)),
			Action: fmt.Sprintf("%s:%s", ActionAutoStart, autoStart),
			Icon:   "system-run",
		},
		{Label: fmt.Sprintf("%s: %s", i18n.T(lang, i18n.Language), i18n.NativeName(lang)), Icon: "preferences-desktop-locale", Submenu: languages},
	}
}

// Apply sends the change described by action to gw. cfg is the config the
// menu was built from and decides the direction of a toggle.
func Apply(ctx context.Context, gw gateway.Gateway, cfg config.Config, action Action) error {
	switch action.Kind {
	case ActionToggle:
		return gw.UpdateEnabled(ctx, !cfg.Enabled)
	case ActionOpacity:
		return gw.UpdateOpacity(ctx, config.ClampOpacity(action.Opacity))
	case ActionAnimation:
		return gw.UpdateAnimationDuration(ctx, action.Duration)
	case ActionAutoStart:
		return gw.UpdateAutoStart(ctx, action.Enabled)
	case ActionLanguage:
		return gw.UpdateLanguage(ctx, action.Language)
	default:
		return fmt.Errorf("unknown action %q", action.Kind)
	}
}

// Run fetches the current state, shows the settings menu and applies the
// choice. Closing the launcher is not an error.
func Run(ctx context.Context, backend Backend, gw gateway.Gateway) error {
	cfg, err := gw.GetConfig(ctx)
	if err != nil {
		return err
	}
	lang := i18n.Parse(cfg.Language)

	status := controller.Status{Kind: controller.StatusDetected}
	if monitors, err := gw.GetMonitorInfo(ctx); err != nil {
		status = controller.Status{Kind: controller.StatusDetectFailed, Err: err}
	} else if len(monitors) == 0 {
		status = controller.Status{Kind: controller.StatusNoMonitors}
	} else {
		status.Count = len(monitors)
	}

	menu := NewMenu(backend, "monofocus", SettingsMenu(cfg))
	menu.SetMessage(status.Text(lang))

	picked, err := menu.Show(ctx)
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	action, err := ParseAction(picked)
	if err != nil {
		return err
	}
	return Apply(ctx, gw, cfg, action)
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

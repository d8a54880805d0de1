package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/1broseidon/monofocus/internal/i18n"
)

// Animation durations accepted by the backend, in milliseconds.
const (
	AnimationNone   = 0
	AnimationFast   = 200
	AnimationMedium = 300
	AnimationSlow   = 500
)

// AnimationDurations lists the valid durations in ascending order.
var AnimationDurations = []int{AnimationNone, AnimationFast, AnimationMedium, AnimationSlow}

// Config is the backend-owned overlay configuration mirrored by the UI.
type Config struct {
	Opacity           float64 `yaml:"opacity" json:"opacity"`
	Enabled           bool    `yaml:"enabled" json:"enabled"`
	AutoStart         bool    `yaml:"auto_start" json:"auto_start"`
	AnimationDuration int     `yaml:"animation_duration" json:"animation_duration"`
	Language          string  `yaml:"language" json:"language"`
}

// DaemonConfig configures the reference backend daemon.
type DaemonConfig struct {
	// ToggleHotkey is an xgbutil key sequence that publishes toggle-shield.
	// Empty disables the hotkey.
	ToggleHotkey string `yaml:"toggle_hotkey"`
	// PointerPollMS is the pointer watcher interval in milliseconds.
	PointerPollMS int    `yaml:"pointer_poll_ms"`
	LogLevel      string `yaml:"log_level"`
	// WebAddr is the listen address of the HTTP preview surface.
	WebAddr string `yaml:"web_addr"`
}

// UIConfig configures control surfaces.
type UIConfig struct {
	RefreshSeconds int `yaml:"refresh_seconds"`
}

// File is the on-disk configuration document.
type File struct {
	Config `yaml:",inline"`
	Daemon DaemonConfig `yaml:"daemon"`
	UI     UIConfig     `yaml:"ui"`
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Opacity:           0.6,
		Enabled:           true,
		AutoStart:         false,
		AnimationDuration: AnimationMedium,
		Language:          string(i18n.Default),
	}
}

// DefaultFile returns a complete default document.
func DefaultFile() *File {
	return &File{
		Config: DefaultConfig(),
		Daemon: DaemonConfig{
			ToggleHotkey:  "Mod4-Shift-e",
			PointerPollMS: 100,
			LogLevel:      "info",
			WebAddr:       "127.0.0.1:7878",
		},
		UI: UIConfig{
			RefreshSeconds: 5,
		},
	}
}

// ClampOpacity limits opacity to [0,1]. NaN maps to 0.
func ClampOpacity(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ValidAnimationDuration reports whether ms is one of AnimationDurations.
func ValidAnimationDuration(ms int) bool {
	for _, d := range AnimationDurations {
		if d == ms {
			return true
		}
	}
	return false
}

// Normalize clamps opacity and fills an empty language with the default.
func (c *Config) Normalize() {
	c.Opacity = ClampOpacity(c.Opacity)
	if strings.TrimSpace(c.Language) == "" {
		c.Language = string(i18n.Default)
	}
}

// Validate checks enumerated fields. Opacity is clamped rather than rejected.
func (c *Config) Validate() error {
	c.Normalize()
	if !ValidAnimationDuration(c.AnimationDuration) {
		return &ValidationError{Path: "animation_duration", Err: fmt.Errorf("animation_duration must be one of: 0, 200, 300, 500")}
	}
	if !i18n.Supported(c.Language) {
		return &ValidationError{Path: "language", Err: fmt.Errorf("language must be one of: zh, en, ja, fr, de, es")}
	}
	return nil
}

// Validate checks the whole document.
func (f *File) Validate() error {
	if err := f.Config.Validate(); err != nil {
		return err
	}
	if f.Daemon.PointerPollMS < 0 {
		return &ValidationError{Path: "daemon.pointer_poll_ms", Err: fmt.Errorf("pointer_poll_ms must be >= 0")}
	}
	switch f.Daemon.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "daemon.log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if f.UI.RefreshSeconds < 0 {
		return &ValidationError{Path: "ui.refresh_seconds", Err: fmt.Errorf("refresh_seconds must be >= 0")}
	}
	return nil
}

// PointerPollInterval returns the pointer watcher interval, defaulting to 100ms.
func (d DaemonConfig) PointerPollInterval() time.Duration {
	if d.PointerPollMS <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(d.PointerPollMS) * time.Millisecond
}

// RefreshInterval returns the monitor re-poll interval, defaulting to 5s.
func (u UIConfig) RefreshInterval() time.Duration {
	if u.RefreshSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(u.RefreshSeconds) * time.Second
}

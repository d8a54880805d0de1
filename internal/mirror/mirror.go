package mirror

import (
	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/i18n"
)

// FieldName names a mirrored config field.
type FieldName string

const (
	FieldOpacity   FieldName = "opacity"
	FieldEnabled   FieldName = "enabled"
	FieldAutoStart FieldName = "auto_start"
	FieldAnimation FieldName = "animation_duration"
	FieldLanguage  FieldName = "language"
)

// Mirror is the last-known-good copy of the backend Config.
type Mirror struct {
	Opacity   Field[float64]
	Enabled   Field[bool]
	AutoStart Field[bool]
	Animation Field[int]
	Language  Field[i18n.Lang]

	loaded bool
}

// New returns a mirror holding defaults until the first confirmed load.
func New() *Mirror {
	m := &Mirror{}
	def := config.DefaultConfig()
	m.Opacity.init(def.Opacity)
	m.Enabled.init(def.Enabled)
	m.AutoStart.init(def.AutoStart)
	m.Animation.init(def.AnimationDuration)
	m.Language.init(i18n.Parse(def.Language))
	return m
}

// Loaded reports whether a backend config has been applied.
func (m *Mirror) Loaded() bool { return m.loaded }

// ApplyConfig overwrites every field with a backend-confirmed config.
// Language is applied first so labels resolve in the right locale.
func (m *Mirror) ApplyConfig(cfg config.Config) {
	m.Language.ApplyConfirmed(i18n.Parse(cfg.Language))
	m.Opacity.ApplyConfirmed(config.ClampOpacity(cfg.Opacity))
	m.Enabled.ApplyConfirmed(cfg.Enabled)
	m.AutoStart.ApplyConfirmed(cfg.AutoStart)
	m.Animation.ApplyConfirmed(cfg.AnimationDuration)
	m.loaded = true
}

// SetOpacity applies an optimistic opacity edit, clamped to [0,1].
func (m *Mirror) SetOpacity(v float64) Edit[float64] {
	return m.Opacity.ApplyOptimistic(config.ClampOpacity(v))
}

// Config returns the displayed values as a Config.
func (m *Mirror) Config() config.Config {
	return config.Config{
		Opacity:           m.Opacity.Value(),
		Enabled:           m.Enabled.Value(),
		AutoStart:         m.AutoStart.Value(),
		AnimationDuration: m.Animation.Value(),
		Language:          string(m.Language.Value()),
	}
}

// States returns the edit state of every field.
func (m *Mirror) States() map[FieldName]State {
	return map[FieldName]State{
		FieldOpacity:   m.Opacity.State(),
		FieldEnabled:   m.Enabled.State(),
		FieldAutoStart: m.AutoStart.State(),
		FieldAnimation: m.Animation.State(),
		FieldLanguage:  m.Language.State(),
	}
}

// Pending reports whether any field has an edit in flight.
func (m *Mirror) Pending() bool {
	for _, s := range m.States() {
		if s == Pending {
			return true
		}
	}
	return false
}

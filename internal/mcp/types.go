package mcp

import (
	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/layout"
)

// EmptyInput is the input for tools that take no arguments.
type EmptyInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	Config        config.Config `json:"config"`
	MonitorCount  int           `json:"monitor_count"`
	ActiveMonitor string        `json:"active_monitor,omitempty"`
	Summary       string        `json:"summary"`
}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []layout.Monitor `json:"monitors"`
	Active   string           `json:"active,omitempty"`
}

// GetLayoutInput is the input for the get_layout tool.
type GetLayoutInput struct {
	Width  float64 `json:"width,omitempty" jsonschema:"Container width in layout units (default: 400)"`
	Height float64 `json:"height,omitempty" jsonschema:"Container height in layout units (default: 160)"`
}

// GetLayoutOutput is the output for the get_layout tool.
type GetLayoutOutput struct {
	Rects []layout.LayoutRect `json:"rects"`
}

// SetOpacityInput is the input for the set_opacity tool.
type SetOpacityInput struct {
	Opacity float64 `json:"opacity" jsonschema:"Mask opacity between 0 and 1; out-of-range values are clamped"`
}

// SetEnabledInput is the input for the set_enabled tool.
type SetEnabledInput struct {
	Enabled bool `json:"enabled" jsonschema:"Whether the eye-care mask is shown on unfocused monitors"`
}

// SetAutoStartInput is the input for the set_auto_start tool.
type SetAutoStartInput struct {
	AutoStart bool `json:"auto_start" jsonschema:"Whether the daemon starts with the desktop session"`
}

// SetAnimationInput is the input for the set_animation_duration tool.
type SetAnimationInput struct {
	Duration int `json:"duration" jsonschema:"Mask transition duration in milliseconds: 0, 200, 300 or 500"`
}

// SetLanguageInput is the input for the set_language tool.
type SetLanguageInput struct {
	Language string `json:"language" jsonschema:"Locale code: zh, en, ja, fr, de or es"`
}

// RenderPreviewInput is the input for the render_preview tool.
type RenderPreviewInput struct {
	Width  int    `json:"width,omitempty" jsonschema:"Image width in pixels (default: 400)"`
	Height int    `json:"height,omitempty" jsonschema:"Image height in pixels (default: 160)"`
	Lang   string `json:"lang,omitempty" jsonschema:"Label locale (default: configured language)"`
}

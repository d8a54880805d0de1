// Package gateway defines the boundary between the control surface and the
// backend that owns monitor state and the authoritative Config.
package gateway

import (
	"context"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/layout"
)

// Layout viewport requested from the backend.
const (
	ContainerWidth  = layout.ContainerWidth
	ContainerHeight = layout.ContainerHeight
)

// EventKind identifies a backend push event.
type EventKind string

const (
	// EventMonitorChanged carries the new active monitor id.
	EventMonitorChanged EventKind = "monitor-changed"
	// EventToggleShield asks the UI to flip the enabled flag.
	EventToggleShield EventKind = "toggle-shield"
)

// Event is a fire-and-forget notification pushed by the backend.
type Event struct {
	Kind EventKind `json:"event"`
	// MonitorID is set for EventMonitorChanged; empty means no active monitor.
	MonitorID layout.MonitorID `json:"payload,omitempty"`
}

// Gateway is the asynchronous command surface of the backend.
type Gateway interface {
	GetConfig(ctx context.Context) (config.Config, error)
	GetMonitorInfo(ctx context.Context) ([]layout.Monitor, error)
	GetMonitorLayout(ctx context.Context, containerWidth, containerHeight float64) ([]layout.LayoutRect, error)
	// GetCurrentMonitor reports ok=false when no monitor holds focus.
	GetCurrentMonitor(ctx context.Context) (id layout.MonitorID, ok bool, err error)

	UpdateOpacity(ctx context.Context, opacity float64) error
	UpdateEnabled(ctx context.Context, enabled bool) error
	UpdateAutoStart(ctx context.Context, autoStart bool) error
	UpdateAnimationDuration(ctx context.Context, duration int) error
	UpdateLanguage(ctx context.Context, language string) error

	// Subscribe streams push events until ctx is cancelled or the
	// connection drops, at which point the channel is closed.
	Subscribe(ctx context.Context) (<-chan Event, error)
}

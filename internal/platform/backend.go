// Package platform enumerates displays and reports the focus point on the
// host window system.
package platform

import (
	"errors"
	"fmt"

	"github.com/1broseidon/monofocus/internal/layout"
)

// ErrPointerUnsupported is returned by backends that cannot locate the pointer.
var ErrPointerUnsupported = errors.New("pointer position not supported on this platform")

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display.
type Display struct {
	Index       int
	Name        string
	Bounds      Rect
	Primary     bool
	ScaleFactor float64
}

// Backend abstracts display queries across platforms.
type Backend interface {
	Displays() ([]Display, error)
	// FocusPoint returns the screen point that decides the active display,
	// normally the pointer.
	FocusPoint() (x, y int, err error)
	Close()
}

// MonitorID returns the stable id of the display at index.
func MonitorID(index int) layout.MonitorID {
	return fmt.Sprintf("monitor_%d", index)
}

// Monitors converts displays to the wire monitor model.
func Monitors(displays []Display) []layout.Monitor {
	out := make([]layout.Monitor, 0, len(displays))
	for _, d := range displays {
		scale := d.ScaleFactor
		if scale <= 0 {
			scale = 1
		}
		out = append(out, layout.Monitor{
			ID:               MonitorID(d.Index),
			Name:             d.Name,
			X:                d.Bounds.X,
			Y:                d.Bounds.Y,
			ResolutionWidth:  d.Bounds.Width,
			ResolutionHeight: d.Bounds.Height,
			ScaleFactor:      scale,
		})
	}
	return out
}

//go:build !linux

package platform

import (
	"github.com/kbinani/screenshot"
)

// ScreenBackend enumerates displays through the OS screen APIs. It cannot
// locate the pointer, so no display is ever reported active.
type ScreenBackend struct{}

var _ Backend = (*ScreenBackend)(nil)

// New returns the display backend for this platform.
func New() (*ScreenBackend, error) {
	return &ScreenBackend{}, nil
}

func (b *ScreenBackend) Close() {}

// Displays returns currently connected displays. Display 0 is primary.
func (b *ScreenBackend) Displays() ([]Display, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, nil
	}
	out := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		out = append(out, Display{
			Index:       i,
			Bounds:      Rect{X: bounds.Min.X, Y: bounds.Min.Y, Width: bounds.Dx(), Height: bounds.Dy()},
			Primary:     i == 0,
			ScaleFactor: 1,
		})
	}
	return out, nil
}

func (b *ScreenBackend) FocusPoint() (int, int, error) {
	return 0, 0, ErrPointerUnsupported
}

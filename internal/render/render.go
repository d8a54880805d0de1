// Package render draws a fitted monitor layout onto a 2D surface.
package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/1broseidon/monofocus/internal/i18n"
	"github.com/1broseidon/monofocus/internal/layout"
)

// Label sizing. Floors keep text legible on tiny tiles.
const (
	NumberFontFloor      = 18.0
	NumberFontRatio      = 0.35
	ResolutionFontFloor  = 9.0
	ResolutionFontRatio  = 0.12
	numberBaselineShift  = 0.3
	resolutionLineOffset = 0.5
)

// Surface is a drawing target. Coordinates are in surface units with the
// origin at the top-left corner.
type Surface interface {
	Size() (width, height float64)
	Clear(bg color.RGBA)
	FillRect(x, y, w, h float64, c color.RGBA)
	StrokeRect(x, y, w, h float64, c color.RGBA, width float64)
	// Text draws s horizontally and vertically centered on (cx, cy).
	Text(s string, cx, cy, size float64, c color.RGBA)
}

// Tile describes one drawn monitor.
type Tile struct {
	ID             layout.MonitorID
	Ordinal        int
	Rect           layout.FittedRect
	Active         bool
	Style          Style
	Number         string
	Resolution     string
	NumberSize     float64
	ResolutionSize float64
}

// Frame is the result of one render pass.
type Frame struct {
	Placeholder string
	Tiles       []Tile
}

// Empty reports whether the placeholder was drawn instead of tiles.
func (f Frame) Empty() bool { return len(f.Tiles) == 0 }

// ActiveCount returns how many tiles used the active style.
func (f Frame) ActiveCount() int {
	n := 0
	for _, t := range f.Tiles {
		if t.Active {
			n++
		}
	}
	return n
}

// Renderer turns fitted rects into surface draw calls. It holds no state
// between passes.
type Renderer struct {
	Lang  i18n.Lang
	Theme Theme
}

// NewRenderer returns a renderer using DefaultTheme.
func NewRenderer(lang i18n.Lang) Renderer {
	return Renderer{Lang: lang, Theme: DefaultTheme}
}

// ResolutionLabel formats a monitor resolution for display.
func ResolutionLabel(w, h int) string {
	return fmt.Sprintf("%d × %d", w, h)
}

// NumberFontSize returns the ordinal font size for a tile of size w×h.
func NumberFontSize(w, h float64) float64 {
	return math.Max(NumberFontFloor, math.Min(w, h)*NumberFontRatio)
}

// ResolutionFontSize returns the resolution font size for a tile of size w×h.
func ResolutionFontSize(w, h float64) float64 {
	return math.Max(ResolutionFontFloor, math.Min(w, h)*ResolutionFontRatio)
}

// Render clears s and draws rects, highlighting the tile whose id is active.
// Tiles with no area are skipped but keep their ordinal.
func (r Renderer) Render(s Surface, rects []layout.FittedRect, active layout.MonitorID) Frame {
	s.Clear(r.Theme.Background)

	if len(rects) == 0 {
		return r.placeholder(s)
	}

	frame := Frame{Tiles: make([]Tile, 0, len(rects))}
	for i, rect := range rects {
		if !(rect.Width > 0 && rect.Height > 0) {
			continue
		}
		isActive := active != "" && rect.ID == active
		style := r.Theme.Inactive
		if isActive {
			style = r.Theme.Active
		}
		t := Tile{
			ID:             rect.ID,
			Ordinal:        i + 1,
			Rect:           rect,
			Active:         isActive,
			Style:          style,
			Number:         fmt.Sprint(i + 1),
			Resolution:     ResolutionLabel(rect.ResolutionWidth, rect.ResolutionHeight),
			NumberSize:     NumberFontSize(rect.Width, rect.Height),
			ResolutionSize: ResolutionFontSize(rect.Width, rect.Height),
		}

		s.FillRect(rect.X, rect.Y, rect.Width, rect.Height, style.Fill)
		s.StrokeRect(rect.X, rect.Y, rect.Width, rect.Height, style.Stroke, style.StrokeWidth)

		cx, cy := rect.Center()
		s.Text(t.Number, cx, cy-t.NumberSize*numberBaselineShift, t.NumberSize, style.NumberColor)
		s.Text(t.Resolution, cx, cy+t.NumberSize*resolutionLineOffset, t.ResolutionSize, style.ResolutionColor)

		frame.Tiles = append(frame.Tiles, t)
	}
	if len(frame.Tiles) == 0 {
		return r.placeholder(s)
	}
	return frame
}

// Draw fits rects into the surface with the standard margin and renders them.
func (r Renderer) Draw(s Surface, rects []layout.LayoutRect, active layout.MonitorID) Frame {
	w, h := s.Size()
	fitted := layout.Fit(rects, layout.Viewport{Width: w, Height: h}, layout.Margin)
	return r.Render(s, fitted, active)
}

func (r Renderer) placeholder(s Surface) Frame {
	w, h := s.Size()
	label := i18n.T(r.Lang, i18n.NoMonitors)
	s.Text(label, w/2, h/2, r.Theme.PlaceholderSize, r.Theme.PlaceholderColor)
	return Frame{Placeholder: label}
}

package layout

import "math"

// MonitorID identifies a display as reported by the backend.
type MonitorID = string

// Monitor describes a physical display as reported by the backend.
type Monitor struct {
	ID               MonitorID `json:"id"`
	Name             string    `json:"name,omitempty"`
	X                int       `json:"x"`
	Y                int       `json:"y"`
	ResolutionWidth  int       `json:"resolution_width"`
	ResolutionHeight int       `json:"resolution_height"`
	ScaleFactor      float64   `json:"scale_factor,omitempty"`
}

// LayoutRect is a monitor's position and size in a logical coordinate space
// chosen by the backend for a requested container size.
type LayoutRect struct {
	ID               MonitorID `json:"id"`
	X                float64   `json:"x"`
	Y                float64   `json:"y"`
	Width            float64   `json:"width"`
	Height           float64   `json:"height"`
	ResolutionWidth  int       `json:"resolution_width"`
	ResolutionHeight int       `json:"resolution_height"`
}

// FittedRect is a LayoutRect mapped into drawing-surface coordinates.
type FittedRect struct {
	ID               MonitorID
	X                float64
	Y                float64
	Width            float64
	Height           float64
	ResolutionWidth  int
	ResolutionHeight int
}

// Center returns the center point of the rectangle.
func (r FittedRect) Center() (cx, cy float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Viewport is the target drawing area.
type Viewport struct {
	Width  float64
	Height float64
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// BoundingBox returns the bounding box of all rects. ok is false for an
// empty input.
func BoundingBox(rects []LayoutRect) (b Bounds, ok bool) {
	if len(rects) == 0 {
		return Bounds{}, false
	}
	b = Bounds{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
	for _, r := range rects {
		b.MinX = math.Min(b.MinX, r.X)
		b.MinY = math.Min(b.MinY, r.Y)
		b.MaxX = math.Max(b.MaxX, r.X+r.Width)
		b.MaxY = math.Max(b.MaxY, r.Y+r.Height)
	}
	return b, true
}

// minExtent is the smallest content extent used for scaling; a zero-area
// bounding box is treated as one logical unit wide/high.
const minExtent = 1.0

// Transform is the uniform scale and offset applied by Fit.
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// Apply maps a LayoutRect through the transform.
func (t Transform) Apply(r LayoutRect) FittedRect {
	return FittedRect{
		ID:               r.ID,
		X:                r.X*t.Scale + t.OffsetX,
		Y:                r.Y*t.Scale + t.OffsetY,
		Width:            r.Width * t.Scale,
		Height:           r.Height * t.Scale,
		ResolutionWidth:  r.ResolutionWidth,
		ResolutionHeight: r.ResolutionHeight,
	}
}

// ComputeTransform returns the centering transform for rects inside vp with
// the given margin on every side. ok is false for an empty input.
func ComputeTransform(rects []LayoutRect, vp Viewport, margin float64) (Transform, bool) {
	b, ok := BoundingBox(rects)
	if !ok {
		return Transform{}, false
	}

	contentWidth := b.Width()
	contentHeight := b.Height()

	scaleX := (vp.Width - 2*margin) / math.Max(contentWidth, minExtent)
	scaleY := (vp.Height - 2*margin) / math.Max(contentHeight, minExtent)
	scale := math.Min(scaleX, scaleY)
	if scale < 0 {
		// Viewport smaller than the margins; collapse instead of mirroring.
		scale = 0
	}

	return Transform{
		Scale:   scale,
		OffsetX: (vp.Width-contentWidth*scale)/2 - b.MinX*scale,
		OffsetY: (vp.Height-contentHeight*scale)/2 - b.MinY*scale,
	}, true
}

// Fit maps rects into vp, preserving aspect ratio and centering the bounding
// box. It returns one FittedRect per input in the same order, or nil for an
// empty input; callers render a placeholder in that case.
func Fit(rects []LayoutRect, vp Viewport, margin float64) []FittedRect {
	t, ok := ComputeTransform(rects, vp, margin)
	if !ok {
		return nil
	}
	out := make([]FittedRect, len(rects))
	for i, r := range rects {
		out[i] = t.Apply(r)
	}
	return out
}

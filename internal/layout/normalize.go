package layout

import "math"

const (
	// ContainerWidth and ContainerHeight are the fixed logical viewport
	// requested from the backend when fetching a layout.
	ContainerWidth  = 400
	ContainerHeight = 160

	// Margin is the space kept free on every side of a fitted layout.
	Margin = 20
)

// Normalize computes the backend-side UI layout for physical monitors: the
// bounding box is scaled uniformly into the container and anchored at the
// margin. Rects keep the monitor order.
func Normalize(monitors []Monitor, containerWidth, containerHeight float64) []LayoutRect {
	if len(monitors) == 0 {
		return nil
	}

	minX, minY := monitors[0].X, monitors[0].Y
	maxX := monitors[0].X + monitors[0].ResolutionWidth
	maxY := monitors[0].Y + monitors[0].ResolutionHeight
	for _, m := range monitors[1:] {
		minX = min(minX, m.X)
		minY = min(minY, m.Y)
		maxX = max(maxX, m.X+m.ResolutionWidth)
		maxY = max(maxY, m.Y+m.ResolutionHeight)
	}

	totalWidth := math.Max(float64(maxX-minX), minExtent)
	totalHeight := math.Max(float64(maxY-minY), minExtent)

	scale := math.Min(
		(containerWidth-2*Margin)/totalWidth,
		(containerHeight-2*Margin)/totalHeight,
	)
	if scale < 0 {
		scale = 0
	}

	rects := make([]LayoutRect, len(monitors))
	for i, m := range monitors {
		rects[i] = LayoutRect{
			ID:               m.ID,
			X:                float64(m.X-minX)*scale + Margin,
			Y:                float64(m.Y-minY)*scale + Margin,
			Width:            float64(m.ResolutionWidth) * scale,
			Height:           float64(m.ResolutionHeight) * scale,
			ResolutionWidth:  m.ResolutionWidth,
			ResolutionHeight: m.ResolutionHeight,
		}
	}
	return rects
}

// MonitorAt returns the id of the monitor containing the point (x, y).
// Bounds are half-open, so a point on a shared edge belongs to the monitor
// on its right or below.
func MonitorAt(monitors []Monitor, x, y int) (MonitorID, bool) {
	for _, m := range monitors {
		if x >= m.X && x < m.X+m.ResolutionWidth &&
			y >= m.Y && y < m.Y+m.ResolutionHeight {
			return m.ID, true
		}
	}
	return "", false
}

// Contains reports whether id names one of rects.
func Contains(rects []LayoutRect, id MonitorID) bool {
	for _, r := range rects {
		if r.ID == id {
			return true
		}
	}
	return false
}

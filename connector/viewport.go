package connector

import "cardlink/core"

// Viewport maps world coordinates to screen coordinates. Screen = (world +
// offset) * scale.
type Viewport struct {
	OffsetX float64
	OffsetY float64
	Scale   float64
}

// Identity is the viewport that leaves coordinates unchanged.
var Identity = Viewport{Scale: 1}

func (v Viewport) scale() float64 {
	if v.Scale == 0 {
		return 1
	}
	return v.Scale
}

// ToScreen converts a world point to screen space.
func (v Viewport) ToScreen(p core.Point) core.Point {
	s := v.scale()
	return core.Point{X: (p.X + v.OffsetX) * s, Y: (p.Y + v.OffsetY) * s}
}

// ToWorld converts a screen point to world space.
func (v Viewport) ToWorld(p core.Point) core.Point {
	s := v.scale()
	return core.Point{X: p.X/s - v.OffsetX, Y: p.Y/s - v.OffsetY}
}

// FlatToScreen converts a flat world path to screen space.
func (v Viewport) FlatToScreen(flat []float64) []float64 {
	out := make([]float64, 0, len(flat)&^1)
	for _, p := range core.Unflatten(flat) {
		sp := v.ToScreen(p)
		out = append(out, sp.X, sp.Y)
	}
	return out
}

// Fit returns a viewport that scales bounds into a width by height screen
// area, keeping the aspect ratio.
func Fit(bounds core.Rect, width, height float64) Viewport {
	bounds = bounds.Normalize()
	if bounds.Width <= 0 || bounds.Height <= 0 || width <= 0 || height <= 0 {
		return Viewport{OffsetX: -bounds.X, OffsetY: -bounds.Y, Scale: 1}
	}
	scale := width / bounds.Width
	if s := height / bounds.Height; s < scale {
		scale = s
	}
	return Viewport{OffsetX: -bounds.X, OffsetY: -bounds.Y, Scale: scale}
}

// Package geometry provides the pure rectangle, point and segment utilities
// the router validates candidate paths with.
package geometry

import (
	"math"

	"cardlink/core"

	"gonum.org/v1/gonum/spatial/r2"
)

// vec converts a point to a gonum vector.
func vec(p core.Point) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b core.Point) float64 {
	return r2.Norm(r2.Sub(vec(b), vec(a)))
}

// PathLength returns the total length of a polyline.
func PathLength(points []core.Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// IsOrthogonal reports whether every segment of the polyline is axis-aligned.
func IsOrthogonal(points []core.Point) bool {
	for i := 1; i < len(points); i++ {
		if points[i-1].X != points[i].X && points[i-1].Y != points[i].Y {
			return false
		}
	}
	return true
}

// Expand grows a rectangle by margin on every side.
func Expand(r core.Rect, margin float64) core.Rect {
	r = r.Normalize()
	return core.Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// Overlaps reports whether two rectangles share positive area.
// Identical rectangles always overlap, even zero-area ones.
func Overlaps(a, b core.Rect) bool {
	a, b = a.Normalize(), b.Normalize()
	if a == b {
		return true
	}
	return a.MinX() < b.MaxX() && b.MinX() < a.MaxX() &&
		a.MinY() < b.MaxY() && b.MinY() < a.MaxY()
}

// Bounds returns the smallest rectangle containing every rectangle given.
// It returns false if rects is empty.
func Bounds(rects []core.Rect) (core.Rect, bool) {
	if len(rects) == 0 {
		return core.Rect{}, false
	}
	first := rects[0].Normalize()
	minX, minY, maxX, maxY := first.MinX(), first.MinY(), first.MaxX(), first.MaxY()
	for _, r := range rects[1:] {
		r = r.Normalize()
		minX = math.Min(minX, r.MinX())
		minY = math.Min(minY, r.MinY())
		maxX = math.Max(maxX, r.MaxX())
		maxY = math.Max(maxY, r.MaxY())
	}
	return core.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// Simplify removes collinear interior vertices and consecutive duplicates.
func Simplify(points []core.Point) []core.Point {
	if len(points) <= 2 {
		return points
	}

	deduped := []core.Point{points[0]}
	for _, p := range points[1:] {
		if p != deduped[len(deduped)-1] {
			deduped = append(deduped, p)
		}
	}
	if len(deduped) < 2 {
		return []core.Point{points[0], points[len(points)-1]}
	}

	simplified := []core.Point{deduped[0]}
	for i := 1; i < len(deduped)-1; i++ {
		prev, cur, next := simplified[len(simplified)-1], deduped[i], deduped[i+1]
		if !collinear(prev, cur, next) {
			simplified = append(simplified, cur)
		}
	}
	return append(simplified, deduped[len(deduped)-1])
}

// collinear checks if three points are aligned horizontally or vertically.
func collinear(a, b, c core.Point) bool {
	return (a.Y == b.Y && b.Y == c.Y) || (a.X == b.X && b.X == c.X)
}

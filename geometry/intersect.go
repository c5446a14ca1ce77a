package geometry

import (
	"math"

	"cardlink/core"
)

// IntersectsSegmentRect reports whether the closed segment p1-p2 touches the
// closed rectangle, interior or boundary. Zero-length segments reduce to a
// containment test and zero-area rectangles are handled as degenerate boxes.
func IntersectsSegmentRect(p1, p2 core.Point, rect core.Rect) bool {
	rect = rect.Normalize()
	if !finite(p1) || !finite(p2) || !finiteRect(rect) {
		return false
	}
	if p1 == p2 {
		return rect.Contains(p1)
	}

	// Liang-Barsky clipping of the parametric segment p1 + t*(p2-p1), t in [0,1].
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}

	return clip(-dx, p1.X-rect.MinX()) &&
		clip(dx, rect.MaxX()-p1.X) &&
		clip(-dy, p1.Y-rect.MinY()) &&
		clip(dy, rect.MaxY()-p1.Y) &&
		t0 <= t1
}

// IntersectsPathRect reports whether any segment of the polyline touches rect.
func IntersectsPathRect(points []core.Point, rect core.Rect) bool {
	if len(points) == 1 {
		return rect.Normalize().Contains(points[0])
	}
	for i := 1; i < len(points); i++ {
		if IntersectsSegmentRect(points[i-1], points[i], rect) {
			return true
		}
	}
	return false
}

// Blockers returns the indexes of the obstacles the polyline touches, in input order.
func Blockers(points []core.Point, obstacles []core.Rect) []int {
	var hits []int
	for i, obstacle := range obstacles {
		if IntersectsPathRect(points, obstacle) {
			hits = append(hits, i)
		}
	}
	return hits
}

func finite(p core.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func finiteRect(r core.Rect) bool {
	return finite(core.Point{X: r.X, Y: r.Y}) && finite(core.Point{X: r.Width, Y: r.Height})
}

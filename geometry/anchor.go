package geometry

import (
	"math"

	"cardlink/core"
)

// SideAnchor returns the midpoint of the given side of rect, where a connector
// leaves or enters it. A zero-area rectangle yields its single point.
func SideAnchor(rect core.Rect, side core.Side) core.Point {
	rect = rect.Normalize()
	c := rect.Center()
	switch side {
	case core.Top:
		return core.Point{X: c.X, Y: rect.MinY()}
	case core.Right:
		return core.Point{X: rect.MaxX(), Y: c.Y}
	case core.Bottom:
		return core.Point{X: c.X, Y: rect.MaxY()}
	case core.Left:
		return core.Point{X: rect.MinX(), Y: c.Y}
	default:
		return c
	}
}

// ChooseSides selects the exit side of src and the entry side of tgt from the
// delta between their centers. The axis with the larger delta wins; equal
// deltas resolve to a horizontal exit.
func ChooseSides(src, tgt core.Rect) (exit, entry core.Side) {
	sc := src.Normalize().Center()
	tc := tgt.Normalize().Center()
	dx := tc.X - sc.X
	dy := tc.Y - sc.Y

	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return core.Right, core.Left
		}
		return core.Left, core.Right
	}
	if dy > 0 {
		return core.Bottom, core.Top
	}
	return core.Top, core.Bottom
}

// Anchors returns the connector endpoints for a source/target pair along with
// the sides they attach to.
func Anchors(src, tgt core.Rect) (start, end core.Point, exit, entry core.Side) {
	exit, entry = ChooseSides(src, tgt)
	return SideAnchor(src, exit), SideAnchor(tgt, entry), exit, entry
}

// Stub returns the point margin units out from p along the side's outward normal.
func Stub(p core.Point, side core.Side, margin float64) core.Point {
	dx, dy := side.Normal()
	return p.Add(dx*margin, dy*margin)
}

package routing

import (
	"fmt"
	"math"

	"cardlink/core"
	"cardlink/geometry"
)

// Strategy names reported in results and debug sessions.
const (
	StrategyStraight   = "straight"
	StrategySingleBend = "single-bend"
	StrategyDoubleBend = "double-bend"
	StrategyDetour     = "detour"
	StrategyFallback   = "fallback"
	StrategyDirect     = "direct"
)

// Input is the geometry a strategy evaluator works from.
type Input struct {
	Start, End  core.Point
	Exit, Entry core.Side
	Obstacles   []core.Rect
	Margin      float64

	// Blocking lists indexes of obstacles earlier candidates ran into, in first-hit order.
	Blocking []int
}

// Candidate is one proposed polyline.
type Candidate struct {
	Label  string
	Points []core.Point
}

// Evaluator proposes candidates for one shape family. An empty result means
// the shape is not applicable to the input.
type Evaluator func(in Input) []Candidate

// primaryAxis is the axis the connector leaves the source along.
func (in Input) primaryAxis() core.Axis {
	return in.Exit.Axis()
}

// Straight proposes the direct segment between the anchors.
func Straight(in Input) []Candidate {
	return []Candidate{{Label: StrategyStraight, Points: []core.Point{in.Start, in.End}}}
}

// SingleBend proposes the two L-shaped paths bending at the corner formed by
// the anchors, horizontal-first before vertical-first. Aligned anchors have no
// corner to bend at.
func SingleBend(in Input) []Candidate {
	s, e := in.Start, in.End
	if s.X == e.X || s.Y == e.Y {
		return nil
	}
	return []Candidate{
		{Label: "single-bend horizontal-first", Points: []core.Point{s, {X: e.X, Y: s.Y}, e}},
		{Label: "single-bend vertical-first", Points: []core.Point{s, {X: s.X, Y: e.Y}, e}},
	}
}

// DoubleBend proposes Z-shaped paths that cross over in a channel between the
// anchors, followed by U-shaped paths that step around the blocking obstacles'
// combined extent on the cross axis.
func DoubleBend(in Input) []Candidate {
	blocking := in.blockingRects()
	if len(blocking) == 0 {
		return nil
	}

	var candidates []Candidate
	candidates = append(candidates, zCandidates(in, blocking)...)
	candidates = append(candidates, uCandidates(in, blocking)...)
	return candidates
}

func zCandidates(in Input, blocking []core.Rect) []Candidate {
	s, e := in.Start, in.End
	horizontal := in.primaryAxis() == core.Horizontal

	if (horizontal && s.Y == e.Y) || (!horizontal && s.X == e.X) {
		return nil
	}

	lo, hi := s.X, e.X
	if !horizontal {
		lo, hi = s.Y, e.Y
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	channels := []float64{(lo + hi) / 2}
	for _, r := range blocking {
		if horizontal {
			channels = append(channels, r.MinX()-in.Margin, r.MaxX()+in.Margin)
		} else {
			channels = append(channels, r.MinY()-in.Margin, r.MaxY()+in.Margin)
		}
	}

	seen := make(map[float64]bool)
	var candidates []Candidate
	for _, c := range channels {
		if c <= lo || c >= hi || seen[c] {
			continue
		}
		seen[c] = true

		var points []core.Point
		var label string
		if horizontal {
			points = []core.Point{s, {X: c, Y: s.Y}, {X: c, Y: e.Y}, e}
			label = fmt.Sprintf("double-bend Z at x=%g", c)
		} else {
			points = []core.Point{s, {X: s.X, Y: c}, {X: e.X, Y: c}, e}
			label = fmt.Sprintf("double-bend Z at y=%g", c)
		}
		candidates = append(candidates, Candidate{Label: label, Points: points})
	}
	return candidates
}

func uCandidates(in Input, blocking []core.Rect) []Candidate {
	extent, ok := geometry.Bounds(blocking)
	if !ok {
		return nil
	}

	s, e := in.Start, in.End
	ss := geometry.Stub(s, in.Exit, in.Margin)
	es := geometry.Stub(e, in.Entry, in.Margin)

	var near, far Candidate
	if in.primaryAxis() == core.Horizontal {
		above := extent.MinY() - in.Margin
		below := extent.MaxY() + in.Margin
		near = Candidate{
			Label:  fmt.Sprintf("double-bend U above y=%g", above),
			Points: []core.Point{s, ss, {X: ss.X, Y: above}, {X: es.X, Y: above}, es, e},
		}
		far = Candidate{
			Label:  fmt.Sprintf("double-bend U below y=%g", below),
			Points: []core.Point{s, ss, {X: ss.X, Y: below}, {X: es.X, Y: below}, es, e},
		}
		mean := (s.Y + e.Y) / 2
		if math.Abs(below-mean) < math.Abs(mean-above) {
			near, far = far, near
		}
	} else {
		left := extent.MinX() - in.Margin
		right := extent.MaxX() + in.Margin
		near = Candidate{
			Label:  fmt.Sprintf("double-bend U left of x=%g", left),
			Points: []core.Point{s, ss, {X: left, Y: ss.Y}, {X: left, Y: es.Y}, es, e},
		}
		far = Candidate{
			Label:  fmt.Sprintf("double-bend U right of x=%g", right),
			Points: []core.Point{s, ss, {X: right, Y: ss.Y}, {X: right, Y: es.Y}, es, e},
		}
		mean := (s.X + e.X) / 2
		if math.Abs(right-mean) < math.Abs(mean-left) {
			near, far = far, near
		}
	}

	near.Points = geometry.Simplify(near.Points)
	far.Points = geometry.Simplify(far.Points)
	return []Candidate{near, far}
}

// Detour proposes the two paths hugging the nearest blocking obstacle's box,
// expanded by the margin, shorter direction first.
func Detour(in Input) []Candidate {
	idx, ok := in.nearestBlocking()
	if !ok {
		return nil
	}

	box := geometry.Expand(in.Obstacles[idx], in.Margin)
	s, e := in.Start, in.End

	var first, second Candidate
	if in.primaryAxis() == core.Horizontal {
		nearX, farX := box.MinX(), box.MaxX()
		if e.X < s.X {
			nearX, farX = farX, nearX
		}
		first = Candidate{
			Label: fmt.Sprintf("detour above obstacle %d", idx),
			Points: []core.Point{s, {X: nearX, Y: s.Y}, {X: nearX, Y: box.MinY()},
				{X: farX, Y: box.MinY()}, {X: farX, Y: e.Y}, e},
		}
		second = Candidate{
			Label: fmt.Sprintf("detour below obstacle %d", idx),
			Points: []core.Point{s, {X: nearX, Y: s.Y}, {X: nearX, Y: box.MaxY()},
				{X: farX, Y: box.MaxY()}, {X: farX, Y: e.Y}, e},
		}
	} else {
		nearY, farY := box.MinY(), box.MaxY()
		if e.Y < s.Y {
			nearY, farY = farY, nearY
		}
		first = Candidate{
			Label: fmt.Sprintf("detour left of obstacle %d", idx),
			Points: []core.Point{s, {X: s.X, Y: nearY}, {X: box.MinX(), Y: nearY},
				{X: box.MinX(), Y: farY}, {X: e.X, Y: farY}, e},
		}
		second = Candidate{
			Label: fmt.Sprintf("detour right of obstacle %d", idx),
			Points: []core.Point{s, {X: s.X, Y: nearY}, {X: box.MaxX(), Y: nearY},
				{X: box.MaxX(), Y: farY}, {X: e.X, Y: farY}, e},
		}
	}

	first.Points = geometry.Simplify(first.Points)
	second.Points = geometry.Simplify(second.Points)
	if geometry.PathLength(second.Points) < geometry.PathLength(first.Points) {
		first, second = second, first
	}
	return []Candidate{first, second}
}

func (in Input) blockingRects() []core.Rect {
	rects := make([]core.Rect, 0, len(in.Blocking))
	for _, idx := range in.Blocking {
		if idx >= 0 && idx < len(in.Obstacles) {
			rects = append(rects, in.Obstacles[idx].Normalize())
		}
	}
	return rects
}

// nearestBlocking returns the blocking obstacle whose center is closest to the
// start anchor. Ties go to the lowest obstacle index.
func (in Input) nearestBlocking() (int, bool) {
	best, bestDist := -1, math.Inf(1)
	for _, idx := range in.Blocking {
		if idx < 0 || idx >= len(in.Obstacles) {
			continue
		}
		d := geometry.Distance(in.Start, in.Obstacles[idx].Normalize().Center())
		if d < bestDist || d == bestDist && idx < best {
			best, bestDist = idx, d
		}
	}
	return best, best >= 0
}

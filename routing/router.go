// Package routing computes orthogonal connector paths between card rectangles.
//
// The Router tries a bounded set of shape strategies in priority order
// (straight, single bend, double bend, detour) and settles on the first
// candidate that clears every obstacle. When nothing clears, it degrades to
// the least-blocked double-bend candidate and, at worst, to a two-point
// direct connector. Routing never fails.
package routing

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cardlink/core"
	"cardlink/debug"
	"cardlink/geometry"
)

// DefaultMargin is the clearance kept between detours and obstacle edges.
const DefaultMargin = 20.0

// Tracer receives one step per strategy attempt. *debug.Recorder implements it.
type Tracer interface {
	IsEnabled() bool
	StartSession(sourceID, targetID string, start, end core.Point, obstacles []core.Rect)
	AddStep(description, decision string, points []float64, rejected bool, reason string)
	EndSession(finalPath []float64, finalStrategy string)
}

// Observer is notified after every routing call.
type Observer interface {
	ObserveRoute(strategy string, attempts, rejected int, elapsed time.Duration)
}

// Request describes one link to route.
type Request struct {
	SourceID    string
	TargetID    string
	Source      core.Rect
	Target      core.Rect
	Obstacles   []core.Rect
	Style       core.Style
	RouteAround bool
}

// Result is the chosen connector.
type Result struct {
	Points   []core.Point
	Strategy string

	// States lists the state machine phases visited, Idle first, Resolved last.
	States   []State
	Attempts int
	Rejected int
	Cached   bool
}

// Flat returns the path as a flat coordinate sequence.
func (r Result) Flat() []float64 {
	return core.Flatten(r.Points)
}

// Options configures a Router.
type Options struct {
	// Margin is the clearance used by double-bend and detour shapes.
	// Zero means DefaultMargin.
	Margin float64

	// CacheSize enables result memoisation while tracing is off. Zero disables.
	CacheSize int

	Tracer   Tracer
	Observer Observer
	Logger   *slog.Logger
}

// Router resolves connector paths. It keeps no state between calls apart from
// the optional result cache, which is keyed on the full request.
type Router struct {
	margin   float64
	tracer   Tracer
	observer Observer
	logger   *slog.Logger
	cache    *Cache
}

// NewRouter creates a router.
func NewRouter(opts Options) *Router {
	r := &Router{
		margin:   opts.Margin,
		tracer:   opts.Tracer,
		observer: opts.Observer,
		logger:   opts.Logger,
	}
	if r.margin <= 0 {
		r.margin = DefaultMargin
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if opts.CacheSize > 0 {
		r.cache = NewCache(opts.CacheSize)
	}
	return r
}

// Margin returns the clearance margin in use.
func (r *Router) Margin() float64 {
	return r.margin
}

// Cache returns the result cache, or nil when caching is disabled.
func (r *Router) Cache() *Cache {
	return r.cache
}

// run carries the working state of one routing call.
type run struct {
	req      Request
	in       Input
	overlap  bool
	tracing  bool
	tracer   Tracer
	result   Result
	fallback []scored

	// direct holds the obstacles the straight segment crossed.
	direct []int
}

// scored is a double-bend candidate remembered for the terminal fallback.
type scored struct {
	candidate Candidate
	blockers  int
}

// Route computes the connector for req. It never fails.
func (r *Router) Route(req Request) Result {
	began := time.Now()

	req.Source = req.Source.Normalize()
	req.Target = req.Target.Normalize()

	tracing := r.tracer != nil && r.tracer.IsEnabled()
	var key uint64
	if r.cache != nil && !tracing {
		key = RequestKey(req, r.margin)
		if cached, ok := r.cache.Get(key); ok {
			r.observe(cached, began)
			return cached
		}
	}

	start, end, exit, entry := geometry.Anchors(req.Source, req.Target)
	overlap := geometry.Overlaps(req.Source, req.Target)
	if overlap {
		start, end = req.Source.Center(), req.Target.Center()
	}

	ru := &run{
		req: req,
		in: Input{
			Start:     start,
			End:       end,
			Exit:      exit,
			Entry:     entry,
			Obstacles: req.Obstacles,
			Margin:    r.margin,
		},
		overlap: overlap,
		tracing: tracing,
		tracer:  r.tracer,
	}

	if tracing {
		r.tracer.StartSession(req.SourceID, req.TargetID, start, end, req.Obstacles)
	}

	state := StateIdle
	ru.result.States = append(ru.result.States, state)
	for state != StateResolved {
		outcome := OutcomeRejected
		switch state {
		case StateStraightAttempt:
			outcome = r.straight(ru)
		case StateBendAttempt:
			outcome = r.bend(ru)
		case StateDetourAttempt:
			outcome = r.detour(ru)
		}
		state = Next(state, outcome)
		ru.result.States = append(ru.result.States, state)
	}

	result := ru.result
	if len(result.Points) < 2 {
		// Two-point floor.
		result.Points = []core.Point{start, end}
		result.Strategy = StrategyDirect
	}

	if tracing {
		r.tracer.EndSession(result.Flat(), result.Strategy)
	}
	if r.cache != nil && !tracing {
		r.cache.Put(key, result)
	}
	r.observe(result, began)
	return result
}

func (r *Router) observe(result Result, began time.Time) {
	if r.observer != nil {
		r.observer.ObserveRoute(result.Strategy, result.Attempts, result.Rejected, time.Since(began))
	}
}

// straight runs the StraightAttempt state.
func (r *Router) straight(ru *run) Outcome {
	candidate := Straight(ru.in)[0]

	if ru.overlap {
		ru.reject(candidate, debug.DecisionRejected, "source and target rectangles overlap")
		ru.resolve(Candidate{Label: StrategyDirect, Points: []core.Point{ru.in.Start, ru.in.End}}, StrategyDirect, false)
		return OutcomeTerminal
	}

	if !ru.req.RouteAround || ru.req.Style == core.StyleStraight {
		ru.resolve(candidate, StrategyStraight, true)
		return OutcomeAccepted
	}

	if hits := geometry.Blockers(candidate.Points, ru.in.Obstacles); len(hits) > 0 {
		ru.direct = hits
		ru.block(hits)
		ru.reject(candidate, debug.DecisionRejected, ru.blockedReason(hits))
		return OutcomeRejected
	}
	ru.resolve(candidate, StrategyStraight, true)
	return OutcomeAccepted
}

// bend runs the BendAttempt state: single-bend shapes, then double-bend shapes.
func (r *Router) bend(ru *run) Outcome {
	singles := SingleBend(ru.in)
	if len(singles) == 0 {
		ru.inapplicable(StrategySingleBend, "anchors are aligned; a single bend would be degenerate")
	}
	for _, c := range singles {
		if r.validate(ru, c, StrategySingleBend) {
			return OutcomeAccepted
		}
	}

	doubles := DoubleBend(ru.in)
	if len(doubles) == 0 {
		ru.inapplicable(StrategyDoubleBend, "no blocking obstacle to route around")
	}
	for _, c := range doubles {
		hits := geometry.Blockers(c.Points, ru.in.Obstacles)
		ru.fallback = append(ru.fallback, scored{candidate: c, blockers: len(hits)})
		if len(hits) == 0 {
			ru.resolve(c, StrategyDoubleBend, true)
			return OutcomeAccepted
		}
		ru.block(hits)
		ru.reject(c, debug.DecisionRejected, ru.blockedReason(hits))
	}
	return OutcomeRejected
}

// detour runs the DetourAttempt state, which always resolves.
func (r *Router) detour(ru *run) Outcome {
	in := ru.in
	if len(ru.direct) > 0 {
		in.Blocking = ru.direct
	}
	detours := Detour(in)
	if len(detours) == 0 {
		ru.inapplicable(StrategyDetour, "no blocking obstacle to detour around")
	}
	for _, c := range detours {
		if r.validate(ru, c, StrategyDetour) {
			return OutcomeAccepted
		}
	}

	if best, ok := leastBlocked(ru.fallback); ok {
		r.logger.Debug("routing fell back to a blocked double-bend",
			"source", ru.req.SourceID, "target", ru.req.TargetID,
			"candidate", best.candidate.Label, "blockers", best.blockers)
		label := Candidate{Label: "fallback: " + best.candidate.Label, Points: best.candidate.Points}
		ru.resolve(label, StrategyFallback, true)
		return OutcomeTerminal
	}

	ru.resolve(Candidate{Label: StrategyDirect, Points: []core.Point{ru.in.Start, ru.in.End}}, StrategyDirect, true)
	return OutcomeTerminal
}

// validate accepts c when it clears every obstacle, otherwise records the rejection.
func (r *Router) validate(ru *run, c Candidate, strategy string) bool {
	hits := geometry.Blockers(c.Points, ru.in.Obstacles)
	if len(hits) == 0 {
		ru.resolve(c, strategy, true)
		return true
	}
	ru.block(hits)
	ru.reject(c, debug.DecisionRejected, ru.blockedReason(hits))
	return false
}

func leastBlocked(candidates []scored) (scored, bool) {
	if len(candidates) == 0 {
		return scored{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.blockers < best.blockers {
			best = c
		}
	}
	return best, true
}

// block merges newly hit obstacles into the blocking set, keeping first-hit order.
func (ru *run) block(hits []int) {
	for _, h := range hits {
		known := false
		for _, b := range ru.in.Blocking {
			if b == h {
				known = true
				break
			}
		}
		if !known {
			ru.in.Blocking = append(ru.in.Blocking, h)
		}
	}
}

func (ru *run) resolve(c Candidate, strategy string, countAttempt bool) {
	if countAttempt {
		ru.result.Attempts++
	}
	ru.result.Points = c.Points
	ru.result.Strategy = strategy
	ru.step(c.Label, debug.DecisionAccepted, core.Flatten(c.Points), false, "")
}

func (ru *run) reject(c Candidate, decision, reason string) {
	ru.result.Attempts++
	ru.result.Rejected++
	ru.step(c.Label, decision, core.Flatten(c.Points), true, reason)
}

func (ru *run) inapplicable(strategy, reason string) {
	ru.result.Attempts++
	ru.result.Rejected++
	ru.step(strategy, debug.DecisionInapplicable, nil, true, reason)
}

func (ru *run) step(description, decision string, points []float64, rejected bool, reason string) {
	if ru.tracing {
		ru.tracer.AddStep(description, decision, points, rejected, reason)
	}
}

// blockedReason names the obstacles a candidate ran into.
func (ru *run) blockedReason(hits []int) string {
	first := ru.in.Obstacles[hits[0]].Normalize()
	var b strings.Builder
	fmt.Fprintf(&b, "crosses obstacle %d {x:%g y:%g w:%g h:%g}",
		hits[0], first.X, first.Y, first.Width, first.Height)
	if len(hits) > 1 {
		fmt.Fprintf(&b, " and %d more", len(hits)-1)
	}
	return b.String()
}

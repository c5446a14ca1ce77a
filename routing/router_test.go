package routing

import (
	"io"
	"log/slog"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"cardlink/core"
	"cardlink/debug"
	"cardlink/geometry"
	"cardlink/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTracedRouter(t *testing.T) (*Router, *debug.Recorder) {
	t.Helper()
	rec := debug.NewRecorder(storage.NewMemoryStore(), debug.Options{Logger: quietLogger()})
	rec.Enable()
	return NewRouter(Options{Tracer: rec, Logger: quietLogger()}), rec
}

func orthogonal(src, tgt core.Rect, obstacles ...core.Rect) Request {
	return Request{
		SourceID:    "src",
		TargetID:    "tgt",
		Source:      src,
		Target:      tgt,
		Obstacles:   obstacles,
		Style:       core.StyleOrthogonal,
		RouteAround: true,
	}
}

func pts(coords ...float64) []core.Point {
	return core.Unflatten(coords)
}

func assertClear(t *testing.T, path []core.Point, obstacles []core.Rect) {
	t.Helper()
	if hits := geometry.Blockers(path, obstacles); len(hits) > 0 {
		t.Errorf("path %v crosses obstacles %v", path, hits)
	}
}

func TestRoute_NoObstaclesIsStraight(t *testing.T) {
	src := core.Rect{X: 0, Y: 0, Width: 200, Height: 120}
	targets := []core.Rect{
		{X: 400, Y: 0, Width: 200, Height: 120},
		{X: -500, Y: 40, Width: 80, Height: 80},
		{X: 30, Y: 600, Width: 200, Height: 120},
		{X: 300, Y: -300, Width: 10, Height: 10},
		{X: 250, Y: 250, Width: 0, Height: 0},
	}
	router := NewRouter(Options{})

	for _, tgt := range targets {
		result := router.Route(orthogonal(src, tgt))
		if result.Strategy != StrategyStraight {
			t.Errorf("target %+v: strategy = %s, want straight", tgt, result.Strategy)
		}
		if len(result.Points) != 2 {
			t.Errorf("target %+v: got %d points, want 2", tgt, len(result.Points))
		}
	}
}

func TestRoute_ObstacleBetweenCards(t *testing.T) {
	router, rec := newTracedRouter(t)
	obstacle := core.Rect{X: 250, Y: 0, Width: 100, Height: 120}
	req := orthogonal(
		core.Rect{X: 0, Y: 0, Width: 200, Height: 120},
		core.Rect{X: 400, Y: 0, Width: 200, Height: 120},
		obstacle,
	)

	result := router.Route(req)

	if result.Strategy != StrategyDoubleBend {
		t.Fatalf("strategy = %s, want double-bend", result.Strategy)
	}
	want := pts(200, 60, 220, 60, 220, -20, 380, -20, 380, 60, 400, 60)
	if !reflect.DeepEqual(result.Points, want) {
		t.Errorf("points = %v, want %v", result.Points, want)
	}
	assertClear(t, result.Points, req.Obstacles)

	session, ok := rec.LatestSession()
	if !ok {
		t.Fatal("no session recorded")
	}
	if len(session.Steps) != 3 {
		t.Fatalf("got %d steps, want 3: %+v", len(session.Steps), session.Steps)
	}
	first := session.Steps[0]
	if first.Description != StrategyStraight || !first.Rejected || first.Decision != debug.DecisionRejected {
		t.Errorf("first step = %+v, want rejected straight", first)
	}
	if first.Reason == "" {
		t.Error("straight rejection should name the blocking obstacle")
	}
	if session.Steps[1].Decision != debug.DecisionInapplicable {
		t.Errorf("single-bend on aligned anchors should be inapplicable, got %+v", session.Steps[1])
	}
	if session.Steps[2].Rejected {
		t.Errorf("last step should be accepted, got %+v", session.Steps[2])
	}
	if !reflect.DeepEqual(session.FinalPath, result.Flat()) {
		t.Errorf("session final path = %v, want %v", session.FinalPath, result.Flat())
	}
	if session.FinalStrategy != StrategyDoubleBend {
		t.Errorf("session strategy = %s", session.FinalStrategy)
	}
	if session.StartPoint != (core.Point{X: 200, Y: 60}) || session.EndPoint != (core.Point{X: 400, Y: 60}) {
		t.Errorf("session endpoints = %v -> %v", session.StartPoint, session.EndPoint)
	}
}

func TestRoute_RouteAroundDisabledIgnoresObstacles(t *testing.T) {
	router, rec := newTracedRouter(t)
	req := orthogonal(
		core.Rect{X: 0, Y: 0, Width: 200, Height: 120},
		core.Rect{X: 400, Y: 0, Width: 200, Height: 120},
		core.Rect{X: 250, Y: 0, Width: 100, Height: 120},
	)
	req.RouteAround = false

	result := router.Route(req)
	if result.Strategy != StrategyStraight || len(result.Points) != 2 {
		t.Fatalf("result = %+v, want straight with 2 points", result)
	}
	wantStates := []State{StateIdle, StateStraightAttempt, StateResolved}
	if !reflect.DeepEqual(result.States, wantStates) {
		t.Errorf("states = %v, want %v", result.States, wantStates)
	}

	session, _ := rec.LatestSession()
	if len(session.Steps) != 1 || session.Steps[0].Description != StrategyStraight {
		t.Errorf("steps = %+v, want only the straight attempt", session.Steps)
	}
}

func TestRoute_StraightStyleIgnoresObstacles(t *testing.T) {
	router := NewRouter(Options{})
	req := orthogonal(
		core.Rect{X: 0, Y: 0, Width: 200, Height: 120},
		core.Rect{X: 400, Y: 0, Width: 200, Height: 120},
		core.Rect{X: 250, Y: 0, Width: 100, Height: 120},
	)
	req.Style = core.StyleStraight

	result := router.Route(req)
	if result.Strategy != StrategyStraight || len(result.Points) != 2 {
		t.Errorf("result = %+v, want straight with 2 points", result)
	}
}

func TestRoute_IdenticalRectsAreDirect(t *testing.T) {
	router, rec := newTracedRouter(t)
	card := core.Rect{X: 10, Y: 10, Width: 200, Height: 120}

	result := router.Route(orthogonal(card, card))

	if result.Strategy != StrategyDirect {
		t.Errorf("strategy = %s, want direct", result.Strategy)
	}
	if len(result.Points) != 2 || result.Points[0] != result.Points[1] {
		t.Errorf("points = %v, want two coincident points", result.Points)
	}

	session, _ := rec.LatestSession()
	if len(session.Steps) != 2 {
		t.Fatalf("steps = %+v", session.Steps)
	}
	if session.Steps[0].Reason != "source and target rectangles overlap" {
		t.Errorf("reason = %q", session.Steps[0].Reason)
	}
}

// Overlap is checked before the routeAround shortcut, so overlapping cards
// always get the centre-to-centre connector.
func TestRoute_OverlapWinsOverRouteAroundDisabled(t *testing.T) {
	router, rec := newTracedRouter(t)
	req := orthogonal(
		core.Rect{X: 0, Y: 0, Width: 200, Height: 120},
		core.Rect{X: 100, Y: 60, Width: 200, Height: 120},
	)
	req.RouteAround = false

	result := router.Route(req)
	if result.Strategy != StrategyDirect {
		t.Errorf("strategy = %s, want direct", result.Strategy)
	}
	if want := pts(100, 60, 200, 120); !reflect.DeepEqual(result.Points, want) {
		t.Errorf("points = %v, want %v", result.Points, want)
	}
	wantStates := []State{StateIdle, StateStraightAttempt, StateResolved}
	if !reflect.DeepEqual(result.States, wantStates) {
		t.Errorf("states = %v, want %v", result.States, wantStates)
	}

	session, _ := rec.LatestSession()
	if len(session.Steps) != 2 {
		t.Fatalf("steps = %+v, want straight then direct", session.Steps)
	}
	if s := session.Steps[0]; s.Description != StrategyStraight || !s.Rejected ||
		s.Reason != "source and target rectangles overlap" {
		t.Errorf("first step = %+v", s)
	}
	if s := session.Steps[1]; s.Description != StrategyDirect || s.Rejected {
		t.Errorf("second step = %+v", s)
	}
	if session.FinalStrategy != StrategyDirect {
		t.Errorf("final strategy = %s", session.FinalStrategy)
	}
}

func TestRoute_ZeroAreaRects(t *testing.T) {
	router := NewRouter(Options{})
	result := router.Route(orthogonal(core.Rect{X: 5, Y: 5}, core.Rect{X: 5, Y: 5}))
	if len(result.Points) != 2 || result.Points[0] != (core.Point{X: 5, Y: 5}) {
		t.Errorf("points = %v", result.Points)
	}

	result = router.Route(orthogonal(core.Rect{X: 0, Y: 0}, core.Rect{X: 100, Y: 0}, core.Rect{X: 50, Y: 0}))
	if len(result.Points) < 2 {
		t.Errorf("points = %v, want at least two", result.Points)
	}
	assertClear(t, result.Points, []core.Rect{{X: 50, Y: 0}})
}

func TestRoute_SingleBend(t *testing.T) {
	src := core.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	tgt := core.Rect{X: 300, Y: 200, Width: 100, Height: 100}
	inLine := core.Rect{X: 180, Y: 130, Width: 40, Height: 40}

	tests := []struct {
		name      string
		obstacles []core.Rect
		want      []core.Point
	}{
		{
			name:      "horizontal first",
			obstacles: []core.Rect{inLine},
			want:      pts(100, 50, 300, 50, 300, 250),
		},
		{
			name:      "vertical first when horizontal leg is blocked",
			obstacles: []core.Rect{inLine, {X: 250, Y: 30, Width: 20, Height: 40}},
			want:      pts(100, 50, 100, 250, 300, 250),
		},
	}

	router := NewRouter(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := router.Route(orthogonal(src, tgt, tt.obstacles...))
			if result.Strategy != StrategySingleBend {
				t.Fatalf("strategy = %s, want single-bend", result.Strategy)
			}
			if !reflect.DeepEqual(result.Points, tt.want) {
				t.Errorf("points = %v, want %v", result.Points, tt.want)
			}
			assertClear(t, result.Points, tt.obstacles)
		})
	}
}

func TestRoute_DoubleBendZ(t *testing.T) {
	router, rec := newTracedRouter(t)
	obstacles := []core.Rect{
		{X: 300, Y: 30, Width: 20, Height: 40},  // blocks the horizontal-first leg
		{X: 90, Y: 150, Width: 20, Height: 20},  // blocks the vertical-first leg
		{X: 240, Y: 130, Width: 20, Height: 20}, // blocks the straight line
	}
	req := orthogonal(
		core.Rect{X: 0, Y: 0, Width: 100, Height: 100},
		core.Rect{X: 400, Y: 200, Width: 100, Height: 100},
		obstacles...,
	)

	result := router.Route(req)
	if result.Strategy != StrategyDoubleBend {
		t.Fatalf("strategy = %s, want double-bend", result.Strategy)
	}
	want := pts(100, 50, 220, 50, 220, 250, 400, 250)
	if !reflect.DeepEqual(result.Points, want) {
		t.Errorf("points = %v, want %v", result.Points, want)
	}
	assertClear(t, result.Points, obstacles)

	session, _ := rec.LatestSession()
	if len(session.Steps) != 5 {
		t.Errorf("got %d steps, want 5: %+v", len(session.Steps), session.Steps)
	}
	if result.Attempts != 5 || result.Rejected != 4 {
		t.Errorf("attempts/rejected = %d/%d, want 5/4", result.Attempts, result.Rejected)
	}
}

func TestRoute_VerticalU(t *testing.T) {
	router := NewRouter(Options{})
	obstacle := core.Rect{X: 0, Y: 200, Width: 100, Height: 100}
	result := router.Route(orthogonal(
		core.Rect{X: 0, Y: 0, Width: 100, Height: 100},
		core.Rect{X: 0, Y: 400, Width: 100, Height: 100},
		obstacle,
	))

	want := pts(50, 100, 50, 120, -20, 120, -20, 380, 50, 380, 50, 400)
	if !reflect.DeepEqual(result.Points, want) {
		t.Errorf("points = %v, want %v", result.Points, want)
	}
	if !geometry.IsOrthogonal(result.Points) {
		t.Error("path should be orthogonal")
	}
}

func scenarioDetour() (core.Rect, core.Rect, []core.Rect) {
	src := core.Rect{X: 0, Y: 0, Width: 200, Height: 120}
	tgt := core.Rect{X: 600, Y: 0, Width: 200, Height: 120}
	obstacles := []core.Rect{
		{X: 300, Y: 0, Width: 100, Height: 120}, // between the cards
		{X: 450, Y: -40, Width: 20, Height: 40}, // under the U above
		{X: 450, Y: 130, Width: 20, Height: 40}, // under the U below
	}
	return src, tgt, obstacles
}

func TestRoute_Detour(t *testing.T) {
	router, rec := newTracedRouter(t)
	src, tgt, obstacles := scenarioDetour()

	result := router.Route(orthogonal(src, tgt, obstacles...))
	if result.Strategy != StrategyDetour {
		t.Fatalf("strategy = %s, want detour", result.Strategy)
	}
	want := pts(200, 60, 280, 60, 280, -20, 420, -20, 420, 60, 600, 60)
	if !reflect.DeepEqual(result.Points, want) {
		t.Errorf("points = %v, want %v", result.Points, want)
	}
	assertClear(t, result.Points, obstacles)

	wantStates := []State{StateIdle, StateStraightAttempt, StateBendAttempt, StateDetourAttempt, StateResolved}
	if !reflect.DeepEqual(result.States, wantStates) {
		t.Errorf("states = %v, want %v", result.States, wantStates)
	}

	session, _ := rec.LatestSession()
	if len(session.Steps) != 5 {
		t.Errorf("got %d steps, want 5", len(session.Steps))
	}
}

func TestRoute_FallbackWhenEverythingIsBlocked(t *testing.T) {
	router, rec := newTracedRouter(t)
	src, tgt, obstacles := scenarioDetour()
	obstacles = append(obstacles,
		core.Rect{X: 340, Y: -30, Width: 20, Height: 20}, // on the detour above
		core.Rect{X: 340, Y: 130, Width: 20, Height: 20}, // on the detour below
	)

	result := router.Route(orthogonal(src, tgt, obstacles...))
	if result.Strategy != StrategyFallback {
		t.Fatalf("strategy = %s, want fallback", result.Strategy)
	}
	want := pts(200, 60, 220, 60, 220, -20, 580, -20, 580, 60, 600, 60)
	if !reflect.DeepEqual(result.Points, want) {
		t.Errorf("points = %v, want the U above candidate %v", result.Points, want)
	}

	session, _ := rec.LatestSession()
	last := session.Steps[len(session.Steps)-1]
	if last.Rejected || !reflect.DeepEqual(last.PathPoints, session.FinalPath) {
		t.Errorf("last step %+v should be the accepted fallback matching the final path", last)
	}
}

func TestRoute_Deterministic(t *testing.T) {
	src, tgt, obstacles := scenarioDetour()
	req := orthogonal(src, tgt, obstacles...)

	first := NewRouter(Options{}).Route(req)
	for i := 0; i < 10; i++ {
		again := NewRouter(Options{}).Route(req)
		if again.Strategy != first.Strategy || !reflect.DeepEqual(again.Points, first.Points) {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

// TestRoute_TraceInvariants checks the recorded trace for many generated layouts.
func TestRoute_TraceInvariants(t *testing.T) {
	router, rec := newTracedRouter(t)
	rng := rand.New(rand.NewSource(42))

	randRect := func() core.Rect {
		return core.Rect{
			X:      float64(rng.Intn(800) - 400),
			Y:      float64(rng.Intn(800) - 400),
			Width:  float64(rng.Intn(200)),
			Height: float64(rng.Intn(150)),
		}
	}

	for i := 0; i < 200; i++ {
		src, tgt := randRect(), randRect()
		obstacles := make([]core.Rect, rng.Intn(6))
		for j := range obstacles {
			obstacles[j] = randRect()
		}

		result := router.Route(orthogonal(src, tgt, obstacles...))
		session, ok := rec.LatestSession()
		if !ok {
			t.Fatal("no session recorded")
		}

		flat := result.Flat()
		if len(flat) < 4 || len(flat)%2 != 0 {
			t.Fatalf("case %d: final path %v is not an even sequence of at least two points", i, flat)
		}
		if !reflect.DeepEqual(session.FinalPath, flat) {
			t.Fatalf("case %d: session final path %v != result %v", i, session.FinalPath, flat)
		}

		var lastAccepted *debug.Step
		for k := range session.Steps {
			step := session.Steps[k]
			if step.Step != k+1 {
				t.Fatalf("case %d: step %d numbered %d", i, k, step.Step)
			}
			if len(step.PathPoints)%2 != 0 {
				t.Fatalf("case %d: step %d has odd point count", i, k)
			}
			if !step.Rejected {
				lastAccepted = &session.Steps[k]
			}
		}
		if lastAccepted == nil || !reflect.DeepEqual(lastAccepted.PathPoints, flat) {
			t.Fatalf("case %d: final path does not match last accepted step", i)
		}

		switch result.Strategy {
		case StrategyStraight, StrategySingleBend, StrategyDoubleBend, StrategyDetour:
			assertClear(t, result.Points, obstacles)
		}
	}
}

func TestRoute_CacheBypassedWhileTracing(t *testing.T) {
	rec := debug.NewRecorder(storage.NewMemoryStore(), debug.Options{Logger: quietLogger()})
	router := NewRouter(Options{CacheSize: 8, Tracer: rec, Logger: quietLogger()})
	src, tgt, obstacles := scenarioDetour()
	req := orthogonal(src, tgt, obstacles...)

	first := router.Route(req)
	second := router.Route(req)
	if first.Cached || !second.Cached {
		t.Errorf("cached flags = %v, %v, want false, true", first.Cached, second.Cached)
	}
	if !reflect.DeepEqual(first.Points, second.Points) || first.Strategy != second.Strategy {
		t.Error("cached result differs from computed result")
	}

	rec.Enable()
	third := router.Route(req)
	if third.Cached {
		t.Error("cache must be bypassed while tracing")
	}
	if len(rec.Sessions()) != 1 {
		t.Errorf("got %d sessions, want 1", len(rec.Sessions()))
	}
}

type countingObserver struct {
	calls    int
	strategy string
	rejected int
}

func (o *countingObserver) ObserveRoute(strategy string, attempts, rejected int, elapsed time.Duration) {
	o.calls++
	o.strategy = strategy
	o.rejected = rejected
}

func TestRoute_Observer(t *testing.T) {
	obs := &countingObserver{}
	router := NewRouter(Options{Observer: obs})
	src, tgt, obstacles := scenarioDetour()
	router.Route(orthogonal(src, tgt, obstacles...))

	if obs.calls != 1 || obs.strategy != StrategyDetour || obs.rejected != 4 {
		t.Errorf("observer = %+v", obs)
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		from    State
		outcome Outcome
		want    State
	}{
		{StateIdle, OutcomeRejected, StateStraightAttempt},
		{StateStraightAttempt, OutcomeAccepted, StateResolved},
		{StateStraightAttempt, OutcomeRejected, StateBendAttempt},
		{StateStraightAttempt, OutcomeTerminal, StateResolved},
		{StateBendAttempt, OutcomeRejected, StateDetourAttempt},
		{StateBendAttempt, OutcomeAccepted, StateResolved},
		{StateDetourAttempt, OutcomeRejected, StateResolved},
		{StateDetourAttempt, OutcomeTerminal, StateResolved},
		{StateResolved, OutcomeRejected, StateResolved},
	}
	for _, tt := range tests {
		if got := Next(tt.from, tt.outcome); got != tt.want {
			t.Errorf("Next(%v, %v) = %v, want %v", tt.from, tt.outcome, got, tt.want)
		}
	}
}

// Package connector adapts the router to a canvas of cards and links.
package connector

import (
	"log/slog"

	"cardlink/core"
	"cardlink/routing"
)

// Link is a connector between two cards.
type Link struct {
	ID          string
	SourceID    string
	TargetID    string
	Style       core.Style
	RouteAround bool
}

// CardIndex maps card ids to their rectangles, remembering insertion order so
// obstacle sets are deterministic.
type CardIndex struct {
	rects map[string]core.Rect
	order []string
}

// NewCardIndex creates an empty index.
func NewCardIndex() *CardIndex {
	return &CardIndex{rects: make(map[string]core.Rect)}
}

// Put adds or moves a card. Moving keeps its original position in the order.
func (ci *CardIndex) Put(id string, rect core.Rect) {
	if _, ok := ci.rects[id]; !ok {
		ci.order = append(ci.order, id)
	}
	ci.rects[id] = rect
}

// Delete removes a card.
func (ci *CardIndex) Delete(id string) {
	if _, ok := ci.rects[id]; !ok {
		return
	}
	delete(ci.rects, id)
	for i, o := range ci.order {
		if o == id {
			ci.order = append(ci.order[:i], ci.order[i+1:]...)
			break
		}
	}
}

// Rect returns the rectangle for id.
func (ci *CardIndex) Rect(id string) (core.Rect, bool) {
	r, ok := ci.rects[id]
	return r, ok
}

// IDs returns card ids in insertion order.
func (ci *CardIndex) IDs() []string {
	return append([]string(nil), ci.order...)
}

// Len returns the number of cards.
func (ci *CardIndex) Len() int {
	return len(ci.order)
}

// Obstacles returns every card rectangle except the excluded ids, in index order.
func (ci *CardIndex) Obstacles(exclude ...string) []core.Rect {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	obstacles := make([]core.Rect, 0, len(ci.order))
	for _, id := range ci.order {
		if !skip[id] {
			obstacles = append(obstacles, ci.rects[id])
		}
	}
	return obstacles
}

// Adapter resolves link geometry for the rendering layer.
type Adapter struct {
	router *routing.Router
	logger *slog.Logger
}

// NewAdapter wraps router. A nil logger uses slog.Default.
func NewAdapter(router *routing.Router, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{router: router, logger: logger}
}

// Points returns the flat world-space path for link and the strategy that
// produced it. A link whose cards are missing yields nil and "".
func (a *Adapter) Points(link Link, cards *CardIndex) ([]float64, string) {
	src, ok := cards.Rect(link.SourceID)
	if !ok {
		a.logger.Warn("link source card not found", "link", link.ID, "card", link.SourceID)
		return nil, ""
	}
	tgt, ok := cards.Rect(link.TargetID)
	if !ok {
		a.logger.Warn("link target card not found", "link", link.ID, "card", link.TargetID)
		return nil, ""
	}

	style := link.Style
	if style == "" {
		style = core.StyleOrthogonal
	}

	result := a.router.Route(routing.Request{
		SourceID:    link.SourceID,
		TargetID:    link.TargetID,
		Source:      src,
		Target:      tgt,
		Obstacles:   cards.Obstacles(link.SourceID, link.TargetID),
		Style:       style,
		RouteAround: link.RouteAround,
	})
	return result.Flat(), result.Strategy
}

// Route is the structured form of Points.
func (a *Adapter) Route(link Link, cards *CardIndex) (core.Path, string) {
	flat, strategy := a.Points(link, cards)
	return core.Path{Points: core.Unflatten(flat)}, strategy
}

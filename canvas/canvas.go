// Package canvas draws cards, obstacles and connector paths onto a rune grid.
//
// World coordinates are projected into character cells by a Projection; the
// Matrix then merges box-drawing runes where lines cross so overlapping
// shapes stay legible.
package canvas

import "errors"

// Common errors
var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrInvalidSize = errors.New("invalid canvas size")
)

// Cell is a character position. Origin is top-left, Y grows downward.
type Cell struct {
	X, Y int
}

// BoxStyle holds the runes used to outline a rectangle.
type BoxStyle struct {
	TopLeft, TopRight, BottomLeft, BottomRight rune
	Horizontal, Vertical                       rune
}

var (
	// CardStyle outlines the source and target cards.
	CardStyle = BoxStyle{'┌', '┐', '└', '┘', '─', '│'}
	// ObstacleStyle outlines obstacles.
	ObstacleStyle = BoxStyle{'#', '#', '#', '#', '#', '#'}
)

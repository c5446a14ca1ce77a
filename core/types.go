// Package core contains the fundamental types used throughout the cardlink routing engine.
package core

// Point represents a 2D coordinate in world space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the point translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Rect is an axis-aligned card bounding box in world (unscaled, unpanned) coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalize returns the rectangle with negative sizes clamped to zero.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}

// MinX returns the left edge.
func (r Rect) MinX() float64 { return r.X }

// MinY returns the top edge.
func (r Rect) MinY() float64 { return r.Y }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{
		X: r.X + r.Width/2,
		Y: r.Y + r.Height/2,
	}
}

// Contains checks if a point is inside the rectangle or on its boundary.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX() && p.X <= r.MaxX() &&
		p.Y >= r.MinY() && p.Y <= r.MaxY()
}

// IsEmpty reports whether the rectangle has zero area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Side is the side of a rectangle a connector leaves or enters through.
type Side int

const (
	Top Side = iota
	Right
	Bottom
	Left
)

// String returns the string representation of a Side.
func (s Side) String() string {
	switch s {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Opposite returns the opposite side.
func (s Side) Opposite() Side {
	switch s {
	case Top:
		return Bottom
	case Right:
		return Left
	case Bottom:
		return Top
	case Left:
		return Right
	default:
		return s
	}
}

// Normal returns the outward unit vector of the side.
func (s Side) Normal() (dx, dy float64) {
	switch s {
	case Top:
		return 0, -1
	case Right:
		return 1, 0
	case Bottom:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 0, 0
	}
}

// Axis returns the axis a connector travels along when it leaves through this side.
func (s Side) Axis() Axis {
	if s == Left || s == Right {
		return Horizontal
	}
	return Vertical
}

// Axis is a primary travel direction.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// String returns the string representation of an Axis.
func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Style selects the connector shape family requested by the link.
type Style string

const (
	StyleStraight   Style = "straight"
	StyleOrthogonal Style = "orthogonal"
)

// Path represents a routed connector polyline.
type Path struct {
	Points []Point
}

// Length returns the number of points in the path.
func (p Path) Length() int {
	return len(p.Points)
}

// IsEmpty returns true if the path has no points.
func (p Path) IsEmpty() bool {
	return len(p.Points) == 0
}

// Flat returns the path as a flat x,y coordinate sequence.
func (p Path) Flat() []float64 {
	return Flatten(p.Points)
}

// Flatten converts points into a flat coordinate sequence of even length.
func Flatten(points []Point) []float64 {
	if len(points) == 0 {
		return nil
	}
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	return flat
}

// Unflatten converts a flat coordinate sequence back into points.
// A trailing unpaired value is dropped.
func Unflatten(flat []float64) []Point {
	if len(flat) < 2 {
		return nil
	}
	points := make([]Point, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		points = append(points, Point{X: flat[i], Y: flat[i+1]})
	}
	return points
}

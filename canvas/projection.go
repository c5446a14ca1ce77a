package canvas

import (
	"math"
	"strconv"

	"cardlink/core"
	"cardlink/geometry"
)

// CellAspect is how many times taller a terminal cell is than it is wide.
const CellAspect = 2.0

// Projection maps world coordinates onto a cols by rows grid, keeping the
// aspect ratio of the world and compensating for tall terminal cells.
type Projection struct {
	origin core.Point
	scale  float64
	cols   int
	rows   int
}

// NewProjection fits bounds into a cols by rows grid.
func NewProjection(bounds core.Rect, cols, rows int) Projection {
	bounds = bounds.Normalize()
	p := Projection{origin: core.Point{X: bounds.X, Y: bounds.Y}, scale: 1, cols: cols, rows: rows}

	sx, sy := math.Inf(1), math.Inf(1)
	if bounds.Width > 0 && cols > 1 {
		sx = float64(cols-1) / bounds.Width
	}
	if bounds.Height > 0 && rows > 1 {
		sy = float64(rows-1) * CellAspect / bounds.Height
	}
	if s := math.Min(sx, sy); !math.IsInf(s, 1) {
		p.scale = s
	}
	return p
}

// Scale returns cell columns per world unit.
func (p Projection) Scale() float64 {
	return p.scale
}

// Cell returns the cell a world point falls in.
func (p Projection) Cell(pt core.Point) Cell {
	return Cell{
		X: int(math.Round((pt.X - p.origin.X) * p.scale)),
		Y: int(math.Round((pt.Y - p.origin.Y) * p.scale / CellAspect)),
	}
}

// Cells projects a polyline.
func (p Projection) Cells(points []core.Point) []Cell {
	cells := make([]Cell, len(points))
	for i, pt := range points {
		cells[i] = p.Cell(pt)
	}
	return cells
}

// Box returns the top-left cell and size of a projected rectangle. Every
// rectangle covers at least one cell.
func (p Projection) Box(r core.Rect) (x, y, w, h int) {
	r = r.Normalize()
	tl := p.Cell(core.Point{X: r.MinX(), Y: r.MinY()})
	br := p.Cell(core.Point{X: r.MaxX(), Y: r.MaxY()})
	return tl.X, tl.Y, br.X - tl.X + 1, br.Y - tl.Y + 1
}

// Card is a labelled rectangle drawn with CardStyle.
type Card struct {
	Rect  core.Rect
	Label string
}

// Scene is everything drawn for one routed connector.
type Scene struct {
	Cards     []Card
	Obstacles []core.Rect
	Path      []core.Point
}

// Bounds returns the world extent of the scene padded by margin.
func (s Scene) Bounds(margin float64) core.Rect {
	rects := append([]core.Rect(nil), s.Obstacles...)
	for _, c := range s.Cards {
		rects = append(rects, c.Rect)
	}
	for _, pt := range s.Path {
		rects = append(rects, core.Rect{X: pt.X, Y: pt.Y})
	}
	b, ok := geometry.Bounds(rects)
	if !ok {
		return core.Rect{}
	}
	return geometry.Expand(b, margin)
}

// Render draws the scene into a fresh cols by rows matrix.
func Render(s Scene, cols, rows int) (*Matrix, error) {
	m, err := NewMatrix(cols, rows)
	if err != nil {
		return nil, err
	}
	proj := NewProjection(s.Bounds(10), cols, rows)
	DrawScene(m, proj, s)
	return m, nil
}

// DrawScene draws obstacles, then the cards, then the path on top.
func DrawScene(m *Matrix, proj Projection, s Scene) {
	for i, o := range s.Obstacles {
		x, y, w, h := proj.Box(o)
		_ = m.DrawBox(x, y, w, h, ObstacleStyle)
		if w > 2 && h > 2 {
			_ = m.DrawText(x+1, y+1, FitText(strconv.Itoa(i), w-2))
		}
	}
	for _, c := range s.Cards {
		x, y, w, h := proj.Box(c.Rect)
		_ = m.DrawBox(x, y, w, h, CardStyle)
		if w > 2 && h > 2 && c.Label != "" {
			_ = m.DrawText(x+1, y+1, FitText(c.Label, w-2))
		}
	}

	if len(s.Path) >= 2 {
		_ = m.DrawPath(proj.Cells(s.Path))
	}
}

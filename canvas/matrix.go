package canvas

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Matrix is a rune grid with drawing primitives.
//
// Matrix is not safe for concurrent writes.
type Matrix struct {
	cells  [][]rune
	width  int
	height int
	merger *merger
}

// NewMatrix creates a blank matrix.
func NewMatrix(width, height int) (*Matrix, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	cells := make([][]rune, height)
	for y := range cells {
		cells[y] = make([]rune, width)
	}
	m := &Matrix{cells: cells, width: width, height: height, merger: newMerger()}
	m.Clear()
	return m, nil
}

// Size returns the width and height in cells.
func (m *Matrix) Size() (width, height int) {
	return m.width, m.height
}

func (m *Matrix) inBounds(c Cell) bool {
	return c.X >= 0 && c.X < m.width && c.Y >= 0 && c.Y < m.height
}

// Get returns the rune at c, or a space when c is outside the matrix.
func (m *Matrix) Get(c Cell) rune {
	if !m.inBounds(c) {
		return ' '
	}
	return m.cells[c.Y][c.X]
}

// Set merges r into the cell at c.
func (m *Matrix) Set(c Cell, r rune) error {
	if !m.inBounds(c) {
		return ErrOutOfBounds
	}
	m.cells[c.Y][c.X] = m.merger.merge(m.cells[c.Y][c.X], r)
	return nil
}

// Put overwrites the cell at c without merging.
func (m *Matrix) Put(c Cell, r rune) error {
	if !m.inBounds(c) {
		return ErrOutOfBounds
	}
	m.cells[c.Y][c.X] = r
	return nil
}

// set merges r into c, silently clipping.
func (m *Matrix) set(x, y int, r rune) {
	_ = m.Set(Cell{x, y}, r)
}

// Clear resets every cell to a space.
func (m *Matrix) Clear() {
	for y := range m.cells {
		for x := range m.cells[y] {
			m.cells[y][x] = ' '
		}
	}
}

// Lines returns each row with trailing spaces removed.
func (m *Matrix) Lines() []string {
	lines := make([]string, m.height)
	for y, row := range m.cells {
		var sb strings.Builder
		for _, r := range row {
			if r == 0 {
				continue // wide rune continuation
			}
			sb.WriteRune(r)
		}
		lines[y] = strings.TrimRight(sb.String(), " ")
	}
	return lines
}

// String returns the matrix rows joined by newlines.
func (m *Matrix) String() string {
	return strings.Join(m.Lines(), "\n")
}

// DrawBox outlines the w by h rectangle whose top-left cell is (x, y). Parts
// outside the matrix are clipped.
func (m *Matrix) DrawBox(x, y, w, h int, style BoxStyle) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("draw box %dx%d: %w", w, h, ErrInvalidSize)
	}
	x2, y2 := x+w-1, y+h-1
	if w == 1 || h == 1 {
		m.DrawHorizontal(x, x2, y, style.Horizontal)
		m.DrawVertical(x, y, y2, style.Vertical)
		return nil
	}

	for i := x + 1; i < x2; i++ {
		m.set(i, y, style.Horizontal)
		m.set(i, y2, style.Horizontal)
	}
	for j := y + 1; j < y2; j++ {
		m.set(x, j, style.Vertical)
		m.set(x2, j, style.Vertical)
	}
	m.set(x, y, style.TopLeft)
	m.set(x2, y, style.TopRight)
	m.set(x, y2, style.BottomLeft)
	m.set(x2, y2, style.BottomRight)
	return nil
}

// DrawHorizontal draws a horizontal run between x1 and x2 inclusive.
func (m *Matrix) DrawHorizontal(x1, x2, y int, r rune) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		m.set(x, y, r)
	}
}

// DrawVertical draws a vertical run between y1 and y2 inclusive.
func (m *Matrix) DrawVertical(x, y1, y2 int, r rune) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		m.set(x, y, r)
	}
}

// DrawLine draws an arbitrary segment with Bresenham's algorithm.
func (m *Matrix) DrawLine(a, b Cell, r rune) {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		m.set(x, y, r)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// DrawPath draws a polyline of cells. Axis-aligned runs use box-drawing
// lines with rounded corners; anything else falls back to '*'. The first
// cell gets a dot and the last an arrow pointing along the final run.
func (m *Matrix) DrawPath(cells []Cell) error {
	cells = dedupe(cells)
	if len(cells) < 2 {
		return fmt.Errorf("path needs at least 2 distinct cells, got %d", len(cells))
	}

	for i := 0; i+1 < len(cells); i++ {
		a, b := cells[i], cells[i+1]
		switch {
		case a.Y == b.Y:
			m.DrawHorizontal(a.X, b.X, a.Y, '─')
		case a.X == b.X:
			m.DrawVertical(a.X, a.Y, b.Y, '│')
		default:
			m.DrawLine(a, b, '*')
		}
	}
	for i := 1; i+1 < len(cells); i++ {
		if corner, ok := cornerRune(direction(cells[i-1], cells[i]), direction(cells[i], cells[i+1])); ok {
			_ = m.Put(cells[i], corner)
		}
	}

	_ = m.Put(cells[0], '●')
	last, prev := cells[len(cells)-1], cells[len(cells)-2]
	_ = m.Put(last, arrowRune(direction(prev, last)))
	return nil
}

// DrawText writes text starting at (x, y), clipping at the edges.
func (m *Matrix) DrawText(x, y int, text string) error {
	if y < 0 || y >= m.height {
		return ErrOutOfBounds
	}
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x >= m.width || (w == 2 && x+1 >= m.width) {
			break
		}
		if x >= 0 {
			m.cells[y][x] = r
			if w == 2 {
				m.cells[y][x+1] = 0
			}
		}
		x += w
	}
	return nil
}

// FitText truncates text to width cells.
func FitText(text string, width int) string {
	return runewidth.Truncate(text, width, "…")
}

func dedupe(cells []Cell) []Cell {
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		if len(out) == 0 || out[len(out)-1] != c {
			out = append(out, c)
		}
	}
	return out
}

type dir byte

const (
	east  dir = 'E'
	west  dir = 'W'
	south dir = 'S'
	north dir = 'N'
	diag  dir = 'D'
)

func direction(a, b Cell) dir {
	switch {
	case a.Y == b.Y && b.X > a.X:
		return east
	case a.Y == b.Y:
		return west
	case a.X == b.X && b.Y > a.Y:
		return south
	case a.X == b.X:
		return north
	default:
		return diag
	}
}

func cornerRune(from, to dir) (rune, bool) {
	switch {
	case from == east && to == south, from == north && to == west:
		return '╮', true
	case from == east && to == north, from == south && to == west:
		return '╯', true
	case from == west && to == south, from == north && to == east:
		return '╭', true
	case from == west && to == north, from == south && to == east:
		return '╰', true
	}
	return 0, false
}

func arrowRune(d dir) rune {
	switch d {
	case west:
		return '◀'
	case north:
		return '▲'
	case south:
		return '▼'
	default:
		return '▶'
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Package validation checks rendered connector drawings for broken lines.
package validation

import (
	"fmt"
	"strings"
)

type direction int

const (
	north direction = iota
	east
	south
	west
)

func (d direction) String() string {
	return [...]string{"north", "east", "south", "west"}[d]
}

func (d direction) opposite() direction {
	return (d + 2) % 4
}

func (d direction) step(x, y int) (int, int) {
	switch d {
	case north:
		return x, y - 1
	case east:
		return x + 1, y
	case south:
		return x, y + 1
	default:
		return x - 1, y
	}
}

// links lists which sides each box-drawing rune joins.
var links = map[rune][]direction{
	'─': {east, west},
	'│': {north, south},
	'┌': {east, south}, '╭': {east, south},
	'┐': {west, south}, '╮': {west, south},
	'└': {north, east}, '╰': {north, east},
	'┘': {north, west}, '╯': {north, west},
	'├': {north, south, east},
	'┤': {north, south, west},
	'┬': {east, west, south},
	'┴': {east, west, north},
	'┼': {north, east, south, west},
}

func isEndpoint(r rune) bool {
	switch r {
	case '●', '▶', '◀', '▲', '▼':
		return true
	}
	return false
}

func isArrow(r rune) bool {
	return isEndpoint(r) && r != '●'
}

// LineValidator checks that adjacent box-drawing runes agree on how they join.
type LineValidator struct {
	errors []ValidationError
}

// ValidationError represents a validation error with location information.
type ValidationError struct {
	X, Y    int
	Char    rune
	Message string
}

// NewLineValidator creates a new validator.
func NewLineValidator() *LineValidator {
	return &LineValidator{}
}

// Validate checks a rendered drawing for line runes whose neighbours do not
// join back. Blanks, text, obstacle fill and endpoint markers are neutral.
func (v *LineValidator) Validate(drawing string) []ValidationError {
	v.errors = nil
	grid := toGrid(drawing)

	for y, row := range grid {
		for x, r := range row {
			dirs, ok := links[r]
			if !ok {
				continue
			}
			for _, d := range dirs {
				nx, ny := d.step(x, y)
				n := cell(grid, nx, ny)
				if joins(n, d.opposite()) {
					continue
				}
				v.addError(x, y, r, "cannot connect to %c on the %s", n, d)
			}
		}
	}
	return v.errors
}

// joins reports whether r accepts a line arriving from side d.
func joins(r rune, d direction) bool {
	dirs, ok := links[r]
	if !ok {
		return true // neutral
	}
	for _, have := range dirs {
		if have == d {
			return true
		}
	}
	return false
}

// Connected reports whether the path start marker reaches an arrow through
// joined line runes.
func Connected(drawing string) bool {
	grid := toGrid(drawing)

	type pos struct{ x, y int }
	var queue []pos
	seen := make(map[pos]bool)
	for y, row := range grid {
		for x, r := range row {
			if r == '●' {
				queue = append(queue, pos{x, y})
				seen[pos{x, y}] = true
			}
		}
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		r := cell(grid, p.x, p.y)
		if isArrow(r) {
			return true
		}

		dirs := links[r]
		if isEndpoint(r) {
			dirs = []direction{north, east, south, west}
		}
		for _, d := range dirs {
			nx, ny := d.step(p.x, p.y)
			next := pos{nx, ny}
			n := cell(grid, nx, ny)
			if seen[next] {
				continue
			}
			if _, line := links[n]; !(line && joins(n, d.opposite())) && !isArrow(n) {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return false
}

func toGrid(drawing string) [][]rune {
	lines := strings.Split(strings.Trim(drawing, "\n"), "\n")
	grid := make([][]rune, len(lines))
	for i, line := range lines {
		grid[i] = []rune(line)
	}
	return grid
}

func cell(grid [][]rune, x, y int) rune {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
		return ' '
	}
	return grid[y][x]
}

func (v *LineValidator) addError(x, y int, char rune, format string, args ...interface{}) {
	v.errors = append(v.errors, ValidationError{
		X:       x,
		Y:       y,
		Char:    char,
		Message: fmt.Sprintf(format, args...),
	})
}

// String formats validation errors as a string.
func (e ValidationError) String() string {
	return fmt.Sprintf("(%d,%d) '%c': %s", e.X, e.Y, e.Char, e.Message)
}

package core

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRectEdgesAndCenter(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 40}

	if r.MaxX() != 110 || r.MaxY() != 60 {
		t.Errorf("Max = (%v, %v), want (110, 60)", r.MaxX(), r.MaxY())
	}
	if c := r.Center(); c != (Point{X: 60, Y: 40}) {
		t.Errorf("Center() = %v, want (60,40)", c)
	}
}

func TestRectNormalize(t *testing.T) {
	r := Rect{X: 5, Y: 5, Width: -3, Height: 10}.Normalize()
	if r.Width != 0 || r.Height != 10 {
		t.Errorf("Normalize() = %+v, want width 0 height 10", r)
	}
	if !r.IsEmpty() {
		t.Error("zero-width rect should be empty")
	}
}

func TestRectContainsBoundary(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Point{X: 5, Y: 5}, true},
		{"corner", Point{X: 10, Y: 10}, true},
		{"edge", Point{X: 0, Y: 3}, true},
		{"outside", Point{X: 11, Y: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestSideOppositeAndNormal(t *testing.T) {
	tests := []struct {
		side     Side
		opposite Side
		dx, dy   float64
		axis     Axis
	}{
		{Top, Bottom, 0, -1, Vertical},
		{Right, Left, 1, 0, Horizontal},
		{Bottom, Top, 0, 1, Vertical},
		{Left, Right, -1, 0, Horizontal},
	}
	for _, tt := range tests {
		t.Run(tt.side.String(), func(t *testing.T) {
			if tt.side.Opposite() != tt.opposite {
				t.Errorf("Opposite() = %v, want %v", tt.side.Opposite(), tt.opposite)
			}
			dx, dy := tt.side.Normal()
			if dx != tt.dx || dy != tt.dy {
				t.Errorf("Normal() = (%v,%v), want (%v,%v)", dx, dy, tt.dx, tt.dy)
			}
			if tt.side.Axis() != tt.axis {
				t.Errorf("Axis() = %v, want %v", tt.side.Axis(), tt.axis)
			}
		})
	}
}

func TestFlattenUnflatten(t *testing.T) {
	points := []Point{{X: 1, Y: 2}, {X: 3, Y: 4}}
	flat := Flatten(points)
	if !reflect.DeepEqual(flat, []float64{1, 2, 3, 4}) {
		t.Fatalf("Flatten() = %v", flat)
	}
	if got := Unflatten(flat); !reflect.DeepEqual(got, points) {
		t.Errorf("Unflatten() = %v, want %v", got, points)
	}
	if got := Unflatten([]float64{1, 2, 3}); len(got) != 1 {
		t.Errorf("odd trailing value should be dropped, got %v", got)
	}
	if Flatten(nil) != nil {
		t.Error("Flatten(nil) should be nil")
	}
}

func TestRectJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Rect{X: 1, Y: 2, Width: 3, Height: 4})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"x":1,"y":2,"width":3,"height":4}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

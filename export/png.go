package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"cardlink/core"
	"cardlink/debug"
)

var (
	pngBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	pngObstacle   = color.RGBA{0xd9, 0x53, 0x4f, 0x60}
	pngOutline    = color.RGBA{0xa9, 0x32, 0x2e, 0xff}
	pngPath       = color.RGBA{0x1f, 0x6f, 0xeb, 0xff}
	pngEndpoint   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	pngText       = color.RGBA{0x33, 0x33, 0x33, 0xff}
)

// PNGExporter rasterises a session with golang.org/x/image/vector.
type PNGExporter struct {
	Width  int
	Height int
	// Padding is the empty border, in pixels, around the drawing.
	Padding float64
	// Stroke is the path thickness in pixels.
	Stroke float64
}

// NewPNGExporter creates an 800x600 exporter.
func NewPNGExporter() *PNGExporter {
	return &PNGExporter{Width: 800, Height: 600, Padding: 24, Stroke: 3}
}

// Export draws obstacles, the final path and a caption, then encodes a PNG.
func (e *PNGExporter) Export(w io.Writer, s debug.Session) error {
	img, err := e.Image(s)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Image renders the session without encoding it.
func (e *PNGExporter) Image(s debug.Session) (*image.RGBA, error) {
	if e.Width <= 0 || e.Height <= 0 {
		return nil, fmt.Errorf("invalid png size %dx%d", e.Width, e.Height)
	}
	img := image.NewRGBA(image.Rect(0, 0, e.Width, e.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(pngBackground), image.Point{}, draw.Src)

	scene := SessionScene(s)
	t := newPixelTransform(scene.Bounds(0), e.Width, e.Height, e.Padding)

	for i, o := range scene.Obstacles {
		o = o.Normalize()
		a := t.apply(core.Point{X: o.MinX(), Y: o.MinY()})
		b := t.apply(core.Point{X: o.MaxX(), Y: o.MaxY()})
		e.fill(img, pngObstacle, a, core.Point{X: b.X, Y: a.Y}, b, core.Point{X: a.X, Y: b.Y})
		e.polyline(img, pngOutline, 1, []core.Point{a, {X: b.X, Y: a.Y}, b, {X: a.X, Y: b.Y}, a})
		drawLabel(img, strconv.Itoa(i), int(a.X)+3, int(a.Y)+13)
	}

	if len(scene.Path) >= 2 {
		pts := make([]core.Point, len(scene.Path))
		for i, p := range scene.Path {
			pts[i] = t.apply(p)
		}
		e.polyline(img, pngPath, e.Stroke, pts)
		e.dot(img, pts[0], e.Stroke*2)
		e.dot(img, pts[len(pts)-1], e.Stroke*2)
	}

	drawLabel(img, fmt.Sprintf("%s -> %s  %s", orDash(s.SourceID), orDash(s.TargetID), orDash(s.FinalStrategy)),
		int(e.Padding/2), e.Height-int(e.Padding/2))
	return img, nil
}

// fill rasterises a closed polygon.
func (e *PNGExporter) fill(dst draw.Image, c color.Color, pts ...core.Point) {
	if len(pts) < 3 {
		return
	}
	r := vector.NewRasterizer(e.Width, e.Height)
	r.DrawOp = draw.Over
	r.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		r.LineTo(float32(p.X), float32(p.Y))
	}
	r.ClosePath()
	r.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// polyline strokes each segment as a quad, extended by half the width so
// orthogonal joints close cleanly.
func (e *PNGExporter) polyline(dst draw.Image, c color.Color, width float64, pts []core.Point) {
	half := width / 2
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		ux, uy := dx/length*half, dy/length*half
		nx, ny := -uy, ux
		a = a.Add(-ux, -uy)
		b = b.Add(ux, uy)
		e.fill(dst, c, a.Add(nx, ny), b.Add(nx, ny), b.Add(-nx, -ny), a.Add(-nx, -ny))
	}
}

// dot draws a small square marker centred on p.
func (e *PNGExporter) dot(dst draw.Image, p core.Point, size float64) {
	h := size / 2
	e.fill(dst, pngEndpoint, p.Add(-h, -h), p.Add(h, -h), p.Add(h, h), p.Add(-h, h))
}

func drawLabel(dst draw.Image, text string, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(pngText),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// pixelTransform maps world coordinates into the image, preserving aspect.
type pixelTransform struct {
	origin core.Point
	scale  float64
	offset core.Point
}

func newPixelTransform(bounds core.Rect, width, height int, padding float64) pixelTransform {
	availW := float64(width) - 2*padding
	availH := float64(height) - 2*padding
	t := pixelTransform{origin: core.Point{X: bounds.X, Y: bounds.Y}, scale: 1, offset: core.Point{X: padding, Y: padding}}

	sx, sy := math.Inf(1), math.Inf(1)
	if bounds.Width > 0 {
		sx = availW / bounds.Width
	}
	if bounds.Height > 0 {
		sy = availH / bounds.Height
	}
	if s := math.Min(sx, sy); !math.IsInf(s, 1) && s > 0 {
		t.scale = s
	}
	return t
}

func (t pixelTransform) apply(p core.Point) core.Point {
	return core.Point{
		X: (p.X-t.origin.X)*t.scale + t.offset.X,
		Y: (p.Y-t.origin.Y)*t.scale + t.offset.Y,
	}
}

// FileExtension returns the file extension for PNG
func (e *PNGExporter) FileExtension() string {
	return ".png"
}

// FormatName returns the format name
func (e *PNGExporter) FormatName() string {
	return "PNG image"
}

package graphic

import (
	"image"
	"math"
)

// Point is a position in canvas, logical or device space depending on the
// stage of the pipeline that produced it.
type Point struct {
	X float64
	Y float64
}

// Bounds is an axis aligned rectangle given by its top-left corner and size.
type Bounds struct {
	X float64
	Y float64
	W float64
	H float64
}

// Contains reports whether p lies inside b. Edges are inclusive.
func (b Bounds) Contains(p Point) bool {
	return b.X <= p.X && p.X <= b.X+b.W && b.Y <= p.Y && p.Y <= b.Y+b.H
}

// Intersects reports whether b overlaps the screen rectangle (0, 0, w, h).
func (b Bounds) Intersects(w, h float64) bool {
	return !(b.X > w || b.Y > h || b.X+b.W < 0 || b.Y+b.H < 0)
}

// Graphic is one drawable primitive. The concrete types are Rect, Ellipse,
// Triangle, Char, ImageFile and Image; consumers switch on the type.
type Graphic interface {
	Bounds() Bounds
}

// Rect is a filled rectangle. A zero Radius draws square corners and a zero
// Thickness draws a filled shape; a positive Thickness draws an outline.
type Rect struct {
	X, Y, W, H float64
	Radius     float64
	Thickness  float64
	Color      Color
}

func (r Rect) Bounds() Bounds { return Bounds{X: r.X, Y: r.Y, W: r.W, H: r.H} }

// Ellipse is centred on (X, Y).
type Ellipse struct {
	X, Y      float64
	RX, RY    float64
	Thickness float64
	Color     Color
}

func (e Ellipse) Bounds() Bounds {
	return Bounds{X: e.X - e.RX, Y: e.Y - e.RY, W: e.RX * 2, H: e.RY * 2}
}

type Triangle struct {
	P1, P2, P3 Point
	Color      Color
}

func (t Triangle) Bounds() Bounds {
	xMin := math.Min(t.P1.X, math.Min(t.P2.X, t.P3.X))
	xMax := math.Max(t.P1.X, math.Max(t.P2.X, t.P3.X))
	yMin := math.Min(t.P1.Y, math.Min(t.P2.Y, t.P3.Y))
	yMax := math.Max(t.P1.Y, math.Max(t.P2.Y, t.P3.Y))
	return Bounds{X: xMin, Y: yMin, W: xMax - xMin, H: yMax - yMin}
}

// Char is a single glyph. (X, Y) is the left end of the glyph's baseline.
type Char struct {
	Ch    rune
	X, Y  float64
	Size  float64
	Color Color
}

func (c Char) Bounds() Bounds {
	return Bounds{X: c.X, Y: c.Y - c.Size, W: c.Size * 0.55, H: c.Size}
}

// ImageFile references an image on disk. Render callbacks emit it; the render
// cache resolves it into an Image before anything reaches a backend.
type ImageFile struct {
	Path       string
	X, Y, W, H float64
}

func (i ImageFile) Bounds() Bounds { return Bounds{X: i.X, Y: i.Y, W: i.W, H: i.H} }

// Image is a resolved ImageFile. Source is the handle held by the resource
// cache and is shared, never mutated.
type Image struct {
	Path       string
	Source     image.Image
	X, Y, W, H float64
}

func (i Image) Bounds() Bounds { return Bounds{X: i.X, Y: i.Y, W: i.W, H: i.H} }

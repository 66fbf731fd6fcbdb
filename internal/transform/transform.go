// Package transform maps graphics and pointer positions between canvas,
// logical and device space. Every function returns new values and leaves its
// arguments untouched.
package transform

import (
	"math"
	"slices"

	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/input"
)

const (
	// LogicalWidth and LogicalHeight are the size of the space the chrome is
	// laid out in. Backends see it scaled to the real screen.
	LogicalWidth  = 1080.0
	LogicalHeight = 720.0

	// CanvasWidth and CanvasHeight are the size of the detail canvas render
	// callbacks draw on.
	CanvasWidth  = 900.0
	CanvasHeight = 600.0

	// CanvasTop is where the canvas starts below the top bar in logical space.
	CanvasTop = 120.0

	offScreenMargin = 400.0
)

// CanvasCenter is where the camera position lands in logical space.
var CanvasCenter = graphic.Point{X: CanvasWidth / 2, Y: CanvasTop + CanvasHeight/2}

// Fit is a uniform scale followed by a translation that letterboxes one
// rectangle inside another.
type Fit struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// NewFit computes the largest scale at which a w x h rectangle fits inside
// screenW x screenH, centring it along the axis with spare room.
func NewFit(w, h, screenW, screenH float64) Fit {
	if w*screenH > h*screenW {
		scale := screenW / w
		return Fit{Scale: scale, OffsetY: (screenH - h*scale) / 2}
	}
	scale := screenH / h
	return Fit{Scale: scale, OffsetX: (screenW - w*scale) / 2}
}

// Apply maps a logical point to the screen.
func (f Fit) Apply(p graphic.Point) graphic.Point {
	return graphic.Point{X: p.X*f.Scale + f.OffsetX, Y: p.Y*f.Scale + f.OffsetY}
}

// Invert maps a screen point back to logical space.
func (f Fit) Invert(p graphic.Point) graphic.Point {
	return graphic.Point{X: (p.X - f.OffsetX) / f.Scale, Y: (p.Y - f.OffsetY) / f.Scale}
}

// FitGraphicsToScreen scales graphics laid out in a w x h space onto a
// screenW x screenH screen. Glyph sizes are rounded to whole units.
func FitGraphicsToScreen(graphics []graphic.Graphic, w, h, screenW, screenH float64) []graphic.Graphic {
	f := NewFit(w, h, screenW, screenH)
	return affine(graphics, f.Scale, f.OffsetX, f.OffsetY, true)
}

// FitInputToScreen maps the pointer of a screen space input into the
// w x h space, undoing FitGraphicsToScreen.
func FitInputToScreen(in input.Input, w, h, screenW, screenH float64) input.Input {
	in.Pointer = NewFit(w, h, screenW, screenH).Invert(in.Pointer)
	return in
}

// CameraTransform maps canvas graphics into logical space for a camera
// looking at pan with the given zoom. pan ends up at CanvasCenter.
func CameraTransform(graphics []graphic.Graphic, pan graphic.Point, zoom float64) []graphic.Graphic {
	return affine(graphics, zoom, CanvasCenter.X-pan.X*zoom, CanvasCenter.Y-pan.Y*zoom, false)
}

// CameraToLogical maps one canvas point the same way CameraTransform does.
func CameraToLogical(p, pan graphic.Point, zoom float64) graphic.Point {
	return graphic.Point{
		X: CanvasCenter.X - pan.X*zoom + p.X*zoom,
		Y: CanvasCenter.Y - pan.Y*zoom + p.Y*zoom,
	}
}

// Scale multiplies every coordinate and size by s.
func Scale(graphics []graphic.Graphic, s float64) []graphic.Graphic {
	return affine(graphics, s, 0, 0, false)
}

// MoveRel translates every graphic by (dx, dy).
func MoveRel(graphics []graphic.Graphic, dx, dy float64) []graphic.Graphic {
	return affine(graphics, 1, dx, dy, false)
}

// HideOffScreen appends black bands around a w x h space so nothing drawn
// outside it shows up in the letterbox margins.
func HideOffScreen(graphics []graphic.Graphic, w, h float64) []graphic.Graphic {
	m := offScreenMargin
	return append(slices.Clip(graphics),
		graphic.Rect{X: -m, Y: -m, W: w + 2*m, H: m, Color: graphic.Black},
		graphic.Rect{X: -m, Y: h, W: w + 2*m, H: m, Color: graphic.Black},
		graphic.Rect{X: -m, Y: -m, W: m, H: h + 2*m, Color: graphic.Black},
		graphic.Rect{X: w, Y: -m, W: m, H: h + 2*m, Color: graphic.Black},
	)
}

func affine(graphics []graphic.Graphic, s, dx, dy float64, roundGlyphs bool) []graphic.Graphic {
	out := make([]graphic.Graphic, 0, len(graphics))
	pt := func(p graphic.Point) graphic.Point {
		return graphic.Point{X: p.X*s + dx, Y: p.Y*s + dy}
	}

	for _, g := range graphics {
		switch g := g.(type) {
		case graphic.Rect:
			g.X, g.Y = g.X*s+dx, g.Y*s+dy
			g.W, g.H = g.W*s, g.H*s
			g.Radius *= s
			g.Thickness *= s
			out = append(out, g)
		case graphic.Ellipse:
			g.X, g.Y = g.X*s+dx, g.Y*s+dy
			g.RX, g.RY = g.RX*s, g.RY*s
			g.Thickness *= s
			out = append(out, g)
		case graphic.Triangle:
			g.P1, g.P2, g.P3 = pt(g.P1), pt(g.P2), pt(g.P3)
			out = append(out, g)
		case graphic.Char:
			g.X, g.Y = g.X*s+dx, g.Y*s+dy
			g.Size *= s
			if roundGlyphs {
				g.Size = math.Round(g.Size)
			}
			out = append(out, g)
		case graphic.ImageFile:
			g.X, g.Y = g.X*s+dx, g.Y*s+dy
			g.W, g.H = g.W*s, g.H*s
			out = append(out, g)
		case graphic.Image:
			g.X, g.Y = g.X*s+dx, g.Y*s+dy
			g.W, g.H = g.W*s, g.H*s
			out = append(out, g)
		default:
			out = append(out, g)
		}
	}
	return out
}

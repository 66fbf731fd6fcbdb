package graphic

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a straight (non-premultiplied) RGBA colour with channels in [0, 1].
type Color struct {
	R, G, B, A float64
}

var (
	White = Color{R: 1, G: 1, B: 1, A: 1}
	Black = Color{R: 0, G: 0, B: 0, A: 1}
	Gray  = Color{R: 0.5, G: 0.5, B: 0.5, A: 1}

	// Flag colours, shared by the side bar dots, the top bar and the scrollbar histogram.
	Red   = Color{R: 0.75, G: 0.25, B: 0.25, A: 1}
	Green = Color{R: 0.25, G: 0.75, B: 0.25, A: 1}
	Blue  = Color{R: 0.25, G: 0.25, B: 0.75, A: 1}

	Yellow = Color{R: 0.75, G: 0.75, B: 0.25, A: 1}
)

// WithAlpha returns c with its alpha channel replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Colorful converts c to a go-colorful colour, dropping alpha.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

// Hex formats c as #rrggbb.
func (c Color) Hex() string {
	return c.Colorful().Clamped().Hex()
}

// Over blends c over dst using c's alpha.
func (c Color) Over(dst Color) Color {
	a := clamp01(c.A)
	return Color{
		R: c.R*a + dst.R*(1-a),
		G: c.G*a + dst.G*(1-a),
		B: c.B*a + dst.B*(1-a),
		A: 1,
	}
}

// ParseHex parses a #rrggbb (or #rgb) string into an opaque colour.
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: 1}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package raster

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/shvbsle/shev/internal/graphic"
)

// Palette is a fixed set of terminal colours, indexed the way the terminal
// numbers them.
type Palette []colorful.Color

// ANSI8 is the basic terminal palette: black, red, green, yellow, blue,
// magenta, cyan and white.
var ANSI8 = Palette{
	{R: 0, G: 0, B: 0},
	{R: 0.8, G: 0, B: 0},
	{R: 0, G: 0.8, B: 0},
	{R: 0.8, G: 0.8, B: 0},
	{R: 0, G: 0, B: 0.8},
	{R: 0.8, G: 0, B: 0.8},
	{R: 0, G: 0.8, B: 0.8},
	{R: 0.9, G: 0.9, B: 0.9},
}

// Nearest returns the index of the palette colour closest to c in Lab
// space.
func (p Palette) Nearest(c graphic.Color) int {
	target := c.Colorful().Clamped()
	best, bestDist := 0, -1.0
	for i, pc := range p {
		d := target.DistanceLab(pc)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

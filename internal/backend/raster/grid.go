// Package raster paints device space graphics onto a grid of terminal
// cells. Device space has one unit per column and two per row: every cell
// shows an upper and a lower half pixel, plus an optional glyph on top.
package raster

import (
	"image"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/shvbsle/shev/internal/graphic"
)

// Cell is one terminal cell.
type Cell struct {
	// Ch is the glyph drawn in the cell, or 0 for none.
	Ch rune
	Fg graphic.Color

	// Top and Bottom are the colours of the two half pixels.
	Top    graphic.Color
	Bottom graphic.Color

	// Wide marks the right half of a double width glyph in the cell to the
	// left. Writers must skip it.
	Wide bool
}

// Bg is the colour behind a glyph.
func (c Cell) Bg() graphic.Color {
	return mix(c.Top, c.Bottom)
}

type Grid struct {
	cols, rows int
	cells      []Cell
}

func NewGrid(cols, rows int) *Grid {
	g := &Grid{}
	g.Resize(cols, rows)
	return g
}

// Resize changes the grid size and clears it.
func (g *Grid) Resize(cols, rows int) {
	g.cols, g.rows = max(cols, 0), max(rows, 0)
	g.cells = make([]Cell, g.cols*g.rows)
	g.Clear(graphic.Black)
}

func (g *Grid) Size() (cols, rows int) {
	return g.cols, g.rows
}

// DeviceSize is the size of the grid in device units.
func (g *Grid) DeviceSize() (w, h float64) {
	return float64(g.cols), float64(g.rows * 2)
}

func (g *Grid) At(col, row int) Cell {
	return g.cells[row*g.cols+col]
}

func (g *Grid) Clear(bg graphic.Color) {
	for i := range g.cells {
		g.cells[i] = Cell{Top: bg, Bottom: bg}
	}
}

// Paint clears the grid and draws graphics in order.
func (g *Grid) Paint(graphics []graphic.Graphic) {
	g.Clear(graphic.Black)
	for _, gr := range graphics {
		g.Draw(gr)
	}
}

// Draw paints one graphic over what is already on the grid. Unresolved
// image files are drawn as gray boxes.
func (g *Grid) Draw(gr graphic.Graphic) {
	switch v := gr.(type) {
	case graphic.Rect:
		g.fill(v.Bounds(), v.Color, rectCoverage(v))
	case graphic.Ellipse:
		g.fill(v.Bounds(), v.Color, ellipseCoverage(v))
	case graphic.Triangle:
		g.fill(v.Bounds(), v.Color, triangleCoverage(v))
	case graphic.Char:
		g.glyph(v)
	case graphic.Image:
		g.image(v)
	case graphic.ImageFile:
		g.fill(v.Bounds(), graphic.Gray, func(x, y float64) bool { return true })
	}
}

// fill sets every half pixel of b whose centre is covered.
func (g *Grid) fill(b graphic.Bounds, color graphic.Color, covers func(x, y float64) bool) {
	if color.A <= 0 {
		return
	}
	x0, x1, y0, y1 := g.span(b)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			if covers(float64(px)+0.5, float64(py)+0.5) {
				g.setPixel(px, py, color)
			}
		}
	}
}

func (g *Grid) image(img graphic.Image) {
	if img.Source == nil || img.W <= 0 || img.H <= 0 {
		return
	}
	src := img.Source.Bounds()
	if src.Empty() {
		return
	}

	x0, x1, y0, y1 := g.span(img.Bounds())
	for py := y0; py < y1; py++ {
		v := (float64(py) + 0.5 - img.Y) / img.H
		for px := x0; px < x1; px++ {
			u := (float64(px) + 0.5 - img.X) / img.W
			if u < 0 || u >= 1 || v < 0 || v >= 1 {
				continue
			}
			g.setPixel(px, py, sample(img.Source, src, u, v))
		}
	}
}

func sample(img image.Image, src image.Rectangle, u, v float64) graphic.Color {
	x := src.Min.X + int(u*float64(src.Dx()))
	y := src.Min.Y + int(v*float64(src.Dy()))
	r, gr, b, a := img.At(x, y).RGBA()
	if a == 0 {
		return graphic.Color{}
	}
	// RGBA is premultiplied.
	return graphic.Color{
		R: float64(r) / float64(a),
		G: float64(gr) / float64(a),
		B: float64(b) / float64(a),
		A: float64(a) / 0xffff,
	}
}

// glyph puts a character in the cell its vertical centre falls in.
func (g *Grid) glyph(c graphic.Char) {
	width := runewidth.RuneWidth(c.Ch)
	if width == 0 || c.Color.A <= 0 {
		return
	}
	col := int(math.Floor(c.X))
	row := int(math.Floor((c.Y - c.Size/2) / 2))
	if row < 0 || row >= g.rows || col < 0 || col+width > g.cols {
		return
	}
	if g.cells[row*g.cols+col].Wide {
		col--
		if col < 0 {
			return
		}
	}

	if width == 1 && col+1 < g.cols && g.cells[row*g.cols+col+1].Wide {
		g.cells[row*g.cols+col+1].Wide = false
	}

	cell := &g.cells[row*g.cols+col]
	cell.Ch = c.Ch
	cell.Fg = c.Color.Over(cell.Bg())
	for i := 1; i < width; i++ {
		next := &g.cells[row*g.cols+col+i]
		next.Ch = 0
		next.Wide = true
	}
}

func (g *Grid) setPixel(px, py int, color graphic.Color) {
	cell := &g.cells[(py/2)*g.cols+px]
	if py%2 == 0 {
		cell.Top = color.Over(cell.Top)
	} else {
		cell.Bottom = color.Over(cell.Bottom)
	}
	// Shapes drawn later hide the glyphs underneath them.
	if color.A >= 1 {
		cell.Ch = 0
		cell.Wide = false
	}
}

// span clips b to the grid in pixel units.
func (g *Grid) span(b graphic.Bounds) (x0, x1, y0, y1 int) {
	x0 = max(int(math.Floor(b.X)), 0)
	y0 = max(int(math.Floor(b.Y)), 0)
	x1 = min(int(math.Ceil(b.X+b.W)), g.cols)
	y1 = min(int(math.Ceil(b.Y+b.H)), g.rows*2)
	return x0, x1, y0, y1
}

// Text returns the glyphs on the grid, one line per row, with spaces where
// there is none. Trailing spaces are trimmed.
func (g *Grid) Text() string {
	var sb strings.Builder
	for row := range g.rows {
		var line strings.Builder
		for col := range g.cols {
			cell := g.At(col, row)
			switch {
			case cell.Wide:
			case cell.Ch == 0:
				line.WriteByte(' ')
			default:
				line.WriteRune(cell.Ch)
			}
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		if row < g.rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func mix(a, b graphic.Color) graphic.Color {
	return graphic.Color{R: (a.R + b.R) / 2, G: (a.G + b.G) / 2, B: (a.B + b.B) / 2, A: 1}
}

func rectCoverage(r graphic.Rect) func(x, y float64) bool {
	radius := math.Min(r.Radius, math.Min(r.W, r.H)/2)
	inside := func(x, y, inset float64) bool {
		left, top := r.X+inset, r.Y+inset
		right, bottom := r.X+r.W-inset, r.Y+r.H-inset
		if x < left || x > right || y < top || y > bottom {
			return false
		}
		rad := math.Max(radius-inset, 0)
		if rad == 0 {
			return true
		}
		cx := math.Min(math.Max(x, left+rad), right-rad)
		cy := math.Min(math.Max(y, top+rad), bottom-rad)
		return math.Hypot(x-cx, y-cy) <= rad
	}
	if r.Thickness <= 0 {
		return func(x, y float64) bool { return inside(x, y, 0) }
	}
	t := math.Max(r.Thickness, 1)
	return func(x, y float64) bool { return inside(x, y, 0) && !inside(x, y, t) }
}

func ellipseCoverage(e graphic.Ellipse) func(x, y float64) bool {
	// Anything under a pixel still shows up as one.
	rx, ry := math.Max(e.RX, 0.5), math.Max(e.RY, 0.5)
	inside := func(x, y, inset float64) bool {
		a, b := rx-inset, ry-inset
		if a <= 0 || b <= 0 {
			return false
		}
		dx, dy := (x-e.X)/a, (y-e.Y)/b
		return dx*dx+dy*dy <= 1
	}
	if e.Thickness <= 0 {
		return func(x, y float64) bool { return inside(x, y, 0) }
	}
	t := math.Max(e.Thickness, 1)
	return func(x, y float64) bool { return inside(x, y, 0) && !inside(x, y, t) }
}

func triangleCoverage(t graphic.Triangle) func(x, y float64) bool {
	edge := func(a, b graphic.Point, x, y float64) float64 {
		return (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
	}
	return func(x, y float64) bool {
		d1 := edge(t.P1, t.P2, x, y)
		d2 := edge(t.P2, t.P3, x, y)
		d3 := edge(t.P3, t.P1, x, y)
		neg := d1 < 0 || d2 < 0 || d3 < 0
		pos := d1 > 0 || d2 > 0 || d3 > 0
		return !(neg && pos)
	}
}

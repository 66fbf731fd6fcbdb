package graphic

import (
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const (
	// Advance is the horizontal distance between glyphs, relative to font size.
	Advance = 0.55
	// LineHeight is the vertical distance between baselines, relative to font size.
	LineHeight = 1.1
)

// TextBox lays text out as Char graphics inside a rectangle. Lines that do
// not fit horizontally end with "..." and lines past the bottom are dropped.
type TextBox struct {
	text     string
	size     float64
	color    Color
	colorMap []Color
	rect     Bounds
	padding  [4]float64 // top, bottom, left, right
}

// NewTextBox creates a text box with a single colour.
func NewTextBox(text string, size float64, color Color, rect Bounds) *TextBox {
	return &TextBox{
		text:  text,
		size:  size,
		color: color,
		rect:  rect,
	}
}

// WithColorMap colours the i-th rune of the text with colors[i]. Escape
// sequences are not stripped when a colour map is set, since the indices
// would no longer line up.
func (t *TextBox) WithColorMap(colors []Color) *TextBox {
	t.colorMap = colors
	return t
}

func (t *TextBox) WithPadding(top, bottom, left, right float64) *TextBox {
	t.padding = [4]float64{top, bottom, left, right}
	return t
}

// Render returns the glyphs of the laid out text.
func (t *TextBox) Render() []Graphic {
	top, bottom, left, right := t.padding[0], t.padding[1], t.padding[2], t.padding[3]
	rect := Bounds{
		X: t.rect.X + left,
		Y: t.rect.Y + top,
		W: t.rect.W - left - right,
		H: t.rect.H - top - bottom,
	}

	text := t.text
	if t.colorMap == nil {
		text = ansi.Strip(text)
	}

	maxX := int(max(rect.W/(t.size*Advance)-1, 4)) - 4
	maxY := int(max(rect.H/(t.size*LineHeight)-1, 1)) - 1
	runes, colors := t.breakLines([]rune(text), maxX, maxY)

	var out []Graphic
	x, y := rect.X, rect.Y+t.size
	for i, ch := range runes {
		if ch == '\n' {
			x = rect.X
			y += t.size * LineHeight
			continue
		}
		width := runewidth.RuneWidth(ch)
		if width == 0 {
			width = 1
		}
		if !unicode.IsSpace(ch) {
			out = append(out, Char{Ch: ch, X: x, Y: y, Size: t.size, Color: colors[i]})
		}
		x += t.size * Advance * float64(width)
	}
	return out
}

func (t *TextBox) colorAt(i int) Color {
	if t.colorMap != nil && i < len(t.colorMap) {
		return t.colorMap[i]
	}
	return t.color
}

func (t *TextBox) breakLines(text []rune, maxX, maxY int) ([]rune, []Color) {
	runes := make([]rune, 0, len(text))
	colors := make([]Color, 0, len(text))
	col, row := 0, 0
	broken := false

	for i, ch := range text {
		color := t.colorAt(i)
		if ch == '\r' {
			continue
		}
		if ch == '\n' {
			col = 0
			row++
			broken = false
			if row > maxY {
				break
			}
			runes = append(runes, ch)
			colors = append(colors, color)
			continue
		}
		if broken {
			continue
		}
		if ch == '\t' {
			ch = ' '
		}
		if col > maxX {
			for range 3 {
				runes = append(runes, '.')
				colors = append(colors, color)
			}
			broken = true
			continue
		}
		runes = append(runes, ch)
		colors = append(colors, color)
		col += max(runewidth.RuneWidth(ch), 1)
	}
	return runes, colors
}

// Truncate shortens s to at most n display cells followed by "..." when s is
// longer than n+4 cells. Shorter strings are returned unchanged.
func Truncate(s string, n int) string {
	if runewidth.StringWidth(s) <= n+4 {
		return s
	}
	return runewidth.Truncate(s, n, "") + "..."
}

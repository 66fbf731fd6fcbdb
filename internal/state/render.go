package state

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/shvbsle/shev/internal/cache"
	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/transform"
)

// Theme holds the chrome colours.
type Theme struct {
	TopBarBg    graphic.Color
	TopBarFont  graphic.Color
	SideBarBg   graphic.Color
	SideBarFont graphic.Color
}

func DefaultTheme() Theme {
	return Theme{
		TopBarBg:    graphic.Color{R: 0.2, G: 0.2, B: 0.3, A: 1},
		TopBarFont:  graphic.White,
		SideBarBg:   graphic.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
		SideBarFont: graphic.White,
	}
}

var buttonColor = graphic.Color{R: 0.7, G: 0.7, B: 0.7, A: 1}

// Render draws the active view in the 1080x720 logical space. It only reads
// the canvas and the histogram from the render cache, so the cache must have
// been refreshed for the current step first.
func (s *State) Render(view *entry.View, caches *cache.RenderCache, theme Theme, pointer graphic.Point) []graphic.Graphic {
	canvas, _ := caches.Canvas(s.CanvasKey())

	var out []graphic.Graphic
	out = append(out, transform.CameraTransform(canvas, s.camera, s.zoom)...)
	if s.showExtraContent {
		out = append(out, s.renderExtraContent(view)...)
	}
	out = append(out, s.renderTopBar(view, theme)...)
	out = append(out, s.renderSideBar(view, caches, theme, pointer)...)
	if s.showHelp {
		out = append(out, s.renderHelp(view, len(canvas) > 0)...)
	}
	if s.popup != nil {
		out = append(out, s.renderPopup()...)
	}
	return out
}

type topBarLine struct {
	text  string
	flag  entry.Flag
	small bool
}

func (s *State) renderTopBar(view *entry.View, theme Theme) []graphic.Graphic {
	sb := SideBarLayout(s.wideSideBar)
	out := []graphic.Graphic{
		graphic.Rect{W: sb.X, H: TopBarHeight, Color: theme.TopBarBg},
	}

	var lines []topBarLine
	if view.Title != "" {
		lines = append(lines, topBarLine{text: view.Title})
	}
	current := view.At(s.cursor)
	if current != nil {
		lines = append(lines, topBarLine{text: current.Title(), flag: current.Flag})
	}
	lines = append(lines, topBarLine{text: s.hints(view, current), small: true})

	fontSize, y, lineHeight := 21.0, 60.0, 0.0
	switch len(lines) {
	case 2:
		y, lineHeight = 45, 40
	case 3:
		y, lineHeight = 30, 33
	}
	center := sb.X / 2

	for _, line := range lines {
		size := fontSize
		if line.small {
			size *= 0.75
		}
		text := graphic.Truncate(line.text, int(sb.X*1.5/size))
		x := center - float64(utf8.RuneCountInString(text))*size*graphic.Advance/2

		for _, ch := range text {
			if ch != ' ' {
				out = append(out, graphic.Char{Ch: ch, X: x, Y: y, Size: size, Color: theme.TopBarFont})
			}
			x += size * graphic.Advance
		}
		if c, ok := line.flag.Color(); ok {
			out = append(out, graphic.Ellipse{X: x + 10, Y: y - 6.25, RX: 6.25, RY: 6.25, Color: c})
		}
		y += lineHeight
	}
	return out
}

func (s *State) hints(view *entry.View, current *entry.Entry) string {
	var b strings.Builder
	if view.Transition != nil {
		fmt.Fprintf(&b, "Ctrl+Up: %s, ", view.Transition.Label())
	}
	if current != nil && current.Primary != nil {
		fmt.Fprintf(&b, "Ctrl+Left: %s, ", current.Primary.Label())
	}
	if current != nil && current.Secondary != nil {
		fmt.Fprintf(&b, "Ctrl+Right: %s, ", current.Secondary.Label())
	}
	b.WriteString("H: Help")
	return b.String()
}

func (s *State) renderSideBar(view *entry.View, caches *cache.RenderCache, theme Theme, pointer graphic.Point) []graphic.Graphic {
	sb := SideBarLayout(s.wideSideBar)
	out := []graphic.Graphic{
		graphic.Rect{X: sb.X, W: sb.W, H: transform.LogicalHeight, Color: theme.SideBarBg},
	}

	start, end := ListWindow(s.cursor, view.Len())
	for i := start; i < end; i++ {
		e := view.At(i)
		y := rowBaseline(i - start)
		line := fmt.Sprintf("%s %d. %s", s.bullet(i), i+1, graphic.Truncate(e.DisplayTitle, sb.TitleMax))

		x := sb.X + 6.4
		for _, ch := range line {
			if ch != ' ' {
				out = append(out, graphic.Char{Ch: ch, X: x, Y: y, Size: listGlyphSize, Color: theme.SideBarFont})
			}
			x += listAdvance
		}
		if c, ok := e.Flag.Color(); ok {
			out = append(out, graphic.Ellipse{X: x + 7, Y: y - 5, RX: 5, RY: 5, Color: c})
		}
	}

	if s.wideSideBar && view.Len() > scrollBarMinEntries {
		out = append(out, graphic.Rect{X: 1050, Y: scrollBarTop, W: 10, H: scrollBarHeight, Color: graphic.Gray})
		if h, ok := caches.Histogram(view.ID); ok {
			for i, c := range h {
				out = append(out, graphic.Rect{X: 1055, Y: scrollBarTop + float64(i)*bucketHeight, W: 4, H: bucketHeight, Color: c})
			}
		}
		out = append(out, graphic.Ellipse{
			X:     1055,
			Y:     scrollBarTop + float64(s.cursor*int(scrollBarHeight)/(view.Len()-1)),
			RX:    8,
			RY:    8,
			Color: theme.SideBarFont,
		})
	}

	counter := "0 / 0"
	if !view.IsEmpty() {
		counter = fmt.Sprintf("%d / %d", s.cursor+1, view.Len())
	}
	x := 1065 - 8.8*float64(utf8.RuneCountInString(counter))
	for _, ch := range counter {
		if ch != ' ' {
			out = append(out, graphic.Char{Ch: ch, X: x, Y: 680, Size: 16, Color: theme.SideBarFont})
		}
		x += 8.8
	}

	return append(out, expandButton(s.wideSideBar, pointer)...)
}

func (s *State) bullet(i int) string {
	cursor := i == s.cursor
	hovered := s.hovering && i == s.hovered
	switch {
	case cursor && hovered:
		return "*>"
	case cursor:
		return ">>"
	case hovered:
		return " *"
	default:
		return "  "
	}
}

func expandButton(wide bool, pointer graphic.Point) []graphic.Graphic {
	zone := ExpandButton(wide)
	alpha := 0.5
	if zone.Contains(pointer) {
		alpha = 1
	}

	// The arrow points the way the bar will move.
	tri := graphic.Triangle{
		P1:    graphic.Point{X: zone.X + 6, Y: zone.Y + 6},
		P2:    graphic.Point{X: zone.X + 6, Y: zone.Y + 26},
		P3:    graphic.Point{X: zone.X + 26, Y: zone.Y + 16},
		Color: graphic.Black.WithAlpha(alpha),
	}
	if !wide {
		tri.P1.X, tri.P2.X, tri.P3.X = zone.X+26, zone.X+26, zone.X+6
	}

	return []graphic.Graphic{
		graphic.Rect{X: zone.X, Y: zone.Y, W: zone.W, H: zone.H, Color: buttonColor.WithAlpha(alpha)},
		tri,
	}
}

func (s *State) renderExtraContent(view *entry.View) []graphic.Graphic {
	e := view.At(s.cursor)
	if e == nil {
		return nil
	}
	w := SideBarLayout(s.wideSideBar).X
	outer := graphic.Bounds{X: 20, Y: TopBarHeight + 20, W: w - 40, H: transform.LogicalHeight - TopBarHeight - 40}
	inner := graphic.Bounds{X: outer.X + 4, Y: outer.Y + 4, W: outer.W - 8, H: outer.H - 8}

	out := []graphic.Graphic{
		graphic.Rect{X: outer.X, Y: outer.Y, W: outer.W, H: outer.H, Radius: 12, Color: graphic.White},
		graphic.Rect{X: inner.X, Y: inner.Y, W: inner.W, H: inner.H, Radius: 12, Color: graphic.Black},
	}
	return append(out, graphic.NewTextBox(e.ExtraContent, 16, graphic.White, inner).WithPadding(16, 16, 16, 16).Render()...)
}

type helpLine struct {
	text string
	show bool
}

// HelpLines lists the key bindings that do something in view.
func (s *State) HelpLines(view *entry.View, hasCanvas bool) []string {
	hasEntry := !view.IsEmpty()
	hasCategories := lo.ContainsBy(view.Items, func(e entry.Entry) bool { return e.CategoryA != "" || e.CategoryB != "" })
	hasExtra := lo.ContainsBy(view.Items, func(e entry.Entry) bool { return e.ExtraContent != "" })

	lines := []helpLine{
		{"Esc: Quit", true},
		{"Left/Right: Toggle side-bar", true},
		{"Up/Down: Jump to prev/next entry", hasEntry},
		{"1~9: Quick jump", hasEntry},
		{"PageUp/PageDown: Jump to prev/next category", hasCategories},
		{"Shift + PageUp/PageDown: Jump to prev/next sub-category", hasCategories},
		{"Space/Alt + Space: Jump to next/prev entry with the same flag", hasEntry},
		{"W/A/S/D: Move camera", hasCanvas},
		{"Shift + W/A/S/D: Move camera faster", hasCanvas},
		{"Z/X: Zoom In/Out", hasCanvas},
		{"Shift + Z/X: Zoom In/Out faster", hasCanvas},
		{"H: See help message", true},
		{"C: Show extra content", hasExtra},
		{"M: Change entry state", view.Modes() > 1},
		{"Ctrl + Up/Left/Right: Transit to another view", view.HasTransitions()},
	}
	for i, f := range view.Filters {
		lines = append(lines, helpLine{fmt.Sprintf("Ctrl + %d: %s", i+1, f.Name), i < 9})
	}

	return lo.FilterMap(lines, func(l helpLine, _ int) (string, bool) {
		return l.text, l.show
	})
}

func (s *State) renderHelp(view *entry.View, hasCanvas bool) []graphic.Graphic {
	out := []graphic.Graphic{
		graphic.Rect{X: 30, Y: 30, W: 1020, H: 660, Radius: 12, Color: graphic.White},
		graphic.Rect{X: 40, Y: 40, W: 1000, H: 640, Radius: 12, Color: graphic.Black},
	}
	text := strings.Join(s.HelpLines(view, hasCanvas), "\n")
	return append(out, graphic.NewTextBox(text, 18, graphic.White, graphic.Bounds{X: 72, Y: 72, W: 936, H: 576}).Render()...)
}

func (s *State) renderPopup() []graphic.Graphic {
	sb := SideBarLayout(s.wideSideBar)
	alpha := s.popup.Alpha()
	n := float64(utf8.RuneCountInString(s.popup.Message))
	x := sb.X/2 - n*4.4

	out := []graphic.Graphic{
		graphic.Rect{X: x - 20, Y: 600, W: n*8.8 + 40, H: 80, Color: graphic.White.WithAlpha(alpha)},
		graphic.Rect{X: x - 16, Y: 604, W: n*8.8 + 32, H: 72, Color: graphic.Black.WithAlpha(alpha)},
	}
	for _, ch := range s.popup.Message {
		if ch != ' ' {
			out = append(out, graphic.Char{Ch: ch, X: x, Y: 645, Size: 16, Color: graphic.White.WithAlpha(alpha)})
		}
		x += 8.8
	}
	return out
}

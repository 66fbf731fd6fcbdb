package termloop

import (
	"testing"

	tl "github.com/JoelOtter/termloop"
	"github.com/google/go-cmp/cmp"

	"github.com/shvbsle/shev/internal/backend/raster"
	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/input"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		name  string
		event tl.Event
		want  []input.Key
	}{
		{name: "arrow", event: tl.Event{Type: tl.EventKey, Key: tl.KeyArrowDown}, want: []input.Key{input.KeyDown}},
		{name: "page", event: tl.Event{Type: tl.EventKey, Key: tl.KeyPgdn}, want: []input.Key{input.KeyPageDown}},
		{name: "escape", event: tl.Event{Type: tl.EventKey, Key: tl.KeyEsc}, want: []input.Key{input.KeyEscape}},
		{name: "alt space", event: tl.Event{Type: tl.EventKey, Key: tl.KeySpace, Mod: tl.ModAltModifier}, want: []input.Key{input.KeyLeftAlt, input.KeySpace}},
		{name: "alt letter", event: tl.Event{Type: tl.EventKey, Ch: 'c', Mod: tl.ModAltModifier}, want: []input.Key{input.KeyLeftAlt, input.KeyC}},
		{name: "digit", event: tl.Event{Type: tl.EventKey, Ch: '4'}, want: []input.Key{input.Key4}},
		{name: "shifted digit", event: tl.Event{Type: tl.EventKey, Ch: '@'}, want: []input.Key{input.KeyLeftCtrl, input.Key2}},
		{name: "letter", event: tl.Event{Type: tl.EventKey, Ch: 'm'}, want: []input.Key{input.KeyM}},
		{name: "upper case", event: tl.Event{Type: tl.EventKey, Ch: 'W'}, want: []input.Key{input.KeyLeftShift, input.KeyW}},
		{name: "parent", event: tl.Event{Type: tl.EventKey, Ch: 'k'}, want: []input.Key{input.KeyLeftCtrl, input.KeyUp}},
		{name: "unmapped", event: tl.Event{Type: tl.EventKey, Ch: 'q'}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, translateKey(tt.event)); diff != "" {
				t.Errorf("Keys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToCell(t *testing.T) {
	tests := []struct {
		name string
		cell raster.Cell
		want tl.Cell
	}{
		{
			name: "glyph",
			cell: raster.Cell{Ch: 'a', Fg: graphic.White, Top: graphic.Black, Bottom: graphic.Black},
			want: tl.Cell{Fg: tl.ColorWhite, Bg: tl.ColorBlack, Ch: 'a'},
		},
		{
			name: "flat",
			cell: raster.Cell{Top: graphic.Blue, Bottom: graphic.Blue},
			want: tl.Cell{Fg: tl.ColorBlue, Bg: tl.ColorBlue, Ch: ' '},
		},
		{
			name: "split",
			cell: raster.Cell{Top: graphic.Red, Bottom: graphic.Black},
			want: tl.Cell{Fg: tl.ColorRed, Bg: tl.ColorBlack, Ch: upperHalf},
		},
	}

	for _, tt := range tests {
		if got := *toCell(tt.cell); got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.want, got)
		}
	}
}

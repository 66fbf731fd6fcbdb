package tea

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/shvbsle/shev/internal/backend/raster"
	"github.com/shvbsle/shev/internal/engine"
	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/input"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want []input.Key
	}{
		{name: "down", msg: tea.KeyMsg{Type: tea.KeyDown}, want: []input.Key{input.KeyDown}},
		{name: "page down", msg: tea.KeyMsg{Type: tea.KeyPgDown}, want: []input.Key{input.KeyPageDown}},
		{name: "sub-category", msg: runes("]"), want: []input.Key{input.KeyLeftShift, input.KeyPageDown}},
		{name: "escape", msg: tea.KeyMsg{Type: tea.KeyEscape}, want: []input.Key{input.KeyEscape}},
		{name: "space", msg: tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, want: []input.Key{input.KeySpace}},
		{name: "alt space", msg: tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}, Alt: true}, want: []input.Key{input.KeyLeftAlt, input.KeySpace}},
		{name: "ctrl up", msg: tea.KeyMsg{Type: tea.KeyCtrlUp}, want: []input.Key{input.KeyLeftCtrl, input.KeyUp}},
		{name: "parent letter", msg: runes("k"), want: []input.Key{input.KeyLeftCtrl, input.KeyUp}},
		{name: "digit", msg: runes("5"), want: []input.Key{input.Key5}},
		{name: "filter", msg: runes("@"), want: []input.Key{input.KeyLeftCtrl, input.Key2}},
		{name: "camera", msg: runes("w"), want: []input.Key{input.KeyW}},
		{name: "fast camera", msg: runes("W"), want: []input.Key{input.KeyLeftShift, input.KeyW}},
		{name: "mode", msg: runes("m"), want: []input.Key{input.KeyM}},
		{name: "unmapped", msg: runes("q"), want: nil},
	}

	keys := newKeyMap()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, keys.translate(tt.msg)); diff != "" {
				t.Errorf("Keys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func newTestModel(t *testing.T, n int) (Model, *engine.Engine) {
	t.Helper()
	items := make([]entry.Entry, n)
	for i := range items {
		items[i] = entry.Entry{DisplayTitle: fmt.Sprintf("item-%d", i), DetailTitle: fmt.Sprintf("/tmp/item-%d", i)}
	}
	registry := entry.NewRegistry()
	registry.MustRegister(&entry.View{ID: "root", Title: "root", Items: items, ModeCount: 1})

	e, err := engine.New(registry, "root", engine.Options{FrameInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	m := New(context.Background(), e)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 108, Height: 36})
	return next.(Model), e
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestFrameStepsEngine(t *testing.T) {
	m, e := newTestModel(t, 3)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := send(m, frameMsg(time.Now()))

	if e.State().Cursor() != 1 {
		t.Errorf("Expected cursor 1, got %d", e.State().Cursor())
	}
	if cmd == nil {
		t.Error("Expected the next tick to be scheduled")
	}
	if lines := strings.Count(m.View(), "\n"); lines != 35 {
		t.Errorf("Expected 36 lines, got %d", lines+1)
	}
}

func TestEscapeQuits(t *testing.T) {
	m, _ := newTestModel(t, 3)
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEscape})

	var cmd tea.Cmd
	for range 3 {
		m, cmd = send(m, frameMsg(time.Now()))
	}

	if cmd == nil {
		t.Fatal("Expected a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected the program to quit once Escape was released")
	}
}

func TestCtrlCQuits(t *testing.T) {
	m, _ := newTestModel(t, 3)
	_, cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected ctrl+c to quit")
	}
}

func TestCopyTitle(t *testing.T) {
	m, e := newTestModel(t, 3)
	var copied string
	m.copy = func(s string) error {
		copied = s
		return nil
	}

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(m, frameMsg(time.Now()))
	_, cmd := send(m, runes("y"))

	msg, ok := cmd().(copiedMsg)
	if !ok || !msg.success {
		t.Fatalf("Expected a successful copy, got %+v", msg)
	}
	if copied != "/tmp/item-1" {
		t.Errorf("Expected the detail title to be copied, got %q", copied)
	}

	send(m, msg)
	popup, ok := e.State().Popup()
	if !ok || popup.Message != `Copied "/tmp/item-1" to clipboard.` {
		t.Errorf("Expected a popup, got %q", popup.Message)
	}
}

func TestCopyFailure(t *testing.T) {
	m, _ := newTestModel(t, 1)
	m.copy = func(string) error { return errors.New("no clipboard") }

	_, cmd := send(m, runes("y"))
	msg := cmd().(copiedMsg)
	if msg.success || !strings.Contains(msg.message, "no clipboard") {
		t.Errorf("Expected a failed copy, got %+v", msg)
	}
}

func TestRender(t *testing.T) {
	g := raster.NewGrid(3, 1)
	g.Draw(graphic.Rect{X: 1, Y: 0, W: 1, H: 1, Color: graphic.Red})
	g.Draw(graphic.Char{Ch: 'a', X: 2, Y: 2, Size: 2, Color: graphic.White})

	out := Render(g)
	if !strings.Contains(out, upperHalf) || !strings.Contains(out, "a") {
		t.Errorf("Expected a half block and a glyph, got %q", out)
	}
	if strings.Contains(out, "\n") {
		t.Errorf("Expected a single line, got %q", out)
	}
}

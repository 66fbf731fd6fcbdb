package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/shvbsle/shev/internal/cache"
	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/filter"
	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/input"
	"github.com/shvbsle/shev/internal/log"
)

func TestMain(m *testing.M) {
	log.Discard()
	os.Exit(m.Run())
}

const screenW, screenH = 1080.0, 720.0

type renderCounter map[cache.CanvasKey]int

func (c renderCounter) render(viewID string) entry.RenderFunc {
	return func(e *entry.Entry, mode entry.Mode) ([]graphic.Graphic, error) {
		c[cache.CanvasKey{View: viewID, Mode: mode}]++
		return []graphic.Graphic{graphic.Rect{W: 900, H: 600, Color: graphic.Blue}}, nil
	}
}

func newTestView(id string, n int, render entry.RenderFunc) *entry.View {
	items := make([]entry.Entry, n)
	for i := range items {
		items[i] = entry.Entry{DisplayTitle: fmt.Sprintf("%s-%d", id, i)}
		if i%2 == 1 {
			items[i].Flag = entry.FlagRed
		}
	}
	return &entry.View{ID: id, Title: id, Items: items, ModeCount: 2, Render: render}
}

// newTestEngine registers root (10 entries, a red filter, primary transitions
// to child) and child (3 entries, parent root).
func newTestEngine(t *testing.T, calls renderCounter) *Engine {
	t.Helper()

	root := newTestView("root", 10, calls.render("root"))
	root.Filters = []entry.Filter{filter.ByFlag("red", entry.FlagRed), filter.ByFlag("none", entry.FlagNone)}
	for i := range root.Items {
		root.Items[i].Primary = &entry.Transition{ID: "child", Description: "open child"}
	}
	root.Items[9].Secondary = &entry.Transition{ID: "gone"}

	child := newTestView("child", 3, calls.render("child"))
	child.Transition = &entry.Transition{ID: "root"}

	registry := entry.NewRegistry()
	registry.MustRegister(root)
	registry.MustRegister(child)

	e, err := New(registry, "root", Options{FrameInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return e
}

func keys(k ...input.Key) input.Input {
	set := input.Keys(k...)
	return input.Input{Pointer: graphic.Point{X: 100, Y: 300}, Down: set, Pressed: set}
}

func step(t *testing.T, e *Engine, in input.Input) []graphic.Graphic {
	t.Helper()
	graphics, ok := e.Frame(context.Background(), in, screenW, screenH)
	if !ok {
		t.Fatal("Expected the engine to keep running")
	}
	return graphics
}

func TestNewUnknownView(t *testing.T) {
	_, err := New(entry.NewRegistry(), "missing", DefaultOptions())
	if !errors.Is(err, entry.ErrUnknownView) {
		t.Errorf("Expected ErrUnknownView, got %v", err)
	}
}

func TestRenderCalledOncePerKey(t *testing.T) {
	calls := renderCounter{}
	e := newTestEngine(t, calls)

	for range 5 {
		step(t, e, input.Input{})
	}
	step(t, e, keys(input.KeyM))
	step(t, e, input.Input{})

	want := renderCounter{{View: "root", Mode: 0}: 1, {View: "root", Mode: 1}: 1}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("Render calls mismatch (-want +got):\n%s", diff)
	}
}

func TestEphemeralViewLifecycle(t *testing.T) {
	calls := renderCounter{}
	e := newTestEngine(t, calls)
	for range 5 {
		step(t, e, keys(input.KeyDown))
	}

	step(t, e, keys(input.KeyLeftCtrl, input.Key1))

	filtered := e.State().ActiveViewID()
	if !filter.IsEphemeral(filtered) {
		t.Fatalf("Expected an ephemeral view, got %q", filtered)
	}
	if diff := cmp.Diff([]string{filtered}, e.Temporary()); diff != "" {
		t.Errorf("Temporary mismatch (-want +got):\n%s", diff)
	}
	if e.State().Cursor() != 2 {
		t.Errorf("Expected entry 5 at rank 2, got %d", e.State().Cursor())
	}
	if _, ok := e.renders.Canvas(cache.CanvasKey{View: filtered, Cursor: 2}); !ok {
		t.Error("Expected the filtered canvas to be cached")
	}

	step(t, e, keys(input.KeyLeftCtrl, input.KeyUp))

	if e.State().ActiveViewID() != "root" {
		t.Fatalf("Expected to be back on root, got %q", e.State().ActiveViewID())
	}
	if e.State().Cursor() != 5 {
		t.Errorf("Expected the root cursor to be restored to 5, got %d", e.State().Cursor())
	}
	if e.Registry().Has(filtered) {
		t.Error("Expected the filtered view to be deregistered")
	}
	if len(e.Temporary()) != 0 {
		t.Errorf("Expected no temporary views, got %v", e.Temporary())
	}
	if _, ok := e.Memory().Recall(filtered); ok {
		t.Error("Expected the filtered view to be forgotten")
	}
	if _, ok := e.renders.Canvas(cache.CanvasKey{View: filtered, Cursor: 2}); ok {
		t.Error("Expected the filtered canvas to be purged")
	}
}

func TestFilterReplacesPreviousEphemeral(t *testing.T) {
	e := newTestEngine(t, renderCounter{})

	step(t, e, keys(input.KeyLeftCtrl, input.Key1))
	first := e.State().ActiveViewID()
	step(t, e, keys(input.KeyLeftCtrl, input.KeyUp))
	step(t, e, keys(input.KeyLeftCtrl, input.Key2))
	second := e.State().ActiveViewID()

	if first == second {
		t.Fatal("Expected a fresh id")
	}
	if e.Registry().Has(first) {
		t.Error("Expected the first filtered view to be gone")
	}
	if diff := cmp.Diff([]string{second}, e.Temporary()); diff != "" {
		t.Errorf("Temporary mismatch (-want +got):\n%s", diff)
	}
	if e.Registry().Len() != 3 {
		t.Errorf("Expected root, child and one filtered view, got %v", e.Registry().IDs())
	}
}

func TestCursorMemoryAcrossTransitions(t *testing.T) {
	e := newTestEngine(t, renderCounter{})

	step(t, e, keys(input.KeyDown))
	step(t, e, keys(input.KeyDown))
	step(t, e, keys(input.KeyLeftCtrl, input.KeyLeft))
	if e.State().ActiveViewID() != "child" || e.State().Cursor() != 0 {
		t.Fatalf("Expected child@0, got %s@%d", e.State().ActiveViewID(), e.State().Cursor())
	}

	step(t, e, keys(input.KeyUp))
	step(t, e, keys(input.KeyLeftCtrl, input.KeyUp))
	if e.State().ActiveViewID() != "root" || e.State().Cursor() != 2 {
		t.Fatalf("Expected root@2, got %s@%d", e.State().ActiveViewID(), e.State().Cursor())
	}

	step(t, e, keys(input.KeyLeftCtrl, input.KeyLeft))
	if e.State().Cursor() != 2 {
		t.Errorf("Expected child cursor 2 to be restored, got %d", e.State().Cursor())
	}
	if diff := cmp.Diff([]string{"root"}, e.Memory().Breadcrumb()); diff != "" {
		t.Errorf("Breadcrumb mismatch (-want +got):\n%s", diff)
	}
}

func TestTransitionToMissingView(t *testing.T) {
	e := newTestEngine(t, renderCounter{})
	step(t, e, keys(input.Key9))

	step(t, e, keys(input.KeyLeftCtrl, input.KeyRight))

	if e.State().ActiveViewID() != "root" || e.State().Cursor() != 9 {
		t.Errorf("Expected to stay on root@9, got %s@%d", e.State().ActiveViewID(), e.State().Cursor())
	}
	popup, ok := e.State().Popup()
	if !ok || popup.Message != "There's no view to transit to with Ctrl+Right key." {
		t.Errorf("Expected a popup, got %q", popup.Message)
	}
}

func TestFrameScalesToScreen(t *testing.T) {
	e := newTestEngine(t, renderCounter{})

	graphics, ok := e.Frame(context.Background(), input.Input{}, 540, 360)
	if !ok {
		t.Fatal("Expected the engine to keep running")
	}

	canvas, isRect := graphics[0].(graphic.Rect)
	if !isRect || canvas.Color != graphic.Blue {
		t.Fatalf("Expected the canvas first, got %+v", graphics[0])
	}
	if canvas.W != 450 || canvas.Y != 60 {
		t.Errorf("Expected the canvas at half scale, got %+v", canvas)
	}
}

func TestFrameMapsPointer(t *testing.T) {
	e := newTestEngine(t, renderCounter{})

	// Row 4 of the narrow side bar, on a screen twice the logical size.
	in := input.Input{Pointer: graphic.Point{X: 1850, Y: 2 * (20 + 3*17.6 + 8)}}
	in.MousePressed[input.MouseLeft] = true
	if _, ok := e.Frame(context.Background(), in, 2*screenW, 2*screenH); !ok {
		t.Fatal("Expected the engine to keep running")
	}

	if e.State().Cursor() != 4 {
		t.Errorf("Expected a click on row 4, got cursor %d", e.State().Cursor())
	}
}

type fakeBackend struct {
	inputs []input.Input
	frames int
	block  bool
}

func (b *fakeBackend) Size() (float64, float64) { return screenW, screenH }

func (b *fakeBackend) Poll(ctx context.Context) (input.Input, error) {
	if len(b.inputs) == 0 {
		if b.block {
			return input.Input{}, nil
		}
		return input.Input{Released: input.Keys(input.KeyEscape)}, nil
	}
	in := b.inputs[0]
	b.inputs = b.inputs[1:]
	return in, nil
}

func (b *fakeBackend) Draw(graphics []graphic.Graphic) error {
	if len(graphics) == 0 {
		return errors.New("empty frame")
	}
	b.frames++
	return nil
}

func TestRunQuitsOnEscape(t *testing.T) {
	e := newTestEngine(t, renderCounter{})
	backend := &fakeBackend{inputs: []input.Input{keys(input.KeyDown), keys(input.KeyDown), {}}}

	if err := e.Run(context.Background(), backend); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if backend.frames != 3 {
		t.Errorf("Expected 3 frames, got %d", backend.frames)
	}
	if e.State().Cursor() != 2 {
		t.Errorf("Expected cursor 2, got %d", e.State().Cursor())
	}
}

func TestRunStopsWithContext(t *testing.T) {
	e := newTestEngine(t, renderCounter{})
	backend := &fakeBackend{block: true}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := e.Run(ctx, backend); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
	if backend.frames == 0 {
		t.Error("Expected some frames before the deadline")
	}
}

func TestCursorMemory(t *testing.T) {
	m := NewCursorMemory()
	m.Remember("a", 1)
	m.Remember("b", 2)
	m.Remember("c", 3)
	m.Remember("b", 5)

	if diff := cmp.Diff([]string{"a", "b"}, m.Breadcrumb()); diff != "" {
		t.Errorf("Breadcrumb mismatch (-want +got):\n%s", diff)
	}
	if cursor, ok := m.Recall("b"); !ok || cursor != 5 {
		t.Errorf("Expected b=5, got %d (%v)", cursor, ok)
	}

	m.Forget("b")
	if _, ok := m.Recall("b"); ok {
		t.Error("Expected b to be forgotten")
	}
	if diff := cmp.Diff([]string{"a"}, m.Breadcrumb()); diff != "" {
		t.Errorf("Breadcrumb mismatch (-want +got):\n%s", diff)
	}
	if m.Len() != 2 {
		t.Errorf("Expected 2 remembered cursors, got %d", m.Len())
	}
}

// Package state is the navigation state machine. It consumes one input
// sample per step, mutates the cursor, camera and panel toggles, and tells
// the host through an Action when the active view should change.
package state

import (
	"fmt"

	"github.com/shvbsle/shev/internal/cache"
	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/log"
)

const (
	DefaultPopupTTL = 120
	popupFade       = 60

	MinZoom = 0.1
	MaxZoom = 8.0

	// LongPressSteps is how many steps an arrow key must be held before the
	// cursor starts moving on every step.
	LongPressSteps = 12
)

// DefaultCamera is the camera position that centres the 900x600 canvas.
var DefaultCamera = graphic.Point{X: 450, Y: 300}

// Popup is a transient message shown at the bottom of the canvas.
type Popup struct {
	TTL     int
	Message string
}

// Alpha fades the popup out over its last frames.
func (p Popup) Alpha() float64 {
	return float64(min(p.TTL, popupFade)) / popupFade
}

type Options struct {
	// PopupTTL is the number of steps a popup stays up.
	PopupTTL int
	// Strict panics on invariant violations instead of logging them.
	Strict bool
}

// State holds everything the engine knows about the user's position. It
// never holds a view across steps; the host passes the active view into
// every call.
type State struct {
	activeViewID string
	cursor       int
	mode         entry.Mode

	wideSideBar      bool
	hovered          int
	hovering         bool
	showHelp         bool
	showExtraContent bool

	camera graphic.Point
	zoom   float64

	popup     *Popup
	arrowHold int

	opts Options
}

// New creates a state looking at the first entry of viewID.
func New(viewID string, opts Options) *State {
	if opts.PopupTTL <= 0 {
		opts.PopupTTL = DefaultPopupTTL
	}
	return &State{
		activeViewID: viewID,
		camera:       DefaultCamera,
		zoom:         1,
		opts:         opts,
	}
}

func (s *State) ActiveViewID() string { return s.activeViewID }

func (s *State) Cursor() int { return s.cursor }

func (s *State) Mode() entry.Mode { return s.mode }

func (s *State) WideSideBar() bool { return s.wideSideBar }

func (s *State) ShowHelp() bool { return s.showHelp }

func (s *State) ShowExtraContent() bool { return s.showExtraContent }

// Hovered returns the side bar entry under the pointer.
func (s *State) Hovered() (int, bool) { return s.hovered, s.hovering }

// Camera returns the camera position in canvas space and the zoom.
func (s *State) Camera() (graphic.Point, float64) { return s.camera, s.zoom }

func (s *State) Popup() (Popup, bool) {
	if s.popup == nil {
		return Popup{}, false
	}
	return *s.popup, true
}

// CanvasKey is the render cache key of what the state is looking at.
func (s *State) CanvasKey() cache.CanvasKey {
	return cache.CanvasKey{View: s.activeViewID, Cursor: s.cursor, Mode: s.mode}
}

// EnterView makes id the active view at cursor and resets everything tied
// to the previous entry. The host calls it after it accepted a transition.
func (s *State) EnterView(id string, cursor int) {
	s.activeViewID = id
	s.cursor = cursor
	s.hovering = false
	s.hovered = 0
	s.resetEntryState()
}

// ShowPopup posts a message for PopupTTL steps, replacing any current one.
func (s *State) ShowPopup(format string, args ...any) {
	s.popup = &Popup{TTL: s.opts.PopupTTL, Message: fmt.Sprintf(format, args...)}
}

// resetEntryState is applied whenever the cursor lands on a different entry.
func (s *State) resetEntryState() {
	s.mode = 0
	s.showExtraContent = false
	s.camera = DefaultCamera
	s.zoom = 1
}

// checkInvariants reports host bugs: a view other than the active one, or
// a cursor outside it.
func (s *State) checkInvariants(view *entry.View) {
	var err error
	switch {
	case view.ID != s.activeViewID:
		err = fmt.Errorf("state is on view %q but got view %q: %w", s.activeViewID, view.ID, entry.ErrUnknownView)
	case !view.IsEmpty() && (s.cursor < 0 || s.cursor >= view.Len()):
		err = fmt.Errorf("cursor %d out of range for view %q with %d entries", s.cursor, view.ID, view.Len())
	default:
		return
	}

	if s.opts.Strict {
		panic(err)
	}
	log.Engine().Error("invariant violated", "error", err)
	s.activeViewID = view.ID
	s.cursor = min(max(s.cursor, 0), max(view.Len()-1, 0))
}

package entry

import (
	"errors"

	"github.com/shvbsle/shev/internal/graphic"
)

var (
	// ErrUnknownView is returned when a view id is not in the registry.
	ErrUnknownView = errors.New("unknown view")
	// ErrDuplicateView is returned when registering an id twice.
	ErrDuplicateView = errors.New("view already registered")
)

// RenderFunc draws an entry onto the 900x600 detail canvas.
//
// It must be a pure function of its two arguments: the engine caches its
// result per (view id, cursor, mode) and will not call it again for the same
// key. A RenderFunc that reads mutable state will show stale output.
type RenderFunc func(e *Entry, mode Mode) ([]graphic.Graphic, error)

// Filter is a named predicate that derives a filtered view.
type Filter struct {
	Name  string
	Match func(e *Entry) bool
}

// View is an ordered collection of entries. Its contents must not change
// while it is registered under its ID.
type View struct {
	ID    string
	Title string
	Items []Entry

	// ModeCount is the number of display modes an entry can cycle through.
	// Values below 1 are treated as 1.
	ModeCount int

	// Transition usually points at the parent view.
	Transition *Transition
	Filters    []Filter
	Render     RenderFunc
}

func (v *View) Len() int {
	return len(v.Items)
}

func (v *View) IsEmpty() bool {
	return len(v.Items) == 0
}

// At returns the entry at index i, or nil when i is out of range.
func (v *View) At(i int) *Entry {
	if i < 0 || i >= len(v.Items) {
		return nil
	}
	return &v.Items[i]
}

// Modes returns ModeCount clamped to at least 1.
func (v *View) Modes() int {
	return max(v.ModeCount, 1)
}

// HasTransitions reports whether any transition exists in the view.
func (v *View) HasTransitions() bool {
	if v.Transition != nil {
		return true
	}
	for i := range v.Items {
		if v.Items[i].Primary != nil || v.Items[i].Secondary != nil {
			return true
		}
	}
	return false
}

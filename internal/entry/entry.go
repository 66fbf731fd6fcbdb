package entry

import "github.com/shvbsle/shev/internal/graphic"

// Flag is an immutable classification of an entry. It colours the entry's
// dot in the side bar and drives same-flag navigation.
type Flag int

const (
	FlagNone Flag = iota
	FlagRed
	FlagGreen
	FlagBlue
)

func (f Flag) String() string {
	switch f {
	case FlagRed:
		return "red"
	case FlagGreen:
		return "green"
	case FlagBlue:
		return "blue"
	default:
		return "none"
	}
}

// Color returns the display colour of the flag. FlagNone has no dot and
// reports false.
func (f Flag) Color() (graphic.Color, bool) {
	switch f {
	case FlagRed:
		return graphic.Red, true
	case FlagGreen:
		return graphic.Green, true
	case FlagBlue:
		return graphic.Blue, true
	default:
		return graphic.Color{}, false
	}
}

// Mode selects one of a view's display variants for the same entry.
type Mode int

// Transition is an edge to another view.
type Transition struct {
	ID          string
	Description string
}

// Label is the text shown for the transition in hints and help.
func (t Transition) Label() string {
	if t.Description != "" {
		return t.Description
	}
	return t.ID
}

// Entry is one browsable item of a view.
type Entry struct {
	// DisplayTitle is shown in the side bar.
	DisplayTitle string
	// DetailTitle is shown in the top bar. Empty falls back to DisplayTitle.
	DetailTitle string

	// Content and ExtraContent are opaque to the engine; only the view's
	// render callback interprets Content. ExtraContent is shown verbatim in
	// the extra-content panel.
	Content      string
	ExtraContent string

	// CategoryA and CategoryB group entries for category paging.
	CategoryA string
	CategoryB string

	Primary   *Transition
	Secondary *Transition

	Flag Flag
}

// Title returns the detail title, or the display title when unset.
func (e *Entry) Title() string {
	if e.DetailTitle != "" {
		return e.DetailTitle
	}
	return e.DisplayTitle
}

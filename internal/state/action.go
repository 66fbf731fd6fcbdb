package state

import (
	"fmt"

	"github.com/shvbsle/shev/internal/entry"
)

type ActionKind int

const (
	ActionNone ActionKind = iota
	// ActionTransit asks the host to switch to a registered view.
	ActionTransit
	// ActionTransitEphemeral asks the host to register View and switch to it.
	ActionTransitEphemeral
	ActionQuit
)

func (k ActionKind) String() string {
	switch k {
	case ActionTransit:
		return "transit"
	case ActionTransitEphemeral:
		return "transit-ephemeral"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// Action is what a step asks the host to do.
type Action struct {
	Kind ActionKind

	// ViewID is the target of ActionTransit.
	ViewID string
	// View is the new view of ActionTransitEphemeral.
	View *entry.View

	// Cursor is the cursor to open the target at when HasCursor is set.
	// Otherwise the host restores the cursor it remembers for the target.
	Cursor    int
	HasCursor bool

	// Key names the input that triggered a transition, for error popups.
	Key string
}

func None() Action {
	return Action{}
}

func Quit() Action {
	return Action{Kind: ActionQuit}
}

func Transit(viewID, key string) Action {
	return Action{Kind: ActionTransit, ViewID: viewID, Key: key}
}

func TransitEphemeral(view *entry.View, cursor int, hasCursor bool) Action {
	return Action{Kind: ActionTransitEphemeral, View: view, ViewID: view.ID, Cursor: cursor, HasCursor: hasCursor}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionTransit, ActionTransitEphemeral:
		if a.HasCursor {
			return fmt.Sprintf("%s(%s@%d)", a.Kind, a.ViewID, a.Cursor)
		}
		return fmt.Sprintf("%s(%s)", a.Kind, a.ViewID)
	default:
		return a.Kind.String()
	}
}

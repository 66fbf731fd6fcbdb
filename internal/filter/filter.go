package filter

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"github.com/shvbsle/shev/internal/entry"
)

// IDPrefix starts the id of every view made by Apply.
const IDPrefix = "filter:"

// ExitDescription labels the transition from a filtered view back to its source.
const ExitDescription = "exit filter view"

// Apply derives a new view holding the entries of view that match its
// index-th filter, in their original order.
//
// The returned cursor is the position of the entry that was at cursor in the
// source view. If that entry was filtered out, Apply returns 0 and false.
// The new view has a fresh id, no filters of its own and a transition back
// to the source view.
func Apply(view *entry.View, index, cursor int) (*entry.View, int, bool, error) {
	if index < 0 || index >= len(view.Filters) {
		return nil, 0, false, fmt.Errorf("view %q has no filter %d", view.ID, index+1)
	}
	f := view.Filters[index]

	var (
		items     []entry.Entry
		newCursor int
		found     bool
	)
	for i := range view.Items {
		if !f.Match(&view.Items[i]) {
			continue
		}
		if i == cursor {
			newCursor = len(items)
			found = true
		}
		items = append(items, view.Items[i])
	}

	title := f.Name
	if view.Title != "" {
		title = fmt.Sprintf("%s (%s)", view.Title, f.Name)
	}

	return &entry.View{
		ID:        IDPrefix + uuid.NewString(),
		Title:     title,
		Items:     items,
		ModeCount: view.ModeCount,
		Transition: &entry.Transition{
			ID:          view.ID,
			Description: ExitDescription,
		},
		Render: view.Render,
	}, newCursor, found, nil
}

// IsEphemeral reports whether id names a view made by Apply.
func IsEphemeral(id string) bool {
	return strings.HasPrefix(id, IDPrefix)
}

// Fuzzy returns a filter matching entries whose display title fuzzily
// contains query, ignoring case.
func Fuzzy(name, query string) entry.Filter {
	return entry.Filter{
		Name: name,
		Match: func(e *entry.Entry) bool {
			return fuzzy.MatchFold(query, e.DisplayTitle)
		},
	}
}

// ByFlag returns a filter matching entries with the given flag.
func ByFlag(name string, flag entry.Flag) entry.Filter {
	return entry.Filter{
		Name: name,
		Match: func(e *entry.Entry) bool {
			return e.Flag == flag
		},
	}
}

// ByCategory returns a filter matching entries whose category A is one of
// categories.
func ByCategory(name string, categories ...string) entry.Filter {
	return entry.Filter{
		Name: name,
		Match: func(e *entry.Entry) bool {
			return lo.Contains(categories, e.CategoryA)
		},
	}
}

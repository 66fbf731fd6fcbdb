package engine

import (
	"slices"
)

// ViewMemento captures where the user was in a view when they left it.
type ViewMemento struct {
	ViewID string
	Cursor int
}

// CursorMemory remembers the last cursor of every view the user left and
// the trail of views that led to the current one.
type CursorMemory struct {
	cursors map[string]int
	trail   []ViewMemento
}

func NewCursorMemory() *CursorMemory {
	return &CursorMemory{
		cursors: make(map[string]int),
		trail:   make([]ViewMemento, 0),
	}
}

// Remember records the cursor of a view being left. Leaving a view that is
// already on the trail cuts the trail back to it.
func (m *CursorMemory) Remember(viewID string, cursor int) {
	m.cursors[viewID] = cursor
	if i := slices.IndexFunc(m.trail, func(v ViewMemento) bool { return v.ViewID == viewID }); i >= 0 {
		m.trail = m.trail[:i]
	}
	m.trail = append(m.trail, ViewMemento{ViewID: viewID, Cursor: cursor})
}

// Recall returns the cursor remembered for viewID.
func (m *CursorMemory) Recall(viewID string) (int, bool) {
	cursor, ok := m.cursors[viewID]
	return cursor, ok
}

// Forget drops everything remembered about viewID.
func (m *CursorMemory) Forget(viewID string) {
	delete(m.cursors, viewID)
	m.trail = slices.DeleteFunc(m.trail, func(v ViewMemento) bool { return v.ViewID == viewID })
}

func (m *CursorMemory) Len() int {
	return len(m.cursors)
}

// Breadcrumb returns the ids of the views on the trail, oldest first.
func (m *CursorMemory) Breadcrumb() []string {
	ids := make([]string, len(m.trail))
	for i, v := range m.trail {
		ids[i] = v.ViewID
	}
	return ids
}

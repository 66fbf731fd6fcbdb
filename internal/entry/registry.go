package entry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/shvbsle/shev/internal/log"
)

// Registry maps view ids to views. It is owned by the host; the engine reads
// one view per step and asks the host to add or drop ephemeral views.
type Registry struct {
	mu    sync.RWMutex
	views map[string]*View
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		views: make(map[string]*View),
		order: make([]string, 0),
	}
}

// Register adds v under v.ID. Registering an id that is already present is
// an error; views are immutable for the lifetime of their id.
func (r *Registry) Register(v *View) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v == nil || v.ID == "" {
		return fmt.Errorf("register view: empty id")
	}
	if _, exists := r.views[v.ID]; exists {
		log.G().Warn("view already registered", "view", v.ID)
		return fmt.Errorf("register view %q: %w", v.ID, ErrDuplicateView)
	}

	r.views[v.ID] = v
	r.order = append(r.order, v.ID)
	return nil
}

// MustRegister is Register for static setup code where a duplicate is a bug.
func (r *Registry) MustRegister(v *View) {
	if err := r.Register(v); err != nil {
		panic(err)
	}
}

// Remove drops the view with the given id and reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.views[id]; !ok {
		return false
	}
	delete(r.views, id)
	r.order = slices.DeleteFunc(r.order, func(other string) bool { return other == id })
	return true
}

func (r *Registry) Get(id string) (*View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.views[id]
	return v, ok
}

// Lookup is Get returning ErrUnknownView for a missing id.
func (r *Registry) Lookup(id string) (*View, error) {
	v, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("view %q: %w", id, ErrUnknownView)
	}
	return v, nil
}

func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// IDs returns view ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.views)
}

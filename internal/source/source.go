// Package source defines where views come from. A Source turns something
// on disk or on the network into a registry of views; the binary picks one
// by name or alias.
package source

import (
	"context"
	"sync"

	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/log"
)

// Source builds the views shev browses.
type Source interface {
	// Name returns the unique identifier (kebab-case recommended).
	Name() string

	// Description is shown in usage text.
	Description() string

	// Aliases returns other names the source can be picked by.
	Aliases() []string

	// Load builds every view and returns them with the id of the view to
	// start on.
	Load(ctx context.Context, opts Options) (*entry.Registry, string, error)
}

// Options are the settings shared by every source.
type Options struct {
	// Target is what to load: a directory, a report directory or a
	// kubeconfig context, depending on the source.
	Target string

	// MaxDepth bounds directory recursion.
	MaxDepth int
	// ShowHidden includes dot files.
	ShowHidden bool

	// Filters are appended to the filters of every view a source builds.
	Filters []entry.Filter
}

type Registry struct {
	mu             sync.RWMutex
	sources        map[string]Source
	aliasMap       map[string]Source
	orderedSources []Source
}

func NewRegistry() *Registry {
	return &Registry{
		sources:        make(map[string]Source),
		aliasMap:       make(map[string]Source),
		orderedSources: make([]Source, 0),
	}
}

func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[s.Name()]; exists {
		log.G().Warn("source already registered", "source", s.Name())
	}

	r.sources[s.Name()] = s
	r.orderedSources = append(r.orderedSources, s)

	for _, alias := range s.Aliases() {
		if existing, exists := r.aliasMap[alias]; exists {
			log.G().Warn("alias collision",
				"alias", alias,
				"existing_source", existing.Name(),
				"new_source", s.Name())
		}
		r.aliasMap[alias] = s
	}
}

// Get returns the source registered under name, or under alias name.
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.sources[name]; ok {
		return s, true
	}
	s, ok := r.aliasMap[name]
	return s, ok
}

func (r *Registry) List() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Source(nil), r.orderedSources...)
}

// ViewFilters returns own followed by the configured filters.
func (o Options) ViewFilters(own ...entry.Filter) []entry.Filter {
	return append(own, o.Filters...)
}

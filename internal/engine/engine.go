// Package engine is the host run loop. It owns the view registry and the
// caches, feeds input into the navigation state, applies the actions it
// returns and hands screen space graphics to a backend.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shvbsle/shev/internal/cache"
	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/input"
	"github.com/shvbsle/shev/internal/log"
	"github.com/shvbsle/shev/internal/state"
	"github.com/shvbsle/shev/internal/transform"
)

const DefaultFrameInterval = 25 * time.Millisecond

// Backend draws device space graphics and samples input. Run drives it.
type Backend interface {
	// Size returns the drawable area in device units.
	Size() (width, height float64)
	// Poll returns the input collected since the previous call.
	Poll(ctx context.Context) (input.Input, error)
	Draw(graphics []graphic.Graphic) error
}

type Options struct {
	FrameInterval time.Duration
	PopupTTL      int
	Strict        bool
	Theme         state.Theme

	CanvasCacheSize    int
	HistogramCacheSize int
	ResourceCacheSize  int
	ResourceTimeout    time.Duration
	Loader             cache.Loader
}

func DefaultOptions() Options {
	return Options{
		FrameInterval:      DefaultFrameInterval,
		PopupTTL:           state.DefaultPopupTTL,
		Theme:              state.DefaultTheme(),
		CanvasCacheSize:    64,
		HistogramCacheSize: 32,
		ResourceCacheSize:  32,
		ResourceTimeout:    2 * time.Second,
	}
}

// withDefaults fills every unset field from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FrameInterval <= 0 {
		o.FrameInterval = d.FrameInterval
	}
	if o.PopupTTL <= 0 {
		o.PopupTTL = d.PopupTTL
	}
	if o.Theme == (state.Theme{}) {
		o.Theme = d.Theme
	}
	if o.CanvasCacheSize <= 0 {
		o.CanvasCacheSize = d.CanvasCacheSize
	}
	if o.HistogramCacheSize <= 0 {
		o.HistogramCacheSize = d.HistogramCacheSize
	}
	if o.ResourceCacheSize <= 0 {
		o.ResourceCacheSize = d.ResourceCacheSize
	}
	return o
}

type Engine struct {
	registry  *entry.Registry
	state     *state.State
	renders   *cache.RenderCache
	resources *cache.ResourceCache
	memory    *CursorMemory

	// temporary holds the ids of the ephemeral views currently registered.
	temporary []string

	opts Options
}

// New creates an engine starting on the first entry of initialID.
func New(registry *entry.Registry, initialID string, opts Options) (*Engine, error) {
	if !registry.Has(initialID) {
		return nil, fmt.Errorf("initial view %q: %w", initialID, entry.ErrUnknownView)
	}
	opts = opts.withDefaults()

	resources := cache.NewResourceCache(opts.ResourceCacheSize, opts.Loader, opts.ResourceTimeout)
	return &Engine{
		registry:  registry,
		state:     state.New(initialID, state.Options{PopupTTL: opts.PopupTTL, Strict: opts.Strict}),
		renders:   cache.NewRenderCache(opts.CanvasCacheSize, opts.HistogramCacheSize, resources),
		resources: resources,
		memory:    NewCursorMemory(),
		opts:      opts,
	}, nil
}

func (e *Engine) State() *state.State { return e.state }

func (e *Engine) Registry() *entry.Registry { return e.registry }

func (e *Engine) Memory() *CursorMemory { return e.memory }

// Temporary returns the ids of the registered ephemeral views.
func (e *Engine) Temporary() []string {
	return append([]string(nil), e.temporary...)
}

func (e *Engine) FrameInterval() time.Duration { return e.opts.FrameInterval }

// CurrentEntry returns the entry under the cursor, if any.
func (e *Engine) CurrentEntry() (*entry.Entry, bool) {
	en := e.activeView().At(e.state.Cursor())
	return en, en != nil
}

// Frame runs one step on input sampled in screen space and returns what to
// draw on a screenW x screenH screen. It returns false once the user quit.
func (e *Engine) Frame(ctx context.Context, in input.Input, screenW, screenH float64) ([]graphic.Graphic, bool) {
	in = transform.FitInputToScreen(in, transform.LogicalWidth, transform.LogicalHeight, screenW, screenH)

	action := e.state.Update(e.activeView(), in)
	if !e.apply(action) {
		return nil, false
	}

	view := e.activeView()
	e.refresh(ctx, view)

	graphics := e.state.Render(view, e.renders, e.opts.Theme, in.Pointer)
	graphics = transform.HideOffScreen(graphics, transform.LogicalWidth, transform.LogicalHeight)
	return transform.FitGraphicsToScreen(graphics, transform.LogicalWidth, transform.LogicalHeight, screenW, screenH), true
}

// Run steps the engine against backend until the user quits or ctx ends.
// Each step is padded to the frame interval.
func (e *Engine) Run(ctx context.Context, backend Backend) error {
	ticker := time.NewTicker(e.opts.FrameInterval)
	defer ticker.Stop()

	for {
		in, err := backend.Poll(ctx)
		if err != nil {
			return fmt.Errorf("poll input: %w", err)
		}

		w, h := backend.Size()
		graphics, ok := e.Frame(ctx, in, w, h)
		if !ok {
			log.Engine().Info("quit requested")
			return nil
		}
		if err := backend.Draw(graphics); err != nil {
			return fmt.Errorf("draw frame: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// activeView returns the view the state is on. A missing view is a host
// bug; an empty stand-in keeps the loop alive outside strict mode.
func (e *Engine) activeView() *entry.View {
	id := e.state.ActiveViewID()
	view, ok := e.registry.Get(id)
	if ok {
		return view
	}

	err := fmt.Errorf("active view %q: %w", id, entry.ErrUnknownView)
	if e.opts.Strict {
		panic(err)
	}
	log.Engine().Error("invariant violated", "error", err)
	return &entry.View{ID: id}
}

// apply carries out an action and reports whether the loop should go on.
func (e *Engine) apply(action state.Action) bool {
	switch action.Kind {
	case state.ActionQuit:
		return false

	case state.ActionTransit:
		target, ok := e.registry.Get(action.ViewID)
		if !ok {
			log.Engine().Warn("transition to unknown view", "view", action.ViewID, "key", action.Key)
			e.state.ShowPopup("There's no view to transit to with %s key.", action.Key)
			return true
		}

		e.leave()
		e.dropTemporary(action.ViewID)

		cursor, remembered := e.memory.Recall(target.ID)
		if action.HasCursor {
			cursor = action.Cursor
		} else if !remembered {
			cursor = 0
		}
		e.enter(target, cursor)

	case state.ActionTransitEphemeral:
		e.leave()
		e.dropTemporary("")

		if err := e.registry.Register(action.View); err != nil {
			log.Engine().Error("failed to register filtered view", "view", action.View.ID, "error", err)
			return true
		}
		e.temporary = append(e.temporary, action.View.ID)
		log.Engine().Debug("created ephemeral view", "view", action.View.ID, "entries", action.View.Len())
		e.enter(action.View, action.Cursor)
	}
	return true
}

func (e *Engine) leave() {
	e.memory.Remember(e.state.ActiveViewID(), e.state.Cursor())
}

func (e *Engine) enter(view *entry.View, cursor int) {
	if cursor < 0 || cursor >= view.Len() {
		cursor = 0
	}
	log.Engine().Debug("entering view", "view", view.ID, "cursor", cursor, "trail", e.memory.Breadcrumb(), "remembered", e.memory.Len())
	e.state.EnterView(view.ID, cursor)
}

// dropTemporary deregisters every ephemeral view except keep and purges it
// from cursor memory and both render cache tables.
func (e *Engine) dropTemporary(keep string) {
	kept := e.temporary[:0]
	for _, id := range e.temporary {
		if id == keep {
			kept = append(kept, id)
			continue
		}
		e.registry.Remove(id)
		e.memory.Forget(id)
		e.renders.Forget(id)
		log.Engine().Debug("destroyed ephemeral view", "view", id)
	}
	e.temporary = kept
}

// refresh fills the caches for the current step before anything reads them.
func (e *Engine) refresh(ctx context.Context, view *entry.View) {
	if view.IsEmpty() {
		return
	}
	e.renders.ResolveCanvas(ctx, view, e.state.Cursor(), e.state.Mode())
	if e.state.WideSideBar() {
		e.renders.ResolveHistogram(view)
	}
}

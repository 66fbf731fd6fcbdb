package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/log"
)

// ErrRenderPanic wraps the value recovered from a panicking render callback.
var ErrRenderPanic = errors.New("render callback panicked")

// HistogramBuckets is the resolution of the scrollbar colour histogram.
const HistogramBuckets = 128

// Histogram is the smoothed flag colour of every scrollbar segment.
type Histogram [HistogramBuckets]graphic.Color

// EmptyBucket colours histogram segments no entry maps near.
var EmptyBucket = graphic.Color{R: 0.3, G: 0.3, B: 0.3, A: 1}

var kernel = [5]float64{0.25, 0.5, 1, 0.5, 0.25}

// CanvasKey identifies one rendered canvas.
type CanvasKey struct {
	View   string
	Cursor int
	Mode   entry.Mode
}

// RenderCache memoizes render callback output per (view, cursor, mode) and
// scrollbar histograms per view. Views are immutable while their id is
// registered, so neither table is ever invalidated except by eviction or
// Forget.
type RenderCache struct {
	canvases   *LRU[CanvasKey, []graphic.Graphic]
	histograms *LRU[string, *Histogram]
	resources  *ResourceCache
}

func NewRenderCache(canvasSize, histogramSize int, resources *ResourceCache) *RenderCache {
	return &RenderCache{
		canvases:   New[CanvasKey, []graphic.Graphic](canvasSize),
		histograms: New[string, *Histogram](histogramSize),
		resources:  resources,
	}
}

// ResolveCanvas returns the canvas of the entry at cursor, calling the
// view's render callback on a miss. A failing or panicking callback yields
// an error message graphic, which is cached like any other result.
func (c *RenderCache) ResolveCanvas(ctx context.Context, view *entry.View, cursor int, mode entry.Mode) []graphic.Graphic {
	key := CanvasKey{View: view.ID, Cursor: cursor, Mode: mode}
	if canvas, ok := c.canvases.Get(key); ok {
		return canvas
	}

	e := view.At(cursor)
	if e == nil || view.Render == nil {
		return nil
	}

	log.Cache().Debug("canvas cache miss", "view", view.ID, "cursor", cursor, "mode", mode, "cached", c.canvases.Len(), "capacity", c.canvases.Cap())
	canvas, err := render(view.Render, e, mode)
	if err != nil {
		log.Cache().Warn("render callback failed", "view", view.ID, "cursor", cursor, "mode", mode, "error", err)
		canvas = ErrorCanvas(err)
	} else {
		canvas = c.resolveResources(ctx, canvas)
	}

	c.canvases.Insert(key, canvas)
	return canvas
}

// Canvas returns a cached canvas without calling the render callback.
func (c *RenderCache) Canvas(key CanvasKey) ([]graphic.Graphic, bool) {
	return c.canvases.Get(key)
}

// Histogram returns a cached histogram without computing it.
func (c *RenderCache) Histogram(viewID string) (*Histogram, bool) {
	return c.histograms.Get(viewID)
}

// ResolveHistogram returns the scrollbar histogram of view, computing it on
// a miss.
func (c *RenderCache) ResolveHistogram(view *entry.View) *Histogram {
	if h, ok := c.histograms.Get(view.ID); ok {
		return h
	}

	log.Cache().Debug("histogram cache miss", "view", view.ID)
	h := BuildHistogram(view.Items)
	c.histograms.Insert(view.ID, h)
	return h
}

// Forget drops everything cached for viewID.
func (c *RenderCache) Forget(viewID string) {
	n := c.canvases.DeleteFunc(func(k CanvasKey) bool { return k.View == viewID })
	n += c.histograms.DeleteFunc(func(id string) bool { return id == viewID })
	if n > 0 {
		log.Cache().Debug("forgot view", "view", viewID, "entries", n)
	}
}

func (c *RenderCache) Len() int {
	return c.canvases.Len()
}

func render(fn entry.RenderFunc, e *entry.Entry, mode entry.Mode) (canvas []graphic.Graphic, err error) {
	defer func() {
		if r := recover(); r != nil {
			canvas = nil
			err = fmt.Errorf("%w: %v", ErrRenderPanic, r)
		}
	}()
	return fn(e, mode)
}

func (c *RenderCache) resolveResources(ctx context.Context, canvas []graphic.Graphic) []graphic.Graphic {
	if c.resources == nil {
		return canvas
	}
	canvas = slices.Clone(canvas)
	for i, g := range canvas {
		f, ok := g.(graphic.ImageFile)
		if !ok {
			continue
		}
		canvas[i] = graphic.Image{
			Path:   f.Path,
			Source: c.resources.Resolve(ctx, f.Path),
			X:      f.X,
			Y:      f.Y,
			W:      f.W,
			H:      f.H,
		}
	}
	return canvas
}

// ErrorCanvas is the canvas shown in place of a failed render.
func ErrorCanvas(err error) []graphic.Graphic {
	return graphic.NewTextBox(
		fmt.Sprintf("Error: %v", err),
		18,
		graphic.Red,
		graphic.Bounds{W: 900, H: 600},
	).WithPadding(24, 24, 24, 24).Render()
}

// BuildHistogram spreads the flag colour of every entry over the buckets
// around its position with a triangular kernel and averages each bucket.
func BuildHistogram(items []entry.Entry) *Histogram {
	var (
		sum    [HistogramBuckets]graphic.Color
		weight [HistogramBuckets]float64
	)

	for i := range items {
		color, ok := items[i].Flag.Color()
		if !ok {
			color = graphic.Gray
		}
		center := i * HistogramBuckets / len(items)
		for d, w := range kernel {
			b := center + d - 2
			if b < 0 || b >= HistogramBuckets {
				continue
			}
			sum[b].R += color.R * w
			sum[b].G += color.G * w
			sum[b].B += color.B * w
			weight[b] += w
		}
	}

	h := new(Histogram)
	for b := range h {
		if weight[b] == 0 {
			h[b] = EmptyBucket
			continue
		}
		h[b] = graphic.Color{R: sum[b].R / weight[b], G: sum[b].G / weight[b], B: sum[b].B / weight[b], A: 1}
	}
	return h
}

package cache

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/shvbsle/shev/internal/log"
)

// PlaceholderKey is the cache key the placeholder image is stored under.
// It cannot collide with a file path.
const PlaceholderKey = "\x00placeholder"

// Loader loads the resource stored at path.
type Loader interface {
	Load(ctx context.Context, path string) (image.Image, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, path string) (image.Image, error)

func (f LoaderFunc) Load(ctx context.Context, path string) (image.Image, error) {
	return f(ctx, path)
}

// ResourceCache memoizes loaded images by path. A failed load caches the
// placeholder image under the failing path so it is never retried while the
// entry stays cached.
type ResourceCache struct {
	images      *LRU[string, image.Image]
	loader      Loader
	timeout     time.Duration
	placeholder image.Image
}

// NewResourceCache creates a cache of at most capacity images. A positive
// timeout bounds every load.
func NewResourceCache(capacity int, loader Loader, timeout time.Duration) *ResourceCache {
	return &ResourceCache{
		images:      New[string, image.Image](capacity),
		loader:      loader,
		timeout:     timeout,
		placeholder: checkerboard(32, 4),
	}
}

// Resolve returns the image at path, loading it on a miss. It never fails:
// errors and timeouts yield the placeholder.
func (c *ResourceCache) Resolve(ctx context.Context, path string) image.Image {
	if img, ok := c.images.Get(path); ok {
		return img
	}

	log.Cache().Debug("resource cache miss", "path", path, "cached", c.images.Len(), "capacity", c.images.Cap())
	img, err := c.load(ctx, path)
	if err != nil {
		log.Cache().Warn("failed to load resource", "path", path, "error", err)
		img = c.Placeholder()
	}
	c.images.Insert(path, img)
	return img
}

// Placeholder returns the image shown in place of resources that failed to
// load. The same value is returned on every call.
func (c *ResourceCache) Placeholder() image.Image {
	if !c.images.Contains(PlaceholderKey) {
		c.images.Insert(PlaceholderKey, c.placeholder)
	}
	return c.placeholder
}

func (c *ResourceCache) Len() int {
	return c.images.Len()
}

func (c *ResourceCache) load(ctx context.Context, path string) (image.Image, error) {
	if c.loader == nil {
		return nil, fmt.Errorf("load %s: no resource loader", path)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	type result struct {
		img image.Image
		err error
	}
	done := make(chan result, 1)
	go func() {
		img, err := c.loader.Load(ctx, path)
		done <- result{img, err}
	}()

	select {
	case r := <-done:
		if r.err == nil && r.img == nil {
			r.err = fmt.Errorf("load %s: loader returned no image", path)
		}
		return r.img, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("load %s: %w", path, ctx.Err())
	}
}

func checkerboard(size, cell int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	magenta := color.RGBA{R: 0xcc, B: 0xcc, A: 0xff}
	black := color.RGBA{A: 0xff}
	for y := range size {
		for x := range size {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, magenta)
			} else {
				img.Set(x, y, black)
			}
		}
	}
	return img
}

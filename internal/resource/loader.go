// Package resource loads the images render callbacks refer to by path.
package resource

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/shvbsle/shev/internal/cache"
)

// MaxFileSize bounds the files Load is willing to decode.
const MaxFileSize = 64 << 20

// Extensions are the image file extensions Load can decode.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// IsImage reports whether path has one of the image Extensions.
func IsImage(path string) bool {
	return lo.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// Loader decodes image files from disk. It satisfies cache.Loader.
type Loader struct {
	maxSize int64
}

var _ cache.Loader = (*Loader)(nil)

func NewLoader() *Loader {
	return &Loader{maxSize: MaxFileSize}
}

// Load decodes the image at path. The resource cache bounds the call with
// its own timeout; Load only checks ctx before doing any work.
func (l *Loader) Load(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("image %s is a directory", path)
	}
	if info.Size() > l.maxSize {
		return nil, fmt.Errorf("image %s is %d bytes, larger than %d", path, info.Size(), l.maxSize)
	}
	return decode(path)
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

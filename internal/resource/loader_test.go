package resource

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shvbsle/shev/internal/cache"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "a.png", want: true},
		{path: "dir/B.JPG", want: true},
		{path: "c.webp", want: true},
		{path: "d.txt", want: false},
		{path: "png", want: false},
	}

	for _, tt := range tests {
		if got := IsImage(tt.path); got != tt.want {
			t.Errorf("IsImage(%q): expected %v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "red.png")
	writePNG(t, path, 4, 3)

	img, err := NewLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("Expected a 4x3 image, got %v", img.Bounds())
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0xffff {
		t.Errorf("Expected a red first pixel, got r=%d", r)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "notes.png")
	if err := os.WriteFile(text, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	loader := NewLoader()
	for _, path := range []string{filepath.Join(dir, "missing.png"), dir, text} {
		if _, err := loader.Load(context.Background(), path); err == nil {
			t.Errorf("Expected an error for %s", path)
		}
	}

	small := &Loader{maxSize: 10}
	big := filepath.Join(dir, "big.png")
	writePNG(t, big, 8, 8)
	if _, err := small.Load(context.Background(), big); err == nil {
		t.Error("Expected files over the size limit to be refused")
	}
}

func TestLoadCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "red.png")
	writePNG(t, path, 2, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLoader().Load(ctx, path); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected Canceled, got %v", err)
	}
}

func TestResourceCacheFallsBack(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writePNG(t, good, 2, 2)

	resources := cache.NewResourceCache(4, NewLoader(), time.Second)
	if img := resources.Resolve(context.Background(), good); img == resources.Placeholder() {
		t.Error("Expected the decoded image")
	}
	if img := resources.Resolve(context.Background(), filepath.Join(dir, "gone.png")); img != resources.Placeholder() {
		t.Error("Expected the placeholder for a missing file")
	}
}

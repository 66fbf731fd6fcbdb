// Package dir browses a directory tree. Every directory becomes a view
// whose entries are its children; directories link to their own view and
// back to their parent.
package dir

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"

	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/filter"
	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/log"
	"github.com/shvbsle/shev/internal/resource"
	"github.com/shvbsle/shev/internal/source"
)

const (
	DefaultMaxDepth = 3

	parentDescription = "move to parent directory"
	childDescription  = "change directory"

	previewLimit = 64 << 10
	lineLimit    = 240
	textSize     = 16.0
)

// Modes of a directory view.
const (
	ModePreview entry.Mode = iota
	ModeDetails
)

var textBounds = graphic.Bounds{X: 20, Y: 20, W: 2000, H: 2000}

type Source struct{}

var _ source.Source = (*Source)(nil)

func New() *Source {
	return &Source{}
}

func (s *Source) Name() string {
	return "dir"
}

func (s *Source) Description() string {
	return "Browse a directory tree"
}

func (s *Source) Aliases() []string {
	return []string{"files", "fs"}
}

// Load builds one view per directory under opts.Target, down to
// opts.MaxDepth levels below it. The root view's id is the target itself.
func (s *Source) Load(ctx context.Context, opts source.Options) (*entry.Registry, string, error) {
	root := opts.Target
	if root == "" {
		root = "."
	}
	root = filepath.Clean(root)

	info, err := os.Stat(root)
	if err != nil {
		return nil, "", fmt.Errorf("open directory: %w", err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("%s is not a directory", root)
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	b := &builder{opts: opts, registry: entry.NewRegistry()}
	if err := b.build(ctx, root, "", 0); err != nil {
		return nil, "", err
	}
	log.Source("dir").Info("built directory views", "root", root, "views", b.registry.Len())
	return b.registry, root, nil
}

type builder struct {
	opts     source.Options
	registry *entry.Registry
}

func (b *builder) build(ctx context.Context, path, parent string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	children, err := os.ReadDir(path)
	if err != nil {
		// An unreadable directory still gets a view so the link to it works.
		log.Source("dir").Warn("failed to read directory", "path", path, "error", err)
	}

	var items []entry.Entry
	for _, child := range children {
		name := child.Name()
		if !b.opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		childPath := filepath.Join(path, name)

		if !child.IsDir() {
			items = append(items, fileEntry(childPath))
			continue
		}

		e := entry.Entry{
			DisplayTitle: name + "/",
			DetailTitle:  childPath,
			CategoryA:    "directory",
			Flag:         entry.FlagGreen,
		}
		if depth+1 <= b.opts.MaxDepth {
			if err := b.build(ctx, childPath, path, depth+1); err != nil {
				return err
			}
			e.Primary = &entry.Transition{ID: childPath, Description: childDescription}
		}
		items = append(items, e)
	}

	view := &entry.View{
		ID:        path,
		Title:     path,
		Items:     items,
		ModeCount: 2,
		Filters: b.opts.ViewFilters(
			filter.ByFlag("directories", entry.FlagGreen),
			filter.ByFlag("files", entry.FlagBlue),
		),
		Render: Render,
	}
	if parent != "" {
		view.Transition = &entry.Transition{ID: parent, Description: parentDescription}
	}
	return b.registry.Register(view)
}

func fileEntry(path string) entry.Entry {
	category := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if category == "" {
		category = "file"
	}
	return entry.Entry{
		DisplayTitle: filepath.Base(path),
		DetailTitle:  path,
		CategoryA:    category,
		Flag:         entry.FlagBlue,
	}
}

// Render draws a directory listing, an image or a text preview in preview
// mode and file details in details mode. Files are read when the entry is
// first drawn.
func Render(e *entry.Entry, mode entry.Mode) ([]graphic.Graphic, error) {
	path := e.DetailTitle

	if mode == ModeDetails {
		text, err := details(path)
		if err != nil {
			return nil, err
		}
		return textBox(text), nil
	}

	switch {
	case e.Flag == entry.FlagGreen:
		text, err := listing(path)
		if err != nil {
			return nil, err
		}
		return textBox(text), nil

	case resource.IsImage(path):
		return []graphic.Graphic{graphic.ImageFile{Path: path, X: 0, Y: 0, W: 900, H: 600}}, nil

	default:
		text, err := preview(path)
		if err != nil {
			return nil, err
		}
		return textBox(text), nil
	}
}

func textBox(text string) []graphic.Graphic {
	return graphic.NewTextBox(text, textSize, graphic.White, textBounds).Render()
}

func listing(path string) (string, error) {
	children, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("read directory: %w", err)
	}

	var sb strings.Builder
	plural := "s"
	if len(children) == 1 {
		plural = ""
	}
	fmt.Fprintf(&sb, "%d file%s", len(children), plural)
	for _, child := range children {
		sb.WriteString("\n")
		sb.WriteString(filepath.Join(path, child.Name()))
	}
	return sb.String(), nil
}

// preview returns the start of a text file with escape sequences removed
// and long lines cut.
func preview(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, previewLimit))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if len(data) == previewLimit {
		// The limit may have split the last rune.
		for i := 0; i < utf8.UTFMax-1 && !utf8.Valid(data); i++ {
			data = data[:len(data)-1]
		}
	}
	if !utf8.Valid(data) {
		return "<BINARY FILE>", nil
	}

	lines := strings.Split(ansi.Strip(string(data)), "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, lineLimit, "...")
	}
	return strings.Join(lines, "\n"), nil
}

func details(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat: %w", err)
	}

	kind := "file"
	if info.IsDir() {
		kind = "directory"
	}
	return fmt.Sprintf("path: %s\nkind: %s\nsize: %d bytes\nmode: %s\nmodified: %s",
		path, kind, info.Size(), info.Mode(), info.ModTime().Format("2006-01-02 15:04:05")), nil
}

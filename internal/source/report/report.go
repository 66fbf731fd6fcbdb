// Package report browses test results. The index view lists every result
// file of a directory; each result file has a view listing its crate and
// single-file tests.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/filter"
	"github.com/shvbsle/shev/internal/log"
	"github.com/shvbsle/shev/internal/source"
)

const (
	IndexID    = "index"
	indexTitle = "Tests"

	detailsDescription = "See details"
	indexDescription   = "go back to index"

	CategoryCrate      = "crate-test"
	CategorySingleFile = "single-file-test"

	// BlobDir holds test sources, relative to the results directory.
	BlobDir = ".index/blobs"
)

// Modes of a result view.
const (
	ModeSource entry.Mode = iota
	ModeOutput
)

type Source struct{}

var _ source.Source = (*Source)(nil)

func New() *Source {
	return &Source{}
}

func (s *Source) Name() string {
	return "report"
}

func (s *Source) Description() string {
	return "Browse test result files"
}

func (s *Source) Aliases() []string {
	return []string{"tests"}
}

// Load reads every result file directly under opts.Target. Files that fail
// to parse are skipped with a warning.
func (s *Source) Load(ctx context.Context, opts source.Options) (*entry.Registry, string, error) {
	dir := opts.Target
	if dir == "" {
		dir = "."
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, "", fmt.Errorf("open results: %w", err)
	}

	blobs := loadBlobs(filepath.Join(dir, BlobDir))
	registry := entry.NewRegistry()
	var index []entry.Entry

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		match := resultFile.FindStringSubmatch(f.Name())
		if f.IsDir() || match == nil {
			continue
		}

		result, err := readResult(filepath.Join(dir, f.Name()))
		if err != nil {
			log.Source("report").Warn("skipping result file", "file", f.Name(), "error", err)
			continue
		}

		e, err := indexEntry(f.Name(), match[1], match[2], result)
		if err != nil {
			return nil, "", err
		}
		view, err := resultView(f.Name(), result, blobs, opts)
		if err != nil {
			return nil, "", err
		}
		if err := registry.Register(view); err != nil {
			return nil, "", err
		}
		index = append(index, e)
	}

	if err := registry.Register(&entry.View{
		ID:        IndexID,
		Title:     indexTitle,
		Items:     index,
		ModeCount: 1,
		Filters: opts.ViewFilters(
			filter.ByFlag("failing runs", entry.FlagRed),
			filter.ByFlag("passing runs", entry.FlagGreen),
		),
		Render: RenderResult,
	}); err != nil {
		return nil, "", err
	}

	log.Source("report").Info("loaded test results", "dir", dir, "results", len(index), "blobs", len(blobs))
	return registry, IndexID, nil
}

func indexEntry(name, commit, suite string, result *Result) (entry.Entry, error) {
	content, err := json.Marshal(result)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("encode result %s: %w", name, err)
	}
	flag := entry.FlagGreen
	if result.Summary().Failed() {
		flag = entry.FlagRed
	}
	return entry.Entry{
		DisplayTitle: name,
		DetailTitle:  name,
		Content:      string(content),
		CategoryA:    suite,
		CategoryB:    commit,
		Primary:      &entry.Transition{ID: name, Description: detailsDescription},
		Flag:         flag,
	}, nil
}

// singleFile is the content of a single-file test entry: the test with its
// source resolved from the blob store.
type singleFile struct {
	Test   SingleFileTest `json:"test"`
	Source string         `json:"source"`
}

func resultView(id string, result *Result, blobs Blobs, opts source.Options) (*entry.View, error) {
	meta, err := json.MarshalIndent(result.Meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode meta of %s: %w", id, err)
	}

	var items []entry.Entry
	for _, t := range result.CrateTests {
		content, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("encode crate test %s: %w", t.Name, err)
		}
		items = append(items, entry.Entry{
			DisplayTitle: t.Name,
			Content:      string(content),
			ExtraContent: string(meta),
			CategoryA:    CategoryCrate,
			Flag:         passFlag(t.Passed()),
		})
	}
	for _, t := range result.SingleFileTests {
		content, err := json.Marshal(singleFile{Test: t, Source: blobs.Source(t.Hash)})
		if err != nil {
			return nil, fmt.Errorf("encode single-file test %s: %w", t.Name, err)
		}
		items = append(items, entry.Entry{
			DisplayTitle: t.Name,
			Content:      string(content),
			ExtraContent: string(meta),
			CategoryA:    CategorySingleFile,
			Flag:         passFlag(t.Passed()),
		})
	}

	return &entry.View{
		ID:         id,
		Title:      id,
		Items:      items,
		ModeCount:  2,
		Transition: &entry.Transition{ID: IndexID, Description: indexDescription},
		Filters: opts.ViewFilters(
			filter.ByFlag("failed", entry.FlagRed),
			filter.ByFlag("passed", entry.FlagGreen),
			filter.ByCategory("crate tests", CategoryCrate),
			filter.ByCategory("single-file tests", CategorySingleFile),
		),
		Render: RenderTest,
	}, nil
}

func passFlag(passed bool) entry.Flag {
	if passed {
		return entry.FlagGreen
	}
	return entry.FlagRed
}

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// resultFile matches result-<commit>-<name>.json.
var resultFile = regexp.MustCompile(`^result-([0-9a-f]{9})-(.+)\.json$`)

// Result is one test run as written by the test harness.
type Result struct {
	Meta            map[string]string `json:"meta"`
	CrateTests      []CrateTest       `json:"crate-test"`
	SingleFileTests []SingleFileTest  `json:"single-file-test"`
}

type CrateTest struct {
	Name    string      `json:"name"`
	Debug   CrateResult `json:"debug"`
	Release CrateResult `json:"release"`
	Doc     CrateResult `json:"doc"`
}

// CrateResult is one profile of a crate test. Elapsed is in milliseconds.
type CrateResult struct {
	Error   *string `json:"error"`
	Elapsed uint32  `json:"elapsed"`
}

// Passed reports whether every profile of the crate test succeeded.
func (c CrateTest) Passed() bool {
	return c.Debug.Error == nil && c.Release.Error == nil && c.Doc.Error == nil
}

type SingleFileTest struct {
	Name   string  `json:"name"`
	Error  *string `json:"error"`
	Stdout string  `json:"stdout"`
	Stderr string  `json:"stderr"`
	// Hash names the blob holding the test's source file.
	Hash string `json:"hash"`
}

func (s SingleFileTest) Passed() bool {
	return s.Error == nil
}

// Summary counts passing and failing tests of each kind.
type Summary struct {
	CratePassed, CrateFailed           int
	SingleFilePassed, SingleFileFailed int
}

func (r *Result) Summary() Summary {
	var s Summary
	for _, t := range r.CrateTests {
		if t.Passed() {
			s.CratePassed++
		} else {
			s.CrateFailed++
		}
	}
	for _, t := range r.SingleFileTests {
		if t.Passed() {
			s.SingleFilePassed++
		} else {
			s.SingleFileFailed++
		}
	}
	return s
}

func (s Summary) Failed() bool {
	return s.CrateFailed > 0 || s.SingleFileFailed > 0
}

func readResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse result %s: %w", filepath.Base(path), err)
	}
	return &r, nil
}

// Blobs maps a content hash to the file it was computed from.
type Blobs map[string]string

// loadBlobs reads <dir>/<prefix>/<suffix> files into a map keyed by
// prefix+suffix. A missing or unreadable store yields what could be read.
func loadBlobs(dir string) Blobs {
	blobs := make(Blobs)
	prefixes, err := os.ReadDir(dir)
	if err != nil {
		return blobs
	}
	for _, prefix := range prefixes {
		if !prefix.IsDir() {
			continue
		}
		suffixes, err := os.ReadDir(filepath.Join(dir, prefix.Name()))
		if err != nil {
			continue
		}
		for _, suffix := range suffixes {
			data, err := os.ReadFile(filepath.Join(dir, prefix.Name(), suffix.Name()))
			if err != nil {
				continue
			}
			blobs[prefix.Name()+suffix.Name()] = string(data)
		}
	}
	return blobs
}

// Source returns the blob for hash, or an error message in its place.
func (b Blobs) Source(hash string) string {
	// Older results end the hash with a newline.
	hash = strings.TrimSpace(hash)
	if blob, ok := b[hash]; ok {
		return blob
	}
	return fmt.Sprintf("Error: failed to load blob `%s`", hash)
}

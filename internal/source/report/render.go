package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/graphic"
)

const textSize = 16.0

var textBounds = graphic.Bounds{X: 20, Y: 20, W: 800, H: 2000}

// RenderResult draws the pass/fail summary of a result file.
func RenderResult(e *entry.Entry, _ entry.Mode) ([]graphic.Graphic, error) {
	var result Result
	if err := json.Unmarshal([]byte(e.Content), &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	meta, err := json.MarshalIndent(result.Meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}

	s := result.Summary()
	text := fmt.Sprintf("crate-test: { success: %d, fail: %d }\nsingle-file-test: { success: %d, fail: %d }\nmeta: %s",
		s.CratePassed, s.CrateFailed, s.SingleFilePassed, s.SingleFileFailed, meta)
	return graphic.NewTextBox(text, textSize, graphic.White, textBounds).Render(), nil
}

// RenderTest draws a test of a result view. Single-file tests show their
// source in ModeSource and their captured output in ModeOutput; crate tests
// show per-profile results, with error messages in ModeOutput.
func RenderTest(e *entry.Entry, mode entry.Mode) ([]graphic.Graphic, error) {
	var text string
	switch e.CategoryA {
	case CategoryCrate:
		var t CrateTest
		if err := json.Unmarshal([]byte(e.Content), &t); err != nil {
			return nil, fmt.Errorf("decode crate test: %w", err)
		}
		text = crateText(t, mode == ModeOutput)

	case CategorySingleFile:
		var f singleFile
		if err := json.Unmarshal([]byte(e.Content), &f); err != nil {
			return nil, fmt.Errorf("decode single-file test: %w", err)
		}
		text = f.Source
		if mode == ModeOutput {
			text = fmt.Sprintf("# stdout\n\n```\n%s\n```\n\n# stderr\n\n```\n%s\n```", f.Test.Stdout, f.Test.Stderr)
		}

	default:
		return nil, fmt.Errorf("unknown test kind %q", e.CategoryA)
	}

	plain, colors := Colorize(text)
	return graphic.NewTextBox(plain, textSize, graphic.White, textBounds).WithColorMap(colors).Render(), nil
}

func crateText(t CrateTest, withErrors bool) string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteString("\n")
	for _, p := range []struct {
		name   string
		result CrateResult
	}{
		{"debug", t.Debug},
		{"release", t.Release},
		{"doc", t.Doc},
	} {
		status := "\x1b[32mok\x1b[0m"
		if p.result.Error != nil {
			status = "\x1b[31mfailed\x1b[0m"
		}
		fmt.Fprintf(&sb, "\n%s: %s (%dms)", p.name, status, p.result.Elapsed)
		if withErrors && p.result.Error != nil {
			fmt.Fprintf(&sb, "\n%s", *p.result.Error)
		}
	}
	return sb.String()
}

// SGR foreground colours understood by Colorize.
var sgrColors = map[int]graphic.Color{
	31: graphic.Red,
	32: graphic.Green,
	33: graphic.Yellow,
	34: {R: 0.25, G: 0.2, B: 0.75, A: 1},
}

// Colorize removes escape sequences from s and returns the colour of every
// remaining rune. SGR parameters 0 and 39 reset to white, 31 to 34 set a
// colour and every other sequence is dropped without effect.
func Colorize(s string) (string, []graphic.Color) {
	var (
		out    []rune
		colors []graphic.Color
		params strings.Builder
		inSeq  bool
	)
	current := graphic.White

	for _, r := range s {
		if !inSeq {
			if r == '\x1b' {
				inSeq = true
				params.Reset()
				continue
			}
			out = append(out, r)
			colors = append(colors, current)
			continue
		}

		switch {
		case r == '[' && params.Len() == 0:
		case r >= '0' && r <= '9' || r == ';':
			params.WriteRune(r)
		case r >= 0x40 && r <= 0x7e:
			if r == 'm' {
				current = applySGR(params.String(), current)
			}
			inSeq = false
		}
	}
	return string(out), colors
}

func applySGR(params string, current graphic.Color) graphic.Color {
	for _, p := range strings.Split(params, ";") {
		n, err := strconv.Atoi(p)
		if err != nil {
			// ESC[m is a reset.
			if p == "" {
				current = graphic.White
			}
			continue
		}
		switch {
		case n == 0 || n == 39:
			current = graphic.White
		default:
			if c, ok := sgrColors[n]; ok {
				current = c
			}
		}
	}
	return current
}

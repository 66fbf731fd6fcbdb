package raster

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shvbsle/shev/internal/input"
)

// Step is the set of keys pressed together in one scripted step. An empty
// step presses nothing.
type Step []input.Key

// ParseScript reads a key script. Tokens are separated by white space and
// each one is a step: keys pressed together are joined by '+', a trailing
// "*N" repeats the step N times and "_" is an idle step. '#' starts a
// comment that runs to the end of the line.
//
//	Down*3 Ctrl+1 _ Ctrl+Up   # three steps down, filter, back
func ParseScript(r io.Reader) ([]Step, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text, _, _ := strings.Cut(scanner.Text(), "#")
		for _, token := range strings.Fields(text) {
			parsed, err := parseToken(token)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			steps = append(steps, parsed...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return steps, nil
}

func parseToken(token string) ([]Step, error) {
	repeat := 1
	if body, count, ok := strings.Cut(token, "*"); ok {
		n, err := strconv.Atoi(count)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad repeat count in %q", token)
		}
		token, repeat = body, n
	}

	var step Step
	if token != "_" {
		for _, name := range strings.Split(token, "+") {
			k, ok := input.ParseKey(name)
			if !ok {
				return nil, fmt.Errorf("unknown key %q", name)
			}
			step = append(step, k)
		}
	}

	steps := make([]Step, repeat)
	for i := range steps {
		steps[i] = step
	}
	return steps, nil
}

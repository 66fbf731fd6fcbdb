package kube

import (
	"regexp"
	"strings"

	"github.com/shvbsle/shev/internal/graphic"
)

// yamlKeyRegex matches YAML keys (words with optional spaces followed by colon)
// Examples: "Namespace:", "Service Account:", "Node-Selectors:"
var yamlKeyRegex = regexp.MustCompile(`^(\s*)([A-Za-z0-9][A-Za-z0-9_ -]*):`)

var (
	keyColor   = graphic.Color{R: 0, G: 0.69, B: 1, A: 1}
	valueColor = graphic.Color{R: 0.82, G: 0.82, B: 0.82, A: 1}
)

// highlightYAML returns a colour per rune of text: keys (with their colon)
// in keyColor and everything else in valueColor. Newlines take valueColor
// so the map stays aligned with the text.
func highlightYAML(text string) []graphic.Color {
	var colors []graphic.Color
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		keyStart, keyEnd := -1, -1
		if match := yamlKeyRegex.FindStringSubmatchIndex(line); match != nil {
			// match[4:6] is the key, match[1] the end of the colon.
			keyStart, keyEnd = match[4], match[1]
		}
		for offset := range line {
			if offset >= keyStart && offset < keyEnd {
				colors = append(colors, keyColor)
			} else {
				colors = append(colors, valueColor)
			}
		}
		if i < len(lines)-1 {
			colors = append(colors, valueColor)
		}
	}
	return colors
}

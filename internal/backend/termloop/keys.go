package termloop

import (
	"unicode"

	tl "github.com/JoelOtter/termloop"

	"github.com/shvbsle/shev/internal/input"
)

var specialKeys = map[tl.Key]input.Key{
	tl.KeyArrowUp:    input.KeyUp,
	tl.KeyArrowDown:  input.KeyDown,
	tl.KeyArrowLeft:  input.KeyLeft,
	tl.KeyArrowRight: input.KeyRight,
	tl.KeyPgup:       input.KeyPageUp,
	tl.KeyPgdn:       input.KeyPageDown,
	tl.KeyEsc:        input.KeyEscape,
	tl.KeySpace:      input.KeySpace,
}

var letterKeys = map[rune]input.Key{
	'w': input.KeyW,
	'a': input.KeyA,
	's': input.KeyS,
	'd': input.KeyD,
	'z': input.KeyZ,
	'x': input.KeyX,
	'h': input.KeyH,
	'm': input.KeyM,
	'c': input.KeyC,
	'y': input.KeyY,
}

// Terminals cannot send Ctrl with an arrow or a digit, so those chords get
// their own keys: k, j and l for Ctrl+Up, Ctrl+Left and Ctrl+Right and the
// shifted digit row for Ctrl+1..9.
var chordKeys = map[rune][]input.Key{
	'k': {input.KeyLeftCtrl, input.KeyUp},
	'j': {input.KeyLeftCtrl, input.KeyLeft},
	'l': {input.KeyLeftCtrl, input.KeyRight},
}

var shiftedDigits = []rune{'!', '@', '#', '$', '%', '^', '&', '*', '('}

// translateKey returns the engine keys pressed by a termloop key event.
func translateKey(event tl.Event) []input.Key {
	var keys []input.Key
	if event.Mod&tl.ModAltModifier != 0 {
		keys = append(keys, input.KeyLeftAlt)
	}

	if k, ok := specialKeys[event.Key]; ok {
		return append(keys, k)
	}
	if event.Ch == 0 {
		return nil
	}
	return append(keys, RuneKeys(event.Ch)...)
}

// RuneKeys maps a typed character to engine keys. Upper case letters add
// Shift.
func RuneKeys(ch rune) []input.Key {
	if ch >= '1' && ch <= '9' {
		return []input.Key{input.Digit(int(ch - '0'))}
	}
	for i, s := range shiftedDigits {
		if ch == s {
			return []input.Key{input.KeyLeftCtrl, input.Digit(i + 1)}
		}
	}
	if ch == ' ' {
		return []input.Key{input.KeySpace}
	}
	if keys, ok := chordKeys[ch]; ok {
		return keys
	}

	lower := unicode.ToLower(ch)
	k, ok := letterKeys[lower]
	if !ok {
		return nil
	}
	if lower != ch {
		return []input.Key{input.KeyLeftShift, k}
	}
	return []input.Key{k}
}

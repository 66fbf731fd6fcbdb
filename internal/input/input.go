package input

import (
	"strings"

	"github.com/shvbsle/shev/internal/graphic"
)

// Key identifies a keyboard key the engine reacts to. Backends translate
// their own key events into these values.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyEscape
	KeySpace
	KeyLeftShift
	KeyRightShift
	KeyLeftCtrl
	KeyRightCtrl
	KeyLeftAlt
	KeyRightAlt
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyW
	KeyA
	KeyS
	KeyD
	KeyZ
	KeyX
	KeyH
	KeyM
	KeyC
	KeyY

	keyCount
)

var keyNames = [keyCount]string{
	KeyUnknown:    "?",
	KeyUp:         "Up",
	KeyDown:       "Down",
	KeyLeft:       "Left",
	KeyRight:      "Right",
	KeyPageUp:     "PageUp",
	KeyPageDown:   "PageDown",
	KeyEscape:     "Esc",
	KeySpace:      "Space",
	KeyLeftShift:  "LeftShift",
	KeyRightShift: "RightShift",
	KeyLeftCtrl:   "LeftCtrl",
	KeyRightCtrl:  "RightCtrl",
	KeyLeftAlt:    "LeftAlt",
	KeyRightAlt:   "RightAlt",
	Key1:          "1",
	Key2:          "2",
	Key3:          "3",
	Key4:          "4",
	Key5:          "5",
	Key6:          "6",
	Key7:          "7",
	Key8:          "8",
	Key9:          "9",
	KeyW:          "W",
	KeyA:          "A",
	KeyS:          "S",
	KeyD:          "D",
	KeyZ:          "Z",
	KeyX:          "X",
	KeyH:          "H",
	KeyM:          "M",
	KeyC:          "C",
	KeyY:          "Y",
}

func (k Key) String() string {
	if k >= keyCount {
		return keyNames[KeyUnknown]
	}
	return keyNames[k]
}

// ParseKey returns the key named name, ignoring case. Ctrl, Shift and Alt
// name the left modifier keys.
func ParseKey(name string) (Key, bool) {
	switch strings.ToLower(name) {
	case "ctrl":
		return KeyLeftCtrl, true
	case "shift":
		return KeyLeftShift, true
	case "alt":
		return KeyLeftAlt, true
	case "escape":
		return KeyEscape, true
	}
	for k := KeyUp; k < keyCount; k++ {
		if strings.EqualFold(keyNames[k], name) {
			return k, true
		}
	}
	return KeyUnknown, false
}

// Digit returns the key for digit n in 1..9.
func Digit(n int) Key {
	if n < 1 || n > 9 {
		return KeyUnknown
	}
	return Key1 + Key(n-1)
}

// DigitValue returns n for the digit key n, or 0 for any other key.
func DigitValue(k Key) int {
	if k < Key1 || k > Key9 {
		return 0
	}
	return int(k-Key1) + 1
}

// KeySet is a set of keys. The zero value is empty.
type KeySet uint64

// Keys builds a set from the given keys.
func Keys(keys ...Key) KeySet {
	var s KeySet
	for _, k := range keys {
		s = s.With(k)
	}
	return s
}

func (s KeySet) Has(k Key) bool {
	return s&(1<<k) != 0
}

// HasAny reports whether any of keys is in s.
func (s KeySet) HasAny(keys ...Key) bool {
	for _, k := range keys {
		if s.Has(k) {
			return true
		}
	}
	return false
}

func (s KeySet) With(k Key) KeySet {
	return s | 1<<k
}

func (s KeySet) Without(k Key) KeySet {
	return s &^ (1 << k)
}

func (s KeySet) Union(o KeySet) KeySet {
	return s | o
}

func (s KeySet) Minus(o KeySet) KeySet {
	return s &^ o
}

func (s KeySet) Empty() bool {
	return s == 0
}

// Slice returns the keys of s in declaration order.
func (s KeySet) Slice() []Key {
	var out []Key
	for k := KeyUnknown; k < keyCount; k++ {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

func (s KeySet) String() string {
	keys := s.Slice()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}

// MouseButton indexes the per-button arrays of an Input.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
)

// Input is one sample of the keyboard and mouse, taken once per step.
//
// Down holds keys currently held, Pressed the keys that went down since the
// previous sample and Released the keys that went up. Pointer is in
// whatever space the producer works in; the engine maps it into the logical
// 1080x720 space before the state machine sees it.
type Input struct {
	Pointer graphic.Point
	// Wheel is the scroll delta. Positive Y scrolls up.
	Wheel graphic.Point

	MouseDown     [3]bool
	MousePressed  [3]bool
	MouseReleased [3]bool

	Down     KeySet
	Pressed  KeySet
	Released KeySet
}

// Shift reports whether a shift key is held or was just pressed.
func (in Input) Shift() bool {
	return in.Down.Union(in.Pressed).HasAny(KeyLeftShift, KeyRightShift)
}

func (in Input) Ctrl() bool {
	return in.Down.Union(in.Pressed).HasAny(KeyLeftCtrl, KeyRightCtrl)
}

func (in Input) Alt() bool {
	return in.Down.Union(in.Pressed).HasAny(KeyLeftAlt, KeyRightAlt)
}

// Clicked reports whether button b went down in this sample.
func (in Input) Clicked(b MouseButton) bool {
	return in.MousePressed[b]
}

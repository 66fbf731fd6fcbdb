package tea

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shvbsle/shev/internal/input"
)

// keyMap defines all keybindings of the bubbletea backend. Most of them
// stand for engine keys; Copy and Quit are handled by the backend itself.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	CategoryUp key.Binding
	CategoryDn key.Binding
	Escape     key.Binding
	Space      key.Binding
	AltSpace   key.Binding
	Parent     key.Binding
	Primary    key.Binding
	Secondary  key.Binding
	Help       key.Binding
	Mode       key.Binding
	Extra      key.Binding
	Copy       key.Binding
	Quit       key.Binding

	// engine lists the bindings that map to engine keys, in match order.
	engine []chord
}

type chord struct {
	binding *key.Binding
	keys    []input.Key
}

// Terminals do not report Ctrl with digits, so the shifted digit row
// applies filters.
var filterKeys = [9]string{"!", "@", "#", "$", "%", "^", "&", "*", "("}

// cameraKeys are the letters that move and zoom the camera. Upper case adds
// Shift.
var cameraKeys = map[string]input.Key{
	"w": input.KeyW,
	"a": input.KeyA,
	"s": input.KeyS,
	"d": input.KeyD,
	"z": input.KeyZ,
	"x": input.KeyX,
}

// newKeyMap creates a new keyMap with all bindings configured
func newKeyMap() *keyMap {
	k := &keyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous entry"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next entry"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "widen side bar"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "narrow side bar"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "previous category"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "next category"),
		),
		CategoryUp: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous sub-category"),
		),
		CategoryDn: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next sub-category"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close / quit"),
		),
		Space: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "next with same flag"),
		),
		AltSpace: key.NewBinding(
			key.WithKeys("alt+ "),
			key.WithHelp("alt+space", "previous with same flag"),
		),
		Parent: key.NewBinding(
			key.WithKeys("ctrl+up", "k"),
			key.WithHelp("ctrl+↑/k", "parent view"),
		),
		Primary: key.NewBinding(
			key.WithKeys("ctrl+left", "j"),
			key.WithHelp("ctrl+←/j", "primary view"),
		),
		Secondary: key.NewBinding(
			key.WithKeys("ctrl+right", "l"),
			key.WithHelp("ctrl+→/l", "secondary view"),
		),
		Help: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "help"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "change entry state"),
		),
		Extra: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "extra content"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy title"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}

	k.engine = []chord{
		{&k.Up, []input.Key{input.KeyUp}},
		{&k.Down, []input.Key{input.KeyDown}},
		{&k.Left, []input.Key{input.KeyLeft}},
		{&k.Right, []input.Key{input.KeyRight}},
		{&k.PageUp, []input.Key{input.KeyPageUp}},
		{&k.PageDown, []input.Key{input.KeyPageDown}},
		{&k.CategoryUp, []input.Key{input.KeyLeftShift, input.KeyPageUp}},
		{&k.CategoryDn, []input.Key{input.KeyLeftShift, input.KeyPageDown}},
		{&k.Escape, []input.Key{input.KeyEscape}},
		{&k.Space, []input.Key{input.KeySpace}},
		{&k.AltSpace, []input.Key{input.KeyLeftAlt, input.KeySpace}},
		{&k.Parent, []input.Key{input.KeyLeftCtrl, input.KeyUp}},
		{&k.Primary, []input.Key{input.KeyLeftCtrl, input.KeyLeft}},
		{&k.Secondary, []input.Key{input.KeyLeftCtrl, input.KeyRight}},
		{&k.Help, []input.Key{input.KeyH}},
		{&k.Mode, []input.Key{input.KeyM}},
		{&k.Extra, []input.Key{input.KeyC}},
	}
	return k
}

// translate returns the engine keys msg stands for, or nil.
func (km *keyMap) translate(msg tea.KeyMsg) []input.Key {
	for _, c := range km.engine {
		if key.Matches(msg, *c.binding) {
			return c.keys
		}
	}

	s := msg.String()
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return []input.Key{input.Digit(int(s[0] - '0'))}
	}
	for i, f := range filterKeys {
		if s == f {
			return []input.Key{input.KeyLeftCtrl, input.Digit(i + 1)}
		}
	}
	if ck, ok := cameraKeys[s]; ok {
		return []input.Key{ck}
	}
	if len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z' {
		if ck, ok := cameraKeys[string(s[0]+'a'-'A')]; ok {
			return []input.Key{input.KeyLeftShift, ck}
		}
	}
	return nil
}

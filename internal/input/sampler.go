package input

import "github.com/shvbsle/shev/internal/graphic"

// Sampler turns a stream of terminal events into per-step Input samples.
//
// Terminals report key presses but never key releases, so a key counts as
// down for the step it was pressed in and the step after it. Auto-repeat
// from the terminal keeps a held key down across steps.
type Sampler struct {
	pressed     KeySet
	prevPressed KeySet
	prevDown    KeySet

	pointer graphic.Point
	wheel   graphic.Point

	mouseDown     [3]bool
	mousePressed  [3]bool
	mouseReleased [3]bool
}

func NewSampler() *Sampler {
	return &Sampler{}
}

// Press records keys that went down together, e.g. a modifier and a key.
func (s *Sampler) Press(keys ...Key) {
	for _, k := range keys {
		if k != KeyUnknown {
			s.pressed = s.pressed.With(k)
		}
	}
}

func (s *Sampler) MoveTo(p graphic.Point) {
	s.pointer = p
}

// Scroll adds a wheel delta. Positive dy scrolls up.
func (s *Sampler) Scroll(dx, dy float64) {
	s.wheel.X += dx
	s.wheel.Y += dy
}

func (s *Sampler) MousePress(b MouseButton, p graphic.Point) {
	s.pointer = p
	if !s.mouseDown[b] {
		s.mousePressed[b] = true
	}
	s.mouseDown[b] = true
}

func (s *Sampler) MouseRelease(b MouseButton, p graphic.Point) {
	s.pointer = p
	if s.mouseDown[b] {
		s.mouseReleased[b] = true
	}
	s.mouseDown[b] = false
}

// ReleaseAll marks every button as released. Some terminals report a
// release without saying which button it was.
func (s *Sampler) ReleaseAll(p graphic.Point) {
	for b := range s.mouseDown {
		s.MouseRelease(MouseButton(b), p)
	}
}

// Sample returns the input for one step and starts the next one.
func (s *Sampler) Sample() Input {
	down := s.pressed.Union(s.prevPressed)
	in := Input{
		Pointer:       s.pointer,
		Wheel:         s.wheel,
		MouseDown:     s.mouseDown,
		MousePressed:  s.mousePressed,
		MouseReleased: s.mouseReleased,
		Down:          down,
		Pressed:       s.pressed,
		Released:      s.prevDown.Minus(down),
	}

	s.prevPressed = s.pressed
	s.prevDown = down
	s.pressed = 0
	s.wheel = graphic.Point{}
	s.mousePressed = [3]bool{}
	s.mouseReleased = [3]bool{}
	return in
}

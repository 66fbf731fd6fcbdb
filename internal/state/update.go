package state

import (
	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/filter"
	"github.com/shvbsle/shev/internal/input"
	"github.com/shvbsle/shev/internal/log"
)

// Update runs one step. in must already be in logical space.
func (s *State) Update(view *entry.View, in input.Input) Action {
	s.checkInvariants(view)
	startCursor := s.cursor

	if s.popup != nil {
		s.popup.TTL--
		if s.popup.TTL <= 0 {
			s.popup = nil
		}
	}

	if in.Released.Has(input.KeyEscape) {
		switch {
		case s.showHelp:
			s.showHelp = false
			return None()
		case s.showExtraContent:
			s.showExtraContent = false
			return None()
		default:
			return Quit()
		}
	}

	shift, ctrl, alt := in.Shift(), in.Ctrl(), in.Alt()
	noModifier := !shift && !ctrl && !alt
	ctrlOnly := ctrl && !shift && !alt
	pressed := in.Pressed

	if ctrlOnly {
		if n := pressedDigit(pressed); n > 0 {
			return s.applyFilter(view, n)
		}
	}

	switch {
	case in.Down.Has(input.KeyUp) && !in.Down.Has(input.KeyDown):
		s.arrowHold = max(s.arrowHold, 0) + 1
	case in.Down.Has(input.KeyDown) && !in.Down.Has(input.KeyUp):
		s.arrowHold = min(s.arrowHold, 0) - 1
	default:
		s.arrowHold = 0
	}
	if noModifier {
		if s.arrowHold >= LongPressSteps {
			pressed = pressed.With(input.KeyUp)
		} else if s.arrowHold <= -LongPressSteps {
			pressed = pressed.With(input.KeyDown)
		}
	}

	sideBar := SideBarLayout(s.wideSideBar)
	overList := in.Pointer.X >= sideBar.X

	if noModifier {
		s.hovered, s.hovering = HitRow(s.wideSideBar, s.cursor, view.Len(), in.Pointer)
	} else {
		s.hovering = false
	}

	if !view.IsEmpty() {
		s.navigate(view, in, pressed, overList, shift, ctrl, alt)
	}

	if noModifier {
		if pressed.Has(input.KeyLeft) {
			s.wideSideBar = true
		}
		if pressed.Has(input.KeyRight) {
			s.wideSideBar = false
		}
		if pressed.Has(input.KeyH) {
			s.showHelp = !s.showHelp
			if s.showHelp {
				s.showExtraContent = false
			}
		}
		if pressed.Has(input.KeyC) && !s.showHelp {
			s.toggleExtraContent(view)
		}
		if pressed.Has(input.KeyM) {
			s.cycleMode(view)
		}
	}

	if ctrlOnly {
		if action, ok := s.transition(view, pressed); ok {
			return action
		}
	}

	s.moveCamera(in, overList, shift)

	if in.Clicked(input.MouseLeft) {
		switch {
		case ExpandButton(s.wideSideBar).Contains(in.Pointer):
			s.wideSideBar = !s.wideSideBar
		case s.hovering && !view.IsEmpty():
			s.cursor = s.hovered
		}
	}

	if s.cursor != startCursor {
		s.resetEntryState()
	}
	return None()
}

func pressedDigit(pressed input.KeySet) int {
	for n := 1; n <= 9; n++ {
		if pressed.Has(input.Digit(n)) {
			return n
		}
	}
	return 0
}

func (s *State) applyFilter(view *entry.View, n int) Action {
	if n > len(view.Filters) {
		s.ShowPopup("There's no filter mapped to Ctrl+%d key.", n)
		return None()
	}

	filtered, cursor, found, err := filter.Apply(view, n-1, s.cursor)
	if err != nil {
		log.Engine().Error("failed to apply filter", "view", view.ID, "filter", n, "error", err)
		s.ShowPopup("There's no filter mapped to Ctrl+%d key.", n)
		return None()
	}
	log.Engine().Debug("applied filter",
		"view", view.ID,
		"filter", view.Filters[n-1].Name,
		"matches", filtered.Len(),
		"cursor_retained", found,
	)
	return TransitEphemeral(filtered, cursor, true)
}

// navigate handles everything that moves the cursor within the view.
func (s *State) navigate(view *entry.View, in input.Input, pressed input.KeySet, overList, shift, ctrl, alt bool) {
	n := view.Len()
	speed := 1

	if !shift && !ctrl && !alt && overList {
		switch {
		case in.Wheel.Y < 0:
			pressed = pressed.With(input.KeyDown)
			speed = max(n/32, 1)
		case in.Wheel.Y > 0:
			pressed = pressed.With(input.KeyUp)
			speed = max(n/32, 1)
		}
	}
	speed %= n

	switch {
	case ctrl || alt || shift:
	case pressed.Has(input.KeyDown):
		s.cursor = (s.cursor + speed) % n
	case pressed.Has(input.KeyUp):
		s.cursor = (s.cursor + n - speed) % n
	}

	if !ctrl && !alt {
		category := func(e *entry.Entry) string { return e.CategoryA }
		if shift {
			category = func(e *entry.Entry) string { return e.CategoryB }
		}
		switch {
		case pressed.Has(input.KeyPageDown):
			s.cursor = scan(view, s.cursor, 1, func(origin, e *entry.Entry) bool { return category(e) != category(origin) })
		case pressed.Has(input.KeyPageUp):
			s.cursor = scan(view, s.cursor, -1, func(origin, e *entry.Entry) bool { return category(e) != category(origin) })
		}
	}

	if pressed.Has(input.KeySpace) && !ctrl && !shift {
		dir := 1
		if alt {
			dir = -1
		}
		s.cursor = scan(view, s.cursor, dir, func(origin, e *entry.Entry) bool { return e.Flag == origin.Flag })
	}

	if !shift && !ctrl && !alt {
		if d := pressedDigit(pressed); d > 0 {
			s.cursor = (d - 1) * (n - 1) / 8
		}
	}
}

// scan steps from cursor in direction dir until stop matches, wrapping
// around. It takes at most len steps, so it ends back on cursor when
// nothing matches.
func scan(view *entry.View, cursor, dir int, stop func(origin, e *entry.Entry) bool) int {
	n := view.Len()
	origin := view.At(cursor)
	for range n {
		cursor = (cursor + n + dir) % n
		if stop(origin, view.At(cursor)) {
			break
		}
	}
	return cursor
}

func (s *State) toggleExtraContent(view *entry.View) {
	if s.showExtraContent {
		s.showExtraContent = false
		return
	}
	e := view.At(s.cursor)
	if e == nil || e.ExtraContent == "" {
		s.ShowPopup("There's no extra content to display.")
		return
	}
	s.showExtraContent = true
}

func (s *State) cycleMode(view *entry.View) {
	if view.Modes() < 2 {
		s.ShowPopup("There's no state to change!")
		return
	}
	s.mode = entry.Mode((int(s.mode) + 1) % view.Modes())
}

// transition handles Ctrl+Up, Ctrl+Left and Ctrl+Right.
func (s *State) transition(view *entry.View, pressed input.KeySet) (Action, bool) {
	current := view.At(s.cursor)
	bindings := []struct {
		key    input.Key
		target *entry.Transition
	}{
		{key: input.KeyUp, target: view.Transition},
		{key: input.KeyLeft},
		{key: input.KeyRight},
	}
	if current != nil {
		bindings[1].target = current.Primary
		bindings[2].target = current.Secondary
	}

	for _, b := range bindings {
		if !pressed.Has(b.key) {
			continue
		}
		name := "Ctrl+" + b.key.String()
		if b.target == nil {
			s.ShowPopup("There's no transition mapped to %s key.", name)
			continue
		}
		return Transit(b.target.ID, name), true
	}
	return Action{}, false
}

func (s *State) moveCamera(in input.Input, overList, shift bool) {
	speed, zoomIn, zoomOut := 10/s.zoom, 1.05, 0.9523
	if shift {
		speed, zoomIn, zoomOut = 40/s.zoom, 1.2, 0.8333
	}

	if !overList {
		nudge := 3 * 10 / s.zoom
		switch {
		case in.Wheel.X < 0:
			s.camera.X -= nudge
		case in.Wheel.X > 0:
			s.camera.X += nudge
		}
		switch {
		case in.Wheel.Y < 0:
			s.camera.Y -= nudge
		case in.Wheel.Y > 0:
			s.camera.Y += nudge
		}
	}

	if in.Down.Has(input.KeyW) {
		s.camera.Y -= speed
	}
	if in.Down.Has(input.KeyA) {
		s.camera.X -= speed
	}
	if in.Down.Has(input.KeyS) {
		s.camera.Y += speed
	}
	if in.Down.Has(input.KeyD) {
		s.camera.X += speed
	}
	if in.Down.Has(input.KeyZ) {
		s.zoom = min(s.zoom*zoomIn, MaxZoom)
	}
	if in.Down.Has(input.KeyX) {
		s.zoom = max(s.zoom*zoomOut, MinZoom)
	}
}

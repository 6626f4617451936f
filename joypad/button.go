package joypad

// Edges summarizes a button's sources for one frame.
type Edges struct {
	// Down is true while at least one source is held.
	Down bool
	// Pressed is true if at least one source went down since the last frame.
	Pressed bool
	// Released is true if at least one source went up since the last frame.
	Released bool
}

// LogicalButton is a ButtonSpec plus its per-frame state.
type LogicalButton struct {
	ButtonSpec
	Active     bool
	WasPressed bool
}

func newLogicalButton(spec ButtonSpec) LogicalButton {
	// The engine disables out-of-range joypad axes in place, keep the
	// caller's mapping untouched.
	spec.JoypadAxes = append([]Contribution(nil), spec.JoypadAxes...)
	return LogicalButton{ButtonSpec: spec}
}

// Step advances the button by one frame. holdActive is the hold modifier's
// resolved state for this frame; it turns Regular buttons into latching ones.
//
// A down edge is the first frame a source is seen down (or pressed) while
// the button is not held. A release edge ends the hold: either no source is
// down, or a source was released and pressed again within the frame. The
// release edge is taken before the down edge, so a re-press between two
// frames still counts. Latching buttons flip Active on a down edge only;
// momentary buttons follow the sources.
func (b *LogicalButton) Step(e Edges, holdActive bool) {
	if len(b.Sources) == 0 {
		return
	}
	latching := b.Kind == Toggle || holdActive

	if b.WasPressed && e.Released && (e.Pressed || !e.Down) {
		b.WasPressed = false
	}
	if !b.WasPressed && (e.Down || e.Pressed) {
		b.WasPressed = true
		if latching {
			b.Active = !b.Active
		}
	}
	if b.WasPressed && !e.Down {
		b.WasPressed = false
	}
	if !latching {
		b.Active = e.Down || e.Pressed
	}
}

// level is the button's own contribution before joypad axes are added.
func (b *LogicalButton) level() float64 {
	if b.Active {
		return 1
	}
	return 0
}

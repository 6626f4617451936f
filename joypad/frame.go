package joypad

import "time"

// Frame is the output of one recompute.
type Frame struct {
	Seq     uint64
	At      time.Time
	Axes    []float64
	Buttons []float64
	Sticks  [][]float64
	Hold    bool
}

func newFrame(axes, buttons int, sticks []StickGroup) Frame {
	f := Frame{
		Axes:    make([]float64, axes),
		Buttons: make([]float64, buttons),
		Sticks:  make([][]float64, len(sticks)),
	}
	for i, s := range sticks {
		f.Sticks[i] = make([]float64, 0, len(s.Indices))
	}
	return f
}

func (f Frame) clone() Frame {
	out := f
	out.Axes = append([]float64(nil), f.Axes...)
	out.Buttons = append([]float64(nil), f.Buttons...)
	out.Sticks = make([][]float64, len(f.Sticks))
	for i, s := range f.Sticks {
		out.Sticks[i] = append([]float64(nil), s...)
	}
	return out
}

// ButtonState is the presentation view of one logical button.
type ButtonState struct {
	Alias   string
	Kind    ButtonKind
	Active  bool
	Outputs []Contribution
}

// StickState is the presentation view of one stick group.
type StickState struct {
	Label   string
	Indices []int
	Buttons []ButtonState
}

// Snapshot is a consistent copy of the engine state for presentation
// collaborators. It is built under the engine lock and owned by the caller.
type Snapshot struct {
	State         State
	Mode          Mode
	Period        time.Duration
	Deadzone      float64
	Frame         Frame
	FrameDuration time.Duration
	Joypads       []JoypadSlot
	RawAxes       []float64
	RawButtons    []bool
	Sticks        []StickState
	Buttons       []ButtonState
	Hold          *ButtonState
}

func buttonState(b *LogicalButton) ButtonState {
	return ButtonState{
		Alias:   b.Alias,
		Kind:    b.Kind,
		Active:  b.Active,
		Outputs: append([]Contribution(nil), b.Outputs...),
	}
}

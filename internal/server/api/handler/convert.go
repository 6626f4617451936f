package handler

import (
	"fmt"
	"time"

	"github.com/Alia5/kbjoypad/apitypes"
	"github.com/Alia5/kbjoypad/joypad"
)

// NewFrame converts an engine snapshot to its API form.
func NewFrame(s joypad.Snapshot) apitypes.Frame {
	f := apitypes.Frame{
		Seq:             s.Frame.Seq,
		State:           s.State.String(),
		Mode:            s.Mode.String(),
		PeriodMs:        ms(s.Period.Seconds()),
		Deadzone:        s.Deadzone,
		FrameDurationMs: ms(s.FrameDuration.Seconds()),
		Axes:            nonNil(s.Frame.Axes),
		Buttons:         nonNil(s.Frame.Buttons),
		Sticks:          make([]apitypes.Stick, 0, len(s.Sticks)),
		LogicalButtons:  make([]apitypes.Button, 0, len(s.Buttons)),
		Joypads:         joypads(s.Joypads),
		RawAxes:         nonNil(s.RawAxes),
		RawButtons:      nonNil(s.RawButtons),
	}
	for i, st := range s.Sticks {
		out := apitypes.Stick{
			Label:   st.Label,
			Indices: nonNil(st.Indices),
			Buttons: make([]apitypes.Button, 0, len(st.Buttons)),
		}
		if i < len(s.Frame.Sticks) {
			out.Values = nonNil(s.Frame.Sticks[i])
		}
		for _, b := range st.Buttons {
			out.Buttons = append(out.Buttons, button(b))
		}
		f.Sticks = append(f.Sticks, out)
	}
	for _, b := range s.Buttons {
		f.LogicalButtons = append(f.LogicalButtons, button(b))
	}
	if s.Hold != nil {
		h := button(*s.Hold)
		f.Hold = &h
	}
	return f
}

func button(b joypad.ButtonState) apitypes.Button {
	out := apitypes.Button{
		Alias:   b.Alias,
		Kind:    b.Kind.String(),
		Active:  b.Active,
		Outputs: make([]string, 0, len(b.Outputs)),
	}
	for _, c := range b.Outputs {
		sign := '+'
		if c.Sign < 0 {
			sign = '-'
		}
		out.Outputs = append(out.Outputs, fmt.Sprintf("%c%d", sign, c.Index))
	}
	return out
}

func joypads(slots []joypad.JoypadSlot) []apitypes.Joypad {
	out := make([]apitypes.Joypad, 0, len(slots))
	for _, s := range slots {
		out = append(out, apitypes.Joypad{
			Index:        s.Index,
			Name:         s.Name,
			AxisOffset:   s.AxisOffset,
			AxisCount:    s.AxisCount,
			ButtonOffset: s.ButtonOffset,
			ButtonCount:  s.ButtonCount,
			Assigned:     s.Assigned,
			Active:       s.Active,
		})
	}
	return out
}

func ms(seconds float64) float64 {
	return seconds * float64(time.Second/time.Millisecond)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

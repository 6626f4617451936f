// Package linuxjs reads joypads through the Linux joystick API
// (/dev/input/js*).
package linuxjs

import (
	"encoding/binary"
	"fmt"
)

// EventSize is the size of struct js_event.
const EventSize = 8

// Event types. TypeInit is ORed in for the synthetic events sent on open.
const (
	TypeButton uint8 = 0x01
	TypeAxis   uint8 = 0x02
	TypeInit   uint8 = 0x80
)

// Event is one struct js_event.
type Event struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

// ParseEvent decodes a little-endian js_event.
func ParseEvent(b []byte) (Event, error) {
	if len(b) < EventSize {
		return Event{}, fmt.Errorf("js event: need %d bytes, got %d", EventSize, len(b))
	}
	return Event{
		Time:   binary.LittleEndian.Uint32(b[0:4]),
		Value:  int16(binary.LittleEndian.Uint16(b[4:6])),
		Type:   b[6],
		Number: b[7],
	}, nil
}

// State is the accumulated reading of one joystick.
type State struct {
	Axes    []int16
	Buttons []bool
}

// Apply folds ev into s, growing the channel lists if the device reports a
// channel beyond the counts it announced.
func (s *State) Apply(ev Event) {
	n := int(ev.Number)
	switch ev.Type &^ TypeInit {
	case TypeAxis:
		for len(s.Axes) <= n {
			s.Axes = append(s.Axes, 0)
		}
		s.Axes[n] = ev.Value
	case TypeButton:
		for len(s.Buttons) <= n {
			s.Buttons = append(s.Buttons, false)
		}
		s.Buttons[n] = ev.Value != 0
	}
}

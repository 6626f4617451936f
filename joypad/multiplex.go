package joypad

import (
	"fmt"
	"log/slog"

	"github.com/Alia5/kbjoypad/internal/log"
)

// JoypadSlot is one configured physical joypad and its place in the flat
// raw axis and button arrays.
type JoypadSlot struct {
	Index        int
	Name         string
	AxisOffset   int
	AxisCount    int
	ButtonOffset int
	ButtonCount  int
	// Assigned is set once at initialization when the joypad was present.
	Assigned bool
	// Active tracks presence frame by frame for assigned slots.
	Active bool
}

// Multiplexer merges several physical joypads into one flat axis space and
// one flat button space. Offsets are fixed by Assign and never renumbered.
type Multiplexer struct {
	slots       []JoypadSlot
	axes        []float64
	buttons     []bool
	prevButtons []bool
	logger      *slog.Logger
	once        *log.Once
}

// NewMultiplexer prepares one slot per configured joypad index.
func NewMultiplexer(indices []int, logger *slog.Logger) *Multiplexer {
	m := &Multiplexer{logger: logger, once: log.NewOnce()}
	for _, idx := range indices {
		m.slots = append(m.slots, JoypadSlot{Index: idx})
	}
	return m
}

// Assign gives every configured joypad that is present in devices the next
// free offsets. Absent joypads are reported and stay unassigned for the
// lifetime of the multiplexer.
func (m *Multiplexer) Assign(devices []DeviceInfo) {
	byIndex := make(map[int]DeviceInfo, len(devices))
	for _, d := range devices {
		byIndex[d.Index] = d
	}
	axes, buttons := 0, 0
	for i := range m.slots {
		s := &m.slots[i]
		d, ok := byIndex[s.Index]
		if !ok {
			m.logger.Warn("joypad not present, skipping", "index", s.Index)
			continue
		}
		s.Name = d.Name
		s.AxisOffset, s.AxisCount = axes, d.Axes
		s.ButtonOffset, s.ButtonCount = buttons, d.Buttons
		s.Assigned, s.Active = true, true
		axes += d.Axes
		buttons += d.Buttons
		m.logger.Info("joypad assigned", "index", s.Index, "name", d.Name,
			"axes", d.Axes, "buttons", d.Buttons, "axisOffset", s.AxisOffset, "buttonOffset", s.ButtonOffset)
	}
	m.axes = make([]float64, axes)
	m.buttons = make([]bool, buttons)
	m.prevButtons = make([]bool, buttons)
}

// Sample copies the latest reading of every assigned joypad into the flat
// arrays. A joypad reporting fewer channels than at assignment leaves the
// remaining entries at their previous values; a joypad that disappeared has
// its whole range zeroed.
func (m *Multiplexer) Sample(src JoypadSource) {
	copy(m.prevButtons, m.buttons)
	for i := range m.slots {
		s := &m.slots[i]
		if !s.Assigned {
			continue
		}
		sample, ok := src.Sample(s.Index)
		if !ok {
			if s.Active {
				m.logger.Warn("joypad disconnected", "index", s.Index, "name", s.Name)
				clear(m.axes[s.AxisOffset : s.AxisOffset+s.AxisCount])
				clear(m.buttons[s.ButtonOffset : s.ButtonOffset+s.ButtonCount])
			}
			s.Active = false
			continue
		}
		if !s.Active {
			m.logger.Info("joypad reconnected", "index", s.Index, "name", s.Name)
		}
		s.Active = true
		n := min(len(sample.Axes), s.AxisCount)
		copy(m.axes[s.AxisOffset:s.AxisOffset+n], sample.Axes[:n])
		n = min(len(sample.Buttons), s.ButtonCount)
		copy(m.buttons[s.ButtonOffset:s.ButtonOffset+n], sample.Buttons[:n])
	}
}

// Axes returns the flat raw axis array. The slice is owned by the
// multiplexer.
func (m *Multiplexer) Axes() []float64 { return m.axes }

// Buttons returns the flat raw button array. The slice is owned by the
// multiplexer.
func (m *Multiplexer) Buttons() []bool { return m.buttons }

// Slots returns a copy of the configured slots.
func (m *Multiplexer) Slots() []JoypadSlot {
	return append([]JoypadSlot(nil), m.slots...)
}

// ButtonEdges reports the state of flat button index i. An index outside
// the assigned range is reported once and treated as up.
func (m *Multiplexer) ButtonEdges(i int, owner string) Edges {
	if i < 0 || i >= len(m.buttons) {
		if len(m.buttons) > 0 {
			m.once.Log(m.logger, slog.LevelError, fmt.Sprintf("button:%s:%d", owner, i),
				"joypad button index out of range", "button", owner, "index", i, "count", len(m.buttons))
		}
		return Edges{}
	}
	return Edges{
		Down:     m.buttons[i],
		Pressed:  m.buttons[i] && !m.prevButtons[i],
		Released: !m.buttons[i] && m.prevButtons[i],
	}
}

// Package source combines keyboard and joypad readers into the single
// joypad.InputSource the engine consumes.
package source

import (
	"github.com/Alia5/kbjoypad/joypad"
	"github.com/Alia5/kbjoypad/joypad/keys"
)

// Keyboard is a key reader.
type Keyboard interface {
	joypad.KeyState
	Poll()
	ShouldClose() bool
}

// Joypads is a physical joypad reader.
type Joypads interface {
	joypad.JoypadSource
	Poll()
}

// Composite ORs the key state of several keyboards and looks joypads up in
// several joypad readers, first match wins. A reader listed as both keyboard
// and joypad reader is polled once per Poll.
type Composite struct {
	keyboards []Keyboard
	joypads   []Joypads
	pollers   []interface{ Poll() }
}

var _ joypad.InputSource = (*Composite)(nil)

// NewComposite builds a Composite. Nil readers are skipped.
func NewComposite(keyboards []Keyboard, joypads []Joypads) *Composite {
	c := &Composite{}
	for _, k := range keyboards {
		if k != nil {
			c.keyboards = append(c.keyboards, k)
		}
	}
	for _, j := range joypads {
		if j != nil {
			c.joypads = append(c.joypads, j)
		}
	}
	seen := map[any]bool{}
	add := func(p interface{ Poll() }) {
		if !seen[p] {
			seen[p] = true
			c.pollers = append(c.pollers, p)
		}
	}
	for _, k := range c.keyboards {
		add(k)
	}
	for _, j := range c.joypads {
		add(j)
	}
	return c
}

func (c *Composite) Poll() {
	for _, p := range c.pollers {
		p.Poll()
	}
}

func (c *Composite) ShouldClose() bool {
	for _, k := range c.keyboards {
		if k.ShouldClose() {
			return true
		}
	}
	return false
}

func (c *Composite) KeyDown(k keys.Key) bool {
	for _, kb := range c.keyboards {
		if kb.KeyDown(k) {
			return true
		}
	}
	return false
}

func (c *Composite) KeyPressed(k keys.Key) bool {
	for _, kb := range c.keyboards {
		if kb.KeyPressed(k) {
			return true
		}
	}
	return false
}

func (c *Composite) KeyReleased(k keys.Key) bool {
	for _, kb := range c.keyboards {
		if kb.KeyReleased(k) {
			return true
		}
	}
	return false
}

func (c *Composite) Enumerate() []joypad.DeviceInfo {
	seen := map[int]bool{}
	var out []joypad.DeviceInfo
	for _, j := range c.joypads {
		for _, d := range j.Enumerate() {
			if seen[d.Index] {
				continue
			}
			seen[d.Index] = true
			out = append(out, d)
		}
	}
	return out
}

func (c *Composite) Sample(index int) (joypad.JoypadSample, bool) {
	for _, j := range c.joypads {
		if s, ok := j.Sample(index); ok {
			return s, true
		}
	}
	return joypad.JoypadSample{}, false
}

// NoJoypads is a Joypads reader without devices.
type NoJoypads struct{}

func (NoJoypads) Poll()                                  {}
func (NoJoypads) Enumerate() []joypad.DeviceInfo         { return nil }
func (NoJoypads) Sample(int) (joypad.JoypadSample, bool) { return joypad.JoypadSample{}, false }

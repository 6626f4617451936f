package joypad

import "github.com/Alia5/kbjoypad/joypad/keys"

// KeyState answers per-key questions about the most recent Poll.
type KeyState interface {
	// KeyDown reports whether k is currently held.
	KeyDown(k keys.Key) bool
	// KeyPressed reports whether k went down since the previous Poll.
	KeyPressed(k keys.Key) bool
	// KeyReleased reports whether k went up since the previous Poll.
	KeyReleased(k keys.Key) bool
}

// DeviceInfo describes a present physical joypad.
type DeviceInfo struct {
	Index   int
	Name    string
	Axes    int
	Buttons int
}

// JoypadSample is one reading of a physical joypad. Axes are normalized to
// [-1,1].
type JoypadSample struct {
	Axes    []float64
	Buttons []bool
}

// JoypadSource exposes physical joypads by index.
type JoypadSource interface {
	// Enumerate lists the joypads present right now.
	Enumerate() []DeviceInfo
	// Sample returns the latest reading of joypad index, or false if the
	// joypad is not present.
	Sample(index int) (JoypadSample, bool)
}

// InputSource is everything the engine reads from the outside world.
type InputSource interface {
	KeyState
	JoypadSource
	// Poll latches the current key state and joypad samples. It is called
	// once at the start of every recompute.
	Poll()
	// ShouldClose reports that the user asked to shut down, for example by
	// pressing Ctrl-C in a raw terminal.
	ShouldClose() bool
}

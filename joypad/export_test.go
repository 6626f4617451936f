package joypad

import "time"

// SetClock replaces the engine time source. Must be called before Start.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}

package source

import (
	"sync"

	"github.com/Alia5/kbjoypad/joypad/keys"
)

// KeyTracker holds live key levels written by a reader goroutine and
// latches them on Latch, deriving press and release edges between latches.
// A key that changes level more than once between two latches reports both
// edges it went through, so a quick tap or a quick release and re-press is
// never lost.
type KeyTracker struct {
	mu       sync.Mutex
	live     [256]bool
	wentDown [256]bool
	wentUp   [256]bool
	cur      [256]bool
	prev     [256]bool
	pressed  [256]bool
	released [256]bool
}

// Set records the live level of k.
func (t *KeyTracker) Set(k keys.Key, down bool) {
	t.mu.Lock()
	t.setLocked(int(k), down)
	t.mu.Unlock()
}

// SetAll replaces the live levels: every key in down is held, all others are
// up.
func (t *KeyTracker) SetAll(down []keys.Key) {
	var next [256]bool
	for _, k := range down {
		next[k] = true
	}
	t.mu.Lock()
	for i := range next {
		t.setLocked(i, next[i])
	}
	t.mu.Unlock()
}

func (t *KeyTracker) setLocked(i int, down bool) {
	switch {
	case down && !t.live[i]:
		t.wentDown[i] = true
	case !down && t.live[i]:
		t.wentUp[i] = true
	}
	t.live[i] = down
}

// ReleaseAll marks every key as up.
func (t *KeyTracker) ReleaseAll() { t.SetAll(nil) }

// Latch makes the live levels current and computes edges against the
// previous latch.
func (t *KeyTracker) Latch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prev = t.cur
	t.cur = t.live
	for i := range t.cur {
		t.pressed[i] = (t.cur[i] && !t.prev[i]) || t.wentDown[i]
		t.released[i] = (!t.cur[i] && t.prev[i]) || t.wentUp[i]
	}
	t.wentDown = [256]bool{}
	t.wentUp = [256]bool{}
}

// KeyDown reports the latched level of k.
func (t *KeyTracker) KeyDown(k keys.Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cur[k]
}

// KeyPressed reports whether k went down before the last latch.
func (t *KeyTracker) KeyPressed(k keys.Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pressed[k]
}

// KeyReleased reports whether k went up before the last latch.
func (t *KeyTracker) KeyReleased(k keys.Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.released[k]
}

// Down returns the latched held keys in code order.
func (t *KeyTracker) Down() []keys.Key {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []keys.Key
	for i, d := range t.cur {
		if d {
			out = append(out, keys.Key(i))
		}
	}
	return out
}

package log

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Once emits each keyed message at most once for its lifetime. It backs the
// "report an unavailable resource once, not every frame" rule.
type Once struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewOnce returns an empty Once.
func NewOnce() *Once {
	return &Once{seen: map[string]struct{}{}}
}

// Log writes msg at level the first time key is seen and reports whether it
// did so.
func (o *Once) Log(logger *slog.Logger, level slog.Level, key, msg string, args ...any) bool {
	o.mu.Lock()
	if _, ok := o.seen[key]; ok {
		o.mu.Unlock()
		return false
	}
	o.seen[key] = struct{}{}
	o.mu.Unlock()

	logger.Log(context.Background(), level, msg, args...)
	return true
}

// Throttle emits each keyed message at most once per interval.
type Throttle struct {
	mu    sync.Mutex
	every time.Duration
	last  map[string]time.Time
	now   func() time.Time
}

// NewThrottle returns a Throttle that lets one message per key through every
// interval.
func NewThrottle(every time.Duration) *Throttle {
	return &Throttle{every: every, last: map[string]time.Time{}, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (t *Throttle) WithClock(now func() time.Time) *Throttle {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
	return t
}

// Log writes msg at level unless the same key was written less than one
// interval ago, and reports whether it wrote.
func (t *Throttle) Log(logger *slog.Logger, level slog.Level, key, msg string, args ...any) bool {
	t.mu.Lock()
	now := t.now()
	if last, ok := t.last[key]; ok && now.Sub(last) < t.every {
		t.mu.Unlock()
		return false
	}
	t.last[key] = now
	t.mu.Unlock()

	logger.Log(context.Background(), level, msg, args...)
	return true
}

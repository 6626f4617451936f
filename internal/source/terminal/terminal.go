package terminal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/Alia5/kbjoypad/internal/source"
	"github.com/Alia5/kbjoypad/joypad/keys"
)

// DefaultHold covers the keyboard auto-repeat delay so a held key does not
// flicker between its first byte and the first repeat.
const DefaultHold = 600 * time.Millisecond

// ErrNotTerminal is returned by Open when the file is not a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// Keyboard turns terminal input into key levels.
type Keyboard struct {
	source.KeyTracker

	hold   time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	lastSeen map[keys.Key]time.Time
	quit     bool
	now      func() time.Time

	restore func() error
	done    chan struct{}
}

var _ source.Keyboard = (*Keyboard)(nil)

// Open switches f into raw mode and starts reading it. Close restores the
// previous terminal state.
func Open(f *os.File, hold time.Duration, logger *slog.Logger) (*Keyboard, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	k := New(f, hold, logger)
	k.restore = func() error { return term.Restore(fd, old) }
	return k, nil
}

// New reads key bytes from r until it fails. A hold of zero uses
// DefaultHold.
func New(r io.Reader, hold time.Duration, logger *slog.Logger) *Keyboard {
	if hold <= 0 {
		hold = DefaultHold
	}
	k := &Keyboard{
		hold:     hold,
		logger:   logger,
		lastSeen: map[keys.Key]time.Time{},
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go k.read(r)
	return k
}

// WithClock replaces the time source. Intended for tests.
func (k *Keyboard) WithClock(now func() time.Time) *Keyboard {
	k.mu.Lock()
	k.now = now
	k.mu.Unlock()
	return k
}

// Done is closed when the reader stops.
func (k *Keyboard) Done() <-chan struct{} { return k.done }

func (k *Keyboard) read(r io.Reader) {
	defer close(k.done)
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			k.feed(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				k.logger.Error("Terminal read failed", "error", err)
			}
			return
		}
	}
}

func (k *Keyboard) feed(b []byte) {
	ks, quit := Decode(b)
	k.mu.Lock()
	now := k.now()
	for _, key := range ks {
		k.lastSeen[key] = now
		k.Set(key, true)
	}
	if quit {
		k.quit = true
	}
	k.mu.Unlock()
	if quit {
		k.logger.Info("Quit requested from terminal")
	}
}

// Poll releases keys whose hold window ran out and latches the rest.
func (k *Keyboard) Poll() {
	k.mu.Lock()
	now := k.now()
	for key, seen := range k.lastSeen {
		if now.Sub(seen) >= k.hold {
			delete(k.lastSeen, key)
			k.Set(key, false)
		}
	}
	k.mu.Unlock()
	k.Latch()
}

// ShouldClose reports whether Ctrl-C or Ctrl-D was typed.
func (k *Keyboard) ShouldClose() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.quit
}

// Close restores the terminal if Open changed it. The reader goroutine ends
// with the next byte or when the input is closed.
func (k *Keyboard) Close() error {
	if k.restore == nil {
		return nil
	}
	return k.restore()
}

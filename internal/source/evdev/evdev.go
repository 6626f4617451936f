package evdev

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/kbjoypad/internal/log"
	"github.com/Alia5/kbjoypad/internal/source"
)

// ByIDDir lists persistent input device links.
const ByIDDir = "/dev/input/by-id"

// ErrNoKeyboard is returned when no keyboard node can be found.
var ErrNoKeyboard = errors.New("no keyboard found")

// Keyboard samples the held keys of one event node on every Poll.
type Keyboard struct {
	source.KeyTracker

	path   string
	logger *slog.Logger
	warn   *log.Throttle

	mu sync.Mutex
	f  *os.File
}

var _ source.Keyboard = (*Keyboard)(nil)

// Open opens the keyboard at path. An empty path picks the first keyboard
// under ByIDDir.
func Open(path string, logger *slog.Logger) (*Keyboard, error) {
	if path == "" {
		found, err := FindKeyboards(ByIDDir)
		if err != nil {
			return nil, err
		}
		path = found[0]
	}
	f, err := openNode(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	logger.Info("Reading keyboard", "path", path)
	return &Keyboard{
		path:   path,
		logger: logger,
		warn:   log.NewThrottle(5 * time.Second),
		f:      f,
	}, nil
}

// FindKeyboards returns the event nodes of the keyboards linked in dir,
// resolved to absolute paths and sorted.
func FindKeyboards(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if !strings.Contains(name, "event") || !strings.Contains(name, "kbd") {
			continue
		}
		target, err := os.Readlink(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		out = append(out, filepath.Clean(target))
	}
	if len(out) == 0 {
		return nil, ErrNoKeyboard
	}
	sort.Strings(out)
	return out, nil
}

// Path returns the event node being read.
func (k *Keyboard) Path() string { return k.path }

// Poll reads the key bitmap and latches it. A vanished device releases every
// key and is reopened on a later Poll.
func (k *Keyboard) Poll() {
	k.mu.Lock()
	if k.f == nil {
		f, err := openNode(k.path)
		if err != nil {
			k.warn.Log(k.logger, slog.LevelWarn, "reopen", "Keyboard unavailable", "path", k.path, "error", err)
		} else {
			k.logger.Info("Keyboard reconnected", "path", k.path)
			k.f = f
		}
	}
	if k.f != nil {
		bits, err := readKeyBits(k.f)
		if err != nil {
			k.warn.Log(k.logger, slog.LevelWarn, "read", "Keyboard read failed", "path", k.path, "error", err)
			_ = k.f.Close()
			k.f = nil
			k.ReleaseAll()
		} else {
			k.SetAll(Decode(bits))
		}
	}
	k.mu.Unlock()
	k.Latch()
}

// ShouldClose is always false; a physical keyboard has no quit request.
func (k *Keyboard) ShouldClose() bool { return false }

// Close releases the device node.
func (k *Keyboard) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.f == nil {
		return nil
	}
	err := k.f.Close()
	k.f = nil
	return err
}

package linuxjs

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Alia5/kbjoypad/internal/source"
	"github.com/Alia5/kbjoypad/joypad"
	"github.com/Alia5/kbjoypad/wire"
)

// DefaultDir holds the joystick nodes.
const DefaultDir = "/dev/input"

type device struct {
	index int
	path  string
	name  string
	f     io.ReadCloser

	live State
}

// Reader tracks every js node in a directory. Nodes appearing or vanishing
// are picked up through fsnotify.
type Reader struct {
	dir    string
	logger *slog.Logger
	open   opener

	mu      sync.Mutex
	devices map[int]*device
	latched map[int]State

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
	closed  chan struct{}
}

var _ source.Joypads = (*Reader)(nil)

// opener opens a js node and reports its name and channel counts.
type opener func(path string) (f io.ReadCloser, name string, axes, buttons int, err error)

// Open starts watching dir. An empty dir uses DefaultDir.
func Open(dir string, logger *slog.Logger) (*Reader, error) {
	return newReader(dir, openNode, logger)
}

func newReader(dir string, open opener, logger *slog.Logger) (*Reader, error) {
	if dir == "" {
		dir = DefaultDir
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	r := &Reader{
		dir:     dir,
		logger:  logger,
		open:    open,
		devices: map[int]*device{},
		latched: map[int]State{},
		watcher: w,
		closed:  make(chan struct{}),
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "js*"))
	for _, m := range matches {
		r.add(m)
	}
	r.wg.Add(1)
	go r.watch()
	return r, nil
}

// jsIndex returns N for a path ending in jsN.
func jsIndex(path string) (int, bool) {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "js") {
		return 0, false
	}
	n, err := strconv.Atoi(base[2:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (r *Reader) add(path string) {
	idx, ok := jsIndex(path)
	if !ok {
		return
	}
	r.mu.Lock()
	if _, exists := r.devices[idx]; exists {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	f, name, axes, buttons, err := r.open(path)
	if err != nil {
		r.logger.Warn("Cannot open joystick", "path", path, "error", err)
		return
	}
	d := &device{
		index: idx,
		path:  path,
		name:  name,
		f:     f,
		live:  State{Axes: make([]int16, axes), Buttons: make([]bool, buttons)},
	}
	r.mu.Lock()
	r.devices[idx] = d
	r.mu.Unlock()
	r.logger.Info("Joystick connected", "index", idx, "name", name, "axes", axes, "buttons", buttons)

	r.wg.Add(1)
	go r.readLoop(d)
}

func (r *Reader) remove(idx int) {
	r.mu.Lock()
	d, ok := r.devices[idx]
	if ok {
		delete(r.devices, idx)
	}
	r.mu.Unlock()
	if ok {
		_ = d.f.Close()
		r.logger.Info("Joystick disconnected", "index", idx, "name", d.name)
	}
}

func (r *Reader) readLoop(d *device) {
	defer r.wg.Done()
	buf := make([]byte, EventSize)
	for {
		if _, err := io.ReadFull(d.f, buf); err != nil {
			if !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.EOF) {
				r.logger.Debug("Joystick read ended", "index", d.index, "error", err)
			}
			r.mu.Lock()
			if r.devices[d.index] == d {
				delete(r.devices, d.index)
			}
			r.mu.Unlock()
			_ = d.f.Close()
			return
		}
		ev, _ := ParseEvent(buf)
		r.mu.Lock()
		d.live.Apply(ev)
		r.mu.Unlock()
	}
}

func (r *Reader) watch() {
	defer r.wg.Done()
	for {
		select {
		case <-r.closed:
			return
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			idx, isJS := jsIndex(ev.Name)
			if !isJS {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create):
				r.add(ev.Name)
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				r.remove(idx)
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("Joystick watcher error", "error", err)
		}
	}
}

// Poll copies the live state of every device for Sample.
func (r *Reader) Poll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	latched := make(map[int]State, len(r.devices))
	for idx, d := range r.devices {
		latched[idx] = State{
			Axes:    append([]int16(nil), d.live.Axes...),
			Buttons: append([]bool(nil), d.live.Buttons...),
		}
	}
	r.latched = latched
}

// Enumerate lists the connected joysticks by index.
func (r *Reader) Enumerate() []joypad.DeviceInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]joypad.DeviceInfo, 0, len(r.devices))
	for idx, d := range r.devices {
		out = append(out, joypad.DeviceInfo{
			Index:   idx,
			Name:    d.name,
			Axes:    len(d.live.Axes),
			Buttons: len(d.live.Buttons),
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out
}

// Sample returns the state latched by the last Poll.
func (r *Reader) Sample(index int) (joypad.JoypadSample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.latched[index]
	if !ok {
		return joypad.JoypadSample{}, false
	}
	s := joypad.JoypadSample{
		Axes:    make([]float64, len(st.Axes)),
		Buttons: append([]bool(nil), st.Buttons...),
	}
	for i, v := range st.Axes {
		s.Axes[i] = wire.DecodeAxis(v)
	}
	return s, true
}

// Close stops watching and closes every device.
func (r *Reader) Close() error {
	close(r.closed)
	err := r.watcher.Close()
	r.mu.Lock()
	devs := make([]*device, 0, len(r.devices))
	for _, d := range r.devices {
		devs = append(devs, d)
	}
	r.devices = map[int]*device{}
	r.mu.Unlock()
	for _, d := range devs {
		_ = d.f.Close()
	}
	r.wg.Wait()
	return err
}

//go:build sdl || windows || darwin

package sdljoy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/Alia5/kbjoypad/internal/source"
	"github.com/Alia5/kbjoypad/joypad"
	"github.com/Alia5/kbjoypad/wire"
)

const pollDelayNS = 4_000_000

type stick struct {
	js      *sdl.Joystick
	index   int
	name    string
	axes    []int16
	buttons []bool
}

// Reader polls SDL on a dedicated OS thread and caches the readings.
type Reader struct {
	logger *slog.Logger

	mu      sync.Mutex
	live    map[int]*stick
	latched map[int]joypad.JoypadSample

	cancel context.CancelFunc
	done   chan struct{}
}

var _ source.Joypads = (*Reader)(nil)

// Open initialises the SDL joystick subsystem and starts polling.
func Open(logger *slog.Logger) (*Reader, error) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Reader{
		logger:  logger,
		live:    map[int]*stick{},
		latched: map[int]joypad.JoypadSample{},
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	ready := make(chan error, 1)
	go r.run(ctx, ready)
	if err := <-ready; err != nil {
		cancel()
		return nil, err
	}
	return r, nil
}

func (r *Reader) run(ctx context.Context, ready chan<- error) {
	defer close(r.done)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := initSDL(); err != nil {
		ready <- err
		return
	}
	defer sdl.Quit()
	r.logger.Info("SDL joystick subsystem initialized")

	ids := newSlots()
	open := map[sdl.JoystickID]*stick{}
	for _, id := range sdl.GetJoysticks() {
		r.openStick(id, ids, open)
	}
	ready <- nil

	for {
		select {
		case <-ctx.Done():
			for id, st := range open {
				sdl.CloseJoystick(st.js)
				delete(open, id)
			}
			return
		default:
		}

		var ev sdl.Event
		for sdl.PollEvent(&ev) {
			switch ev.Type() {
			case sdl.EventJoystickAdded:
				r.openStick(ev.JDevice().Which, ids, open)
			case sdl.EventJoystickRemoved:
				r.closeStick(ev.JDevice().Which, ids, open)
			}
		}
		r.sample(open)
		sdl.DelayNS(pollDelayNS)
	}
}

// initSDL turns a failed library load into an error instead of a panic.
func initSDL() (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("load SDL3: %v", p)
		}
	}()
	if !sdl.Init(sdl.InitJoystick) {
		return errors.New("SDL init failed: " + sdl.GetError())
	}
	return nil
}

func (r *Reader) openStick(id sdl.JoystickID, ids *slots, open map[sdl.JoystickID]*stick) {
	if _, ok := open[id]; ok {
		return
	}
	js := sdl.OpenJoystick(id)
	if js == nil {
		r.logger.Warn("Failed to open joystick", "id", id, "error", sdl.GetError())
		return
	}
	st := &stick{
		js:      js,
		index:   ids.acquire(uint32(id)),
		name:    sdl.GetJoystickName(js),
		axes:    make([]int16, sdl.GetNumJoystickAxes(js)),
		buttons: make([]bool, sdl.GetNumJoystickButtons(js)),
	}
	open[id] = st
	r.mu.Lock()
	r.live[st.index] = &stick{index: st.index, name: st.name, axes: st.axes, buttons: st.buttons}
	r.mu.Unlock()
	r.logger.Info("Joystick connected", "index", st.index, "name", st.name, "axes", len(st.axes), "buttons", len(st.buttons))
}

func (r *Reader) closeStick(id sdl.JoystickID, ids *slots, open map[sdl.JoystickID]*stick) {
	st, ok := open[id]
	if !ok {
		return
	}
	sdl.CloseJoystick(st.js)
	delete(open, id)
	ids.release(uint32(id))
	r.mu.Lock()
	delete(r.live, st.index)
	r.mu.Unlock()
	r.logger.Info("Joystick disconnected", "index", st.index, "name", st.name)
}

func (r *Reader) sample(open map[sdl.JoystickID]*stick) {
	for _, st := range open {
		axes := make([]int16, len(st.axes))
		for i := range axes {
			axes[i] = sdl.GetJoystickAxis(st.js, int32(i))
		}
		buttons := make([]bool, len(st.buttons))
		for i := range buttons {
			buttons[i] = sdl.GetJoystickButton(st.js, int32(i))
		}
		r.mu.Lock()
		if l, ok := r.live[st.index]; ok {
			l.axes, l.buttons = axes, buttons
		}
		r.mu.Unlock()
	}
}

// Poll latches the cached readings for Sample.
func (r *Reader) Poll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	latched := make(map[int]joypad.JoypadSample, len(r.live))
	for idx, st := range r.live {
		s := joypad.JoypadSample{
			Axes:    make([]float64, len(st.axes)),
			Buttons: append([]bool(nil), st.buttons...),
		}
		for i, v := range st.axes {
			s.Axes[i] = wire.DecodeAxis(v)
		}
		latched[idx] = s
	}
	r.latched = latched
}

// Enumerate lists the connected joysticks.
func (r *Reader) Enumerate() []joypad.DeviceInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]joypad.DeviceInfo, 0, len(r.live))
	for idx, st := range r.live {
		out = append(out, joypad.DeviceInfo{Index: idx, Name: st.name, Axes: len(st.axes), Buttons: len(st.buttons)})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out
}

// Sample returns the reading latched by the last Poll.
func (r *Reader) Sample(index int) (joypad.JoypadSample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.latched[index]
	return s, ok
}

// Close stops the SDL thread and waits for it.
func (r *Reader) Close() error {
	r.cancel()
	<-r.done
	return nil
}

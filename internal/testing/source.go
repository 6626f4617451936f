package testing

import (
	"sort"
	"sync"
	"time"

	"github.com/Alia5/kbjoypad/internal/source"
	"github.com/Alia5/kbjoypad/joypad"
	"github.com/Alia5/kbjoypad/joypad/keys"
)

type fakeJoypad struct {
	info    joypad.DeviceInfo
	sample  joypad.JoypadSample
	present bool
}

// FakeSource is a scriptable joypad.InputSource. Key changes become visible
// at the next Poll, like a real keyboard reader.
type FakeSource struct {
	keys source.KeyTracker

	mu       sync.Mutex
	joypads  map[int]*fakeJoypad
	polls    int
	delay    time.Duration
	closeReq bool
}

var _ joypad.InputSource = (*FakeSource)(nil)

// NewFakeSource returns a source with no keys held and no joypads.
func NewFakeSource() *FakeSource {
	return &FakeSource{joypads: map[int]*fakeJoypad{}}
}

// Press holds ks.
func (f *FakeSource) Press(ks ...keys.Key) {
	for _, k := range ks {
		f.keys.Set(k, true)
	}
}

// Release lets go of ks.
func (f *FakeSource) Release(ks ...keys.Key) {
	for _, k := range ks {
		f.keys.Set(k, false)
	}
}

// AddJoypad plugs in a joypad with the given channel counts.
func (f *FakeSource) AddJoypad(index int, name string, axes, buttons int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joypads[index] = &fakeJoypad{
		info:    joypad.DeviceInfo{Index: index, Name: name, Axes: axes, Buttons: buttons},
		sample:  joypad.JoypadSample{Axes: make([]float64, axes), Buttons: make([]bool, buttons)},
		present: true,
	}
}

// SetAxes replaces the raw axes of joypad index. Passing fewer values than
// the joypad has channels simulates a device reporting fewer channels.
func (f *FakeSource) SetAxes(index int, values ...float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.joypads[index]; ok {
		j.sample.Axes = append([]float64(nil), values...)
	}
}

// SetButton sets one raw button of joypad index.
func (f *FakeSource) SetButton(index, button int, down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.joypads[index]; ok && button < len(j.sample.Buttons) {
		j.sample.Buttons[button] = down
	}
}

// SetPresent plugs or unplugs joypad index without forgetting it.
func (f *FakeSource) SetPresent(index int, present bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.joypads[index]; ok {
		j.present = present
	}
}

// RequestClose makes ShouldClose report true.
func (f *FakeSource) RequestClose() {
	f.mu.Lock()
	f.closeReq = true
	f.mu.Unlock()
}

// Polls returns how many times Poll ran.
func (f *FakeSource) Polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

// SetPollDelay makes every following Poll block for d.
func (f *FakeSource) SetPollDelay(d time.Duration) {
	f.mu.Lock()
	f.delay = d
	f.mu.Unlock()
}

func (f *FakeSource) Poll() {
	f.keys.Latch()
	f.mu.Lock()
	f.polls++
	d := f.delay
	f.mu.Unlock()
	if d > 0 {
		time.Sleep(d)
	}
}

func (f *FakeSource) ShouldClose() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeReq
}

func (f *FakeSource) KeyDown(k keys.Key) bool     { return f.keys.KeyDown(k) }
func (f *FakeSource) KeyPressed(k keys.Key) bool  { return f.keys.KeyPressed(k) }
func (f *FakeSource) KeyReleased(k keys.Key) bool { return f.keys.KeyReleased(k) }

func (f *FakeSource) Enumerate() []joypad.DeviceInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []joypad.DeviceInfo
	for _, j := range f.joypads {
		if j.present {
			out = append(out, j.info)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out
}

func (f *FakeSource) Sample(index int) (joypad.JoypadSample, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.joypads[index]
	if !ok || !j.present {
		return joypad.JoypadSample{}, false
	}
	return joypad.JoypadSample{
		Axes:    append([]float64(nil), j.sample.Axes...),
		Buttons: append([]bool(nil), j.sample.Buttons...),
	}, true
}

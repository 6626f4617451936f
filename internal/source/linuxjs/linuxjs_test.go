package linuxjs_test

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Alia5/kbjoypad/internal/log"
	"github.com/Alia5/kbjoypad/internal/source/linuxjs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawEvent(typ, num uint8, value int16) []byte {
	b := make([]byte, linuxjs.EventSize)
	binary.LittleEndian.PutUint32(b[0:4], 1234)
	binary.LittleEndian.PutUint16(b[4:6], uint16(value))
	b[6] = typ
	b[7] = num
	return b
}

func TestParseEvent(t *testing.T) {
	ev, err := linuxjs.ParseEvent(rawEvent(linuxjs.TypeAxis|linuxjs.TypeInit, 3, -32767))
	require.NoError(t, err)
	assert.Equal(t, linuxjs.Event{Time: 1234, Value: -32767, Type: 0x82, Number: 3}, ev)

	_, err = linuxjs.ParseEvent([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestState_Apply(t *testing.T) {
	tests := []struct {
		name        string
		events      []linuxjs.Event
		wantAxes    []int16
		wantButtons []bool
	}{
		{
			name:     "axis",
			events:   []linuxjs.Event{{Type: linuxjs.TypeAxis, Number: 1, Value: 100}},
			wantAxes: []int16{0, 100},
		},
		{
			name:        "init button",
			events:      []linuxjs.Event{{Type: linuxjs.TypeButton | linuxjs.TypeInit, Number: 0, Value: 1}},
			wantButtons: []bool{true},
		},
		{
			name: "button release",
			events: []linuxjs.Event{
				{Type: linuxjs.TypeButton, Number: 2, Value: 1},
				{Type: linuxjs.TypeButton, Number: 2, Value: 0},
			},
			wantButtons: []bool{false, false, false},
		},
		{
			name:   "unknown type ignored",
			events: []linuxjs.Event{{Type: 0x04, Number: 9, Value: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s linuxjs.State
			for _, ev := range tt.events {
				s.Apply(ev)
			}
			assert.Equal(t, tt.wantAxes, s.Axes)
			assert.Equal(t, tt.wantButtons, s.Buttons)
		})
	}
}

type pipes struct {
	mu sync.Mutex
	w  map[string]*io.PipeWriter
}

func (p *pipes) open(path string) (io.ReadCloser, string, int, int, error) {
	r, w := io.Pipe()
	p.mu.Lock()
	p.w[filepath.Base(path)] = w
	p.mu.Unlock()
	return r, "Pad " + filepath.Base(path), 2, 3, nil
}

func (p *pipes) writer(name string) *io.PipeWriter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.w[name]
}

func TestReader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "js0"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "event0"), nil, 0o600))

	p := &pipes{w: map[string]*io.PipeWriter{}}
	r, err := linuxjs.NewReaderWithOpener(dir, p.open, log.Discard())
	require.NoError(t, err)
	defer r.Close()

	devs := r.Enumerate()
	require.Len(t, devs, 1)
	assert.Equal(t, 0, devs[0].Index)
	assert.Equal(t, "Pad js0", devs[0].Name)
	assert.Equal(t, 2, devs[0].Axes)
	assert.Equal(t, 3, devs[0].Buttons)

	w := p.writer("js0")
	_, err = w.Write(rawEvent(linuxjs.TypeAxis, 1, 32767))
	require.NoError(t, err)
	_, err = w.Write(rawEvent(linuxjs.TypeButton, 2, 1))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		r.Poll()
		s, ok := r.Sample(0)
		return ok && s.Axes[1] == 1 && s.Buttons[2]
	}, time.Second, 5*time.Millisecond)

	_, ok := r.Sample(1)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "js1"), nil, 0o600))
	require.Eventually(t, func() bool { return len(r.Enumerate()) == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(dir, "js1")))
	require.Eventually(t, func() bool { return len(r.Enumerate()) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.CloseWithError(io.ErrUnexpectedEOF))
	require.Eventually(t, func() bool { return len(r.Enumerate()) == 0 }, time.Second, 5*time.Millisecond)
	r.Poll()
	_, ok = r.Sample(0)
	assert.False(t, ok, "disconnected joystick has no sample")
}

package terminal_test

import (
	"io"
	"testing"
	"time"

	"github.com/Alia5/kbjoypad/internal/log"
	"github.com/Alia5/kbjoypad/internal/source/terminal"
	"github.com/Alia5/kbjoypad/joypad/keys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     []keys.Key
		wantQuit bool
	}{
		{name: "letters", in: "wd", want: []keys.Key{keys.W, keys.D}},
		{name: "shifted letter", in: "A", want: []keys.Key{keys.LeftShift, keys.A}},
		{name: "digits and space", in: "1 0", want: []keys.Key{keys.Num1, keys.Space, keys.Num0}},
		{name: "enter", in: "\r", want: []keys.Key{keys.Enter}},
		{name: "ctrl letter", in: "\x01", want: []keys.Key{keys.LeftCtrl, keys.A}},
		{name: "ctrl c quits", in: "w\x03", want: []keys.Key{keys.W}, wantQuit: true},
		{name: "ctrl d quits", in: "\x04", wantQuit: true},
		{name: "arrows", in: "\x1b[A\x1b[D", want: []keys.Key{keys.Up, keys.Left}},
		{name: "ss3 arrow", in: "\x1bOC", want: []keys.Key{keys.Right}},
		{name: "delete", in: "\x1b[3~", want: []keys.Key{keys.Delete}},
		{name: "function key", in: "\x1bOP", want: []keys.Key{keys.F1}},
		{name: "lone escape", in: "\x1b", want: []keys.Key{keys.Escape}},
		{name: "alt letter", in: "\x1bx", want: []keys.Key{keys.LeftAlt, keys.X}},
		{name: "unknown csi skipped", in: "\x1b[99Zq", want: []keys.Key{keys.Q}},
		{name: "backspace", in: "\x7f", want: []keys.Key{keys.Backspace}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, quit := terminal.Decode([]byte(tt.in))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantQuit, quit)
		})
	}
}

func TestKeyboard_HoldWindow(t *testing.T) {
	r, w := io.Pipe()
	now := time.Unix(100, 0)
	k := terminal.New(r, 100*time.Millisecond, log.Discard()).WithClock(func() time.Time { return now })

	_, err := w.Write([]byte("w"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		k.Poll()
		return k.KeyDown(keys.W)
	}, time.Second, time.Millisecond)

	now = now.Add(50 * time.Millisecond)
	k.Poll()
	assert.True(t, k.KeyDown(keys.W), "inside the hold window")

	now = now.Add(60 * time.Millisecond)
	k.Poll()
	assert.False(t, k.KeyDown(keys.W))
	assert.True(t, k.KeyReleased(keys.W))
	assert.False(t, k.ShouldClose())

	_, err = w.Write([]byte{0x03})
	require.NoError(t, err)
	require.Eventually(t, k.ShouldClose, time.Second, time.Millisecond)

	require.NoError(t, w.Close())
	<-k.Done()
	assert.NoError(t, k.Close())
}

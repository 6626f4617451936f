package remote_test

import (
	"testing"

	"github.com/Alia5/kbjoypad/internal/log"
	"github.com/Alia5/kbjoypad/internal/source/remote"
	"github.com/Alia5/kbjoypad/joypad/keys"
	"github.com/Alia5/kbjoypad/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_KeysAcrossFeeds(t *testing.T) {
	s := remote.New(log.Discard())
	a, b := s.Attach(), s.Attach()
	assert.Equal(t, 2, s.Feeds())

	a.Push(wire.InputState{Keys: []uint8{uint8(keys.W)}})
	b.Push(wire.InputState{Keys: []uint8{uint8(keys.Space)}})
	s.Poll()
	assert.True(t, s.KeyDown(keys.W))
	assert.True(t, s.KeyPressed(keys.Space))

	a.Detach()
	s.Poll()
	assert.False(t, s.KeyDown(keys.W))
	assert.True(t, s.KeyReleased(keys.W))
	assert.True(t, s.KeyDown(keys.Space))
	assert.Equal(t, 1, s.Feeds())

	a.Push(wire.InputState{Keys: []uint8{uint8(keys.Q)}})
	s.Poll()
	assert.False(t, s.KeyDown(keys.Q), "detached feed is ignored")
	assert.False(t, s.ShouldClose())
}

func TestSource_Joypads(t *testing.T) {
	s := remote.New(log.Discard())
	a, b := s.Attach(), s.Attach()
	a.Push(wire.InputState{Joypads: []wire.Joypad{{Index: 1, Name: "first", Axes: []float64{0.5}, Buttons: []bool{true}}}})
	b.Push(wire.InputState{Joypads: []wire.Joypad{
		{Index: 1, Name: "second"},
		{Index: 0, Name: "other", Axes: []float64{-1, 1}},
	}})

	_, ok := s.Sample(1)
	assert.False(t, ok, "samples appear after poll")
	s.Poll()

	devs := s.Enumerate()
	require.Len(t, devs, 2)
	assert.Equal(t, 0, devs[0].Index)
	assert.Equal(t, "other", devs[0].Name)
	assert.Equal(t, 2, devs[0].Axes)
	assert.Equal(t, "first", devs[1].Name)
	assert.Equal(t, 1, devs[1].Buttons)

	smp, ok := s.Sample(1)
	require.True(t, ok)
	assert.Equal(t, []float64{0.5}, smp.Axes)
	assert.Equal(t, []bool{true}, smp.Buttons)

	b.Detach()
	assert.Len(t, s.Enumerate(), 1)
	s.Poll()
	_, ok = s.Sample(0)
	assert.False(t, ok)
}

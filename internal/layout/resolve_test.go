package layout_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/Alia5/kbjoypad/internal/layout"
	"github.com/Alia5/kbjoypad/internal/log"
	"github.com/Alia5/kbjoypad/joypad"
	"github.com/Alia5/kbjoypad/joypad/keys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() (layout.Config, layout.EngineConfig) {
	return layout.Config{
			Axes:                []string{"ad", "ws", "left_right", "up_down"},
			WASDLabel:           "WASD",
			ArrowsLabel:         "Arrows",
			StickKind:           "toggle",
			ADJoypadAxis:        0,
			WSJoypadAxis:        1,
			LeftRightJoypadAxis: 2,
			UpDownJoypadAxis:    3,
			ButtonsPerRow:       3,
		}, layout.EngineConfig{
			Period:        33 * time.Millisecond,
			Deadzone:      0.1,
			JoypadIndices: []int{0},
		}
}

func TestResolve_Defaults(t *testing.T) {
	lc, ec := defaults()
	m, err := layout.Resolve(lc, ec, log.Discard())
	require.NoError(t, err)

	assert.Equal(t, 4, m.AxisCount)
	assert.Equal(t, 0, m.ButtonCount)
	assert.Nil(t, m.Hold, "no hold button without buttons")
	require.Len(t, m.Sticks, 2)

	wasd := m.Sticks[0]
	assert.Equal(t, "WASD", wasd.Label)
	assert.Equal(t, []int{0, 1}, wasd.Indices)
	require.Len(t, wasd.Buttons, 4)

	w := wasd.Buttons[0]
	assert.Equal(t, "W", w.Alias)
	assert.Equal(t, joypad.Toggle, w.Kind)
	assert.Equal(t, []joypad.EdgeSource{joypad.KeySource(keys.W)}, w.Sources)
	assert.Equal(t, []joypad.Contribution{{Sign: -1, Index: 1}}, w.Outputs)
	assert.Equal(t, []joypad.Contribution{{Sign: -1, Index: 1}}, w.JoypadAxes)

	d := wasd.Buttons[3]
	assert.Equal(t, []joypad.Contribution{{Sign: 1, Index: 0}}, d.Outputs)
	assert.Equal(t, []joypad.Contribution{{Sign: 1, Index: 0}}, d.JoypadAxes)

	arrows := m.Sticks[1]
	assert.Equal(t, []int{2, 3}, arrows.Indices)
	assert.Equal(t, []joypad.EdgeSource{joypad.KeySource(keys.Up)}, arrows.Buttons[0].Sources)

	if runtime.GOOS != "darwin" {
		assert.Equal(t, joypad.Driven, m.Settings.Mode)
	}
}

func TestResolve_Axes(t *testing.T) {
	tests := []struct {
		name        string
		axes        []string
		wantSticks  int
		wantIndices [][]int
		wantSign    int
	}{
		{name: "inverted ws", axes: []string{"ad", "-ws"}, wantSticks: 1, wantIndices: [][]int{{0, 1}}, wantSign: 1},
		{name: "placeholders keep indices", axes: []string{"none", "", "ws"}, wantSticks: 1, wantIndices: [][]int{{2}}, wantSign: -1},
		{name: "only arrows", axes: []string{"+up_down", "left_right"}, wantSticks: 1, wantIndices: [][]int{{1, 0}}, wantSign: -1},
		{name: "no axes", axes: nil, wantSticks: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc, ec := defaults()
			lc.Axes = tt.axes
			m, err := layout.Resolve(lc, ec, log.Discard())
			require.NoError(t, err)
			assert.Equal(t, len(tt.axes), m.AxisCount)
			require.Len(t, m.Sticks, tt.wantSticks)
			for i, want := range tt.wantIndices {
				assert.Equal(t, want, m.Sticks[i].Indices)
			}
			if tt.wantSticks > 0 {
				up := m.Sticks[0].Buttons[0]
				assert.Equal(t, tt.wantSign, up.Outputs[0].Sign, "up direction sign")
			}
		})
	}
}

func TestResolve_StickWithOneAxisSkipsOtherDirections(t *testing.T) {
	lc, ec := defaults()
	lc.Axes = []string{"ad"}
	m, err := layout.Resolve(lc, ec, log.Discard())
	require.NoError(t, err)
	require.Len(t, m.Sticks, 1)
	var aliases []string
	for _, b := range m.Sticks[0].Buttons {
		aliases = append(aliases, b.Alias)
	}
	assert.Equal(t, []string{"A", "D"}, aliases)
}

func TestResolve_Buttons(t *testing.T) {
	lc, ec := defaults()
	lc.Buttons = []string{"space-j0:Jump", "1", "none", "q-?:Quit", "SPACE-J0:Jump", "??", "12", "?:Menu"}
	m, err := layout.Resolve(lc, ec, log.Discard())
	require.NoError(t, err)

	assert.Equal(t, 8, m.ButtonCount)
	require.Len(t, m.Buttons, 6)

	jump := m.Buttons[0]
	assert.Equal(t, "Jump (SPACE, J0)", jump.Alias)
	assert.Equal(t, joypad.Regular, jump.Kind)
	assert.Equal(t, []joypad.EdgeSource{joypad.KeySource(keys.Space), joypad.JoypadButtonSource(0)}, jump.Sources)
	assert.Equal(t, []joypad.Contribution{{Sign: 1, Index: 0}, {Sign: 1, Index: 4}}, jump.Outputs, "same display name merges")

	one := m.Buttons[1]
	assert.Equal(t, "1", one.Alias)
	assert.Equal(t, []joypad.EdgeSource{joypad.KeySource(keys.Num1), joypad.KeySource(keys.Kp1)}, one.Sources)

	quit := m.Buttons[2]
	assert.Equal(t, "Quit (Q)", quit.Alias)
	assert.Equal(t, []joypad.Contribution{{Sign: 1, Index: 3}}, quit.Outputs)

	inert := m.Buttons[3]
	assert.Equal(t, "??", inert.Alias)
	assert.Empty(t, inert.Sources, "kept but never activates")
	assert.Equal(t, []joypad.Contribution{{Sign: 1, Index: 5}}, inert.Outputs)

	twelve := m.Buttons[4]
	assert.Equal(t, "12", twelve.Alias)
	assert.Equal(t, []joypad.EdgeSource{joypad.KeySource(keys.Num1), joypad.KeySource(keys.Kp1)}, twelve.Sources,
		"only the first digit binds")

	menu := m.Buttons[5]
	assert.Equal(t, "Menu", menu.Alias)
	assert.Empty(t, menu.Sources)
	assert.Equal(t, []joypad.Contribution{{Sign: 1, Index: 7}}, menu.Outputs)

	require.NotNil(t, m.Hold)
	assert.Equal(t, layout.HoldAlias, m.Hold.Alias)
	assert.Equal(t, joypad.Toggle, m.Hold.Kind)
	assert.Equal(t, []joypad.EdgeSource{joypad.KeySource(keys.LeftCtrl), joypad.KeySource(keys.RightCtrl)}, m.Hold.Sources)
}

func TestResolve_StickKindRegular(t *testing.T) {
	lc, ec := defaults()
	lc.StickKind = "regular"
	m, err := layout.Resolve(lc, ec, log.Discard())
	require.NoError(t, err)
	for _, s := range m.Sticks {
		for _, b := range s.Buttons {
			assert.Equal(t, joypad.Regular, b.Kind, b.Alias)
		}
	}
}

func TestResolve_DisabledJoypadAxis(t *testing.T) {
	lc, ec := defaults()
	lc.WSJoypadAxis = -1
	m, err := layout.Resolve(lc, ec, log.Discard())
	require.NoError(t, err)
	assert.Empty(t, m.Sticks[0].Buttons[0].JoypadAxes)
	assert.NotEmpty(t, m.Sticks[0].Buttons[2].JoypadAxes)
}

func TestResolve_JoypadIndices(t *testing.T) {
	lc, ec := defaults()
	ec.JoypadIndices = []int{-1}
	m, err := layout.Resolve(lc, ec, log.Discard())
	require.NoError(t, err)
	assert.Empty(t, m.Settings.JoypadIndices)

	ec.JoypadIndices = []int{3, 1}
	m, err = layout.Resolve(lc, ec, log.Discard())
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, m.Settings.JoypadIndices)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(lc *layout.Config, ec *layout.EngineConfig)
		wantKey string
	}{
		{
			name:    "unknown axis",
			mutate:  func(lc *layout.Config, _ *layout.EngineConfig) { lc.Axes = []string{"ad", "tilt"} },
			wantKey: "axes[1]",
		},
		{
			name:    "period below minimum",
			mutate:  func(_ *layout.Config, ec *layout.EngineConfig) { ec.Period = time.Microsecond },
			wantKey: "period",
		},
		{
			name:    "negative deadzone",
			mutate:  func(_ *layout.Config, ec *layout.EngineConfig) { ec.Deadzone = -0.5 },
			wantKey: "deadzone",
		},
		{
			name:    "joypad index out of range",
			mutate:  func(_ *layout.Config, ec *layout.EngineConfig) { ec.JoypadIndices = []int{0, 16} },
			wantKey: "joypad-indices",
		},
		{
			name:    "joypad axis too large",
			mutate:  func(lc *layout.Config, _ *layout.EngineConfig) { lc.ADJoypadAxis = 101 },
			wantKey: "ad-joypad-axis",
		},
		{
			name:    "joypad axis below disabled",
			mutate:  func(lc *layout.Config, _ *layout.EngineConfig) { lc.UpDownJoypadAxis = -2 },
			wantKey: "up_down-joypad-axis",
		},
		{
			name:    "buttons per row zero",
			mutate:  func(lc *layout.Config, _ *layout.EngineConfig) { lc.ButtonsPerRow = 0 },
			wantKey: "buttons-per-row",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc, ec := defaults()
			tt.mutate(&lc, &ec)
			_, err := layout.Resolve(lc, ec, log.Discard())
			var cfgErr *joypad.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantKey, cfgErr.Key)
		})
	}
}

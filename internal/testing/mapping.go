package testing

import (
	"testing"
	"time"

	"github.com/Alia5/kbjoypad/internal/layout"
	"github.com/Alia5/kbjoypad/internal/log"
	"github.com/Alia5/kbjoypad/joypad"
)

// Layout returns the default layout with buttons: output 0 is
// "Jump (SPACE, J0)" and output 1 is "1".
func Layout() (layout.Config, layout.EngineConfig) {
	return layout.Config{
			Axes:                []string{"ad", "ws", "left_right", "up_down"},
			Buttons:             []string{"space-j0:Jump", "1"},
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
			Polled:        true,
			JoypadIndices: []int{0},
		}
}

// PolledEngine resolves Layout in polled mode with a 1ms period and returns
// an engine reading src. The engine is closed when the test ends.
func PolledEngine(t *testing.T, src joypad.InputSource) *joypad.Engine {
	t.Helper()
	lc, ec := Layout()
	ec.Period = time.Millisecond
	m, err := layout.Resolve(lc, ec, log.Discard())
	if err != nil {
		t.Fatalf("resolve layout: %v", err)
	}
	e, err := joypad.New(m, src, log.Discard())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

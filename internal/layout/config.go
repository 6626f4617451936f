package layout

import "time"

// Config describes the output joypad: axes, buttons and the built-in
// directional sticks.
type Config struct {
	Axes                []string `help:"Output axes in order: ws, ad, up_down or left_right, optionally prefixed with + or -; none reserves an index" default:"ad,ws,left_right,up_down" env:"KBJOYPAD_LAYOUT_AXES"`
	Buttons             []string `help:"Output buttons as KEYS[:ALIAS]; KEYS joined by '-' from A-Z, 0-9, J<n>, SPACE, ENTER, ESCAPE, BACKSPACE, DELETE, LEFT, RIGHT, UP, DOWN, TAB; none reserves an index" env:"KBJOYPAD_LAYOUT_BUTTONS"`
	WASDLabel           string   `name:"wasd-label" help:"Label of the WASD stick" default:"WASD" env:"KBJOYPAD_LAYOUT_WASD_LABEL"`
	ArrowsLabel         string   `help:"Label of the arrow keys stick" default:"Arrows" env:"KBJOYPAD_LAYOUT_ARROWS_LABEL"`
	StickKind           string   `help:"Behavior of the stick direction keys" enum:"toggle,regular" default:"toggle" env:"KBJOYPAD_LAYOUT_STICK_KIND"`
	ADJoypadAxis        int      `name:"ad-joypad-axis" help:"Raw joypad axis feeding ad, -1 disables" default:"0" env:"KBJOYPAD_LAYOUT_AD_JOYPAD_AXIS"`
	WSJoypadAxis        int      `name:"ws-joypad-axis" help:"Raw joypad axis feeding ws, -1 disables" default:"1" env:"KBJOYPAD_LAYOUT_WS_JOYPAD_AXIS"`
	LeftRightJoypadAxis int      `help:"Raw joypad axis feeding left_right, -1 disables" default:"2" env:"KBJOYPAD_LAYOUT_LEFT_RIGHT_JOYPAD_AXIS"`
	UpDownJoypadAxis    int      `help:"Raw joypad axis feeding up_down, -1 disables" default:"3" env:"KBJOYPAD_LAYOUT_UP_DOWN_JOYPAD_AXIS"`
	ButtonsPerRow       int      `help:"Buttons per row in the dashboard" default:"3" env:"KBJOYPAD_LAYOUT_BUTTONS_PER_ROW"`
}

// EngineConfig holds the update scheduler settings.
type EngineConfig struct {
	Period        time.Duration `help:"Frame period" default:"33ms" env:"KBJOYPAD_ENGINE_PERIOD"`
	Deadzone      float64       `help:"Joypad axis deadzone in [0,1]" default:"0.1" env:"KBJOYPAD_ENGINE_DEADZONE"`
	Polled        bool          `help:"Recompute frames inside queries instead of a background loop" env:"KBJOYPAD_ENGINE_POLLED"`
	AllowClose    bool          `help:"Shut down when the keyboard source asks to close (Ctrl-C in a raw terminal)" env:"KBJOYPAD_ENGINE_ALLOW_CLOSE"`
	JoypadIndices []int         `help:"Physical joypad indices to merge, 0-15; a single negative value disables joypads" default:"0" env:"KBJOYPAD_ENGINE_JOYPAD_INDICES"`
}

const (
	minPeriod        = time.Millisecond
	maxJoypadAxis    = 100
	maxButtonsPerRow = 100
)

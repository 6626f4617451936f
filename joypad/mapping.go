package joypad

import (
	"fmt"
	"strings"
	"time"

	"github.com/Alia5/kbjoypad/joypad/keys"
)

// MaxJoypads is the number of physical joypad indices a source may expose
// (0 through MaxJoypads-1).
const MaxJoypads = 16

// ButtonKind selects how a logical button reacts to its sources.
type ButtonKind uint8

const (
	// Regular buttons are momentary unless the hold modifier is active.
	Regular ButtonKind = iota
	// Toggle buttons flip on every down edge.
	Toggle
)

func (k ButtonKind) String() string {
	if k == Toggle {
		return "toggle"
	}
	return "regular"
}

// SourceKind tells which physical input an EdgeSource refers to.
type SourceKind uint8

const (
	SourceKey SourceKind = iota
	SourceJoypadButton
)

// EdgeSource is one physical input that can press a logical button.
type EdgeSource struct {
	Kind  SourceKind
	Key   keys.Key
	Index int // flat joypad button index for SourceJoypadButton
}

// KeySource binds a keyboard key.
func KeySource(k keys.Key) EdgeSource { return EdgeSource{Kind: SourceKey, Key: k} }

// JoypadButtonSource binds a joypad button by its flat multiplexer index.
func JoypadButtonSource(index int) EdgeSource {
	return EdgeSource{Kind: SourceJoypadButton, Index: index}
}

func (s EdgeSource) String() string {
	if s.Kind == SourceJoypadButton {
		return fmt.Sprintf("J%d", s.Index)
	}
	return s.Key.String()
}

// Contribution adds Sign times a value to output Index. The index space is
// the axis space for stick buttons and the button space for output buttons;
// for joypad axis inputs it is the flat raw joypad axis space.
type Contribution struct {
	Sign  int
	Index int
}

// ButtonSpec is the static description of a logical button.
type ButtonSpec struct {
	Alias   string
	Kind    ButtonKind
	Sources []EdgeSource
	Outputs []Contribution
	// JoypadAxes are raw joypad axis inputs shaped by the deadzone and added
	// to every output of the button.
	JoypadAxes []Contribution
}

// SemanticAxis names the meaning of an output axis.
type SemanticAxis uint8

const (
	AxisWS SemanticAxis = iota
	AxisAD
	AxisUpDown
	AxisLeftRight
)

var semanticAxisNames = [...]string{"ws", "ad", "up_down", "left_right"}

func (a SemanticAxis) String() string {
	if int(a) < len(semanticAxisNames) {
		return semanticAxisNames[a]
	}
	return fmt.Sprintf("axis(%d)", a)
}

// ParseSemanticAxis resolves ws, ad, up_down or left_right.
func ParseSemanticAxis(s string) (SemanticAxis, bool) {
	for i, n := range semanticAxisNames {
		if strings.EqualFold(s, n) {
			return SemanticAxis(i), true
		}
	}
	return 0, false
}

// AxisBinding records which semantic axis feeds output axis Index and with
// which sign. JoypadAxis is the raw joypad axis bound to that semantic axis,
// or -1.
type AxisBinding struct {
	Axis       SemanticAxis
	Index      int
	Sign       int
	JoypadAxis int
}

// StickGroup is an ordered subset of output axes reported together, plus the
// directional buttons that drive it.
type StickGroup struct {
	Label   string
	Indices []int
	Buttons []ButtonSpec
}

// Mode selects who recomputes frames.
type Mode uint8

const (
	// Driven runs a background goroutine that recomputes every period.
	Driven Mode = iota
	// Polled recomputes inside a value query when the frame is stale.
	Polled
)

func (m Mode) String() string {
	if m == Polled {
		return "polled"
	}
	return "driven"
}

// Settings are the engine-wide knobs.
type Settings struct {
	Period        time.Duration
	Deadzone      float64
	Mode          Mode
	AllowClose    bool
	JoypadIndices []int
}

// DefaultSettings returns the stock settings: 33ms period, 0.1 deadzone,
// driven mode and joypad 0.
func DefaultSettings() Settings {
	return Settings{
		Period:        33 * time.Millisecond,
		Deadzone:      0.1,
		Mode:          Driven,
		JoypadIndices: []int{0},
	}
}

// Mapping is the resolved configuration consumed by the engine.
type Mapping struct {
	Settings    Settings
	AxisCount   int
	ButtonCount int
	Axes        []AxisBinding
	Sticks      []StickGroup
	Buttons     []ButtonSpec
	// Hold is the hold modifier. Its outputs are ignored.
	Hold *ButtonSpec
}

// Validate checks every index, sign and setting and returns a *ConfigError
// describing the first problem found.
func (m *Mapping) Validate() error {
	if err := m.Settings.Validate(); err != nil {
		return err
	}
	if m.AxisCount < 0 {
		return configErrorf("axes", "negative axis count %d", m.AxisCount)
	}
	if m.ButtonCount < 0 {
		return configErrorf("buttons", "negative button count %d", m.ButtonCount)
	}
	for _, ab := range m.Axes {
		if ab.Index < 0 || ab.Index >= m.AxisCount {
			return configErrorf("axes", "%s bound to axis %d outside [0,%d)", ab.Axis, ab.Index, m.AxisCount)
		}
	}
	for i, s := range m.Sticks {
		key := fmt.Sprintf("sticks[%d]", i)
		if len(s.Indices) == 0 {
			return configErrorf(key, "stick %q has no axes", s.Label)
		}
		for _, idx := range s.Indices {
			if idx < 0 || idx >= m.AxisCount {
				return configErrorf(key, "stick %q axis %d outside [0,%d)", s.Label, idx, m.AxisCount)
			}
		}
		for _, b := range s.Buttons {
			if err := b.validate(key, m.AxisCount); err != nil {
				return err
			}
		}
	}
	for i, b := range m.Buttons {
		if err := b.validate(fmt.Sprintf("buttons[%d]", i), m.ButtonCount); err != nil {
			return err
		}
	}
	if m.Hold != nil {
		if len(m.Hold.Sources) == 0 {
			return configErrorf("hold", "hold modifier has no sources")
		}
		if err := m.Hold.validateSources("hold"); err != nil {
			return err
		}
	}
	return nil
}

func (b ButtonSpec) validate(key string, outputs int) error {
	for _, c := range b.Outputs {
		if c.Sign != 1 && c.Sign != -1 {
			return configErrorf(key, "button %q has sign %d, want +1 or -1", b.Alias, c.Sign)
		}
		if c.Index < 0 || c.Index >= outputs {
			return configErrorf(key, "button %q output %d outside [0,%d)", b.Alias, c.Index, outputs)
		}
	}
	for _, c := range b.JoypadAxes {
		if c.Sign != 1 && c.Sign != -1 {
			return configErrorf(key, "button %q joypad axis sign %d, want +1 or -1", b.Alias, c.Sign)
		}
		if c.Index < 0 {
			return configErrorf(key, "button %q joypad axis %d is negative", b.Alias, c.Index)
		}
	}
	return b.validateSources(key)
}

func (b ButtonSpec) validateSources(key string) error {
	for _, s := range b.Sources {
		if s.Kind == SourceJoypadButton && s.Index < 0 {
			return configErrorf(key, "button %q joypad button %d is negative", b.Alias, s.Index)
		}
	}
	return nil
}

// Validate checks the engine settings.
func (s Settings) Validate() error {
	if s.Period <= 0 {
		return configErrorf("period", "must be positive, got %s", s.Period)
	}
	if s.Deadzone < 0 || s.Deadzone > 1 {
		return configErrorf("deadzone", "%v outside [0,1]", s.Deadzone)
	}
	if s.Mode == Polled && s.AllowClose {
		return configErrorf("allow-close", "cannot be combined with polled mode")
	}
	seen := map[int]bool{}
	for _, idx := range s.JoypadIndices {
		if idx < 0 || idx >= MaxJoypads {
			return configErrorf("joypad-indices", "%d outside [0,%d]", idx, MaxJoypads-1)
		}
		if seen[idx] {
			return configErrorf("joypad-indices", "%d listed twice", idx)
		}
		seen[idx] = true
	}
	return nil
}

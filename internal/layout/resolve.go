// Package layout turns the textual axis and button lists of the
// configuration into a validated joypad.Mapping.
package layout

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"

	"github.com/Alia5/kbjoypad/joypad"
	"github.com/Alia5/kbjoypad/joypad/keys"
)

// HoldAlias is the display name of the hold modifier button.
const HoldAlias = "Hold (Ctrl)"

type axisRef struct {
	index int
	sign  int
}

// Resolve builds the mapping. Unknown key tokens are logged and skipped;
// everything else that is out of range fails with a *joypad.ConfigError.
func Resolve(lc Config, ec EngineConfig, logger *slog.Logger) (*joypad.Mapping, error) {
	if logger == nil {
		logger = slog.Default()
	}
	settings, err := resolveSettings(ec, logger)
	if err != nil {
		return nil, err
	}
	if lc.ButtonsPerRow < 1 || lc.ButtonsPerRow > maxButtonsPerRow {
		return nil, &joypad.ConfigError{Key: "buttons-per-row", Reason: fmt.Sprintf("%d outside [1,%d]", lc.ButtonsPerRow, maxButtonsPerRow)}
	}

	m := &joypad.Mapping{Settings: settings}

	bound, err := resolveAxes(lc.Axes, m)
	if err != nil {
		return nil, err
	}
	joyAxes := map[joypad.SemanticAxis]int{
		joypad.AxisAD:        lc.ADJoypadAxis,
		joypad.AxisWS:        lc.WSJoypadAxis,
		joypad.AxisLeftRight: lc.LeftRightJoypadAxis,
		joypad.AxisUpDown:    lc.UpDownJoypadAxis,
	}
	for ax, idx := range joyAxes {
		if idx < -1 || idx > maxJoypadAxis {
			return nil, &joypad.ConfigError{Key: ax.String() + "-joypad-axis", Reason: fmt.Sprintf("%d outside [-1,%d]", idx, maxJoypadAxis)}
		}
	}
	for i := range m.Axes {
		m.Axes[i].JoypadAxis = joyAxes[m.Axes[i].Axis]
	}

	kind := joypad.Toggle
	if strings.EqualFold(lc.StickKind, "regular") {
		kind = joypad.Regular
	}
	wasd := stickDirs{
		label: lc.WASDLabel, horizontal: joypad.AxisAD, vertical: joypad.AxisWS,
		up: keys.W, down: keys.S, left: keys.A, right: keys.D,
	}
	arrows := stickDirs{
		label: lc.ArrowsLabel, horizontal: joypad.AxisLeftRight, vertical: joypad.AxisUpDown,
		up: keys.Up, down: keys.Down, left: keys.Left, right: keys.Right,
	}
	for _, sd := range []stickDirs{wasd, arrows} {
		if s, ok := sd.build(bound, joyAxes, kind); ok {
			m.Sticks = append(m.Sticks, s)
		}
	}

	if err := resolveButtons(lc.Buttons, m, logger); err != nil {
		return nil, err
	}
	if len(m.Buttons) > 0 {
		m.Hold = &joypad.ButtonSpec{
			Alias: HoldAlias,
			Kind:  joypad.Toggle,
			Sources: []joypad.EdgeSource{
				joypad.KeySource(keys.LeftCtrl),
				joypad.KeySource(keys.RightCtrl),
			},
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func resolveSettings(ec EngineConfig, logger *slog.Logger) (joypad.Settings, error) {
	s := joypad.Settings{
		Period:     ec.Period,
		Deadzone:   ec.Deadzone,
		AllowClose: ec.AllowClose,
	}
	if ec.Period < minPeriod {
		return s, &joypad.ConfigError{Key: "period", Reason: fmt.Sprintf("%s below %s", ec.Period, minPeriod)}
	}
	if ec.Polled {
		s.Mode = joypad.Polled
	}
	if runtime.GOOS == "darwin" && s.Mode != joypad.Polled {
		logger.Info("background update loop is not supported on macOS, using polled mode")
		s.Mode = joypad.Polled
	}
	switch {
	case len(ec.JoypadIndices) == 1 && ec.JoypadIndices[0] < 0:
		s.JoypadIndices = nil
	default:
		s.JoypadIndices = append([]int(nil), ec.JoypadIndices...)
	}
	return s, s.Validate()
}

// resolveAxes fills m.Axes and m.AxisCount and returns the output indices
// bound to each semantic axis, in list order.
func resolveAxes(entries []string, m *joypad.Mapping) (map[joypad.SemanticAxis][]axisRef, error) {
	bound := map[joypad.SemanticAxis][]axisRef{}
	for i, raw := range entries {
		e := strings.TrimSpace(raw)
		if e == "" || strings.EqualFold(e, "none") {
			continue
		}
		sign := 1
		switch e[0] {
		case '-':
			sign = -1
			e = e[1:]
		case '+':
			e = e[1:]
		}
		ax, ok := joypad.ParseSemanticAxis(e)
		if !ok {
			return nil, &joypad.ConfigError{Key: fmt.Sprintf("axes[%d]", i), Reason: fmt.Sprintf("unknown axis %q", raw)}
		}
		bound[ax] = append(bound[ax], axisRef{index: i, sign: sign})
		m.Axes = append(m.Axes, joypad.AxisBinding{Axis: ax, Index: i, Sign: sign, JoypadAxis: -1})
	}
	m.AxisCount = len(entries)
	return bound, nil
}

type stickDirs struct {
	label                 string
	horizontal, vertical  joypad.SemanticAxis
	up, down, left, right keys.Key
}

// build creates the stick and its four direction buttons. Up and left push
// their axis negative. The stick exists only if one of its axes is bound.
func (sd stickDirs) build(bound map[joypad.SemanticAxis][]axisRef, joyAxes map[joypad.SemanticAxis]int, kind joypad.ButtonKind) (joypad.StickGroup, bool) {
	s := joypad.StickGroup{Label: sd.label}
	for _, ax := range []joypad.SemanticAxis{sd.horizontal, sd.vertical} {
		if refs := bound[ax]; len(refs) > 0 {
			s.Indices = append(s.Indices, refs[0].index)
		}
	}
	if len(s.Indices) == 0 {
		return s, false
	}
	dirs := []struct {
		key  keys.Key
		axis joypad.SemanticAxis
		sign int
	}{
		{sd.up, sd.vertical, -1},
		{sd.down, sd.vertical, 1},
		{sd.left, sd.horizontal, -1},
		{sd.right, sd.horizontal, 1},
	}
	for _, d := range dirs {
		refs := bound[d.axis]
		if len(refs) == 0 {
			continue
		}
		b := joypad.ButtonSpec{
			Alias:   d.key.String(),
			Kind:    kind,
			Sources: []joypad.EdgeSource{joypad.KeySource(d.key)},
		}
		for _, r := range refs {
			b.Outputs = append(b.Outputs, joypad.Contribution{Sign: d.sign * r.sign, Index: r.index})
		}
		if j := joyAxes[d.axis]; j >= 0 {
			b.JoypadAxes = []joypad.Contribution{{Sign: d.sign, Index: j}}
		}
		s.Buttons = append(s.Buttons, b)
	}
	return s, true
}

func resolveButtons(entries []string, m *joypad.Mapping, logger *slog.Logger) error {
	byAlias := map[string]int{}
	for i, raw := range entries {
		e := strings.TrimSpace(raw)
		if e == "" || strings.EqualFold(e, "none") {
			continue
		}
		keyPart, alias, _ := strings.Cut(e, ":")
		alias = strings.TrimSpace(alias)

		var sources []joypad.EdgeSource
		var tokens []string
		for _, tok := range strings.Split(keyPart, "-") {
			tok = strings.ToUpper(strings.TrimSpace(tok))
			if tok == "" {
				continue
			}
			src, ok := parseToken(tok)
			if !ok {
				logger.Warn("unknown key in button list, skipping it", "entry", raw, "key", tok)
				continue
			}
			sources = append(sources, src...)
			tokens = append(tokens, tok)
		}
		if len(sources) == 0 {
			logger.Warn("button has no usable keys, it will never activate", "entry", raw, "index", i)
		}

		display := alias
		switch {
		case len(tokens) > 0 && alias != "":
			display = fmt.Sprintf("%s (%s)", alias, strings.Join(tokens, ", "))
		case len(tokens) > 0:
			display = strings.Join(tokens, ", ")
		case alias == "":
			display = strings.TrimSpace(keyPart)
		}
		if at, ok := byAlias[display]; ok {
			m.Buttons[at].Outputs = append(m.Buttons[at].Outputs, joypad.Contribution{Sign: 1, Index: i})
			continue
		}
		byAlias[display] = len(m.Buttons)
		m.Buttons = append(m.Buttons, joypad.ButtonSpec{
			Alias:   display,
			Kind:    joypad.Regular,
			Sources: sources,
			Outputs: []joypad.Contribution{{Sign: 1, Index: i}},
		})
	}
	m.ButtonCount = len(entries)
	return nil
}

// parseToken resolves one upper-cased button token. A token starting with a
// digit binds that digit only, J<n> is joypad button n, everything else goes
// through keys.Lookup.
func parseToken(tok string) ([]joypad.EdgeSource, bool) {
	if tok[0] >= '0' && tok[0] <= '9' {
		tok = tok[:1]
	}
	if len(tok) > 1 && tok[0] == 'J' {
		n, err := strconv.Atoi(tok[1:])
		if err != nil || n < 0 {
			return nil, false
		}
		return []joypad.EdgeSource{joypad.JoypadButtonSource(n)}, true
	}
	ks := keys.Lookup(tok)
	if len(ks) == 0 {
		return nil, false
	}
	out := make([]joypad.EdgeSource, len(ks))
	for i, k := range ks {
		out[i] = joypad.KeySource(k)
	}
	return out, true
}

package joypad

import (
	"context"
	"log/slog"
)

// aggregator sums button contributions into an output array.
type aggregator struct {
	logger   *slog.Logger
	deadzone float64
}

// add folds b into out. The button's value is its own level plus the
// deadzone-shaped joypad axes bound to it, and every output receives
// sign*value. A joypad axis index outside raw is reported and disabled for
// the rest of the engine's life.
func (a *aggregator) add(out []float64, b *LogicalButton, raw []float64) {
	v := b.level()
	for i := range b.JoypadAxes {
		in := &b.JoypadAxes[i]
		if in.Index < 0 {
			continue
		}
		if in.Index >= len(raw) {
			level := slog.LevelError
			if len(raw) == 0 {
				level = slog.LevelDebug
			}
			a.logger.Log(context.Background(), level, "joypad axis index out of range, disabling it",
				"button", b.Alias, "index", in.Index, "count", len(raw))
			in.Index = -1
			continue
		}
		v += Deadzone(float64(in.Sign)*raw[in.Index], a.deadzone)
	}
	if v == 0 {
		return
	}
	for _, o := range b.Outputs {
		if o.Index < 0 || o.Index >= len(out) {
			continue
		}
		out[o.Index] += float64(o.Sign) * v
	}
}

func clampAll(values []float64) {
	for i, v := range values {
		values[i] = Clamp(v)
	}
}

func roundAll(values []float64) {
	for i, v := range values {
		values[i] = Round(v)
	}
}

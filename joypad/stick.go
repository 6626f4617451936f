package joypad

import (
	"fmt"
	"math"
	"strings"
)

// CoordinateMode selects how stick values are reported.
type CoordinateMode uint8

const (
	Cartesian CoordinateMode = iota
	// Polar reports (radius, angle) for two-axis sticks. Sticks of any other
	// size are reported cartesian.
	Polar
)

func (c CoordinateMode) String() string {
	if c == Polar {
		return "polar"
	}
	return "cartesian"
}

// ParseCoordinateMode accepts "cartesian" (or empty) and "polar".
func ParseCoordinateMode(s string) (CoordinateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cartesian":
		return Cartesian, nil
	case "polar":
		return Polar, nil
	}
	return Cartesian, fmt.Errorf("unknown coordinate mode %q", s)
}

// Project copies the axis values named by indices, in order, into dst and
// returns it. dst is grown when too small.
func Project(dst []float64, axes []float64, indices []int) []float64 {
	dst = dst[:0]
	for _, idx := range indices {
		v := 0.0
		if idx >= 0 && idx < len(axes) {
			v = axes[idx]
		}
		dst = append(dst, v)
	}
	return dst
}

// ToPolar converts a two-axis value to (hypot(x,y), atan2(y,x)). Other sizes
// are returned unchanged.
func ToPolar(v []float64) []float64 {
	if len(v) != 2 {
		return v
	}
	x, y := v[0], v[1]
	return []float64{math.Hypot(x, y), math.Atan2(y, x)}
}

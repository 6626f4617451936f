package joypad

// Deadzone shapes one signed raw axis value. Values at or below d map to 0
// and the rest is rescaled so that 1 still maps to 1.
func Deadzone(x, d float64) float64 {
	if x <= d {
		return 0
	}
	return (x - d) / (1 - d)
}

// Clamp limits v to [-1,1].
func Clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

// Round maps a summed button value to exactly 0 or 1.
func Round(v float64) float64 {
	if v > 0 {
		return 1
	}
	return 0
}

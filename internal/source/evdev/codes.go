// Package evdev reads a Linux keyboard through its /dev/input/event* node.
package evdev

import "github.com/Alia5/kbjoypad/joypad/keys"

// keyMax is KEY_MAX from linux/input-event-codes.h.
const keyMax = 0x2ff

// keyBitsLen is the size of the EVIOCGKEY bitmap.
const keyBitsLen = keyMax/8 + 1

// codes maps evdev KEY_* codes to HID usages.
var codes = map[uint16]keys.Key{
	1:   keys.Escape,
	2:   keys.Num1,
	3:   keys.Num2,
	4:   keys.Num3,
	5:   keys.Num4,
	6:   keys.Num5,
	7:   keys.Num6,
	8:   keys.Num7,
	9:   keys.Num8,
	10:  keys.Num9,
	11:  keys.Num0,
	12:  keys.Minus,
	13:  keys.Equal,
	14:  keys.Backspace,
	15:  keys.Tab,
	16:  keys.Q,
	17:  keys.W,
	18:  keys.E,
	19:  keys.R,
	20:  keys.T,
	21:  keys.Y,
	22:  keys.U,
	23:  keys.I,
	24:  keys.O,
	25:  keys.P,
	28:  keys.Enter,
	29:  keys.LeftCtrl,
	30:  keys.A,
	31:  keys.S,
	32:  keys.D,
	33:  keys.F,
	34:  keys.G,
	35:  keys.H,
	36:  keys.J,
	37:  keys.K,
	38:  keys.L,
	42:  keys.LeftShift,
	44:  keys.Z,
	45:  keys.X,
	46:  keys.C,
	47:  keys.V,
	48:  keys.B,
	49:  keys.N,
	50:  keys.M,
	54:  keys.RightShift,
	56:  keys.LeftAlt,
	57:  keys.Space,
	59:  keys.F1,
	60:  keys.F2,
	61:  keys.F3,
	62:  keys.F4,
	63:  keys.F5,
	64:  keys.F6,
	65:  keys.F7,
	66:  keys.F8,
	67:  keys.F9,
	68:  keys.F10,
	71:  keys.Kp7,
	72:  keys.Kp8,
	73:  keys.Kp9,
	75:  keys.Kp4,
	76:  keys.Kp5,
	77:  keys.Kp6,
	79:  keys.Kp1,
	80:  keys.Kp2,
	81:  keys.Kp3,
	82:  keys.Kp0,
	87:  keys.F11,
	88:  keys.F12,
	96:  keys.KpEnter,
	97:  keys.RightCtrl,
	100: keys.RightAlt,
	102: keys.Home,
	103: keys.Up,
	104: keys.PageUp,
	105: keys.Left,
	106: keys.Right,
	107: keys.End,
	108: keys.Down,
	109: keys.PageDown,
	110: keys.Insert,
	111: keys.Delete,
	125: keys.LeftGUI,
	126: keys.RightGUI,
}

// KeyFor returns the HID key for an evdev code.
func KeyFor(code uint16) (keys.Key, bool) {
	k, ok := codes[code]
	return k, ok
}

// Decode turns an EVIOCGKEY bitmap into the held keys. Codes without a HID
// equivalent are dropped.
func Decode(bits []byte) []keys.Key {
	var out []keys.Key
	for i, b := range bits {
		if b == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			if b&(1<<bit) == 0 {
				continue
			}
			if k, ok := codes[uint16(i*8+bit)]; ok {
				out = append(out, k)
			}
		}
	}
	return out
}

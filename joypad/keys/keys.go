// Package keys identifies keyboard keys by their USB HID usage code
// (Keyboard/Keypad usage page). Every input source translates its native
// key representation into a Key before the engine sees it.
package keys

import (
	"fmt"
	"strings"
)

// Key is a HID keyboard usage code.
type Key uint8

const (
	None Key = 0x00

	A Key = 0x04
	B Key = 0x05
	C Key = 0x06
	D Key = 0x07
	E Key = 0x08
	F Key = 0x09
	G Key = 0x0A
	H Key = 0x0B
	I Key = 0x0C
	J Key = 0x0D
	K Key = 0x0E
	L Key = 0x0F
	M Key = 0x10
	N Key = 0x11
	O Key = 0x12
	P Key = 0x13
	Q Key = 0x14
	R Key = 0x15
	S Key = 0x16
	T Key = 0x17
	U Key = 0x18
	V Key = 0x19
	W Key = 0x1A
	X Key = 0x1B
	Y Key = 0x1C
	Z Key = 0x1D

	// Top row digits. Num0 follows Num9 as on the HID page.
	Num1 Key = 0x1E
	Num2 Key = 0x1F
	Num3 Key = 0x20
	Num4 Key = 0x21
	Num5 Key = 0x22
	Num6 Key = 0x23
	Num7 Key = 0x24
	Num8 Key = 0x25
	Num9 Key = 0x26
	Num0 Key = 0x27

	Enter     Key = 0x28
	Escape    Key = 0x29
	Backspace Key = 0x2A
	Tab       Key = 0x2B
	Space     Key = 0x2C
	Minus     Key = 0x2D
	Equal     Key = 0x2E

	F1  Key = 0x3A
	F2  Key = 0x3B
	F3  Key = 0x3C
	F4  Key = 0x3D
	F5  Key = 0x3E
	F6  Key = 0x3F
	F7  Key = 0x40
	F8  Key = 0x41
	F9  Key = 0x42
	F10 Key = 0x43
	F11 Key = 0x44
	F12 Key = 0x45

	Insert   Key = 0x49
	Home     Key = 0x4A
	PageUp   Key = 0x4B
	Delete   Key = 0x4C
	End      Key = 0x4D
	PageDown Key = 0x4E

	Right Key = 0x4F
	Left  Key = 0x50
	Down  Key = 0x51
	Up    Key = 0x52

	KpEnter Key = 0x58
	Kp1     Key = 0x59
	Kp2     Key = 0x5A
	Kp3     Key = 0x5B
	Kp4     Key = 0x5C
	Kp5     Key = 0x5D
	Kp6     Key = 0x5E
	Kp7     Key = 0x5F
	Kp8     Key = 0x60
	Kp9     Key = 0x61
	Kp0     Key = 0x62

	LeftCtrl   Key = 0xE0
	LeftShift  Key = 0xE1
	LeftAlt    Key = 0xE2
	LeftGUI    Key = 0xE3
	RightCtrl  Key = 0xE4
	RightShift Key = 0xE5
	RightAlt   Key = 0xE6
	RightGUI   Key = 0xE7
)

var names = map[Key]string{
	A: "A", B: "B", C: "C", D: "D", E: "E", F: "F", G: "G",
	H: "H", I: "I", J: "J", K: "K", L: "L", M: "M", N: "N",
	O: "O", P: "P", Q: "Q", R: "R", S: "S", T: "T", U: "U",
	V: "V", W: "W", X: "X", Y: "Y", Z: "Z",

	Num1: "1", Num2: "2", Num3: "3", Num4: "4", Num5: "5",
	Num6: "6", Num7: "7", Num8: "8", Num9: "9", Num0: "0",

	Enter:     "Enter",
	Escape:    "Escape",
	Backspace: "Backspace",
	Tab:       "Tab",
	Space:     "Space",
	Minus:     "Minus",
	Equal:     "Equal",

	F1: "F1", F2: "F2", F3: "F3", F4: "F4", F5: "F5", F6: "F6",
	F7: "F7", F8: "F8", F9: "F9", F10: "F10", F11: "F11", F12: "F12",

	Insert:   "Insert",
	Home:     "Home",
	PageUp:   "PageUp",
	Delete:   "Delete",
	End:      "End",
	PageDown: "PageDown",

	Right: "Right",
	Left:  "Left",
	Down:  "Down",
	Up:    "Up",

	KpEnter: "KpEnter",

	Kp1: "Kp1", Kp2: "Kp2", Kp3: "Kp3", Kp4: "Kp4", Kp5: "Kp5",
	Kp6: "Kp6", Kp7: "Kp7", Kp8: "Kp8", Kp9: "Kp9", Kp0: "Kp0",

	LeftCtrl:   "LeftCtrl",
	LeftShift:  "LeftShift",
	LeftAlt:    "LeftAlt",
	LeftGUI:    "LeftGUI",
	RightCtrl:  "RightCtrl",
	RightShift: "RightShift",
	RightAlt:   "RightAlt",
	RightGUI:   "RightGUI",
}

// named holds the multi-letter tokens accepted in button lists.
var named = map[string]Key{
	"SPACE":     Space,
	"ENTER":     Enter,
	"ESCAPE":    Escape,
	"BACKSPACE": Backspace,
	"DELETE":    Delete,
	"LEFT":      Left,
	"RIGHT":     Right,
	"UP":        Up,
	"DOWN":      Down,
	"TAB":       Tab,
}

// String returns the human-readable key name.
func (k Key) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("Key(0x%02X)", uint8(k))
}

// Letter returns the key for an ASCII letter, either case.
func Letter(c byte) (Key, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return A + Key(c-'A'), true
	case c >= 'a' && c <= 'z':
		return A + Key(c-'a'), true
	}
	return None, false
}

// Digit returns the top-row key and the keypad key for an ASCII digit.
func Digit(c byte) (top, keypad Key, ok bool) {
	if c < '0' || c > '9' {
		return None, None, false
	}
	if c == '0' {
		return Num0, Kp0, true
	}
	return Num1 + Key(c-'1'), Kp1 + Key(c-'1'), true
}

// Lookup resolves a single button-list token (already trimmed) to the keys
// it binds. Letters bind one key, digits bind the top-row and keypad key,
// and the named tokens (SPACE, ENTER, ...) bind one key. Tokens are
// matched case-insensitively.
func Lookup(token string) []Key {
	t := strings.ToUpper(token)
	if len(t) == 1 {
		if k, ok := Letter(t[0]); ok {
			return []Key{k}
		}
		if top, kp, ok := Digit(t[0]); ok {
			return []Key{top, kp}
		}
		return nil
	}
	if k, ok := named[t]; ok {
		return []Key{k}
	}
	return nil
}

// Package terminal reads keys from a terminal in raw mode. Terminals report
// key presses only, so a key counts as held for a short window after its
// last byte.
package terminal

import "github.com/Alia5/kbjoypad/joypad/keys"

const (
	ctrlC = 0x03
	ctrlD = 0x04
	esc   = 0x1b
)

var csiFinal = map[byte]keys.Key{
	'A': keys.Up,
	'B': keys.Down,
	'C': keys.Right,
	'D': keys.Left,
	'H': keys.Home,
	'F': keys.End,
}

var csiTilde = map[string]keys.Key{
	"1": keys.Home,
	"2": keys.Insert,
	"3": keys.Delete,
	"4": keys.End,
	"5": keys.PageUp,
	"6": keys.PageDown,
	"7": keys.Home,
	"8": keys.End,
}

var ss3 = map[byte]keys.Key{
	'P': keys.F1,
	'Q': keys.F2,
	'R': keys.F3,
	'S': keys.F4,
	'A': keys.Up,
	'B': keys.Down,
	'C': keys.Right,
	'D': keys.Left,
}

// Decode translates the bytes of one terminal read into keys. quit is set
// for Ctrl-C and Ctrl-D. Unknown sequences are skipped.
func Decode(b []byte) (out []keys.Key, quit bool) {
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == ctrlC || c == ctrlD:
			quit = true
		case c == esc:
			ks, n := escape(b[i+1:])
			out = append(out, ks...)
			i += n
		case c == '\r' || c == '\n':
			out = append(out, keys.Enter)
		case c == '\t':
			out = append(out, keys.Tab)
		case c == 0x7f || c == 0x08:
			out = append(out, keys.Backspace)
		case c >= 0x01 && c <= 0x1a:
			out = append(out, keys.LeftCtrl, keys.A+keys.Key(c-1))
		case c >= 'a' && c <= 'z':
			out = append(out, keys.A+keys.Key(c-'a'))
		case c >= 'A' && c <= 'Z':
			out = append(out, keys.LeftShift, keys.A+keys.Key(c-'A'))
		case c >= '0' && c <= '9':
			top, _, _ := keys.Digit(c)
			out = append(out, top)
		case c == ' ':
			out = append(out, keys.Space)
		case c == '-':
			out = append(out, keys.Minus)
		case c == '=':
			out = append(out, keys.Equal)
		}
	}
	return out, quit
}

// escape decodes the bytes after ESC and returns how many it consumed.
func escape(b []byte) ([]keys.Key, int) {
	if len(b) == 0 {
		return []keys.Key{keys.Escape}, 0
	}
	switch b[0] {
	case '[':
		for j := 1; j < len(b); j++ {
			c := b[j]
			if c >= 0x40 && c <= 0x7e {
				if c == '~' {
					if k, ok := csiTilde[string(b[1:j])]; ok {
						return []keys.Key{k}, j + 1
					}
				} else if k, ok := csiFinal[c]; ok {
					return []keys.Key{k}, j + 1
				}
				return nil, j + 1
			}
		}
		return nil, len(b)
	case 'O':
		if len(b) < 2 {
			return nil, len(b)
		}
		if k, ok := ss3[b[1]]; ok {
			return []keys.Key{k}, 2
		}
		return nil, 2
	case esc:
		return []keys.Key{keys.Escape}, 0
	}
	// Alt+key arrives as ESC followed by the key.
	ks, _ := Decode(b[:1])
	return append([]keys.Key{keys.LeftAlt}, ks...), 1
}

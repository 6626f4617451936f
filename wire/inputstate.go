// Package wire holds the binary frames exchanged on the joypad/input stream.
package wire

import (
	"encoding/binary"
	"io"
	"math"
)

// MaxKeys is the largest number of keys a single frame can carry.
const MaxKeys = 255

// Joypad is one physical joypad reported by a remote client.
type Joypad struct {
	Index   uint8
	Name    string
	Axes    []float64 // each in [-1,1]
	Buttons []bool
}

// InputState is the complete input a remote client currently sees.
// Every frame replaces the previous one.
//
//	Byte 0: key count N
//	Bytes 1..N: HID usage codes of keys held down
//	Byte N+1: joypad count M
//	Per joypad:
//	  index:u8 nameLen:u8 name:nameLen
//	  axisCount:u8 axes:i16le*axisCount
//	  buttonCount:u8 buttons:bitmap ceil(buttonCount/8)
type InputState struct {
	Keys    []uint8
	Joypads []Joypad
}

// MarshalBinary encodes the state. Key lists longer than MaxKeys, names
// longer than 255 bytes and more than 255 axes or buttons are truncated.
func (st *InputState) MarshalBinary() ([]byte, error) {
	keys := st.Keys
	if len(keys) > MaxKeys {
		keys = keys[:MaxKeys]
	}
	b := make([]byte, 0, 2+len(keys)+len(st.Joypads)*16)
	b = append(b, uint8(len(keys)))
	b = append(b, keys...)

	joypads := st.Joypads
	if len(joypads) > 255 {
		joypads = joypads[:255]
	}
	b = append(b, uint8(len(joypads)))
	for _, j := range joypads {
		name := j.Name
		if len(name) > 255 {
			name = name[:255]
		}
		b = append(b, j.Index, uint8(len(name)))
		b = append(b, name...)

		axes := j.Axes
		if len(axes) > 255 {
			axes = axes[:255]
		}
		b = append(b, uint8(len(axes)))
		for _, v := range axes {
			b = binary.LittleEndian.AppendUint16(b, uint16(encodeAxis(v)))
		}

		buttons := j.Buttons
		if len(buttons) > 255 {
			buttons = buttons[:255]
		}
		b = append(b, uint8(len(buttons)))
		bitmap := make([]byte, (len(buttons)+7)/8)
		for i, down := range buttons {
			if down {
				bitmap[i/8] |= 1 << uint(i%8)
			}
		}
		b = append(b, bitmap...)
	}
	return b, nil
}

// UnmarshalBinary decodes a frame produced by MarshalBinary.
func (st *InputState) UnmarshalBinary(data []byte) error {
	r := reader{data: data}
	n, err := r.u8()
	if err != nil {
		return err
	}
	keys, err := r.bytes(int(n))
	if err != nil {
		return err
	}
	st.Keys = append(st.Keys[:0], keys...)

	m, err := r.u8()
	if err != nil {
		return err
	}
	st.Joypads = st.Joypads[:0]
	for range int(m) {
		var j Joypad
		if j.Index, err = r.u8(); err != nil {
			return err
		}
		nameLen, err := r.u8()
		if err != nil {
			return err
		}
		name, err := r.bytes(int(nameLen))
		if err != nil {
			return err
		}
		j.Name = string(name)

		axisCount, err := r.u8()
		if err != nil {
			return err
		}
		raw, err := r.bytes(int(axisCount) * 2)
		if err != nil {
			return err
		}
		j.Axes = make([]float64, axisCount)
		for i := range j.Axes {
			j.Axes[i] = DecodeAxis(int16(binary.LittleEndian.Uint16(raw[i*2:])))
		}

		buttonCount, err := r.u8()
		if err != nil {
			return err
		}
		bitmap, err := r.bytes((int(buttonCount) + 7) / 8)
		if err != nil {
			return err
		}
		j.Buttons = make([]bool, buttonCount)
		for i := range j.Buttons {
			j.Buttons[i] = bitmap[i/8]&(1<<uint(i%8)) != 0
		}
		st.Joypads = append(st.Joypads, j)
	}
	return nil
}

// ReadFrame reads exactly one encoded frame from r. A clean EOF before the
// first byte is returned as io.EOF.
func ReadFrame(r io.Reader) ([]byte, error) {
	var buf []byte
	read := func(n int) ([]byte, error) {
		at := len(buf)
		buf = append(buf, make([]byte, n)...)
		if _, err := io.ReadFull(r, buf[at:]); err != nil {
			if err == io.EOF && at > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		return buf[at:], nil
	}
	count := func() (int, error) {
		b, err := read(1)
		if err != nil {
			return 0, err
		}
		return int(b[0]), nil
	}

	n, err := count()
	if err != nil {
		return nil, err
	}
	if _, err := read(n); err != nil {
		return nil, err
	}
	m, err := count()
	if err != nil {
		return nil, err
	}
	for range m {
		if _, err := read(1); err != nil {
			return nil, err
		}
		for _, width := range []int{1, 2} {
			c, err := count()
			if err != nil {
				return nil, err
			}
			if _, err := read(c * width); err != nil {
				return nil, err
			}
		}
		c, err := count()
		if err != nil {
			return nil, err
		}
		if _, err := read((c + 7) / 8); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeAxis(v float64) int16 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * math.MaxInt16))
}

// DecodeAxis maps a signed 16-bit axis reading to [-1,1].
func DecodeAxis(v int16) float64 {
	return math.Max(-1, float64(v)/math.MaxInt16)
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) u8() (uint8, error) {
	if r.off >= len(r.data) {
		return 0, io.ErrUnexpectedEOF
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, io.ErrUnexpectedEOF
	}
	v := r.data[r.off : r.off+n]
	r.off += n
	return v, nil
}

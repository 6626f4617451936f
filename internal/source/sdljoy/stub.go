//go:build !(sdl || windows || darwin)

package sdljoy

import (
	"errors"
	"log/slog"

	"github.com/Alia5/kbjoypad/internal/source"
	"github.com/Alia5/kbjoypad/joypad"
)

// ErrNotBuilt is returned by Open in builds without the sdl tag.
var ErrNotBuilt = errors.New("sdl joypads not built in; rebuild with -tags sdl")

// Reader is never handed out in this build.
type Reader struct{}

var _ source.Joypads = (*Reader)(nil)

// Open always fails with ErrNotBuilt.
func Open(_ *slog.Logger) (*Reader, error) { return nil, ErrNotBuilt }

func (*Reader) Poll() {}

func (*Reader) Enumerate() []joypad.DeviceInfo { return nil }

func (*Reader) Sample(int) (joypad.JoypadSample, bool) { return joypad.JoypadSample{}, false }

func (*Reader) Close() error { return nil }

package cmd

import (
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/Alia5/kbjoypad/internal/source"
	"github.com/Alia5/kbjoypad/internal/source/evdev"
	"github.com/Alia5/kbjoypad/internal/source/linuxjs"
	"github.com/Alia5/kbjoypad/internal/source/sdljoy"
	"github.com/Alia5/kbjoypad/internal/source/terminal"
)

// InputConfig selects the local input readers. API stream clients are
// always merged in on top of them.
type InputConfig struct {
	Keyboard       string        `help:"Local keyboard reader" enum:"terminal,evdev,none" default:"terminal" env:"KBJOYPAD_INPUT_KEYBOARD"`
	KeyboardDevice string        `help:"evdev keyboard node; empty picks the first keyboard in /dev/input/by-id" env:"KBJOYPAD_INPUT_KEYBOARD_DEVICE"`
	TerminalHold   time.Duration `help:"How long a terminal key counts as held after its last byte" default:"600ms" env:"KBJOYPAD_INPUT_TERMINAL_HOLD"`
	Joypads        string        `help:"Local joypad reader; auto is linuxjs on Linux and sdl elsewhere" enum:"auto,linuxjs,sdl,none" default:"auto" env:"KBJOYPAD_INPUT_JOYPADS"`
	JoystickDir    string        `help:"Directory holding the js* joystick nodes" default:"/dev/input" env:"KBJOYPAD_INPUT_JOYSTICK_DIR"`
}

type localInputs struct {
	keyboard source.Keyboard
	term     *terminal.Keyboard
	joypads  source.Joypads
	closers  []io.Closer
}

// open starts the configured readers. A reader that cannot start is
// reported and left out; remote input still works without it.
func (c InputConfig) open(logger *slog.Logger) *localInputs {
	in := &localInputs{}

	switch c.Keyboard {
	case "terminal":
		kb, err := terminal.Open(os.Stdin, c.TerminalHold, logger)
		if err != nil {
			logger.Warn("Terminal keyboard unavailable", "error", err)
			break
		}
		in.keyboard, in.term = kb, kb
		in.closers = append(in.closers, kb)
		logger.Info("Reading keys from the terminal; Ctrl-C quits")
	case "evdev":
		kb, err := evdev.Open(c.KeyboardDevice, logger)
		if err != nil {
			logger.Warn("evdev keyboard unavailable", "device", c.KeyboardDevice, "error", err)
			break
		}
		in.keyboard = kb
		in.closers = append(in.closers, kb)
	}

	kind := c.Joypads
	if kind == "auto" {
		kind = "sdl"
		if runtime.GOOS == "linux" {
			kind = "linuxjs"
		}
	}
	switch kind {
	case "linuxjs":
		r, err := linuxjs.Open(c.JoystickDir, logger)
		if err != nil {
			logger.Warn("Linux joysticks unavailable", "dir", c.JoystickDir, "error", err)
			break
		}
		in.joypads = r
		in.closers = append(in.closers, r)
	case "sdl":
		r, err := sdljoy.Open(logger)
		if err != nil {
			logger.Warn("SDL joysticks unavailable", "error", err)
			break
		}
		in.joypads = r
		in.closers = append(in.closers, r)
	}
	return in
}

func (in *localInputs) Close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		_ = in.closers[i].Close()
	}
}

//go:build !linux

package evdev

import (
	"errors"
	"os"
)

var errUnsupported = errors.New("evdev keyboards are only available on linux")

func openNode(string) (*os.File, error) { return nil, errUnsupported }

func readKeyBits(*os.File) ([]byte, error) { return nil, errUnsupported }

//go:build !linux

package linuxjs

import (
	"errors"
	"io"
)

func openNode(string) (io.ReadCloser, string, int, int, error) {
	return nil, "", 0, 0, errors.New("the joystick API is only available on linux")
}

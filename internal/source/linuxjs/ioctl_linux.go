//go:build linux

package linuxjs

import (
	"bytes"
	"io"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	jsiocgaxes    = 0x80016a11
	jsiocgbuttons = 0x80016a12
	nameLen       = 128
	// JSIOCGNAME(len) is _IOC(_IOC_READ, 'j', 0x13, len).
	jsiocgname = 2<<30 | nameLen<<16 | 'j'<<8 | 0x13
)

func ioctlBuf(fd uintptr, req uint, buf []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

func openNode(path string) (io.ReadCloser, string, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", 0, 0, err
	}
	fd := f.Fd()
	var axes, buttons [1]byte
	if err := ioctlBuf(fd, jsiocgaxes, axes[:]); err != nil {
		_ = f.Close()
		return nil, "", 0, 0, err
	}
	if err := ioctlBuf(fd, jsiocgbuttons, buttons[:]); err != nil {
		_ = f.Close()
		return nil, "", 0, 0, err
	}
	name := make([]byte, nameLen)
	if err := ioctlBuf(fd, jsiocgname, name); err != nil {
		name = []byte("Unknown joystick")
	}
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return f, string(name), int(axes[0]), int(buttons[0]), nil
}

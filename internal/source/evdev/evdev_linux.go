//go:build linux

package evdev

import (
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// eviocgkey is EVIOCGKEY(keyBitsLen): _IOC(_IOC_READ, 'E', 0x18, len).
const eviocgkey = 2<<30 | keyBitsLen<<16 | 'E'<<8 | 0x18

func openNode(path string) (*os.File, error) {
	return os.OpenFile(path, syscall.O_RDONLY|syscall.O_NONBLOCK, 0)
}

func readKeyBits(f *os.File) ([]byte, error) {
	bits := make([]byte, keyBitsLen)
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		f.Fd(),
		uintptr(eviocgkey),
		uintptr(unsafe.Pointer(&bits[0])),
	)
	if errno != 0 {
		return nil, errno
	}
	return bits, nil
}

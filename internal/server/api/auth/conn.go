package auth

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

const maxFrameSize = 2 << 20

// ErrFrameTooLarge is returned when the peer announces a frame above 2 MiB.
var ErrFrameTooLarge = errors.New("encrypted frame too large")

// Conn frames every Write as a uint32 big-endian length followed by the
// sealed bytes. Nonces are per-direction counters that are never sent, so a
// replayed or reordered frame fails to open.
type Conn struct {
	net.Conn

	wmu     sync.Mutex
	seal    cipher.AEAD
	sendSeq uint64

	rmu     sync.Mutex
	open    cipher.AEAD
	recvSeq uint64
	pending []byte
}

func newConn(conn net.Conn, sendKey, recvKey []byte) (*Conn, error) {
	seal, err := chacha20poly1305.New(sendKey)
	if err != nil {
		return nil, err
	}
	open, err := chacha20poly1305.New(recvKey)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn, seal: seal, open: open}, nil
}

func nonce(seq uint64) []byte {
	n := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint64(n[4:], seq)
	return n
}

func (c *Conn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	frame := make([]byte, 4, 4+len(p)+c.seal.Overhead())
	frame = c.seal.Seal(frame, nonce(c.sendSeq), p, nil)
	binary.BigEndian.PutUint32(frame[:4], uint32(len(frame)-4))
	c.sendSeq++

	if _, err := c.Conn.Write(frame); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *Conn) Read(p []byte) (int, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	for len(c.pending) == 0 {
		var hdr [4]byte
		if _, err := io.ReadFull(c.Conn, hdr[:]); err != nil {
			return 0, err
		}
		size := binary.BigEndian.Uint32(hdr[:])
		if size > maxFrameSize {
			return 0, ErrFrameTooLarge
		}
		sealed := make([]byte, size)
		if _, err := io.ReadFull(c.Conn, sealed); err != nil {
			return 0, err
		}
		plain, err := c.open.Open(sealed[:0], nonce(c.recvSeq), sealed, nil)
		if err != nil {
			return 0, fmt.Errorf("open frame %d: %w", c.recvSeq, err)
		}
		c.recvSeq++
		c.pending = plain
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

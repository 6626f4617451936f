package apiclient

import (
	"context"
	"encoding"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Alia5/kbjoypad/wire"
)

// InputStreamPath is the stream route remote input clients connect to.
const InputStreamPath = "joypad/input"

// InputStream is a long-lived connection that pushes keyboard and joypad
// state into the server.
type InputStream struct {
	conn net.Conn

	mu     sync.Mutex
	closed bool
}

// OpenInputStream connects to the joypad/input stream. Every frame written
// replaces everything the stream reported before; closing the stream
// releases its keys.
func (c *Client) OpenInputStream(ctx context.Context) (*InputStream, error) {
	if c.transport.mock != nil {
		return nil, fmt.Errorf("stream connections not supported with mock transport")
	}
	conn, err := c.transport.dial(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write([]byte(InputStreamPath + "\x00")); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	return &InputStream{conn: conn}, nil
}

// Send marshals and sends one input frame.
func (s *InputStream) Send(st *wire.InputState) error {
	return s.WriteBinary(st)
}

// WriteBinary marshals and sends a BinaryMarshaler to the stream.
func (s *InputStream) WriteBinary(v encoding.BinaryMarshaler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("stream closed")
	}
	data, err := v.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = s.conn.Write(data)
	return err
}

// SetWriteDeadline sets the write deadline for the underlying connection.
func (s *InputStream) SetWriteDeadline(t time.Time) error {
	return s.conn.SetWriteDeadline(t)
}

// Close closes the stream connection.
func (s *InputStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

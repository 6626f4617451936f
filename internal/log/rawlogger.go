package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// RawLogger records raw wire traffic of the API input stream.
type RawLogger interface {
	Log(in bool, data []byte)
}

type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a RawLogger writing to w. A nil writer yields a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// Log writes one line per chunk: timestamp, direction, length and hex dump.
// in=true means client to server.
func (r *rawLogger) Log(in bool, data []byte) {
	if len(data) == 0 || r.w == nil {
		return
	}
	dir := "S->C"
	if in {
		dir = "C->S"
	}
	line := fmt.Sprintf("%s %s %d bytes: % x\n",
		time.Now().Format("2006/01/02 15:04:05.000"), dir, len(data), data)

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}

// HexLine renders data the way RawLogger does, without the timestamp.
func HexLine(data []byte) string {
	return strings.TrimSpace(fmt.Sprintf("% x", data))
}

// OpenRaw returns a RawLogger appending to path, or one writing to fallback
// when path is empty. The closer is nil unless a file was opened.
func OpenRaw(path string, fallback io.Writer) (RawLogger, io.Closer, error) {
	if path == "" {
		return NewRaw(fallback), nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return NewRaw(nil), nil, err
	}
	return NewRaw(f), f, nil
}

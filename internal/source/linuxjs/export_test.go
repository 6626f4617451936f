package linuxjs

import (
	"io"
	"log/slog"
)

// NewReaderWithOpener builds a Reader whose nodes are opened by open.
func NewReaderWithOpener(dir string, open func(path string) (io.ReadCloser, string, int, int, error), logger *slog.Logger) (*Reader, error) {
	return newReader(dir, open, logger)
}

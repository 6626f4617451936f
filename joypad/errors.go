package joypad

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a queried element id is outside its range.
	ErrNotFound = errors.New("element not found")
	// ErrUnsupported is returned by trackball, hat and touch-surface queries.
	ErrUnsupported = errors.New("capability not supported")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("engine closed")
	// ErrNotInitialized is returned in driven mode before the update loop has
	// initialized the engine.
	ErrNotInitialized = errors.New("engine not initialized")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("engine already started")
)

// ConfigError reports an invalid mapping or setting. It is returned before an
// engine exists.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Key, e.Reason)
}

func configErrorf(key, format string, args ...any) *ConfigError {
	return &ConfigError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// Package reload applies edits of the active config file to a running
// engine. Only settings that can change at run time are picked up; today
// that is the joypad deadzone.
package reload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

const debounce = 100 * time.Millisecond

// DeadzoneSetter is the part of the engine a reload touches.
type DeadzoneSetter interface {
	Deadzone() (float64, error)
	SetDeadzone(d float64) error
}

// ReadDeadzone parses path by its extension and returns engine.deadzone.
// ok is false when the file does not set it.
func ReadDeadzone(path string) (d float64, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false, err
	}
	root := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &root)
	case ".toml":
		var tree *toml.Tree
		tree, err = toml.LoadBytes(data)
		if err == nil {
			root = tree.ToMap()
		}
	default:
		err = json.Unmarshal(data, &root)
	}
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", path, err)
	}

	raw, found := root["engine.deadzone"]
	if !found {
		if engine, isMap := root["engine"].(map[string]any); isMap {
			raw, found = engine["deadzone"]
		}
	}
	if !found {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, true, nil
	case int:
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	}
	return 0, false, fmt.Errorf("engine.deadzone: unexpected %T", raw)
}

// Watcher re-reads one config file whenever it changes.
type Watcher struct {
	path   string
	target DeadzoneSetter
	logger *slog.Logger
	w      *fsnotify.Watcher
}

// New watches the directory of path, so editors that replace the file are
// followed too.
func New(path string, target DeadzoneSetter, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{path: abs, target: target, logger: logger, w: w}, nil
}

// Run applies changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.w.Close()
	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Config watcher error", "error", err)
		case <-timer.C:
			w.apply()
		}
	}
}

func (w *Watcher) apply() {
	d, ok, err := ReadDeadzone(w.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("Config reload failed", "path", w.path, "error", err)
		}
		return
	}
	if !ok {
		return
	}
	if cur, err := w.target.Deadzone(); err == nil && cur == d {
		return
	}
	if err := w.target.SetDeadzone(d); err != nil {
		w.logger.Warn("Rejected reloaded deadzone", "deadzone", d, "error", err)
		return
	}
	w.logger.Info("Reloaded deadzone", "deadzone", d)
}

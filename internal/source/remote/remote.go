// Package remote is an input source fed by API stream clients.
package remote

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/Alia5/kbjoypad/internal/source"
	"github.com/Alia5/kbjoypad/joypad"
	"github.com/Alia5/kbjoypad/joypad/keys"
	"github.com/Alia5/kbjoypad/wire"
)

// Source merges the frames of all attached feeds. Keys are ORed; a joypad
// index reported by several feeds is taken from the one attached first.
type Source struct {
	source.KeyTracker

	logger *slog.Logger

	mu      sync.Mutex
	nextID  uint64
	feeds   map[uint64]*Feed
	joypads map[int]wire.Joypad
}

// Feed is one attached client.
type Feed struct {
	id  uint64
	src *Source
	st  wire.InputState
}

// New returns an empty remote source.
func New(logger *slog.Logger) *Source {
	return &Source{
		logger: logger,
		feeds:  map[uint64]*Feed{},
	}
}

// Attach registers a new feed. Its frames count until Detach.
func (s *Source) Attach() *Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	f := &Feed{id: s.nextID, src: s}
	s.feeds[f.id] = f
	s.logger.Debug("remote feed attached", "feed", f.id, "feeds", len(s.feeds))
	return f
}

// Feeds returns the number of attached feeds.
func (s *Source) Feeds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feeds)
}

// Push replaces the feed's state with st.
func (f *Feed) Push(st wire.InputState) {
	s := f.src
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.feeds[f.id]; !ok {
		return
	}
	f.st = st
	s.applyKeysLocked()
}

// Detach removes the feed; its keys are released on the next poll.
func (f *Feed) Detach() {
	s := f.src
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.feeds[f.id]; !ok {
		return
	}
	delete(s.feeds, f.id)
	s.applyKeysLocked()
	s.logger.Debug("remote feed detached", "feed", f.id, "feeds", len(s.feeds))
}

func (s *Source) applyKeysLocked() {
	var down []keys.Key
	for _, f := range s.feeds {
		for _, k := range f.st.Keys {
			down = append(down, keys.Key(k))
		}
	}
	s.SetAll(down)
}

func (s *Source) orderedLocked() []*Feed {
	out := make([]*Feed, 0, len(s.feeds))
	for _, f := range s.feeds {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Poll latches keys and takes a snapshot of the joypads.
func (s *Source) Poll() {
	s.Latch()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joypads = s.mergedLocked()
}

func (s *Source) mergedLocked() map[int]wire.Joypad {
	out := map[int]wire.Joypad{}
	for _, f := range s.orderedLocked() {
		for _, j := range f.st.Joypads {
			if _, ok := out[int(j.Index)]; !ok {
				out[int(j.Index)] = j
			}
		}
	}
	return out
}

// ShouldClose is always false; remote clients cannot stop the engine.
func (s *Source) ShouldClose() bool { return false }

// Enumerate lists the joypads the attached feeds report right now.
func (s *Source) Enumerate() []joypad.DeviceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []joypad.DeviceInfo
	for idx, j := range s.mergedLocked() {
		out = append(out, joypad.DeviceInfo{
			Index:   idx,
			Name:    j.Name,
			Axes:    len(j.Axes),
			Buttons: len(j.Buttons),
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out
}

// Sample returns the joypad's state at the last poll.
func (s *Source) Sample(index int) (joypad.JoypadSample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.joypads[index]
	if !ok {
		return joypad.JoypadSample{}, false
	}
	return joypad.JoypadSample{
		Axes:    append([]float64(nil), j.Axes...),
		Buttons: append([]bool(nil), j.Buttons...),
	}, true
}

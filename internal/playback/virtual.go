package playback

import (
	"errors"
	"fmt"
	"math"

	"github.com/franz/track-notes/internal/util"
)

// ErrNoSource is returned by handle commands issued before Load
var ErrNoSource = errors.New("no source loaded")

// ErrNotDecodable is returned by Play when the source metadata could not be read
var ErrNotDecodable = errors.New("source not decodable")

// Prober reports the duration of a source in seconds
type Prober func(source string) (float64, error)

// VirtualHandle is an in-memory media handle. Time only moves when Advance
// is called, which makes playback deterministic for tests and for the CLI's
// simulated player. Like the clock it expects a single goroutine.
type VirtualHandle struct {
	probe Prober

	source    string
	duration  float64
	current   float64
	playing   bool
	decodable bool

	listeners map[int]func(Event)
	nextID    int
}

// NewVirtualHandle creates a handle that learns durations from probe
func NewVirtualHandle(probe Prober) *VirtualHandle {
	return &VirtualHandle{
		probe:     probe,
		listeners: make(map[int]func(Event)),
	}
}

// Subscribe registers fn for every event until the subscription is closed
func (h *VirtualHandle) Subscribe(fn func(Event)) *Subscription {
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	return NewSubscription(func() {
		delete(h.listeners, id)
	})
}

// Listeners returns the number of attached subscriptions
func (h *VirtualHandle) Listeners() int {
	return len(h.listeners)
}

// Load attaches a source. A failed probe still loads the source, but it
// never reports metadata and refuses to play.
func (h *VirtualHandle) Load(source string) error {
	if source == "" {
		return ErrNoSource
	}

	h.source = source
	h.current = 0
	h.playing = false
	h.duration = 0
	h.decodable = false

	if h.probe == nil {
		return nil
	}

	d, err := h.probe(source)
	if err != nil {
		util.WarnLog("Could not read metadata for %s: %v", source, err)
		return nil
	}
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		util.WarnLog("Source %s reports no usable duration", source)
		return nil
	}

	h.duration = d
	h.decodable = true
	h.emit(Event{Kind: EventMetadataReady, Value: d})
	return nil
}

// Play starts playback
func (h *VirtualHandle) Play() error {
	if h.source == "" {
		return ErrNoSource
	}
	if !h.decodable {
		return fmt.Errorf("%w: %s", ErrNotDecodable, h.source)
	}
	if h.playing {
		return nil
	}
	h.playing = true
	h.emit(Event{Kind: EventPlayed})
	return nil
}

// Pause stops playback
func (h *VirtualHandle) Pause() error {
	if h.source == "" {
		return ErrNoSource
	}
	if !h.playing {
		return nil
	}
	h.playing = false
	h.emit(Event{Kind: EventPaused})
	return nil
}

// Seek moves the playhead
func (h *VirtualHandle) Seek(t float64) error {
	if h.source == "" {
		return ErrNoSource
	}
	h.current = math.Max(0, math.Min(t, h.duration))
	h.emit(Event{Kind: EventTimeChanged, Value: h.current})
	return nil
}

// CurrentTime returns the playhead position
func (h *VirtualHandle) CurrentTime() float64 {
	return h.current
}

// Duration returns the probed duration, zero if unknown
func (h *VirtualHandle) Duration() float64 {
	return h.duration
}

// Playing reports whether the handle is playing
func (h *VirtualHandle) Playing() bool {
	return h.playing
}

// Advance moves time forward by dt seconds while playing. Reaching the end
// emits a final time update followed by ended.
func (h *VirtualHandle) Advance(dt float64) {
	if !h.playing || dt <= 0 {
		return
	}

	h.current += dt
	if h.current >= h.duration {
		h.current = h.duration
		h.emit(Event{Kind: EventTimeChanged, Value: h.current})
		h.playing = false
		h.current = 0
		h.emit(Event{Kind: EventEnded})
		return
	}

	h.emit(Event{Kind: EventTimeChanged, Value: h.current})
}

func (h *VirtualHandle) emit(e Event) {
	fns := make([]func(Event), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	for _, fn := range fns {
		fn(e)
	}
}

// Package playback mirrors an external media handle into an owned AudioState.
//
// The clock is not safe for concurrent use: events and actions must arrive on
// one goroutine. Handlers are idempotent and the most recent event wins.
package playback

import (
	"fmt"
	"math"

	"github.com/franz/track-notes/internal/util"
)

// State is the clock's view of playback
type State struct {
	SourceRef   string  `json:"url"`
	IsPlaying   bool    `json:"isPlaying"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
}

// Loaded reports whether a source is attached
func (s State) Loaded() bool {
	return s.SourceRef != ""
}

// Clock owns the authoritative playback state
type Clock struct {
	handle Handle
	state  State
	sub    *Subscription
	gen    uint64
	onWarn func(error)
}

// NewClock creates a clock bound to a media handle
func NewClock(h Handle) *Clock {
	return &Clock{handle: h}
}

// OnWarning registers a callback for non-fatal clock warnings
func (c *Clock) OnWarning(fn func(error)) {
	c.onWarn = fn
}

// State returns a copy of the current state
func (c *Clock) State() State {
	return c.state
}

// Load attaches a new source. The previous subscription is released before
// the state resets to time 0, paused, duration unknown.
func (c *Clock) Load(source string) error {
	c.detach()

	c.state = State{SourceRef: source}
	if source == "" {
		return nil
	}

	c.gen++
	gen := c.gen
	c.sub = c.handle.Subscribe(func(e Event) {
		if gen != c.gen {
			return
		}
		c.Apply(e)
	})

	if err := c.handle.Load(source); err != nil {
		c.detach()
		c.state = State{}
		return fmt.Errorf("failed to load %s: %w", source, err)
	}

	return nil
}

// Close detaches from the media handle and forgets the source
func (c *Clock) Close() {
	if c.state.IsPlaying {
		c.handle.Pause()
	}
	c.detach()
	c.state = State{}
}

func (c *Clock) detach() {
	c.gen++
	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
}

// Apply folds one media handle event into the state
func (c *Clock) Apply(e Event) {
	if !c.state.Loaded() {
		return
	}

	switch e.Kind {
	case EventMetadataReady:
		d := e.Value
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			d = 0
		}
		c.state.Duration = d
		c.state.CurrentTime = c.clamp(c.state.CurrentTime)
	case EventTimeChanged:
		c.state.CurrentTime = c.clamp(e.Value)
	case EventPlayed:
		c.state.IsPlaying = true
	case EventPaused:
		c.state.IsPlaying = false
	case EventEnded:
		c.state.IsPlaying = false
		c.state.CurrentTime = 0
	}
}

// Seek clamps t to [0, duration], commands the handle and updates
// currentTime without waiting for the handle's own event.
func (c *Clock) Seek(t float64) float64 {
	if !c.state.Loaded() {
		return 0
	}

	t = c.clamp(t)
	if err := c.handle.Seek(t); err != nil {
		c.warn(fmt.Errorf("%w: seek rejected: %v", util.ErrClockDesync, err))
	}
	c.state.CurrentTime = t
	return t
}

// TogglePlayback flips play/pause. A rejected command rolls isPlaying back
// and returns an error wrapping util.ErrClockDesync.
func (c *Clock) TogglePlayback() error {
	if !c.state.Loaded() {
		err := fmt.Errorf("%w: no source loaded", util.ErrClockDesync)
		c.warn(err)
		return err
	}

	prev := c.state.IsPlaying
	c.state.IsPlaying = !prev

	var err error
	if prev {
		err = c.handle.Pause()
	} else {
		err = c.handle.Play()
	}

	if err != nil {
		c.state.IsPlaying = prev
		werr := fmt.Errorf("%w: %w", util.ErrClockDesync, err)
		c.warn(werr)
		return werr
	}

	return nil
}

func (c *Clock) clamp(t float64) float64 {
	if t < 0 || math.IsNaN(t) {
		return 0
	}
	if t > c.state.Duration {
		return c.state.Duration
	}
	return t
}

func (c *Clock) warn(err error) {
	util.WarnLog("Playback: %v", err)
	if c.onWarn != nil {
		c.onWarn(err)
	}
}

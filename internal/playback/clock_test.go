package playback

import (
	"errors"
	"testing"

	"github.com/franz/track-notes/internal/util"
)

func fixedProbe(durations map[string]float64) Prober {
	return func(source string) (float64, error) {
		d, ok := durations[source]
		if !ok {
			return 0, errors.New("moov atom not found")
		}
		return d, nil
	}
}

func newTestClock(t *testing.T) (*Clock, *VirtualHandle) {
	t.Helper()
	h := NewVirtualHandle(fixedProbe(map[string]float64{
		"song.mp3":  120,
		"other.mp3": 65,
	}))
	c := NewClock(h)
	if err := c.Load("song.mp3"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return c, h
}

// recordingHandle keeps every listener it ever handed out so tests can fire
// events into subscriptions that have already been released.
type recordingHandle struct {
	listeners []func(Event)
	closed    int
	playErr   error
}

func (h *recordingHandle) Load(string) error    { return nil }
func (h *recordingHandle) Play() error          { return h.playErr }
func (h *recordingHandle) Pause() error         { return nil }
func (h *recordingHandle) Seek(float64) error   { return nil }
func (h *recordingHandle) CurrentTime() float64 { return 0 }
func (h *recordingHandle) Duration() float64    { return 0 }
func (h *recordingHandle) Subscribe(fn func(Event)) *Subscription {
	h.listeners = append(h.listeners, fn)
	return NewSubscription(func() { h.closed++ })
}

func TestClock_LoadResetsAndReadsMetadata(t *testing.T) {
	c, _ := newTestClock(t)

	s := c.State()
	if s.SourceRef != "song.mp3" || s.IsPlaying || s.CurrentTime != 0 {
		t.Errorf("unexpected state after load: %+v", s)
	}
	if s.Duration != 120 {
		t.Errorf("expected duration 120 from metadata, got %v", s.Duration)
	}
}

func TestClock_SeekClamps(t *testing.T) {
	c, h := newTestClock(t)

	if got := c.Seek(-5); got != 0 || c.State().CurrentTime != 0 {
		t.Errorf("seek(-5) gave %v", c.State().CurrentTime)
	}
	if got := c.Seek(500); got != 120 || c.State().CurrentTime != 120 {
		t.Errorf("seek(500) gave %v", c.State().CurrentTime)
	}
	if h.CurrentTime() != 120 {
		t.Errorf("handle was not commanded, at %v", h.CurrentTime())
	}

	// Seeking to where we already are changes nothing
	c.Seek(120)
	if c.State().CurrentTime != 120 {
		t.Error("no-op seek changed the state")
	}
}

func TestClock_TimeEventsClampAndRepeat(t *testing.T) {
	c, _ := newTestClock(t)

	c.Apply(Event{Kind: EventTimeChanged, Value: 42})
	c.Apply(Event{Kind: EventTimeChanged, Value: 42})
	if c.State().CurrentTime != 42 {
		t.Errorf("expected 42 after duplicate events, got %v", c.State().CurrentTime)
	}

	c.Apply(Event{Kind: EventTimeChanged, Value: 999})
	if c.State().CurrentTime != 120 {
		t.Errorf("expected clamp to duration, got %v", c.State().CurrentTime)
	}

	c.Apply(Event{Kind: EventTimeChanged, Value: -1})
	if c.State().CurrentTime != 0 {
		t.Errorf("expected clamp to 0, got %v", c.State().CurrentTime)
	}
}

func TestClock_LastEventWins(t *testing.T) {
	c, _ := newTestClock(t)

	c.Apply(Event{Kind: EventPlayed})
	c.Apply(Event{Kind: EventTimeChanged, Value: 10})
	c.Apply(Event{Kind: EventPaused})
	c.Apply(Event{Kind: EventTimeChanged, Value: 9})

	s := c.State()
	if s.IsPlaying {
		t.Error("expected paused after pause event")
	}
	if s.CurrentTime != 9 {
		t.Errorf("expected latest time 9, got %v", s.CurrentTime)
	}
}

func TestClock_EndedResetsTime(t *testing.T) {
	c, h := newTestClock(t)

	if err := c.TogglePlayback(); err != nil {
		t.Fatalf("TogglePlayback failed: %v", err)
	}
	h.Advance(119)
	if c.State().CurrentTime != 119 || !c.State().IsPlaying {
		t.Fatalf("unexpected state mid-track: %+v", c.State())
	}

	h.Advance(5)
	s := c.State()
	if s.IsPlaying || s.CurrentTime != 0 {
		t.Errorf("expected stopped at 0 after ended, got %+v", s)
	}
}

func TestClock_TogglePlayback(t *testing.T) {
	c, h := newTestClock(t)

	if err := c.TogglePlayback(); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if !c.State().IsPlaying || !h.Playing() {
		t.Error("expected playing after toggle")
	}

	if err := c.TogglePlayback(); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if c.State().IsPlaying || h.Playing() {
		t.Error("expected paused after second toggle")
	}
}

func TestClock_TogglePlaybackRollsBack(t *testing.T) {
	h := NewVirtualHandle(fixedProbe(nil))
	c := NewClock(h)

	var warnings []error
	c.OnWarning(func(err error) { warnings = append(warnings, err) })

	if err := c.Load("corrupt.mp3"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	err := c.TogglePlayback()
	if !errors.Is(err, util.ErrClockDesync) {
		t.Fatalf("expected ErrClockDesync, got %v", err)
	}
	if !errors.Is(err, ErrNotDecodable) {
		t.Errorf("expected the handle's rejection to be wrapped, got %v", err)
	}
	if c.State().IsPlaying {
		t.Error("isPlaying should roll back to false")
	}
	if len(warnings) != 1 {
		t.Errorf("expected one warning, got %d", len(warnings))
	}
}

func TestClock_NoSource(t *testing.T) {
	c := NewClock(NewVirtualHandle(nil))

	if err := c.TogglePlayback(); !errors.Is(err, util.ErrClockDesync) {
		t.Errorf("expected ErrClockDesync without a source, got %v", err)
	}
	if c.State().IsPlaying {
		t.Error("isPlaying must be false without a source")
	}
	if got := c.Seek(10); got != 0 {
		t.Errorf("seek without source should stay at 0, got %v", got)
	}

	c.Apply(Event{Kind: EventPlayed})
	if c.State().IsPlaying {
		t.Error("events must be ignored without a source")
	}
}

func TestClock_ReleasesSubscriptions(t *testing.T) {
	c, h := newTestClock(t)

	if h.Listeners() != 1 {
		t.Fatalf("expected 1 listener, got %d", h.Listeners())
	}

	if err := c.Load("other.mp3"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if h.Listeners() != 1 {
		t.Errorf("expected previous subscription released, have %d", h.Listeners())
	}
	if c.State().Duration != 65 {
		t.Errorf("expected duration of new source, got %v", c.State().Duration)
	}

	c.Close()
	if h.Listeners() != 0 {
		t.Errorf("expected no listeners after Close, have %d", h.Listeners())
	}
	if c.State().Loaded() {
		t.Error("expected no source after Close")
	}
}

func TestClock_IgnoresReleasedListener(t *testing.T) {
	h := &recordingHandle{}
	c := NewClock(h)

	c.Load("a.mp3")
	c.Apply(Event{Kind: EventMetadataReady, Value: 100})
	c.Load("b.mp3")

	if h.closed != 1 {
		t.Fatalf("expected first subscription closed, got %d closes", h.closed)
	}

	// A late callback from the first source must not touch the new state
	h.listeners[0](Event{Kind: EventMetadataReady, Value: 300})
	h.listeners[0](Event{Kind: EventPlayed})

	s := c.State()
	if s.Duration != 0 || s.IsPlaying {
		t.Errorf("stale listener mutated state: %+v", s)
	}

	h.listeners[1](Event{Kind: EventMetadataReady, Value: 50})
	if c.State().Duration != 50 {
		t.Errorf("current listener should still apply, got %v", c.State().Duration)
	}
}

func TestClock_LoadFailure(t *testing.T) {
	c := NewClock(NewVirtualHandle(nil))

	if err := c.Load(""); err != nil {
		t.Fatalf("unloading should not fail: %v", err)
	}
	if c.State().Loaded() {
		t.Error("empty source should leave clock unloaded")
	}
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	calls := 0
	sub := NewSubscription(func() { calls++ })
	sub.Close()
	sub.Close()

	var nilSub *Subscription
	nilSub.Close()

	if calls != 1 {
		t.Errorf("expected detach once, got %d", calls)
	}
}

func TestEventKindString(t *testing.T) {
	if EventEnded.String() != "ended" || EventKind(99).String() != "unknown" {
		t.Error("unexpected event kind names")
	}
}

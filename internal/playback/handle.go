package playback

import "sync"

// EventKind identifies a media handle notification
type EventKind int

const (
	EventMetadataReady EventKind = iota
	EventTimeChanged
	EventPlayed
	EventPaused
	EventEnded
)

func (k EventKind) String() string {
	switch k {
	case EventMetadataReady:
		return "metadata_ready"
	case EventTimeChanged:
		return "time_changed"
	case EventPlayed:
		return "played"
	case EventPaused:
		return "paused"
	case EventEnded:
		return "ended"
	}
	return "unknown"
}

// Event is emitted by a media handle. Value carries the duration for
// EventMetadataReady and the playback time for EventTimeChanged.
type Event struct {
	Kind  EventKind
	Value float64
}

// Handle is a playable media element the clock mirrors
type Handle interface {
	Load(source string) error
	Play() error
	Pause() error
	Seek(t float64) error
	CurrentTime() float64
	Duration() float64
	Subscribe(fn func(Event)) *Subscription
}

// Subscription is a scoped listener registration. Close detaches it; calling
// Close more than once is harmless.
type Subscription struct {
	once   sync.Once
	detach func()
}

// NewSubscription wraps a detach function
func NewSubscription(detach func()) *Subscription {
	return &Subscription{detach: detach}
}

// Close releases the subscription
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.detach != nil {
			s.detach()
		}
	})
}

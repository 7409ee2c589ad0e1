// Package segment maps the continuous playback time axis onto fixed-length
// lines. Everything here is pure and safe for concurrent use.
package segment

import (
	"fmt"
	"math"
)

// DefaultLength is the duration of one timeline line in seconds
const DefaultLength = 30.0

// Segment is one line of the timeline covering [Start, End)
type Segment struct {
	Index int
	Start float64
	End   float64
	// Final marks the last line of the track; it also owns t == End
	Final bool
}

// Contains reports whether t falls inside the segment
func (s Segment) Contains(t float64) bool {
	if t < s.Start {
		return false
	}
	if s.Final {
		return t <= s.End
	}
	return t < s.End
}

// Label formats the segment range as "m:ss - m:ss"
func (s Segment) Label() string {
	return fmt.Sprintf("%s - %s", FormatTime(s.Start), FormatTime(s.End))
}

// Segmenter splits a timeline into lines of a fixed length
type Segmenter struct {
	length float64
}

// New creates a Segmenter. Non-positive lengths fall back to DefaultLength.
func New(length float64) Segmenter {
	if length <= 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		length = DefaultLength
	}
	return Segmenter{length: length}
}

// Length returns the line length in seconds
func (s Segmenter) Length() float64 {
	if s.length <= 0 {
		return DefaultLength
	}
	return s.length
}

// IndexOf returns floor(t / length). Negative times map to line 0.
func (s Segmenter) IndexOf(t float64) int {
	if t <= 0 || math.IsNaN(t) {
		return 0
	}
	return int(math.Floor(t / s.Length()))
}

// IndexAt is IndexOf clamped to the lines that exist for duration, so
// t == duration lands on the last line instead of one past it.
func (s Segmenter) IndexAt(t, duration float64) int {
	idx := s.IndexOf(t)
	count := s.Count(duration)
	if count == 0 {
		return 0
	}
	if idx > count-1 {
		return count - 1
	}
	return idx
}

// Position returns (t mod length) / length, always in [0, 1)
func (s Segmenter) Position(t float64) float64 {
	if t <= 0 || math.IsNaN(t) {
		return 0
	}
	l := s.Length()
	p := math.Mod(t, l) / l
	if p >= 1 {
		return 0
	}
	return p
}

// Count returns ceil(duration / length); zero when there is no audio
func (s Segmenter) Count(duration float64) int {
	if duration <= 0 || math.IsNaN(duration) {
		return 0
	}
	n := int(math.Ceil(duration / s.Length()))
	if n < 1 {
		n = 1
	}
	return n
}

// Bounds returns [index*length, min((index+1)*length, duration)]
func (s Segmenter) Bounds(index int, duration float64) Segment {
	if index < 0 {
		index = 0
	}
	l := s.Length()
	start := float64(index) * l
	end := math.Min(float64(index+1)*l, duration)
	if end < start {
		end = start
	}
	return Segment{
		Index: index,
		Start: start,
		End:   end,
		Final: index == s.Count(duration)-1,
	}
}

// All returns every segment of a track of the given duration
func (s Segmenter) All(duration float64) []Segment {
	count := s.Count(duration)
	segments := make([]Segment, 0, count)
	for i := 0; i < count; i++ {
		segments = append(segments, s.Bounds(i, duration))
	}
	return segments
}

// Offset returns (t - seg.Start) / length: where t sits along the line.
// Unlike Position it stays correct for t == End on the final line.
func (s Segmenter) Offset(seg Segment, t float64) float64 {
	off := (t - seg.Start) / s.Length()
	if off < 0 {
		return 0
	}
	if off > 1 {
		return 1
	}
	return off
}

// TimeAt converts a click at fraction [0,1] along line index into a time
func (s Segmenter) TimeAt(index int, fraction float64) float64 {
	if index < 0 {
		index = 0
	}
	if fraction < 0 || math.IsNaN(fraction) {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	l := s.Length()
	return float64(index)*l + fraction*l
}

// FormatTime renders seconds as m:ss
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	mins := int(math.Floor(seconds / 60))
	secs := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", mins, secs)
}

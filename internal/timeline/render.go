// Package timeline assembles the read-only per-line model the views draw
// from: label, progress, waveform slice and stacked annotation markers.
package timeline

import (
	"github.com/franz/track-notes/internal/annotation"
	"github.com/franz/track-notes/internal/playback"
	"github.com/franz/track-notes/internal/segment"
	"github.com/franz/track-notes/internal/stacking"
	"github.com/franz/track-notes/internal/waveform"
)

// Input is everything Render reads. Nothing in it is modified.
type Input struct {
	Segmenter   segment.Segmenter
	Audio       playback.State
	Waveform    *waveform.Data
	Layers      []annotation.Layer
	Annotations []annotation.Annotation
	Stacking    stacking.State
}

// Model is the rendered timeline
type Model struct {
	SourceRef   string
	Duration    float64
	CurrentTime float64
	IsPlaying   bool
	// Current is the index of the line holding the playhead, -1 without audio
	Current int
	Lines   []Line
}

// Line is one fixed-length window of the track
type Line struct {
	Index    int
	Start    float64
	End      float64
	Label    string
	Current  bool
	Progress float64
	Waveform []float64
	Markers  []Marker
}

// Marker is an annotation placed on a line
type Marker struct {
	Annotation annotation.Annotation
	// Offset is the position along the full line length, in [0, 1]
	Offset    float64
	Priority  int
	Color     annotation.Color
	LayerName string
	Focused   bool
	Hovered   bool
}

// Render builds the model for every line of the loaded track
func Render(in Input) *Model {
	audio := in.Audio
	m := &Model{
		SourceRef:   audio.SourceRef,
		Duration:    audio.Duration,
		CurrentTime: audio.CurrentTime,
		IsPlaying:   audio.IsPlaying,
		Current:     -1,
	}

	segments := in.Segmenter.All(audio.Duration)
	if len(segments) == 0 {
		return m
	}
	m.Current = in.Segmenter.IndexAt(audio.CurrentTime, audio.Duration)

	layers := make(map[string]annotation.Layer, len(in.Layers))
	visible := make(map[string]bool, len(in.Layers))
	for _, l := range in.Layers {
		layers[l.ID] = l
		if l.IsVisible {
			visible[l.ID] = true
		}
	}

	m.Lines = make([]Line, 0, len(segments))
	for _, seg := range segments {
		line := Line{
			Index:    seg.Index,
			Start:    seg.Start,
			End:      seg.End,
			Label:    seg.Label(),
			Current:  seg.Index == m.Current,
			Waveform: in.Waveform.Slice(seg.Start, seg.End, audio.Duration),
		}

		switch {
		case line.Current:
			line.Progress = in.Segmenter.Offset(seg, audio.CurrentTime)
		case seg.Index < m.Current:
			line.Progress = 1
		}

		ordered := annotation.InSegment(in.Annotations, visible, seg)
		priorities := in.Stacking.Priorities(ordered)
		for _, a := range ordered {
			l := layers[a.LayerID]
			line.Markers = append(line.Markers, Marker{
				Annotation: a,
				Offset:     in.Segmenter.Offset(seg, a.Time),
				Priority:   priorities[a.ID],
				Color:      l.Color,
				LayerName:  l.Name,
				Focused:    a.ID == in.Stacking.Focused(),
				Hovered:    a.ID == in.Stacking.Hovered(),
			})
		}

		m.Lines = append(m.Lines, line)
	}

	return m
}

// LineAt returns the line covering t, or nil without audio
func (m *Model) LineAt(t float64) *Line {
	for i := range m.Lines {
		l := &m.Lines[i]
		if t >= l.Start && (t < l.End || i == len(m.Lines)-1) {
			return l
		}
	}
	return nil
}

package project

import (
	"context"
	"fmt"
	"time"

	"github.com/franz/track-notes/internal/annotation"
	"github.com/franz/track-notes/internal/playback"
	"github.com/franz/track-notes/internal/report"
	"github.com/franz/track-notes/internal/segment"
	"github.com/franz/track-notes/internal/stacking"
	"github.com/franz/track-notes/internal/timeline"
	"github.com/franz/track-notes/internal/util"
	"github.com/franz/track-notes/internal/waveform"
)

// Config wires a Session to its collaborators
type Config struct {
	// Handle is the media handle the clock mirrors. Required.
	Handle playback.Handle
	// Analyzer computes waveforms in the background. Nil disables analysis.
	Analyzer *waveform.Analyzer
	// Segmenter defaults to segment.DefaultLength lines
	Segmenter *segment.Segmenter
	// Events receives the audit trail. Nil discards it.
	Events *report.EventLogger
	// NewID overrides annotation and layer id generation
	NewID func() string
}

// Session is the context object for one open project. All project state is
// reached through it and it is only replaced wholesale through Load.
//
// A Session is not safe for concurrent use. Analysis results are produced on
// another goroutine but only applied through ApplyWaveform or AwaitWaveform
// on the session's own goroutine.
type Session struct {
	name         string
	createdAt    time.Time
	lastModified time.Time

	store     *annotation.Store
	clock     *playback.Clock
	analyzer  *waveform.Analyzer
	segmenter segment.Segmenter
	stacking  stacking.State
	events    *report.EventLogger
	newID     func() string

	source   string
	waveform *waveform.Data
	pending  waveform.Token
	started  time.Time
}

// New creates a session holding an empty, unnamed project
func New(cfg Config) *Session {
	sg := segment.New(segment.DefaultLength)
	if cfg.Segmenter != nil {
		sg = *cfg.Segmenter
	}

	s := &Session{
		clock:     playback.NewClock(cfg.Handle),
		analyzer:  cfg.Analyzer,
		segmenter: sg,
		events:    cfg.Events,
		newID:     cfg.NewID,
	}
	s.clock.OnWarning(func(err error) {
		s.events.LogWarning("playback", err)
	})
	s.store = s.newStore()

	now := time.Now().UTC()
	s.createdAt = now
	s.lastModified = now
	return s
}

func (s *Session) newStore() *annotation.Store {
	st := annotation.NewStore()
	if s.newID != nil {
		st.SetIDGenerator(s.newID)
	}
	return st
}

// Name returns the project name
func (s *Session) Name() string {
	return s.name
}

// Segmenter returns the line layout in use
func (s *Session) Segmenter() segment.Segmenter {
	return s.segmenter
}

// Load replaces the whole project with snap. Nothing changes if the snapshot
// is invalid. Playback always restarts paused; the saved position is restored
// once the source reports its duration.
func (s *Session) Load(ctx context.Context, snap *Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	st := s.newStore()
	if err := st.Replace(snap.Layers, snap.Annotations); err != nil {
		s.events.LogProject("load", snap.Name, snap.AudioURL, err)
		return err
	}

	s.store = st
	s.stacking = stacking.State{}
	s.name = snap.Name
	s.createdAt = snap.CreatedAt
	s.lastModified = snap.LastModified
	if s.createdAt.IsZero() {
		s.createdAt = time.Now().UTC()
	}
	if s.lastModified.IsZero() {
		s.lastModified = s.createdAt
	}

	s.events.LogProject("load", snap.Name, snap.AudioURL, nil)
	util.DebugLog("Loaded project %q: %d layers, %d annotations", snap.Name, len(snap.Layers), len(snap.Annotations))

	if err := s.LoadSource(ctx, snap.AudioURL); err != nil {
		return err
	}
	if t := snap.AudioState.CurrentTime; t > 0 {
		s.clock.Seek(t)
	}
	return nil
}

// Snapshot exports the current project
func (s *Session) Snapshot() *Snapshot {
	audio := s.clock.State()
	if audio.SourceRef == "" {
		audio.SourceRef = s.source
	}
	return &Snapshot{
		Name:         s.name,
		AudioURL:     s.source,
		CreatedAt:    s.createdAt,
		LastModified: s.lastModified,
		Layers:       s.store.Layers(),
		Annotations:  s.store.Annotations(),
		AudioState:   audio,
	}
}

// Rename changes the project name
func (s *Session) Rename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: project name is empty", util.ErrInvalidInput)
	}
	s.name = name
	s.touch()
	return nil
}

// LoadSource switches the audio source. Any in-flight analysis for the old
// source is cancelled and its result will be discarded.
func (s *Session) LoadSource(ctx context.Context, source string) error {
	if s.analyzer != nil {
		s.analyzer.Cancel()
	}
	s.pending = 0
	s.waveform = nil
	s.stacking = stacking.State{}
	s.source = source

	if err := s.clock.Load(source); err != nil {
		s.events.LogError(report.EventSource, source, err)
		return err
	}
	s.events.LogSource(source, s.clock.State().Duration)

	if s.analyzer != nil && source != "" {
		s.pending = s.analyzer.Start(ctx, source)
		s.started = time.Now()
	}
	return nil
}

// Source returns the current audio source reference
func (s *Session) Source() string {
	return s.source
}

// ApplyWaveform installs an analysis result if it belongs to the current
// source. Stale results are dropped and reported as false.
func (s *Session) ApplyWaveform(res waveform.Result) bool {
	if s.pending == 0 || res.Token != s.pending || (s.analyzer != nil && !s.analyzer.IsCurrent(res.Token)) {
		util.DebugLog("Discarding stale waveform for %s", res.Source)
		s.events.LogWaveform(res.Source, report.WaveformStale, res.Data.Len(), 0, nil)
		return false
	}

	data := res.Data
	if data == nil {
		data = waveform.Synthetic(0, 0, 0)
	}
	elapsed := time.Since(s.started)

	if res.Err != nil {
		util.WarnLog("Waveform unavailable for %s, using a flat placeholder: %v", res.Source, res.Err)
		s.events.LogWaveform(res.Source, report.WaveformSynthetic, data.Len(), elapsed, res.Err)
	} else {
		s.events.LogWaveform(res.Source, report.WaveformApplied, data.Len(), elapsed, nil)
	}

	if data.Duration <= 0 {
		d := *data
		d.Duration = s.clock.State().Duration
		data = &d
	}

	s.waveform = data
	s.pending = 0
	return true
}

// AwaitWaveform blocks until the pending analysis has been applied or ctx
// is done. Stale results received meanwhile are discarded.
func (s *Session) AwaitWaveform(ctx context.Context) error {
	if s.analyzer == nil {
		return nil
	}
	for s.pending != 0 {
		select {
		case res := <-s.analyzer.Results():
			s.ApplyWaveform(res)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// UseWaveform installs a precomputed envelope and abandons any pending analysis
func (s *Session) UseWaveform(data *waveform.Data) {
	if s.analyzer != nil {
		s.analyzer.Cancel()
	}
	s.pending = 0
	s.waveform = data
	s.events.LogWaveform(s.source, report.WaveformCached, data.Len(), 0, nil)
}

// Waveform returns the current envelope, or nil while none is available
func (s *Session) Waveform() *waveform.Data {
	return s.waveform
}

// WaveformPending reports whether an analysis is still running for the source
func (s *Session) WaveformPending() bool {
	return s.pending != 0
}

// Audio returns the playback state
func (s *Session) Audio() playback.State {
	return s.clock.State()
}

// Seek moves the playhead, clamped to the track
func (s *Session) Seek(t float64) float64 {
	t = s.clock.Seek(t)
	s.events.LogPlayback("seek", t)
	return t
}

// SeekLine seeks to a fraction along one timeline line
func (s *Session) SeekLine(index int, fraction float64) float64 {
	return s.Seek(s.segmenter.TimeAt(index, fraction))
}

// TogglePlayback flips play/pause. A rejected command leaves the state as it
// was and returns an error wrapping util.ErrClockDesync.
func (s *Session) TogglePlayback() error {
	if err := s.clock.TogglePlayback(); err != nil {
		return err
	}
	action := "pause"
	if s.clock.State().IsPlaying {
		action = "play"
	}
	s.events.LogPlayback(action, s.clock.State().CurrentTime)
	return nil
}

// Layers returns the layers in display order
func (s *Session) Layers() []annotation.Layer {
	return s.store.Layers()
}

// Layer looks up one layer
func (s *Session) Layer(id string) (annotation.Layer, bool) {
	return s.store.Layer(id)
}

// Annotations returns every annotation in insertion order
func (s *Session) Annotations() []annotation.Annotation {
	return s.store.Annotations()
}

// Annotation looks up one annotation
func (s *Session) Annotation(id string) (annotation.Annotation, bool) {
	return s.store.Annotation(id)
}

// AddAnnotation adds an annotation at the playhead on the active layer
func (s *Session) AddAnnotation(text string) (annotation.Annotation, error) {
	return s.AddAnnotationAt(s.clock.State().CurrentTime, text, "")
}

// AddAnnotationAt adds an annotation at t. An empty text gets the default
// text and an empty layerID means the active layer.
func (s *Session) AddAnnotationAt(t float64, text, layerID string) (annotation.Annotation, error) {
	if text == "" {
		text = annotation.DefaultText
	}
	a, err := s.store.Add(t, text, layerID)
	if err != nil {
		return a, err
	}
	s.touch()
	s.events.LogAnnotation("add", a.ID, a.LayerID, a.Time)
	return a, nil
}

// UpdateAnnotation replaces an annotation's text
func (s *Session) UpdateAnnotation(id, text string) error {
	if err := s.store.UpdateText(id, text); err != nil {
		return err
	}
	a, _ := s.store.Annotation(id)
	s.touch()
	s.events.LogAnnotation("update", id, a.LayerID, a.Time)
	return nil
}

// DeleteAnnotation removes an annotation and drops it from focus and hover
func (s *Session) DeleteAnnotation(id string) error {
	a, _ := s.store.Annotation(id)
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.stacking.Forget(id)
	s.touch()
	s.events.LogAnnotation("delete", id, a.LayerID, a.Time)
	return nil
}

// ReassignAnnotation moves an annotation to another layer
func (s *Session) ReassignAnnotation(id, layerID string) error {
	if err := s.store.Reassign(id, layerID); err != nil {
		return err
	}
	a, _ := s.store.Annotation(id)
	s.touch()
	s.events.LogAnnotation("reassign", id, layerID, a.Time)
	return nil
}

// CreateLayer adds a layer
func (s *Session) CreateLayer(name string, color annotation.Color) (annotation.Layer, error) {
	l, err := s.store.CreateLayer(name, color)
	if err != nil {
		return l, err
	}
	s.touch()
	s.events.LogLayer("create", l.ID, l.Name)
	return l, nil
}

// RenameLayer renames a layer
func (s *Session) RenameLayer(id, name string) error {
	return s.layerOp("rename", id, func() error { return s.store.RenameLayer(id, name) })
}

// SetLayerColor recolours a layer
func (s *Session) SetLayerColor(id string, color annotation.Color) error {
	return s.layerOp("color", id, func() error { return s.store.SetLayerColor(id, color) })
}

// DeleteLayer removes an empty layer
func (s *Session) DeleteLayer(id string) error {
	l, _ := s.store.Layer(id)
	if err := s.store.DeleteLayer(id); err != nil {
		return err
	}
	s.touch()
	s.events.LogLayer("delete", id, l.Name)
	return nil
}

// SetActiveLayer selects the layer new annotations go to
func (s *Session) SetActiveLayer(id string) error {
	return s.layerOp("activate", id, func() error { return s.store.SetActiveLayer(id) })
}

// ToggleLayer shows or hides one layer
func (s *Session) ToggleLayer(id string) error {
	return s.layerOp("toggle", id, func() error { return s.store.ToggleVisibility(id) })
}

// ToggleAllLayers shows every layer, or hides them all if all are visible
func (s *Session) ToggleAllLayers() {
	s.store.ToggleAllVisibility()
	s.touch()
	s.events.LogLayer("toggle-all", "", "")
}

func (s *Session) layerOp(action, id string, op func() error) error {
	if err := op(); err != nil {
		return err
	}
	l, _ := s.store.Layer(id)
	s.touch()
	s.events.LogLayer(action, id, l.Name)
	return nil
}

// ToggleFocus focuses an annotation, or clears focus if it already is
func (s *Session) ToggleFocus(id string) error {
	if _, ok := s.store.Annotation(id); !ok {
		return fmt.Errorf("%w: annotation %q", util.ErrNotFound, id)
	}
	s.stacking.ToggleFocus(id)
	return nil
}

// Focused returns the focused annotation id
func (s *Session) Focused() string {
	return s.stacking.Focused()
}

// HoverEnter raises an annotation while the pointer is over it
func (s *Session) HoverEnter(id string) {
	s.stacking.HoverEnter(id)
}

// HoverExit ends the hover raise
func (s *Session) HoverExit(id string) {
	s.stacking.HoverExit(id)
}

// Timeline renders the current state
func (s *Session) Timeline() *timeline.Model {
	return timeline.Render(timeline.Input{
		Segmenter:   s.segmenter,
		Audio:       s.clock.State(),
		Waveform:    s.waveform,
		Layers:      s.store.Layers(),
		Annotations: s.store.Annotations(),
		Stacking:    s.stacking,
	})
}

// Close cancels analysis and releases the media handle
func (s *Session) Close() {
	if s.analyzer != nil {
		s.analyzer.Close()
	}
	s.pending = 0
	s.clock.Close()
}

func (s *Session) touch() {
	s.lastModified = time.Now().UTC()
}

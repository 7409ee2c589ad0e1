package annotation

import (
	"fmt"
	"math"
	"strings"

	"github.com/franz/track-notes/internal/util"
	"github.com/google/uuid"
)

// Store is the single writer for annotations and layers. Every mutation
// validates before touching state, so a rejected call changes nothing, and
// every accepted call recomputes the layer counts from the annotation set.
//
// Store is not safe for concurrent use.
type Store struct {
	layers      []Layer
	annotations []Annotation
	newID       func() string
}

// NewStore creates a store holding only the default layer
func NewStore() *Store {
	return &Store{
		layers: []Layer{DefaultLayer()},
		newID:  uuid.NewString,
	}
}

// SetIDGenerator overrides how ids are minted for new annotations and layers
func (s *Store) SetIDGenerator(fn func() string) {
	if fn == nil {
		fn = uuid.NewString
	}
	s.newID = fn
}

// Replace swaps in a whole new layer and annotation set. Stored counts are
// ignored and recomputed; the first active layer stays active (or the first
// layer if none is). Nothing changes if validation fails.
func (s *Store) Replace(layers []Layer, annotations []Annotation) error {
	if len(layers) == 0 {
		return fmt.Errorf("%w: at least one layer is required", util.ErrInvalidProject)
	}

	newLayers := make([]Layer, len(layers))
	known := make(map[string]bool, len(layers))
	activeSeen := false
	for i, l := range layers {
		if l.ID == "" {
			return fmt.Errorf("%w: layer %d has no id", util.ErrInvalidProject, i)
		}
		if known[l.ID] {
			return fmt.Errorf("%w: duplicate layer id %q", util.ErrInvalidProject, l.ID)
		}
		known[l.ID] = true

		l.IsActive = l.IsActive && !activeSeen
		activeSeen = activeSeen || l.IsActive
		newLayers[i] = l
	}
	if !activeSeen {
		newLayers[0].IsActive = true
	}

	newAnnotations := make([]Annotation, len(annotations))
	seen := make(map[string]bool, len(annotations))
	for i, a := range annotations {
		if a.ID == "" || seen[a.ID] {
			return fmt.Errorf("%w: annotation %d has a missing or duplicate id", util.ErrInvalidProject, i)
		}
		seen[a.ID] = true
		if err := validTime(a.Time); err != nil {
			return err
		}
		if !known[a.LayerID] {
			return fmt.Errorf("%w: annotation %s references missing layer %q", util.ErrInvalidReference, a.ID, a.LayerID)
		}
		newAnnotations[i] = a
	}

	s.layers = newLayers
	s.annotations = newAnnotations
	s.recount()
	return nil
}

// Layers returns a copy of the layers in display order
func (s *Store) Layers() []Layer {
	out := make([]Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Layer looks up a layer by id
func (s *Store) Layer(id string) (Layer, bool) {
	if i := s.layerIndex(id); i >= 0 {
		return s.layers[i], true
	}
	return Layer{}, false
}

// ActiveLayer returns the layer new annotations go to
func (s *Store) ActiveLayer() Layer {
	for _, l := range s.layers {
		if l.IsActive {
			return l
		}
	}
	return s.layers[0]
}

// Annotations returns a copy of all annotations in insertion order
func (s *Store) Annotations() []Annotation {
	out := make([]Annotation, len(s.annotations))
	copy(out, s.annotations)
	return out
}

// Annotation looks up an annotation by id
func (s *Store) Annotation(id string) (Annotation, bool) {
	if i := s.annotationIndex(id); i >= 0 {
		return s.annotations[i], true
	}
	return Annotation{}, false
}

// Add creates an annotation at time t. An empty layerID means the active layer.
func (s *Store) Add(t float64, text, layerID string) (Annotation, error) {
	if err := validTime(t); err != nil {
		return Annotation{}, err
	}
	if layerID == "" {
		layerID = s.ActiveLayer().ID
	}
	if s.layerIndex(layerID) < 0 {
		return Annotation{}, fmt.Errorf("%w: layer %q does not exist", util.ErrInvalidReference, layerID)
	}

	a := Annotation{
		ID:      s.newID(),
		Time:    t,
		Text:    text,
		LayerID: layerID,
	}
	s.annotations = append(s.annotations, a)
	s.recount()
	return a, nil
}

// UpdateText replaces an annotation's text
func (s *Store) UpdateText(id, text string) error {
	i := s.annotationIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: annotation %q", util.ErrNotFound, id)
	}
	s.annotations[i].Text = text
	return nil
}

// Delete removes an annotation
func (s *Store) Delete(id string) error {
	i := s.annotationIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: annotation %q", util.ErrNotFound, id)
	}
	s.annotations = append(s.annotations[:i:i], s.annotations[i+1:]...)
	s.recount()
	return nil
}

// Reassign moves an annotation to another layer
func (s *Store) Reassign(id, layerID string) error {
	i := s.annotationIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: annotation %q", util.ErrNotFound, id)
	}
	if s.layerIndex(layerID) < 0 {
		return fmt.Errorf("%w: layer %q does not exist", util.ErrInvalidReference, layerID)
	}
	s.annotations[i].LayerID = layerID
	s.recount()
	return nil
}

// CreateLayer appends a visible, inactive layer
func (s *Store) CreateLayer(name string, color Color) (Layer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Layer{}, fmt.Errorf("%w: layer name is empty", util.ErrInvalidInput)
	}

	l := Layer{
		ID:        s.newID(),
		Name:      name,
		Color:     color,
		IsVisible: true,
	}
	s.layers = append(s.layers, l)
	return l, nil
}

// RenameLayer changes a layer's name
func (s *Store) RenameLayer(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: layer name is empty", util.ErrInvalidInput)
	}
	i := s.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: layer %q", util.ErrNotFound, id)
	}
	s.layers[i].Name = name
	return nil
}

// SetLayerColor changes a layer's colour
func (s *Store) SetLayerColor(id string, color Color) error {
	i := s.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: layer %q", util.ErrNotFound, id)
	}
	s.layers[i].Color = color
	return nil
}

// DeleteLayer removes an empty layer. Layers that still hold annotations and
// the last remaining layer cannot be deleted. Deleting the active layer
// activates the first one left.
func (s *Store) DeleteLayer(id string) error {
	i := s.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: layer %q", util.ErrNotFound, id)
	}
	if n := s.layers[i].AnnotationCount; n > 0 {
		return fmt.Errorf("%w: layer %q still has %d annotations", util.ErrInvalidReference, s.layers[i].Name, n)
	}
	if len(s.layers) == 1 {
		return fmt.Errorf("%w: cannot delete the last layer", util.ErrInvalidReference)
	}

	wasActive := s.layers[i].IsActive
	s.layers = append(s.layers[:i:i], s.layers[i+1:]...)
	if wasActive {
		s.layers[0].IsActive = true
	}
	return nil
}

// SetActiveLayer makes id the only active layer
func (s *Store) SetActiveLayer(id string) error {
	i := s.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: layer %q", util.ErrNotFound, id)
	}
	for j := range s.layers {
		s.layers[j].IsActive = j == i
	}
	return nil
}

// ToggleVisibility shows or hides one layer
func (s *Store) ToggleVisibility(id string) error {
	i := s.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: layer %q", util.ErrNotFound, id)
	}
	s.layers[i].IsVisible = !s.layers[i].IsVisible
	return nil
}

// ToggleAllVisibility hides every layer if all are visible, otherwise shows all
func (s *Store) ToggleAllVisibility() {
	all := true
	for _, l := range s.layers {
		all = all && l.IsVisible
	}
	for i := range s.layers {
		s.layers[i].IsVisible = !all
	}
}

// VisibleLayerIDs returns the set of visible layer ids
func (s *Store) VisibleLayerIDs() map[string]bool {
	visible := make(map[string]bool, len(s.layers))
	for _, l := range s.layers {
		if l.IsVisible {
			visible[l.ID] = true
		}
	}
	return visible
}

// CountByLayer counts annotations per layer id, including layers with none
func (s *Store) CountByLayer() map[string]int {
	counts := CountByLayer(s.annotations)
	for _, l := range s.layers {
		if _, ok := counts[l.ID]; !ok {
			counts[l.ID] = 0
		}
	}
	return counts
}

func (s *Store) recount() {
	counts := CountByLayer(s.annotations)
	for i := range s.layers {
		s.layers[i].AnnotationCount = counts[s.layers[i].ID]
	}
}

func (s *Store) layerIndex(id string) int {
	for i, l := range s.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) annotationIndex(id string) int {
	for i, a := range s.annotations {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func validTime(t float64) error {
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: annotation time %v must be a finite value >= 0", util.ErrInvalidInput, t)
	}
	return nil
}

package stacking

import "github.com/franz/track-notes/internal/annotation"

// State holds the user's focus selection and the transient hover target.
// Neither is persisted.
type State struct {
	focused string
	hovered string
}

// Focused returns the focused annotation id, or "" when nothing is focused
func (s *State) Focused() string {
	return s.focused
}

// Hovered returns the hovered annotation id, or ""
func (s *State) Hovered() string {
	return s.hovered
}

// ToggleFocus focuses id, or clears focus if id is already focused
func (s *State) ToggleFocus(id string) {
	if s.focused == id {
		s.focused = ""
		return
	}
	s.focused = id
}

// ClearFocus drops the focus selection
func (s *State) ClearFocus() {
	s.focused = ""
}

// Forget clears focus and hover if they point at id
func (s *State) Forget(id string) {
	if s.focused == id {
		s.focused = ""
	}
	if s.hovered == id {
		s.hovered = ""
	}
}

// HoverEnter marks id as hovered
func (s *State) HoverEnter(id string) {
	s.hovered = id
}

// HoverExit ends the hover on id. Exiting a different id is ignored.
func (s *State) HoverExit(id string) {
	if s.hovered == id {
		s.hovered = ""
	}
}

// Priorities resolves one line and applies the hover boost on top. The boost
// is recomputed from Resolve on every call, so it never outlives the hover.
func (s *State) Priorities(ordered []annotation.Annotation) map[string]int {
	priorities := Resolve(ordered, s.focused)
	if s.hovered == "" || s.hovered == s.focused {
		return priorities
	}
	if _, ok := priorities[s.hovered]; ok {
		priorities[s.hovered] = HoverPriority(len(ordered))
	}
	return priorities
}

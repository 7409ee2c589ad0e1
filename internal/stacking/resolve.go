// Package stacking decides the draw order of overlapping annotation markers
// within one timeline line.
package stacking

import "github.com/franz/track-notes/internal/annotation"

// FocusBase is the priority floor of the focused annotation. Lines with more
// markers than that push it higher so focus always wins.
const FocusBase = 1000

// FocusPriority returns the priority a focused marker gets on a line of n markers
func FocusPriority(n int) int {
	if n+2 > FocusBase {
		return n + 2
	}
	return FocusBase
}

// HoverPriority sits directly below focus and above every default priority
func HoverPriority(n int) int {
	return FocusPriority(n) - 1
}

// Resolve maps each annotation id to its z-priority. ordered must already be
// time-ordered; position i gets priority i+1. A focusedID present in the list
// gets FocusPriority instead.
func Resolve(ordered []annotation.Annotation, focusedID string) map[string]int {
	priorities := make(map[string]int, len(ordered))
	for i, a := range ordered {
		priorities[a.ID] = i + 1
	}
	if _, ok := priorities[focusedID]; ok && focusedID != "" {
		priorities[focusedID] = FocusPriority(len(ordered))
	}
	return priorities
}

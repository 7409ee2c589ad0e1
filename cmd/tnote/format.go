package main

import (
	"sort"

	"github.com/franz/track-notes/internal/annotation"
	"github.com/franz/track-notes/internal/segment"
)

const shortIDLength = 8

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "unknown"
	}
	return segment.FormatTime(seconds)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// sortedAnnotations orders by time, keeping insertion order for ties
func sortedAnnotations(anns []annotation.Annotation) []annotation.Annotation {
	out := make([]annotation.Annotation, len(anns))
	copy(out, anns)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})
	return out
}

package annotation

import (
	"sort"

	"github.com/franz/track-notes/internal/segment"
)

// InSegment returns the annotations inside seg whose layer is visible,
// ordered by time. Equal times keep their input (insertion) order.
func InSegment(annotations []Annotation, visible map[string]bool, seg segment.Segment) []Annotation {
	var out []Annotation
	for _, a := range annotations {
		if visible[a.LayerID] && seg.Contains(a.Time) {
			out = append(out, a)
		}
	}
	sortByTime(out)
	return out
}

// CountByLayer counts annotations per layer id
func CountByLayer(annotations []Annotation) map[string]int {
	counts := make(map[string]int)
	for _, a := range annotations {
		counts[a.LayerID]++
	}
	return counts
}

// InSegment applies the store's current layer visibility to one segment
func (s *Store) InSegment(seg segment.Segment) []Annotation {
	return InSegment(s.annotations, s.VisibleLayerIDs(), seg)
}

// Buckets splits the visible annotations into one time-ordered slice per
// line of a track lasting duration. Annotations past the end are dropped.
func (s *Store) Buckets(sg segment.Segmenter, duration float64) [][]Annotation {
	count := sg.Count(duration)
	buckets := make([][]Annotation, count)
	if count == 0 {
		return buckets
	}

	visible := s.VisibleLayerIDs()
	for _, a := range s.annotations {
		if !visible[a.LayerID] || a.Time > duration {
			continue
		}
		idx := sg.IndexAt(a.Time, duration)
		buckets[idx] = append(buckets[idx], a)
	}

	for i := range buckets {
		sortByTime(buckets[i])
	}
	return buckets
}

func sortByTime(annotations []Annotation) {
	sort.SliceStable(annotations, func(i, j int) bool {
		return annotations[i].Time < annotations[j].Time
	})
}

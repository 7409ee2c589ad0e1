package segment

import (
	"math"
	"testing"
)

func TestIndexOfAndPosition(t *testing.T) {
	s := New(30)

	times := []float64{0, 0.5, 12.25, 29.999, 30, 45, 59.5, 60, 61.25, 599.75, 1234.5}
	for _, tm := range times {
		idx := s.IndexOf(tm)
		lo := float64(idx) * 30
		hi := float64(idx+1) * 30
		if !(lo <= tm && tm < hi) {
			t.Errorf("IndexOf(%v) = %d, expected %v <= t < %v", tm, idx, lo, hi)
		}

		pos := s.Position(tm)
		if pos < 0 || pos >= 1 {
			t.Errorf("Position(%v) = %v, expected value in [0,1)", tm, pos)
		}
	}

	if got := s.Position(45); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Position(45) = %v, expected 0.5", got)
	}
}

func TestCount(t *testing.T) {
	s := New(30)

	tests := []struct {
		duration float64
		expected int
	}{
		{0, 0},
		{-3, 0},
		{0.1, 1},
		{30, 1},
		{30.01, 2},
		{60, 2},
		{65, 3},
	}

	for _, tt := range tests {
		if got := s.Count(tt.duration); got != tt.expected {
			t.Errorf("Count(%v) = %d, expected %d", tt.duration, got, tt.expected)
		}
	}
}

func TestIndexAt_ClampsToLastLine(t *testing.T) {
	s := New(30)

	if got := s.IndexAt(65, 65); got != 2 {
		t.Errorf("IndexAt(65, 65) = %d, expected 2", got)
	}
	if got := s.IndexAt(60, 60); got != 1 {
		t.Errorf("IndexAt(60, 60) = %d, expected 1 (clamped)", got)
	}
	if got := s.IndexAt(500, 120); got != 3 {
		t.Errorf("IndexAt(500, 120) = %d, expected 3", got)
	}
	if got := s.IndexAt(10, 0); got != 0 {
		t.Errorf("IndexAt with no audio = %d, expected 0", got)
	}
}

func TestBounds(t *testing.T) {
	s := New(30)

	tests := []struct {
		index      int
		duration   float64
		start, end float64
		final      bool
	}{
		{0, 65, 0, 30, false},
		{1, 65, 30, 60, false},
		{2, 65, 60, 65, true},
		{0, 20, 0, 20, true},
	}

	for _, tt := range tests {
		seg := s.Bounds(tt.index, tt.duration)
		if seg.Start != tt.start || seg.End != tt.end || seg.Final != tt.final {
			t.Errorf("Bounds(%d, %v) = %+v, expected [%v,%v] final=%v",
				tt.index, tt.duration, seg, tt.start, tt.end, tt.final)
		}
		if seg.End-seg.Start > 30 {
			t.Errorf("segment %d longer than the line length", tt.index)
		}
	}
}

func TestSegmentContains(t *testing.T) {
	s := New(30)
	first := s.Bounds(0, 65)
	last := s.Bounds(2, 65)

	if !first.Contains(0) || !first.Contains(29.9) {
		t.Error("first segment should contain its interior")
	}
	if first.Contains(30) {
		t.Error("segment end is exclusive for non-final lines")
	}
	if !last.Contains(65) {
		t.Error("final segment should own t == duration")
	}
	if last.Contains(65.1) {
		t.Error("final segment should not contain times past the end")
	}
}

func TestAll(t *testing.T) {
	segs := New(30).All(65)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	for i, seg := range segs {
		if seg.Index != i {
			t.Errorf("segment %d has index %d", i, seg.Index)
		}
	}
	if len(New(30).All(0)) != 0 {
		t.Error("expected no segments for zero duration")
	}
}

func TestOffsetAndTimeAt(t *testing.T) {
	s := New(30)
	last := s.Bounds(1, 60)

	if got := s.Offset(last, 60); got != 1 {
		t.Errorf("Offset at end of final line = %v, expected 1", got)
	}
	if got := s.Offset(last, 45); got != 0.5 {
		t.Errorf("Offset(45) = %v, expected 0.5", got)
	}

	if got := s.TimeAt(2, 0.5); got != 75 {
		t.Errorf("TimeAt(2, 0.5) = %v, expected 75", got)
	}
	if got := s.TimeAt(1, 3); got != 60 {
		t.Errorf("TimeAt clamps fraction, got %v", got)
	}
}

func TestNew_DefaultLength(t *testing.T) {
	if got := New(0).Length(); got != DefaultLength {
		t.Errorf("New(0).Length() = %v, expected %v", got, DefaultLength)
	}
	var zero Segmenter
	if got := zero.Length(); got != DefaultLength {
		t.Errorf("zero Segmenter length = %v, expected %v", got, DefaultLength)
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "0:00"},
		{5.9, "0:05"},
		{65, "1:05"},
		{600, "10:00"},
		{3725, "62:05"},
		{-1, "0:00"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.expected {
			t.Errorf("FormatTime(%v) = %q, expected %q", tt.seconds, got, tt.expected)
		}
	}

	if got := New(30).Bounds(2, 65).Label(); got != "1:00 - 1:05" {
		t.Errorf("Label() = %q", got)
	}
}

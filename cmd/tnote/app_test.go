package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/franz/track-notes/internal/annotation"
	"github.com/franz/track-notes/internal/util"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"94.5", 94.5, false},
		{"0", 0, false},
		{"1:34.5", 94.5, false},
		{"1:02:03", 3723, false},
		{" 2:00 ", 120, false},
		{"", 0, true},
		{"-3", 0, true},
		{"1:60", 0, true},
		{"a:10", 0, true},
		{"1:2:3:4", 0, true},
		{"NaN", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTime(tt.in)
			if tt.wantErr {
				if !errors.Is(err, util.ErrInvalidInput) {
					t.Errorf("parseTime(%q) error = %v, want ErrInvalidInput", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTime(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func sampleAnnotations() []annotation.Annotation {
	return []annotation.Annotation{
		{ID: "3f2a9c1e-aaaa", Time: 40, Text: "bridge", LayerID: "default"},
		{ID: "3f2b0000-bbbb", Time: 5, Text: "intro", LayerID: "default"},
		{ID: "77c1d2e3-cccc", Time: 12, Text: "snare", LayerID: "9d8e7f60-dddd"},
	}
}

func sampleLayers() []annotation.Layer {
	drums := annotation.Layer{ID: "9d8e7f60-dddd", Name: "Drums", IsVisible: true}
	return []annotation.Layer{annotation.DefaultLayer(), drums}
}

func TestResolveAnnotation(t *testing.T) {
	anns := sampleAnnotations()

	a, err := resolveAnnotation(anns, "77c")
	if err != nil || a.Text != "snare" {
		t.Errorf("resolveAnnotation(77c) = %+v, %v", a, err)
	}

	a, err = resolveAnnotation(anns, "3f2b0000-bbbb")
	if err != nil || a.Text != "intro" {
		t.Errorf("exact id lookup = %+v, %v", a, err)
	}

	if _, err := resolveAnnotation(anns, "3f2"); !errors.Is(err, util.ErrInvalidInput) {
		t.Errorf("ambiguous prefix error = %v, want ErrInvalidInput", err)
	}
	if _, err := resolveAnnotation(anns, "zzz"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("missing id error = %v, want ErrNotFound", err)
	}
	if _, err := resolveAnnotation(anns, ""); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("empty ref error = %v, want ErrNotFound", err)
	}
}

func TestResolveLayer(t *testing.T) {
	layers := sampleLayers()

	tests := []struct {
		ref    string
		wantID string
		err    error
	}{
		{"default", "default", nil},
		{"drums", "9d8e7f60-dddd", nil},
		{"DRUMS", "9d8e7f60-dddd", nil},
		{"9d8", "9d8e7f60-dddd", nil},
		{"Bass", "", util.ErrNotFound},
	}

	for _, tt := range tests {
		l, err := resolveLayer(layers, tt.ref)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Errorf("resolveLayer(%q) error = %v, want %v", tt.ref, err, tt.err)
			}
			continue
		}
		if err != nil || l.ID != tt.wantID {
			t.Errorf("resolveLayer(%q) = %q, %v; want %q", tt.ref, l.ID, err, tt.wantID)
		}
	}

	dup := append(sampleLayers(), annotation.Layer{ID: "x1", Name: "drums"})
	if _, err := resolveLayer(dup, "drums"); !errors.Is(err, util.ErrInvalidInput) {
		t.Errorf("duplicate name error = %v, want ErrInvalidInput", err)
	}
}

func TestCrossed(t *testing.T) {
	layers := []annotation.Layer{
		{ID: "default", Name: "Default", IsVisible: true},
		{ID: "9d8e7f60-dddd", Name: "Drums", IsVisible: false},
	}
	anns := sampleAnnotations()

	got := crossed(layers, anns, 0, 45, false)
	if len(got) != 2 || got[0].Text != "intro" || got[1].Text != "bridge" {
		t.Errorf("crossed(0, 45) = %+v, want intro then bridge (drums hidden)", got)
	}

	if got := crossed(layers, anns, 5, 10, false); len(got) != 0 {
		t.Errorf("crossed(5, 10) = %+v, want none (start is exclusive)", got)
	}
	if got := crossed(layers, anns, 5, 5, true); len(got) != 1 {
		t.Errorf("crossed(5, 5, inclusive) = %+v, want intro", got)
	}
}

func TestPrintCrossed(t *testing.T) {
	var buf bytes.Buffer
	printCrossed(&buf, sampleLayers(), sampleAnnotations(), 10, 15, false)

	if got := buf.String(); !strings.Contains(got, "0:12  [Drums] snare") {
		t.Errorf("printCrossed output = %q", got)
	}
}

func TestSortedAnnotationsStable(t *testing.T) {
	anns := []annotation.Annotation{
		{ID: "b", Time: 3},
		{ID: "a", Time: 1},
		{ID: "c", Time: 3},
	}
	got := sortedAnnotations(anns)
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Errorf("sortedAnnotations = %+v", got)
	}
	if anns[0].ID != "b" {
		t.Error("sortedAnnotations mutated its input")
	}
}

func TestShortIDAndDuration(t *testing.T) {
	if got := shortID("3f2a9c1e-1234-5678"); got != "3f2a9c1e" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("default"); got != "default" {
		t.Errorf("shortID(default) = %q", got)
	}
	if got := formatDuration(0); got != "unknown" {
		t.Errorf("formatDuration(0) = %q", got)
	}
	if got := formatDuration(75); got != "1:15" {
		t.Errorf("formatDuration(75) = %q", got)
	}
}

func TestPollFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- pollFile(ctx, path, 10*time.Millisecond, func() {
			calls.Add(1)
			cancel()
		})
	}()

	// Push the mtime forward so coarse filesystem clocks still see a change
	time.Sleep(30 * time.Millisecond)
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	if err := <-done; err != nil {
		t.Fatalf("pollFile returned %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("onChange called %d times, want 1", calls.Load())
	}
}

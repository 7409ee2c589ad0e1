package stacking

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/franz/track-notes/internal/annotation"
)

func line() []annotation.Annotation {
	return []annotation.Annotation{
		{ID: "a", Time: 5},
		{ID: "b", Time: 7},
		{ID: "c", Time: 9},
	}
}

func TestResolveDefault(t *testing.T) {
	got := Resolve(line(), "")
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}

func TestFocusToggle(t *testing.T) {
	var s State

	if got := s.Priorities(line()); !reflect.DeepEqual(got, map[string]int{"a": 1, "b": 2, "c": 3}) {
		t.Errorf("no focus: %v", got)
	}

	s.ToggleFocus("b")
	got := s.Priorities(line())
	if got["a"] != 1 || got["c"] != 3 {
		t.Errorf("focus b changed other priorities: %v", got)
	}
	for id, p := range got {
		if id != "b" && p >= got["b"] {
			t.Errorf("%s priority %d not below focused b (%d)", id, p, got["b"])
		}
	}

	s.ToggleFocus("b")
	if s.Focused() != "" {
		t.Errorf("focus not cleared: %q", s.Focused())
	}
	if got := s.Priorities(line()); !reflect.DeepEqual(got, map[string]int{"a": 1, "b": 2, "c": 3}) {
		t.Errorf("after toggle back: %v", got)
	}
}

func TestFocusMoves(t *testing.T) {
	var s State
	s.ToggleFocus("a")
	s.ToggleFocus("c")
	if s.Focused() != "c" {
		t.Errorf("Focused = %q, want c", s.Focused())
	}
	got := s.Priorities(line())
	if got["a"] != 1 || got["c"] != FocusPriority(3) {
		t.Errorf("unexpected priorities: %v", got)
	}
}

func TestFocusAbsentFromLine(t *testing.T) {
	got := Resolve(line(), "elsewhere")
	if !reflect.DeepEqual(got, map[string]int{"a": 1, "b": 2, "c": 3}) {
		t.Errorf("focus on another line changed this one: %v", got)
	}
	if _, ok := got["elsewhere"]; ok {
		t.Error("focused id from another line was added")
	}
}

func TestFocusBeatsLargeLines(t *testing.T) {
	var anns []annotation.Annotation
	for i := 0; i < 1500; i++ {
		anns = append(anns, annotation.Annotation{ID: fmt.Sprintf("n%d", i), Time: float64(i)})
	}
	got := Resolve(anns, "n3")
	for id, p := range got {
		if id != "n3" && p >= got["n3"] {
			t.Fatalf("%s priority %d >= focused %d", id, p, got["n3"])
		}
	}
}

func TestHoverRevertsExactly(t *testing.T) {
	var s State
	before := s.Priorities(line())

	s.HoverEnter("a")
	during := s.Priorities(line())
	if during["a"] <= during["c"] {
		t.Errorf("hovered a (%d) not above c (%d)", during["a"], during["c"])
	}

	s.HoverExit("a")
	after := s.Priorities(line())
	if !reflect.DeepEqual(before, after) {
		t.Errorf("hover drifted: before %v after %v", before, after)
	}
}

func TestHoverStaysBelowFocus(t *testing.T) {
	var s State
	s.ToggleFocus("b")
	s.HoverEnter("a")

	got := s.Priorities(line())
	if got["a"] >= got["b"] {
		t.Errorf("hover %d reached focus %d", got["a"], got["b"])
	}

	// Hovering the focused marker does nothing extra
	s.HoverEnter("b")
	got = s.Priorities(line())
	if got["b"] != FocusPriority(3) || got["a"] != 1 {
		t.Errorf("unexpected priorities: %v", got)
	}
}

func TestHoverExitOtherIgnored(t *testing.T) {
	var s State
	s.HoverEnter("a")
	s.HoverExit("b")
	if s.Hovered() != "a" {
		t.Errorf("Hovered = %q, want a", s.Hovered())
	}
}

func TestForget(t *testing.T) {
	var s State
	s.ToggleFocus("a")
	s.HoverEnter("a")
	s.Forget("b")
	if s.Focused() != "a" {
		t.Error("Forget cleared an unrelated focus")
	}
	s.Forget("a")
	if s.Focused() != "" || s.Hovered() != "" {
		t.Errorf("Forget left focus=%q hover=%q", s.Focused(), s.Hovered())
	}
}

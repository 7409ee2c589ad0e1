package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var decoded Event
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("Line %d is not valid JSON: %v\nLine: %s", len(events)+1, err, scanner.Text())
		}
		events = append(events, decoded)
	}
	return events
}

func newTestLogger(t *testing.T, minLevel EventLevel) *EventLogger {
	t.Helper()
	logger, err := NewEventLogger(t.TempDir(), minLevel)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

func TestNewEventLogger(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)

	if logger.path == "" {
		t.Error("EventLogger path is empty")
	}

	if _, err := os.Stat(logger.path); os.IsNotExist(err) {
		t.Errorf("Event log file was not created at %s", logger.path)
	}

	filename := filepath.Base(logger.path)
	if len(filename) < len("events-20060102-150405.jsonl") {
		t.Errorf("Event log filename format incorrect: %s", filename)
	}
}

func TestEventLogger_Log(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)

	event := &Event{
		Timestamp:    time.Now(),
		Level:        LevelInfo,
		Event:        EventAnnotation,
		AnnotationID: "ann-1",
		LayerID:      "default",
		Time:         12.5,
	}

	if err := logger.Log(event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	logger.Close()

	events := readEvents(t, logger.path)
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].AnnotationID != "ann-1" {
		t.Errorf("Expected annotation_id 'ann-1', got '%s'", events[0].AnnotationID)
	}
	if events[0].Time != 12.5 {
		t.Errorf("Expected time 12.5, got %v", events[0].Time)
	}
}

func TestEventLogger_ConcurrentWrites(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)

	const numGoroutines = 10
	const eventsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				if err := logger.LogPlayback("seek", float64(id*100+j)); err != nil {
					t.Errorf("Concurrent log failed: %v", err)
				}
			}
		}(i)
	}

	wg.Wait()
	logger.Close()

	expected := numGoroutines * eventsPerGoroutine
	if got := len(readEvents(t, logger.path)); got != expected {
		t.Errorf("Expected %d events, got %d", expected, got)
	}
}

func TestEventLogger_LogProject(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)

	if err := logger.LogProject("import", "demo", "song.mp3", nil); err != nil {
		t.Fatalf("LogProject failed: %v", err)
	}
	if err := logger.LogProject("import", "broken", "", errors.New("missing layers")); err != nil {
		t.Fatalf("LogProject failed: %v", err)
	}
	logger.Close()

	events := readEvents(t, logger.path)
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Level != LevelInfo || events[0].Project != "demo" || events[0].Action != "import" {
		t.Errorf("Unexpected success event: %+v", events[0])
	}
	if events[1].Level != LevelError || events[1].Error != "missing layers" {
		t.Errorf("Unexpected failure event: %+v", events[1])
	}
}

func TestEventLogger_LogLayer(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)

	if err := logger.LogLayer("rename", "layer-1", "Chorus"); err != nil {
		t.Fatalf("LogLayer failed: %v", err)
	}
	logger.Close()

	events := readEvents(t, logger.path)
	if events[0].Event != EventLayer {
		t.Errorf("Expected event type 'layer', got '%s'", events[0].Event)
	}
	if events[0].Extra["name"] != "Chorus" {
		t.Errorf("Expected name 'Chorus', got '%s'", events[0].Extra["name"])
	}
}

func TestEventLogger_LogWaveformLevels(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)

	logger.LogWaveform("a.mp3", WaveformApplied, 10000, 250*time.Millisecond, nil)
	logger.LogWaveform("b.mp3", WaveformStale, 10000, 0, nil)
	logger.LogWaveform("c.mp3", WaveformSynthetic, 10000, 0, errors.New("decode failed"))
	logger.Close()

	events := readEvents(t, logger.path)
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}

	want := []EventLevel{LevelInfo, LevelDebug, LevelWarning}
	for i, e := range events {
		if e.Level != want[i] {
			t.Errorf("event %d level = %s, want %s", i, e.Level, want[i])
		}
	}
	if events[0].Duration != 250 {
		t.Errorf("Expected duration 250 ms, got %d ms", events[0].Duration)
	}
	if events[0].Extra["values"] != "10000" {
		t.Errorf("Expected values '10000', got '%s'", events[0].Extra["values"])
	}
	if events[2].Error != "decode failed" {
		t.Errorf("Expected error message, got '%s'", events[2].Error)
	}
}

func TestEventLogger_LogWarning(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)

	if err := logger.LogWarning("clock desync", errors.New("no source")); err != nil {
		t.Fatalf("LogWarning failed: %v", err)
	}
	logger.Close()

	events := readEvents(t, logger.path)
	if events[0].Level != LevelWarning || events[0].Reason != "clock desync" {
		t.Errorf("Unexpected warning event: %+v", events[0])
	}
}

func TestEventLogger_NullLogger(t *testing.T) {
	logger := NullLogger()

	if err := logger.Log(&Event{Level: LevelInfo, Event: EventSource}); err != nil {
		t.Errorf("NullLogger.Log should not return error, got: %v", err)
	}
	if err := logger.LogSource("song.mp3", 120); err != nil {
		t.Errorf("NullLogger.LogSource should not return error, got: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("NullLogger.Close should not return error, got: %v", err)
	}
	if path := logger.Path(); path != "" {
		t.Errorf("NullLogger.Path should return empty string, got: %s", path)
	}
}

func TestEventLogger_AutoTimestamp(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)

	if err := logger.Log(&Event{Level: LevelInfo, Event: EventSource}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	logger.Close()

	decoded := readEvents(t, logger.path)[0]
	if decoded.Timestamp.IsZero() {
		t.Error("Expected timestamp to be auto-set, but it's zero")
	}
	if time.Since(decoded.Timestamp) > 5*time.Second {
		t.Errorf("Timestamp is too old: %v", decoded.Timestamp)
	}
}

func TestEventLogger_LogLevelFiltering(t *testing.T) {
	all := []Event{
		{Level: LevelDebug, Event: EventPlayback},
		{Level: LevelInfo, Event: EventAnnotation},
		{Level: LevelWarning, Event: EventWarning},
		{Level: LevelError, Event: EventError},
	}

	testCases := []struct {
		name          string
		minLevel      EventLevel
		expectedCount int
	}{
		{"LevelDebug logs all", LevelDebug, 4},
		{"LevelInfo skips debug", LevelInfo, 3},
		{"LevelWarning skips debug and info", LevelWarning, 2},
		{"LevelError only logs errors", LevelError, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger := newTestLogger(t, tc.minLevel)
			for _, e := range all {
				if err := logger.Log(&e); err != nil {
					t.Fatalf("Log failed: %v", err)
				}
			}
			logger.Close()

			if got := len(readEvents(t, logger.path)); got != tc.expectedCount {
				t.Errorf("Expected %d events, got %d", tc.expectedCount, got)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("warning") != LevelWarning {
		t.Error("ParseLevel(warning) failed")
	}
	if ParseLevel("loud") != LevelInfo {
		t.Error("unknown level should default to info")
	}
}

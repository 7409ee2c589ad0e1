package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventProject    EventType = "project"
	EventSource     EventType = "source"
	EventAnnotation EventType = "annotation"
	EventLayer      EventType = "layer"
	EventWaveform   EventType = "waveform"
	EventPlayback   EventType = "playback"
	EventWarning    EventType = "warning"
	EventError      EventType = "error"
)

// Waveform actions
const (
	WaveformApplied   = "applied"
	WaveformStale     = "stale"
	WaveformSynthetic = "synthetic"
	WaveformCached    = "cached"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// ParseLevel converts a level name, defaulting to info
func ParseLevel(s string) EventLevel {
	lvl := EventLevel(s)
	if _, ok := levelPriority[lvl]; ok {
		return lvl
	}
	return LevelInfo
}

// Event represents a single audit event
type Event struct {
	Timestamp    time.Time         `json:"ts"`
	Level        EventLevel        `json:"level"`
	Event        EventType         `json:"event"`
	Project      string            `json:"project,omitempty"`
	Source       string            `json:"source,omitempty"`
	AnnotationID string            `json:"annotation_id,omitempty"`
	LayerID      string            `json:"layer_id,omitempty"`
	Time         float64           `json:"time,omitempty"`
	Action       string            `json:"action,omitempty"`
	Reason       string            `json:"reason,omitempty"`
	Duration     int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error        string            `json:"error,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s.jsonl", timestamp)
	path := filepath.Join(outputDir, filename)

	// Several commands in the same second share one file
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogProject logs a project lifecycle event (new, import, export, save, delete)
func (l *EventLogger) LogProject(action, project, source string, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:   level,
		Event:   EventProject,
		Project: project,
		Source:  source,
		Action:  action,
		Error:   errMsg,
	})
}

// LogSource logs a media source load
func (l *EventLogger) LogSource(source string, duration float64) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventSource,
		Source: source,
		Action: "load",
		Extra: map[string]string{
			"duration": fmt.Sprintf("%.3f", duration),
		},
	})
}

// LogAnnotation logs an annotation mutation
func (l *EventLogger) LogAnnotation(action, annotationID, layerID string, t float64) error {
	return l.Log(&Event{
		Level:        LevelInfo,
		Event:        EventAnnotation,
		AnnotationID: annotationID,
		LayerID:      layerID,
		Time:         t,
		Action:       action,
	})
}

// LogLayer logs a layer mutation
func (l *EventLogger) LogLayer(action, layerID, name string) error {
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   EventLayer,
		LayerID: layerID,
		Action:  action,
		Extra: map[string]string{
			"name": name,
		},
	})
}

// LogWaveform logs the outcome of a waveform analysis. Stale results are
// debug-level; synthetic fallbacks are warnings.
func (l *EventLogger) LogWaveform(source, action string, values int, elapsed time.Duration, err error) error {
	level := LevelInfo
	switch action {
	case WaveformStale:
		level = LevelDebug
	case WaveformSynthetic:
		level = LevelWarning
	}

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:    level,
		Event:    EventWaveform,
		Source:   source,
		Action:   action,
		Duration: elapsed.Milliseconds(),
		Error:    errMsg,
		Extra: map[string]string{
			"values": fmt.Sprintf("%d", values),
		},
	})
}

// LogPlayback logs a seek or play/pause transition
func (l *EventLogger) LogPlayback(action string, t float64) error {
	return l.Log(&Event{
		Level:  LevelDebug,
		Event:  EventPlayback,
		Action: action,
		Time:   t,
	})
}

// LogWarning logs a non-fatal problem that was recovered from
func (l *EventLogger) LogWarning(reason string, err error) error {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:  LevelWarning,
		Event:  EventWarning,
		Reason: reason,
		Error:  errMsg,
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, source string, err error) error {
	return l.Log(&Event{
		Level:  LevelError,
		Event:  event,
		Source: source,
		Error:  err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}

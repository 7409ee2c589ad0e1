// Package project holds the session context object: the annotation store,
// playback clock, waveform state and focus selection for one loaded project,
// plus the JSON snapshot it is imported from and exported to.
package project

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/franz/track-notes/internal/annotation"
	"github.com/franz/track-notes/internal/playback"
	"github.com/franz/track-notes/internal/util"
)

// Snapshot is the serialized form of a project
type Snapshot struct {
	Name         string                  `json:"name"`
	AudioURL     string                  `json:"audioUrl"`
	CreatedAt    time.Time               `json:"createdAt"`
	LastModified time.Time               `json:"lastModified"`
	Layers       []annotation.Layer      `json:"layers"`
	Annotations  []annotation.Annotation `json:"annotations"`
	AudioState   playback.State          `json:"audioState"`
}

// NewSnapshot returns an empty project with the default layer
func NewSnapshot(name, audioURL string) *Snapshot {
	now := time.Now().UTC()
	return &Snapshot{
		Name:         name,
		AudioURL:     audioURL,
		CreatedAt:    now,
		LastModified: now,
		Layers:       []annotation.Layer{annotation.DefaultLayer()},
		Annotations:  []annotation.Annotation{},
		AudioState:   playback.State{SourceRef: audioURL},
	}
}

// Validate checks that the required fields are present. Layer and
// annotation consistency is checked when the snapshot is loaded.
func (s *Snapshot) Validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("%w: missing name", util.ErrInvalidProject)
	case s.AudioURL == "":
		return fmt.Errorf("%w: missing audioUrl", util.ErrInvalidProject)
	case s.Layers == nil:
		return fmt.Errorf("%w: missing layers", util.ErrInvalidProject)
	case s.Annotations == nil:
		return fmt.Errorf("%w: missing annotations", util.ErrInvalidProject)
	}
	return nil
}

// Read decodes and validates a snapshot
func Read(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidProject, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Write encodes a snapshot as indented JSON
func Write(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ImportFile reads a snapshot from disk
func ImportFile(path string) (*Snapshot, error) {
	f, err := util.RetryableOpen(path, util.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open project: %w", err)
	}
	defer f.Close()

	snap, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// ExportFile writes a snapshot through a temporary file and renames it into
// place, so readers never see a partial project.
func ExportFile(path string, snap *Snapshot) error {
	cfg := util.DefaultRetryConfig()

	if err := util.RetryableMkdirAll(filepath.Dir(path), 0755, cfg); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := path + ".part"
	f, err := util.RetryableCreate(tempPath, cfg)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := Write(f, snap); err != nil {
		f.Close()
		util.RetryableRemove(tempPath, cfg)
		return fmt.Errorf("failed to write project: %w", err)
	}
	if err := f.Close(); err != nil {
		util.RetryableRemove(tempPath, cfg)
		return fmt.Errorf("failed to write project: %w", err)
	}

	if err := util.RetryableRename(tempPath, path, cfg); err != nil {
		util.RetryableRemove(tempPath, cfg)
		return fmt.Errorf("failed to rename: %w", err)
	}
	return nil
}

package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/track-notes/internal/util"
)

func TestSnapshot_Validate(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"missing name", `{"audioUrl":"a.mp3","layers":[],"annotations":[]}`},
		{"missing audioUrl", `{"name":"x","layers":[],"annotations":[]}`},
		{"missing layers", `{"name":"x","audioUrl":"a.mp3","annotations":[]}`},
		{"missing annotations", `{"name":"x","audioUrl":"a.mp3","layers":[]}`},
		{"not json", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.json))
			if !errors.Is(err, util.ErrInvalidProject) {
				t.Errorf("Read error = %v, want ErrInvalidProject", err)
			}
		})
	}
}

func TestSnapshot_JSONShape(t *testing.T) {
	snap := NewSnapshot("demo", "https://example.com/a.mp3")

	var buf bytes.Buffer
	if err := Write(&buf, snap); err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"name", "audioUrl", "createdAt", "lastModified", "layers", "annotations", "audioState"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, buf.String())
		}
	}

	layer := raw["layers"].([]any)[0].(map[string]any)
	if layer["color"] != "#3B82F6" || layer["isActive"] != true {
		t.Errorf("unexpected layer encoding: %v", layer)
	}
	audio := raw["audioState"].(map[string]any)
	if audio["url"] != "https://example.com/a.mp3" {
		t.Errorf("audioState.url = %v", audio["url"])
	}
}

func TestReadAnnotationLayerField(t *testing.T) {
	in := `{"name":"x","audioUrl":"a.mp3",
		"layers":[{"id":"default","name":"Default","color":"#3B82F6","isVisible":true,"isActive":true,"annotationCount":0}],
		"annotations":[{"id":"1","time":4.5,"text":"hi","layer":"default"}]}`

	snap, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if snap.Annotations[0].LayerID != "default" || snap.Annotations[0].Time != 4.5 {
		t.Errorf("unexpected annotation: %+v", snap.Annotations[0])
	}
}

func TestExportFile_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "demo.json")

	if err := ExportFile(path, NewSnapshot("demo", "a.mp3")); err != nil {
		t.Fatalf("ExportFile failed: %v", err)
	}
	if _, err := os.Stat(path + ".part"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	snap, err := ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if snap.Name != "demo" {
		t.Errorf("Name = %q", snap.Name)
	}
}

func TestImportFile_Missing(t *testing.T) {
	if _, err := ImportFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

package util

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSourceKey_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	first, err := SourceKey(path)
	if err != nil {
		t.Fatalf("SourceKey failed: %v", err)
	}
	again, _ := SourceKey(path)
	if first != again {
		t.Errorf("expected stable key, got %s then %s", first, again)
	}

	// Changing the content and mtime yields a new identity
	if err := os.WriteFile(path, []byte("abcdef"), 0644); err != nil {
		t.Fatalf("failed to rewrite file: %v", err)
	}
	later := time.Now().Add(2 * time.Second)
	os.Chtimes(path, later, later)

	changed, err := SourceKey(path)
	if err != nil {
		t.Fatalf("SourceKey failed: %v", err)
	}
	if changed == first {
		t.Error("expected a different key after the file changed")
	}
}

func TestSourceKey_Remote(t *testing.T) {
	a, err := SourceKey("https://example.com/a.mp3")
	if err != nil {
		t.Fatalf("SourceKey failed: %v", err)
	}
	b, _ := SourceKey("https://example.com/b.mp3")
	if a == b {
		t.Error("different URLs must not share a key")
	}
}

func TestSourceKey_Errors(t *testing.T) {
	if _, err := SourceKey(""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty ref, got %v", err)
	}
	if _, err := SourceKey(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIsRemoteSource(t *testing.T) {
	tests := []struct {
		ref      string
		expected bool
	}{
		{"https://example.com/a.mp3", true},
		{"http://host/x.wav", true},
		{"/music/a.mp3", false},
		{"song.flac", false},
		{"ftp://host/a.mp3", false},
	}

	for _, tt := range tests {
		if got := IsRemoteSource(tt.ref); got != tt.expected {
			t.Errorf("IsRemoteSource(%q) = %v, expected %v", tt.ref, got, tt.expected)
		}
	}
}

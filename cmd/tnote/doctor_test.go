package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/track-notes/internal/project"
	"github.com/franz/track-notes/internal/store"
)

func TestCheckFFprobe_Missing(t *testing.T) {
	result := checkFFprobe("definitely-not-ffprobe-xyz")

	// ffprobe is required
	if !result.error {
		t.Errorf("expected error for missing ffprobe, got %+v", result)
	}
}

func TestCheckFFmpeg_Missing(t *testing.T) {
	result := checkFFmpeg("definitely-not-ffmpeg-xyz")

	// ffmpeg is optional, so a missing binary is only a warning
	if result.error {
		t.Errorf("ffmpeg check should not error (it's optional), got error: %s", result.message)
	}
	if !result.warning {
		t.Error("expected warning for missing ffmpeg")
	}
}

func TestCheckSQLite(t *testing.T) {
	result := checkSQLite()

	if result.error {
		t.Errorf("SQLite check failed: %s", result.message)
	}

	if result.message == "" {
		t.Error("expected version information in message")
	}
}

func TestCheckDatabase_NonExistent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nonexistent.db")

	result := checkDatabase(dbPath)

	// Should not error - database will be created on first run
	if result.error {
		t.Errorf("non-existent database check should not error: %s", result.message)
	}

	if result.message == "" {
		t.Error("expected message about database creation")
	}
}

func TestCheckDatabase_Existing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := db.SaveSnapshot(project.NewSnapshot("demo", "/music/demo.mp3")); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}
	db.Close()

	result := checkDatabase(dbPath)

	if result.error {
		t.Errorf("database check failed: %s", result.message)
	}
	if !strings.Contains(result.message, "1 projects") {
		t.Errorf("expected project count in message, got %q", result.message)
	}
}

func TestCheckDatabase_Empty(t *testing.T) {
	result := checkDatabase("")

	if !result.warning {
		t.Error("expected warning for empty database path")
	}
}

func TestCheckDatabase_Directory(t *testing.T) {
	result := checkDatabase(t.TempDir())

	if !result.error {
		t.Error("expected error when database path is a directory")
	}
}

func TestCheckEventsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")

	result := checkEventsDir(dir)

	if result.error || result.warning {
		t.Errorf("events dir check failed: %s", result.message)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
}

func TestCheckEventsDir_File(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := checkEventsDir(filePath)

	if !result.warning {
		t.Error("expected warning when events dir is a file")
	}
}

func TestCheckDatabaseLocation(t *testing.T) {
	result := checkDatabaseLocation(filepath.Join(t.TempDir(), "tnote.db"))

	if result.error {
		t.Errorf("database location check should never error: %s", result.message)
	}
	if result.message == "" {
		t.Error("expected filesystem information in message")
	}
}

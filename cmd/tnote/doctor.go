package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/track-notes/internal/store"
	"github.com/franz/track-notes/internal/util"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the environment and configuration",
	Long: `Run diagnostic checks to ensure tnote can operate correctly.

This command checks:
- ffprobe (reads track durations)
- ffmpeg (decodes audio for waveforms; optional)
- SQLite version
- Database accessibility and integrity
- Whether the database is on a network filesystem
- Event log directory

Use this command to troubleshoot issues before working on projects.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== tnote doctor - System Diagnostics ===")
	util.InfoLog("")

	results := []checkResult{
		checkFFprobe(util.BinaryPath("ffprobe")),
		checkFFmpeg(util.BinaryPath("ffmpeg")),
		checkSQLite(),
		checkDatabase(GetConfigString("db", "tnote.db")),
		checkDatabaseLocation(GetConfigString("db", "tnote.db")),
		checkEventsDir(GetConfigString("events_dir", "artifacts")),
	}

	// Print results
	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	// Summary
	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("❌ Some critical checks failed. Please resolve errors before using tnote.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("⚠️  Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("✅ All checks passed!")
	}

	return nil
}

// toolVersion runs "<binary> -version" and returns the third word of the
// first line, which is where ffmpeg and ffprobe print their version
func toolVersion(binary string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, binary, "-version").CombinedOutput()
	if err != nil {
		return "", err
	}

	lines := strings.Split(string(output), "\n")
	version := "unknown"
	if len(lines) > 0 {
		parts := strings.Fields(lines[0])
		if len(parts) >= 3 {
			version = parts[2]
		}
	}
	return version, nil
}

// checkFFprobe verifies ffprobe is available and gets version
func checkFFprobe(binary string) checkResult {
	version, err := toolVersion(binary)
	if err != nil {
		return checkResult{
			name:    "ffprobe",
			error:   true,
			message: fmt.Sprintf("%s not found or not executable (required for track durations)", binary),
		}
	}

	return checkResult{
		name:    "ffprobe",
		message: fmt.Sprintf("version %s", version),
	}
}

// checkFFmpeg verifies ffmpeg is available (optional)
func checkFFmpeg(binary string) checkResult {
	version, err := toolVersion(binary)
	if err != nil {
		return checkResult{
			name:    "ffmpeg (optional)",
			warning: true,
			message: fmt.Sprintf("%s not found (waveforms fall back to a flat placeholder)", binary),
		}
	}

	return checkResult{
		name:    "ffmpeg (optional)",
		message: fmt.Sprintf("version %s", version),
	}
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	// modernc.org/sqlite is built in; just verify we can get the version
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies database file accessibility
func checkDatabase(dbPath string) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Database",
			warning: true,
			message: "no database path specified (use --db flag or config)",
		}
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	projects, _ := db.ListProjects()
	cache, _ := db.WaveformCacheStats()
	msg := fmt.Sprintf("%s (%s, %d projects", dbPath, humanize.Bytes(uint64(info.Size())), len(projects))
	if cache != nil && cache.Count > 0 {
		msg += fmt.Sprintf(", %d cached waveforms in %s", cache.Count, humanize.Bytes(uint64(cache.Bytes)))
	}
	msg += ")"

	return checkResult{
		name:    "Database",
		message: msg,
	}
}

// checkDatabaseLocation warns when the database sits on a network filesystem
func checkDatabaseLocation(dbPath string) checkResult {
	info, err := util.FilesystemOf(filepath.Dir(dbPath))
	if err != nil {
		return checkResult{
			name:    "Database location",
			warning: true,
			message: fmt.Sprintf("cannot determine filesystem: %v", err),
		}
	}

	if info.Remote {
		return checkResult{
			name:    "Database location",
			warning: true,
			message: fmt.Sprintf("%s is on %s (%s); SQLite runs without WAL and concurrent use is unsafe", dbPath, info.FSType, info.MountPoint),
		}
	}

	fsType := info.FSType
	if fsType == "" {
		fsType = "local"
	}
	return checkResult{
		name:    "Database location",
		message: fmt.Sprintf("%s filesystem", fsType),
	}
}

// checkEventsDir verifies the event log directory is writable
func checkEventsDir(path string) checkResult {
	if err := os.MkdirAll(path, 0755); err != nil {
		return checkResult{
			name:    "Event logs",
			warning: true,
			message: fmt.Sprintf("cannot create %s: %v (events will not be recorded)", path, err),
		}
	}

	testFile := filepath.Join(path, ".tnote_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    "Event logs",
			warning: true,
			message: fmt.Sprintf("cannot write to %s: %v (events will not be recorded)", path, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    "Event logs",
		message: fmt.Sprintf("%s (writable)", path),
	}
}

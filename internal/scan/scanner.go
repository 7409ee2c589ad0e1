// Package scan creates projects in bulk from a directory of audio files.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/franz/track-notes/internal/meta"
	"github.com/franz/track-notes/internal/project"
	"github.com/franz/track-notes/internal/report"
	"github.com/franz/track-notes/internal/store"
	"github.com/franz/track-notes/internal/util"
	"github.com/schollz/progressbar/v3"
)

// AudioExtensions are the default supported audio file extensions
var AudioExtensions = []string{
	".mp3",
	".flac",
	".m4a",
	".aac",
	".ogg",
	".opus",
	".wav",
	".aiff",
	".aif",
	".wma",
	".ape",
	".wv",  // WavPack
	".mpc", // Musepack
}

// Prober reports the duration of a file in seconds
type Prober func(source string) (float64, error)

// Scanner discovers audio files and creates a project for each new one
type Scanner struct {
	store       *store.Store
	extensions  map[string]bool
	concurrency int
	probe       Prober
	logger      *report.EventLogger
}

// Config holds scanner configuration
type Config struct {
	Store          *store.Store
	AdditionalExts []string
	Concurrency    int
	// Probe reads durations; nil leaves them unknown until first load
	Probe  Prober
	Logger *report.EventLogger
}

// New creates a new Scanner
func New(cfg *Config) *Scanner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	// Build extension map (case-insensitive)
	extMap := make(map[string]bool)
	for _, ext := range AudioExtensions {
		extMap[strings.ToLower(ext)] = true
	}
	for _, ext := range cfg.AdditionalExts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[ext] = true
	}

	logger := cfg.Logger
	if logger == nil {
		logger = report.NullLogger()
	}

	return &Scanner{
		store:       cfg.Store,
		extensions:  extMap,
		concurrency: cfg.Concurrency,
		probe:       cfg.Probe,
		logger:      logger,
	}
}

// Result represents a scan result
type Result struct {
	FilesFound      int
	ProjectsCreated int
	FilesSkipped    int
	Errors          []error
}

// candidate is a discovered file with the metadata read by a worker
type candidate struct {
	path     string
	name     string
	duration float64
}

// Scan walks dir and creates one project per audio file that no project
// references yet. Names come from tags or the file name; clashes get a
// numeric suffix.
func (s *Scanner) Scan(ctx context.Context, dir string) (*Result, error) {
	util.InfoLog("Starting scan of: %s", dir)

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", util.ErrInvalidInput, dir)
	}

	// Pre-load existing projects for quick duplicate detection
	existing, err := s.store.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("failed to load existing projects: %w", err)
	}
	knownSources := make(map[string]bool, len(existing))
	names := make(map[string]bool, len(existing))
	for _, p := range existing {
		knownSources[p.AudioURL] = true
		names[p.Name] = true
	}

	result := &Result{}
	var errMu sync.Mutex
	addErr := func(err error) {
		errMu.Lock()
		result.Errors = append(result.Errors, err)
		errMu.Unlock()
	}

	paths := make(chan string, 100)
	found := make(chan candidate, 100)

	var filesFound, filesCreated, filesSkipped atomic.Int64

	// Check if stderr is a terminal (disable progress bar if piped/redirected)
	var bar *progressbar.ProgressBar
	if util.IsTerminal(os.Stderr.Fd()) && !util.IsQuiet() {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Scanning"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	// Workers read tags and durations
	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				select {
				case <-ctx.Done():
					return
				default:
				}

				c := s.inspect(path)
				select {
				case found <- c:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// A single writer owns the name set and the database
	var writerWg sync.WaitGroup
	writerWg.Add(1)
	go func() {
		defer writerWg.Done()
		for c := range found {
			if err := s.create(c, names); err != nil {
				util.ErrorLog("Failed to create project for %s: %v", c.path, err)
				addErr(err)
			} else {
				filesCreated.Add(1)
			}
			if bar != nil {
				bar.Add(1)
			}
		}
	}()

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			util.WarnLog("Error accessing path %s: %v", path, err)
			addErr(fmt.Errorf("access error: %s: %w", path, err))
			return nil // Continue walking
		}

		if d.IsDir() || !s.isAudioFile(path) {
			return nil
		}

		filesFound.Add(1)
		if knownSources[path] {
			util.DebugLog("Already a project: %s", path)
			filesSkipped.Add(1)
			return nil
		}

		select {
		case paths <- path:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	close(paths)
	wg.Wait()
	close(found)
	writerWg.Wait()

	if bar != nil {
		bar.Finish()
	}

	result.FilesFound = int(filesFound.Load())
	result.ProjectsCreated = int(filesCreated.Load())
	result.FilesSkipped = int(filesSkipped.Load())

	if walkErr != nil && !errors.Is(walkErr, context.Canceled) {
		return result, fmt.Errorf("walk error: %w", walkErr)
	}

	util.SuccessLog("Scan complete: %d audio files, %d projects created, %d already known, %d errors",
		result.FilesFound, result.ProjectsCreated, result.FilesSkipped, len(result.Errors))

	return result, nil
}

// inspect reads the name and duration of one file. Failures degrade to the
// file name and an unknown duration.
func (s *Scanner) inspect(path string) candidate {
	c := candidate{path: path}

	tags, err := meta.ReadTags(path)
	if err != nil {
		util.DebugLog("No tags in %s: %v", path, err)
	}
	c.name = meta.DisplayName(path, tags)

	if s.probe != nil {
		d, err := s.probe(path)
		if err != nil {
			util.DebugLog("No duration for %s: %v", path, err)
		} else {
			c.duration = d
		}
	}
	return c
}

func (s *Scanner) create(c candidate, names map[string]bool) error {
	name := uniqueName(c.name, names)

	snap := project.NewSnapshot(name, c.path)
	snap.AudioState.Duration = c.duration
	if err := s.store.SaveSnapshot(snap); err != nil {
		s.logger.LogProject("create", name, c.path, err)
		return err
	}

	names[name] = true
	s.logger.LogProject("create", name, c.path, nil)
	util.DebugLog("Created project %q for %s", name, c.path)
	return nil
}

// uniqueName appends " (2)", " (3)"... until name is unused
func uniqueName(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)", name, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

// isAudioFile checks if a file has a supported audio extension
func (s *Scanner) isAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return s.extensions[ext]
}

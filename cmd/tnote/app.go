package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/franz/track-notes/internal/annotation"
	"github.com/franz/track-notes/internal/meta"
	"github.com/franz/track-notes/internal/playback"
	"github.com/franz/track-notes/internal/project"
	"github.com/franz/track-notes/internal/report"
	"github.com/franz/track-notes/internal/segment"
	"github.com/franz/track-notes/internal/store"
	"github.com/franz/track-notes/internal/util"
	"github.com/franz/track-notes/internal/waveform"
	"github.com/spf13/viper"
)

// workspace bundles what a command needs to work on one project
type workspace struct {
	db       *store.Store
	events   *report.EventLogger
	handle   *playback.VirtualHandle
	analyzer *waveform.Analyzer
	session  *project.Session

	// duration reported when ffprobe cannot read the source
	fallbackDuration float64
}

type workspaceOptions struct {
	// analyze attaches a waveform analyzer with this decoder opener
	analyze bool
	open    waveform.Opener
}

func openWorkspace(opts workspaceOptions) (*workspace, error) {
	dbPath := GetConfigString("db", "tnote.db")
	util.DebugLog("Opening database: %s", dbPath)

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ws := &workspace{db: db, events: openEventLogger()}

	prober := meta.NewProber(util.BinaryPath("ffprobe"))
	ws.handle = playback.NewVirtualHandle(ws.probe(prober.Duration))

	if opts.analyze {
		ws.analyzer = waveform.NewAnalyzer(&waveform.AnalyzerConfig{
			Decoder: waveform.NewFFmpegDecoder(util.BinaryPath("ffmpeg"), util.DecodeSampleRate()),
			Open:    opts.open,
			Budget:  util.WaveformBudget(),
		})
	}

	sg := segment.New(util.SegmentLength())
	ws.session = project.New(project.Config{
		Handle:    ws.handle,
		Analyzer:  ws.analyzer,
		Segmenter: &sg,
		Events:    ws.events,
	})
	return ws, nil
}

// probe falls back to the last known duration when the source cannot be read
func (ws *workspace) probe(p playback.Prober) playback.Prober {
	return func(source string) (float64, error) {
		d, err := p(source)
		if err == nil {
			return d, nil
		}
		if ws.fallbackDuration > 0 {
			util.DebugLog("Using saved duration for %s: %v", source, err)
			return ws.fallbackDuration, nil
		}
		return 0, err
	}
}

func (ws *workspace) Close() {
	ws.session.Close()
	ws.events.Close()
	ws.db.Close()
}

// load opens a saved project into the session
func (ws *workspace) load(ctx context.Context, name string) error {
	snap, err := ws.db.LoadSnapshot(name)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("%w: project %q (see 'tnote list')", util.ErrNotFound, name)
	}

	ws.fallbackDuration = snap.AudioState.Duration
	if err := ws.session.Load(ctx, snap); err != nil {
		return err
	}
	ws.useCachedWaveform()
	return nil
}

// useCachedWaveform installs a cached envelope for the current source
func (ws *workspace) useCachedWaveform() bool {
	if ws.session.WaveformPending() {
		return false
	}

	key, err := util.SourceKey(ws.session.Source())
	if err != nil {
		util.DebugLog("No cache key for %s: %v", ws.session.Source(), err)
		return false
	}

	data, err := ws.db.GetWaveform(key)
	if err != nil {
		util.WarnLog("Failed to read waveform cache: %v", err)
		return false
	}
	if data == nil {
		return false
	}

	ws.session.UseWaveform(data)
	return true
}

// save writes the session back to the database
func (ws *workspace) save() error {
	if err := ws.db.SaveSnapshot(ws.session.Snapshot()); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// withProject opens the selected project, runs fn and saves when fn
// reports a change
func withProject(ctx context.Context, fn func(ws *workspace) (bool, error)) error {
	name, err := projectName()
	if err != nil {
		return err
	}

	ws, err := openWorkspace(workspaceOptions{})
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.load(ctx, name); err != nil {
		return err
	}

	changed, err := fn(ws)
	if err != nil {
		return err
	}
	if changed {
		return ws.save()
	}
	return nil
}

func projectName() (string, error) {
	name := strings.TrimSpace(viper.GetString("project"))
	if name == "" {
		return "", fmt.Errorf("%w: no project selected (use --project or TNOTE_PROJECT)", util.ErrInvalidInput)
	}
	return name, nil
}

func openEventLogger() *report.EventLogger {
	logLevel := report.LevelInfo
	if viper.GetBool("quiet") {
		logLevel = report.LevelWarning
	} else if viper.GetBool("verbose") {
		logLevel = report.LevelDebug
	}

	logger, err := report.NewEventLogger(GetConfigString("events_dir", "artifacts"), logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}
	return logger
}

// resolveAnnotation finds an annotation by id or unique id prefix
func resolveAnnotation(anns []annotation.Annotation, ref string) (annotation.Annotation, error) {
	var match []annotation.Annotation
	for _, a := range anns {
		if a.ID == ref {
			return a, nil
		}
		if ref != "" && strings.HasPrefix(a.ID, ref) {
			match = append(match, a)
		}
	}
	switch len(match) {
	case 0:
		return annotation.Annotation{}, fmt.Errorf("%w: annotation %q", util.ErrNotFound, ref)
	case 1:
		return match[0], nil
	default:
		return annotation.Annotation{}, fmt.Errorf("%w: annotation prefix %q matches %d annotations", util.ErrInvalidInput, ref, len(match))
	}
}

// resolveLayer finds a layer by id, unique id prefix or case-insensitive name
func resolveLayer(layers []annotation.Layer, ref string) (annotation.Layer, error) {
	var byName, byPrefix []annotation.Layer
	for _, l := range layers {
		if l.ID == ref {
			return l, nil
		}
		if strings.EqualFold(l.Name, ref) {
			byName = append(byName, l)
		}
		if ref != "" && strings.HasPrefix(l.ID, ref) {
			byPrefix = append(byPrefix, l)
		}
	}
	for _, candidates := range [][]annotation.Layer{byName, byPrefix} {
		if len(candidates) == 1 {
			return candidates[0], nil
		}
		if len(candidates) > 1 {
			return annotation.Layer{}, fmt.Errorf("%w: layer %q is ambiguous", util.ErrInvalidInput, ref)
		}
	}
	return annotation.Layer{}, fmt.Errorf("%w: layer %q", util.ErrNotFound, ref)
}

// parseTime accepts seconds ("94.5") or clock notation ("1:34.5", "1:02:03")
func parseTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty time", util.ErrInvalidInput)
	}

	var total float64
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: time %q", util.ErrInvalidInput, s)
	}
	for i, p := range parts {
		v, err := parseNonNegative(p)
		if err != nil {
			return 0, fmt.Errorf("%w: time %q", util.ErrInvalidInput, s)
		}
		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("%w: time %q has a field over 59", util.ErrInvalidInput, s)
		}
		total = total*60 + v
	}
	return total, nil
}

func parseNonNegative(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("out of range")
	}
	return v, nil
}

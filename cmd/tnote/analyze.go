package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/track-notes/internal/util"
	"github.com/franz/track-notes/internal/waveform"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute and cache the selected project's waveform",
	Long: `Decode the project's audio with ffmpeg and reduce it to a bounded
amplitude envelope (at most waveform_budget values), then cache it in the
database keyed by the source's path, size and modification time.

If decoding fails the project gets a flat placeholder envelope and a warning
is recorded; annotations keep working either way.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Bool("force", false, "re-analyze even when a cached envelope exists")
	analyzeCmd.Flags().Duration("timeout", 10*time.Minute, "give up after this long")
	analyzeCmd.Flags().Bool("no-cache", false, "do not store the result in the cache")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	name, err := projectName()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bar *progressbar.ProgressBar
	ws, err := openWorkspace(workspaceOptions{
		analyze: true,
		open: func(ctx context.Context, source string) (io.ReadCloser, error) {
			rc, err := waveform.OpenLocal(ctx, source)
			if err != nil {
				return nil, err
			}
			bar = newDecodeBar(rc)
			if bar == nil {
				return rc, nil
			}
			r := progressbar.NewReader(rc, bar)
			return &r, nil
		},
	})
	if err != nil {
		return err
	}
	defer ws.Close()

	snap, err := ws.db.LoadSnapshot(name)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("%w: project %q", util.ErrNotFound, name)
	}

	key, keyErr := util.SourceKey(snap.AudioURL)
	if keyErr == nil && !force {
		cached, err := ws.db.GetWaveform(key)
		if err != nil {
			util.WarnLog("Failed to read waveform cache: %v", err)
		} else if cached != nil {
			util.InfoLog("Waveform already cached for %s (%s values); use --force to recompute",
				snap.AudioURL, humanize.Comma(int64(cached.Len())))
			return nil
		}
	}

	util.InfoLog("Analyzing %s", snap.AudioURL)
	start := time.Now()

	ws.fallbackDuration = snap.AudioState.Duration
	if err := ws.session.Load(ctx, snap); err != nil {
		return err
	}
	if err := ws.session.AwaitWaveform(ctx); err != nil {
		return fmt.Errorf("analysis interrupted: %w", err)
	}
	if bar != nil {
		bar.Finish()
	}

	data := ws.session.Waveform()
	if data == nil {
		return fmt.Errorf("%w: no waveform produced for %s", util.ErrDecode, snap.AudioURL)
	}

	if data.Synthetic {
		util.WarnLog("Using a flat placeholder for %s", snap.AudioURL)
	} else {
		util.SuccessLog("Reduced %s to %s values in %v", snap.AudioURL,
			humanize.Comma(int64(data.Len())), time.Since(start).Round(time.Millisecond))
	}

	switch {
	case noCache:
	case keyErr != nil:
		util.WarnLog("Not caching waveform: %v", keyErr)
	case data.Synthetic:
		util.DebugLog("Not caching placeholder waveform")
	default:
		if err := ws.db.PutWaveform(key, snap.AudioURL, data); err != nil {
			util.WarnLog("Failed to cache waveform: %v", err)
		}
	}

	return ws.save()
}

// newDecodeBar returns a byte progress bar for an opened source, or nil when
// output is not a terminal
func newDecodeBar(rc io.ReadCloser) *progressbar.ProgressBar {
	if !util.IsTerminal(os.Stderr.Fd()) || util.IsQuiet() {
		return nil
	}

	size := int64(-1)
	if f, ok := rc.(*os.File); ok {
		if info, err := f.Stat(); err == nil {
			size = info.Size()
		}
	}

	return progressbar.NewOptions64(size,
		progressbar.OptionSetDescription("Decoding"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

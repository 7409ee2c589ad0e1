package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/franz/track-notes/internal/project"
	"github.com/franz/track-notes/internal/timeline"
	"github.com/franz/track-notes/internal/util"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file.json>",
	Short: "Re-render a project snapshot's timeline whenever the file changes",
	Long: `Watch an exported project snapshot and print its timeline again each time
the file is written. Invalid snapshots are reported and the previous render
stays on screen. Falls back to polling when file notifications are
unavailable.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Int("width", 0, "output width (default: terminal width)")
	watchCmd.Flags().Duration("interval", time.Second, "polling interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	interval, _ := cmd.Flags().GetDuration("interval")
	opts := timeline.TextOptions{Width: renderWidth(cmd), Notes: true}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ws, err := openWorkspace(workspaceOptions{})
	if err != nil {
		return err
	}
	defer ws.Close()

	out := cmd.OutOrStdout()
	clearScreen := util.IsTerminal(os.Stdout.Fd())
	render := func() {
		if err := renderSnapshotFile(ctx, ws, path, out, opts, clearScreen); err != nil {
			util.WarnLog("Not re-rendering %s: %v", filepath.Base(path), err)
		}
	}

	render()
	return watchFile(ctx, path, interval, render)
}

func renderSnapshotFile(ctx context.Context, ws *workspace, path string, out io.Writer, opts timeline.TextOptions, clearScreen bool) error {
	snap, err := project.ImportFile(path)
	if err != nil {
		return err
	}

	ws.fallbackDuration = snap.AudioState.Duration
	if err := ws.session.Load(ctx, snap); err != nil {
		return err
	}
	ws.useCachedWaveform()

	if clearScreen {
		fmt.Fprint(out, "\033[H\033[2J")
	}
	fmt.Fprintf(out, "%s  (%s)\n\n", snap.Name, time.Now().Format("15:04:05"))
	return renderTimeline(out, ws, opts)
}

// watchFile calls onChange after each write to path until ctx is done
func watchFile(ctx context.Context, path string, interval time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		util.WarnLog("fsnotify not available, falling back to polling: %v", err)
		return pollFile(ctx, path, interval, onChange)
	}
	defer watcher.Close()

	// Watch the directory so atomic replace (write temp + rename) is seen
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		util.WarnLog("Failed to watch %s, falling back to polling: %v", filepath.Dir(path), err)
		return pollFile(ctx, path, interval, onChange)
	}

	util.InfoLog("Watching %s (Ctrl+C to stop)", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				util.WarnLog("fsnotify watcher closed, switching to polling")
				return pollFile(ctx, path, interval, onChange)
			}
			if event.Name == path && event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				// Small delay to let the writer finish
				time.Sleep(50 * time.Millisecond)
				onChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return pollFile(ctx, path, interval, onChange)
			}
			util.WarnLog("Watcher error: %v", err)
		}
	}
}

// pollFile calls onChange whenever the modification time of path advances
func pollFile(ctx context.Context, path string, interval time.Duration, onChange func()) error {
	if interval <= 0 {
		interval = time.Second
	}

	var last time.Time
	if info, err := os.Stat(path); err == nil {
		last = info.ModTime()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.ModTime().After(last) {
				last = info.ModTime()
				onChange()
			}
		}
	}
}

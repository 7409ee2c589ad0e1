package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/franz/track-notes/internal/project"
	"github.com/franz/track-notes/internal/report"
	"github.com/franz/track-notes/internal/util"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a project snapshot",
	Long: `Import a project from a JSON snapshot.

The snapshot must name its audio source and list its layers and annotations.
Every annotation must belong to a listed layer. An existing project with the
same name is replaced wholesale. Playback always starts paused.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <file.json>",
	Short: "Export the selected project as a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the selected project's notes as a Markdown report",
	Long: `Write a Markdown report of the selected project: a layer table and the
annotations grouped by timeline line.

The report is saved to artifacts/reports/<timestamp>/notes.md unless --out
is given.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(importCmd, exportCmd, reportCmd)

	importCmd.Flags().String("name", "", "store under this name instead of the snapshot's")
	reportCmd.Flags().String("out", "", "output file (default: artifacts/reports/<timestamp>/notes.md)")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	snap, err := project.ImportFile(args[0])
	if err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		snap.Name = name
	}

	ws, err := openWorkspace(workspaceOptions{})
	if err != nil {
		return err
	}
	defer ws.Close()

	ws.fallbackDuration = snap.AudioState.Duration
	if err := ws.session.Load(ctx, snap); err != nil {
		return fmt.Errorf("import rejected: %w", err)
	}
	ws.useCachedWaveform()
	if err := ws.save(); err != nil {
		return err
	}

	ws.events.LogProject("import", snap.Name, snap.AudioURL, nil)
	util.SuccessLog("Imported %q: %d layers, %d annotations", snap.Name, len(ws.session.Layers()), len(ws.session.Annotations()))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	return withProject(context.Background(), func(ws *workspace) (bool, error) {
		snap := ws.session.Snapshot()
		snap.LastModified = time.Now().UTC()

		if err := project.ExportFile(args[0], snap); err != nil {
			ws.events.LogProject("export", snap.Name, args[0], err)
			return false, err
		}

		ws.events.LogProject("export", snap.Name, args[0], nil)
		util.SuccessLog("Exported %q to %s", snap.Name, args[0])
		return false, nil
	})
}

func runReport(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		timestamp := time.Now().Format("20060102-150405")
		outPath = filepath.Join(GetConfigString("events_dir", "artifacts"), "reports", timestamp, "notes.md")
	}

	return withProject(context.Background(), func(ws *workspace) (bool, error) {
		s := ws.session
		r := report.BuildNotesReport(s.Name(), s.Source(), s.Audio().Duration, s.Segmenter(), s.Layers(), s.Annotations())

		if err := report.WriteMarkdownReport(r, outPath); err != nil {
			return false, fmt.Errorf("failed to write report: %w", err)
		}

		util.SuccessLog("Report written to %s", outPath)
		return false, nil
	})
}

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/franz/track-notes/internal/meta"
	"github.com/franz/track-notes/internal/project"
	"github.com/franz/track-notes/internal/segment"
	"github.com/franz/track-notes/internal/store"
	"github.com/franz/track-notes/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a project for an audio source",
	Long: `Create a project for a local audio file or an http(s) URL.

The project name defaults to the file's "Artist - Title" tags, then its
title tag, then the file name. A new project starts with one "Default" layer.`,
	Args: cobra.NoArgs,
	RunE: runNew,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved projects",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a project's source, layers and annotations",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved project",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(newCmd, listCmd, showCmd, deleteCmd)

	newCmd.Flags().StringP("source", "s", "", "audio file or URL (required)")
	newCmd.Flags().String("name", "", "project name (default: from tags or file name)")
	newCmd.Flags().Bool("force", false, "replace an existing project of the same name")
	newCmd.MarkFlagRequired("source")
}

func runNew(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	source, _ := cmd.Flags().GetString("source")
	name, _ := cmd.Flags().GetString("name")
	force, _ := cmd.Flags().GetBool("force")

	if !util.IsRemoteSource(source) {
		if _, err := os.Stat(source); err != nil {
			return fmt.Errorf("%w: source %s: %v", util.ErrInvalidInput, source, err)
		}
	}

	if name == "" {
		var tags *meta.Tags
		if !util.IsRemoteSource(source) {
			t, err := meta.ReadTags(source)
			if err != nil {
				util.DebugLog("No tags in %s: %v", source, err)
			}
			tags = t
		}
		name = meta.DisplayName(source, tags)
	}

	ws, err := openWorkspace(workspaceOptions{})
	if err != nil {
		return err
	}
	defer ws.Close()

	existing, err := ws.db.LoadSnapshot(name)
	if err != nil {
		return err
	}
	if existing != nil && !force {
		return fmt.Errorf("%w: project %q already exists (use --force to replace it)", util.ErrInvalidInput, name)
	}

	if err := ws.session.Load(ctx, project.NewSnapshot(name, source)); err != nil {
		return err
	}
	ws.useCachedWaveform()
	if err := ws.save(); err != nil {
		return err
	}

	audio := ws.session.Audio()
	util.SuccessLog("Created project %q", name)
	if audio.Duration > 0 {
		util.InfoLog("  Duration: %s (%d lines)", segment.FormatTime(audio.Duration), ws.session.Segmenter().Count(audio.Duration))
	} else {
		util.WarnLog("  Duration unknown; run 'tnote doctor' to check ffprobe")
	}
	util.InfoLog("Select it with --project %q or TNOTE_PROJECT", name)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := store.Open(GetConfigString("db", "tnote.db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	projects, err := db.ListProjects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		util.InfoLog("No projects yet. Create one with 'tnote new --source <file>'.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDURATION\tLAYERS\tNOTES\tMODIFIED")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			p.Name, formatDuration(p.Duration), p.Layers, p.Annotations, humanize.Time(p.LastModified))
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	return withProject(context.Background(), func(ws *workspace) (bool, error) {
		out := cmd.OutOrStdout()
		snap := ws.session.Snapshot()
		audio := ws.session.Audio()

		fmt.Fprintf(out, "Project:  %s\n", snap.Name)
		fmt.Fprintf(out, "Source:   %s\n", snap.AudioURL)
		fmt.Fprintf(out, "Duration: %s\n", formatDuration(audio.Duration))
		fmt.Fprintf(out, "Position: %s\n", segment.FormatTime(audio.CurrentTime))
		fmt.Fprintf(out, "Created:  %s\n", humanize.Time(snap.CreatedAt))
		fmt.Fprintf(out, "Modified: %s\n", humanize.Time(snap.LastModified))

		if wf := ws.session.Waveform(); wf != nil {
			kind := "analyzed"
			if wf.Synthetic {
				kind = "placeholder"
			}
			fmt.Fprintf(out, "Waveform: %s values (%s)\n", humanize.Comma(int64(wf.Len())), kind)
		} else {
			fmt.Fprintln(out, "Waveform: none (run 'tnote analyze')")
		}

		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LAYER\tID\tCOLOR\tVISIBLE\tNOTES")
		for _, l := range snap.Layers {
			name := l.Name
			if l.IsActive {
				name += " *"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", name, shortID(l.ID), l.Color, yesNo(l.IsVisible), l.AnnotationCount)
		}
		w.Flush()

		if len(snap.Annotations) == 0 {
			return false, nil
		}

		layerNames := make(map[string]string, len(snap.Layers))
		for _, l := range snap.Layers {
			layerNames[l.ID] = l.Name
		}

		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tID\tLAYER\tTEXT")
		for _, a := range sortedAnnotations(snap.Annotations) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", segment.FormatTime(a.Time), shortID(a.ID), layerNames[a.LayerID], a.Text)
		}
		return false, w.Flush()
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	db, err := store.Open(GetConfigString("db", "tnote.db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.DeleteProject(args[0]); err != nil {
		return err
	}

	events := openEventLogger()
	defer events.Close()
	events.LogProject("delete", args[0], "", nil)

	util.SuccessLog("Deleted project %q", args[0])
	if viper.GetString("project") == args[0] {
		util.InfoLog("It was the selected project; choose another with --project")
	}
	return nil
}

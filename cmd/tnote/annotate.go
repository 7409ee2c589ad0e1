package main

import (
	"context"
	"strings"

	"github.com/franz/track-notes/internal/segment"
	"github.com/franz/track-notes/internal/util"
	"github.com/spf13/cobra"
)

var annotateCmd = &cobra.Command{
	Use:     "annotate",
	Aliases: []string{"note"},
	Short:   "Add, edit, delete and move annotations",
	Long: `Manage the annotations of the selected project.

Annotations are referenced by id or by a unique id prefix as printed by
'tnote show'. Times accept seconds (94.5) or clock notation (1:34.5).`,
}

var annotateAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add an annotation at the playhead or at --at",
	Args:  cobra.ArbitraryArgs,
	RunE:  runAnnotateAdd,
}

var annotateEditCmd = &cobra.Command{
	Use:   "edit <id> <text>",
	Short: "Replace an annotation's text",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAnnotateEdit,
}

var annotateRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete an annotation",
	Args:    cobra.ExactArgs(1),
	RunE:    runAnnotateRm,
}

var annotateMoveCmd = &cobra.Command{
	Use:   "move <id> --layer <layer>",
	Short: "Move an annotation to another layer",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotateMove,
}

func init() {
	rootCmd.AddCommand(annotateCmd)
	annotateCmd.AddCommand(annotateAddCmd, annotateEditCmd, annotateRmCmd, annotateMoveCmd)

	annotateAddCmd.Flags().String("at", "", "time to anchor at (default: the saved playhead)")
	annotateAddCmd.Flags().StringP("layer", "l", "", "layer id or name (default: the active layer)")
	annotateAddCmd.Flags().StringP("text", "t", "", "annotation text")
	annotateMoveCmd.Flags().StringP("layer", "l", "", "target layer id or name (required)")
	annotateMoveCmd.MarkFlagRequired("layer")
}

func runAnnotateAdd(cmd *cobra.Command, args []string) error {
	at, _ := cmd.Flags().GetString("at")
	layerRef, _ := cmd.Flags().GetString("layer")
	text, _ := cmd.Flags().GetString("text")
	if text == "" {
		text = strings.Join(args, " ")
	}

	return withProject(context.Background(), func(ws *workspace) (bool, error) {
		s := ws.session

		layerID := ""
		if layerRef != "" {
			l, err := resolveLayer(s.Layers(), layerRef)
			if err != nil {
				return false, err
			}
			layerID = l.ID
		}

		t := s.Audio().CurrentTime
		if at != "" {
			v, err := parseTime(at)
			if err != nil {
				return false, err
			}
			t = v
		}

		a, err := s.AddAnnotationAt(t, text, layerID)
		if err != nil {
			return false, err
		}

		l, _ := s.Layer(a.LayerID)
		util.SuccessLog("Added %s at %s on %s: %s", shortID(a.ID), segment.FormatTime(a.Time), l.Name, a.Text)
		return true, nil
	})
}

func runAnnotateEdit(cmd *cobra.Command, args []string) error {
	text := strings.Join(args[1:], " ")

	return withProject(context.Background(), func(ws *workspace) (bool, error) {
		a, err := resolveAnnotation(ws.session.Annotations(), args[0])
		if err != nil {
			return false, err
		}
		if err := ws.session.UpdateAnnotation(a.ID, text); err != nil {
			return false, err
		}
		util.SuccessLog("Updated %s", shortID(a.ID))
		return true, nil
	})
}

func runAnnotateRm(cmd *cobra.Command, args []string) error {
	return withProject(context.Background(), func(ws *workspace) (bool, error) {
		a, err := resolveAnnotation(ws.session.Annotations(), args[0])
		if err != nil {
			return false, err
		}
		if err := ws.session.DeleteAnnotation(a.ID); err != nil {
			return false, err
		}
		util.SuccessLog("Deleted %s (%s %s)", shortID(a.ID), segment.FormatTime(a.Time), a.Text)
		return true, nil
	})
}

func runAnnotateMove(cmd *cobra.Command, args []string) error {
	layerRef, _ := cmd.Flags().GetString("layer")

	return withProject(context.Background(), func(ws *workspace) (bool, error) {
		s := ws.session
		a, err := resolveAnnotation(s.Annotations(), args[0])
		if err != nil {
			return false, err
		}
		l, err := resolveLayer(s.Layers(), layerRef)
		if err != nil {
			return false, err
		}
		if err := s.ReassignAnnotation(a.ID, l.ID); err != nil {
			return false, err
		}
		util.SuccessLog("Moved %s to %s", shortID(a.ID), l.Name)
		return true, nil
	})
}

package main

import (
	"context"
	"io"

	"github.com/franz/track-notes/internal/timeline"
	"github.com/franz/track-notes/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Render the selected project's timeline as text",
	Long: `Render every timeline line of the selected project: its time range, the
waveform envelope, the playhead progress and the annotation markers of the
visible layers. Overlapping markers show the highest-priority one; a focused
annotation always wins.`,
	Args: cobra.NoArgs,
	RunE: runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)

	timelineCmd.Flags().String("at", "", "move the playhead before rendering")
	timelineCmd.Flags().String("focus", "", "annotation id to bring to the front")
	timelineCmd.Flags().String("hover", "", "annotation id to highlight")
	timelineCmd.Flags().Int("width", 0, "output width (default: terminal width)")
	timelineCmd.Flags().Bool("no-notes", false, "omit the annotation text under each line")
	timelineCmd.Flags().Bool("save", false, "keep the --at position in the project")
}

func runTimeline(cmd *cobra.Command, args []string) error {
	at, _ := cmd.Flags().GetString("at")
	focus, _ := cmd.Flags().GetString("focus")
	hover, _ := cmd.Flags().GetString("hover")
	noNotes, _ := cmd.Flags().GetBool("no-notes")
	save, _ := cmd.Flags().GetBool("save")

	opts := timeline.TextOptions{Width: renderWidth(cmd), Notes: !noNotes}

	return withProject(context.Background(), func(ws *workspace) (bool, error) {
		s := ws.session

		if at != "" {
			t, err := parseTime(at)
			if err != nil {
				return false, err
			}
			s.Seek(t)
		}
		if focus != "" {
			a, err := resolveAnnotation(s.Annotations(), focus)
			if err != nil {
				return false, err
			}
			if err := s.ToggleFocus(a.ID); err != nil {
				return false, err
			}
		}
		if hover != "" {
			a, err := resolveAnnotation(s.Annotations(), hover)
			if err != nil {
				return false, err
			}
			s.HoverEnter(a.ID)
		}

		if err := renderTimeline(cmd.OutOrStdout(), ws, opts); err != nil {
			return false, err
		}
		return save && at != "", nil
	})
}

func renderTimeline(w io.Writer, ws *workspace, opts timeline.TextOptions) error {
	m := ws.session.Timeline()
	if ws.session.Waveform() == nil && len(m.Lines) > 0 {
		util.DebugLog("No waveform for %s; run 'tnote analyze'", ws.session.Source())
	}
	return timeline.WriteText(w, m, opts)
}

// renderWidth resolves the text width: flag, then config, then the terminal
func renderWidth(cmd *cobra.Command) int {
	if w, _ := cmd.Flags().GetInt("width"); w > 0 {
		return w
	}
	if w := viper.GetInt("width"); w > 0 {
		return w
	}
	return util.TerminalWidth(util.DefaultRenderWidth)
}

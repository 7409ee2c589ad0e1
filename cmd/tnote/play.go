package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/franz/track-notes/internal/annotation"
	"github.com/franz/track-notes/internal/segment"
	"github.com/franz/track-notes/internal/util"
	"github.com/spf13/cobra"
)

const playTick = 100 * time.Millisecond

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Follow the timeline in real time and print annotations as they pass",
	Long: `Run the playback clock in real time without audio output. Each annotation
on a visible layer is printed when the playhead crosses it, and each new
timeline line is announced. The final position is saved to the project.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().String("from", "", "start position (default: the saved playhead)")
	playCmd.Flags().String("for", "", "stop after this much track time")
	playCmd.Flags().Float64("speed", 1, "playback rate")
}

func runPlay(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	forArg, _ := cmd.Flags().GetString("for")
	speed, _ := cmd.Flags().GetFloat64("speed")
	if speed <= 0 {
		return fmt.Errorf("%w: --speed must be positive", util.ErrInvalidInput)
	}

	limit := 0.0
	if forArg != "" {
		v, err := parseTime(forArg)
		if err != nil {
			return err
		}
		limit = v
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return withProject(ctx, func(ws *workspace) (bool, error) {
		s := ws.session
		if from != "" {
			t, err := parseTime(from)
			if err != nil {
				return false, err
			}
			s.Seek(t)
		}

		if err := s.TogglePlayback(); err != nil {
			return false, err
		}

		out := cmd.OutOrStdout()
		start := s.Audio().CurrentTime
		util.InfoLog("Playing %s from %s at %gx", s.Name(), segment.FormatTime(start), speed)

		end := playUntil(ctx, ws, out, speed, limit)

		if s.Audio().IsPlaying {
			if err := s.TogglePlayback(); err != nil {
				return false, err
			}
		}
		util.InfoLog("Stopped at %s", segment.FormatTime(end))
		return true, nil
	})
}

// playUntil advances the virtual handle until the track ends, the limit of
// track time has been played or ctx is done. It returns the last position.
func playUntil(ctx context.Context, ws *workspace, out io.Writer, speed, limit float64) float64 {
	s := ws.session
	sg := s.Segmenter()
	start := s.Audio().CurrentTime
	prev := start
	line := sg.IndexAt(prev, s.Audio().Duration)
	fmt.Fprintf(out, "── line %d  %s\n", line+1, sg.Bounds(line, s.Audio().Duration).Label())
	printCrossed(out, s.Layers(), s.Annotations(), prev, prev, true)

	ticker := time.NewTicker(playTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return prev
		case <-ticker.C:
		}

		dt := playTick.Seconds() * speed
		if limit > 0 && prev+dt > start+limit {
			dt = start + limit - prev
		}
		ws.handle.Advance(dt)

		audio := s.Audio()
		now := audio.CurrentTime
		if !audio.IsPlaying {
			now = audio.Duration
		}

		printCrossed(out, s.Layers(), s.Annotations(), prev, now, false)
		if l := sg.IndexAt(now, audio.Duration); l != line && audio.IsPlaying {
			line = l
			fmt.Fprintf(out, "── line %d  %s\n", line+1, sg.Bounds(line, audio.Duration).Label())
		}
		prev = now

		if !audio.IsPlaying {
			fmt.Fprintln(out, "── end")
			return 0
		}
		if limit > 0 && now >= start+limit {
			return now
		}
	}
}

// printCrossed prints annotations on visible layers in (from, to], or at
// exactly from when inclusive is set
func printCrossed(out io.Writer, layers []annotation.Layer, anns []annotation.Annotation, from, to float64, inclusive bool) {
	for _, a := range crossed(layers, anns, from, to, inclusive) {
		name := ""
		for _, l := range layers {
			if l.ID == a.LayerID {
				name = l.Name
				break
			}
		}
		fmt.Fprintf(out, "%6s  [%s] %s\n", segment.FormatTime(a.Time), name, a.Text)
	}
}

func crossed(layers []annotation.Layer, anns []annotation.Annotation, from, to float64, inclusive bool) []annotation.Annotation {
	visible := make(map[string]bool, len(layers))
	for _, l := range layers {
		if l.IsVisible {
			visible[l.ID] = true
		}
	}

	var out []annotation.Annotation
	for _, a := range sortedAnnotations(anns) {
		if !visible[a.LayerID] {
			continue
		}
		if (a.Time > from && a.Time <= to) || (inclusive && a.Time == from) {
			out = append(out, a)
		}
	}
	return out
}

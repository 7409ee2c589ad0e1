package timeline

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/franz/track-notes/internal/segment"
	"github.com/franz/track-notes/internal/waveform"
)

var levels = []rune("▁▂▃▄▅▆▇█")

const (
	labelWidth = 16
	minColumns = 10
)

// TextOptions controls the plain-text rendering
type TextOptions struct {
	// Width is the total output width in columns
	Width int
	// Notes prints each line's annotations under it
	Notes bool
}

// WriteText renders the model as text, one block per line:
//
//	▶ 0:30 - 1:00   ▂▄▇█▆▃▂▁▁▂▄▆█▇▅▃
//	                ━━━━━━━●─────────
//	                   ◆      │
//	                  0:34 [Verse] first chorus
func WriteText(w io.Writer, m *Model, opts TextOptions) error {
	if len(m.Lines) == 0 {
		_, err := fmt.Fprintln(w, "(no audio loaded)")
		return err
	}

	cols := opts.Width - labelWidth
	if cols < minColumns {
		cols = minColumns
	}

	full := m.Lines[0].End - m.Lines[0].Start
	pad := strings.Repeat(" ", labelWidth)

	for _, line := range m.Lines {
		lineCols := cols
		if full > 0 && line.End-line.Start < full {
			lineCols = int(math.Ceil(float64(cols) * (line.End - line.Start) / full))
			if lineCols < 1 {
				lineCols = 1
			}
		}

		head := "  "
		if line.Current {
			head = "▶ "
		}
		label := fmt.Sprintf("%s%s", head, line.Label)

		var b strings.Builder
		b.WriteString(padRight(label, labelWidth))
		b.WriteString(waveRow(line.Waveform, lineCols))
		b.WriteByte('\n')

		b.WriteString(pad)
		b.WriteString(progressRow(line, cols, lineCols))
		b.WriteByte('\n')

		if len(line.Markers) > 0 {
			b.WriteString(pad)
			b.WriteString(strings.TrimRight(markerRow(line, cols), " "))
			b.WriteByte('\n')
		}

		if opts.Notes {
			for _, mk := range line.Markers {
				flag := " "
				if mk.Focused {
					flag = "*"
				}
				fmt.Fprintf(&b, "%s%s%s [%s] %s\n", pad, flag, segment.FormatTime(mk.Annotation.Time), mk.LayerName, mk.Annotation.Text)
			}
		}

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}

	return nil
}

func waveRow(samples []float64, cols int) string {
	var b strings.Builder
	for _, v := range waveform.Blocks(samples, cols) {
		b.WriteRune(level(v))
	}
	return b.String()
}

func level(v float64) rune {
	if v <= 0 || math.IsNaN(v) {
		return levels[0]
	}
	i := int(v * float64(len(levels)))
	if i >= len(levels) {
		i = len(levels) - 1
	}
	return levels[i]
}

func progressRow(line Line, cols, lineCols int) string {
	played := int(math.Round(line.Progress * float64(cols)))
	if played > lineCols {
		played = lineCols
	}

	var b strings.Builder
	for i := 0; i < lineCols; i++ {
		switch {
		case line.Current && i == played:
			b.WriteRune('●')
		case i < played:
			b.WriteRune('━')
		default:
			b.WriteRune('─')
		}
	}
	if line.Current && played == lineCols {
		b.WriteRune('●')
	}
	return b.String()
}

// markerRow draws one glyph per occupied column. Where markers collide the
// one with the highest priority is drawn.
func markerRow(line Line, cols int) string {
	row := []rune(strings.Repeat(" ", cols+1))
	best := make([]int, cols+1)

	for _, mk := range line.Markers {
		col := int(math.Round(mk.Offset * float64(cols)))
		if col > cols {
			col = cols
		}
		if mk.Priority <= best[col] {
			continue
		}
		best[col] = mk.Priority

		switch {
		case mk.Focused:
			row[col] = '◆'
		case mk.Hovered:
			row[col] = '◇'
		default:
			row[col] = '│'
		}
	}
	return string(row)
}

func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-n)
}

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/track-notes/internal/annotation"
	"github.com/franz/track-notes/internal/segment"
)

// NotesReport is a printable summary of one project's annotations
type NotesReport struct {
	GeneratedAt time.Time
	Project     string
	Source      string
	Duration    float64

	Layers []LayerSummary
	Lines  []LineNotes

	Total        int
	EventLogPath string
}

// LayerSummary is one row of the layer table
type LayerSummary struct {
	Name    string
	Color   string
	Visible bool
	Active  bool
	Count   int
}

// LineNotes groups the annotations of one timeline line
type LineNotes struct {
	Label string
	Notes []Note
}

// Note is one annotation as it appears in the report
type Note struct {
	Time  string
	Layer string
	Text  string
}

// BuildNotesReport groups every annotation, hidden layers included, by
// timeline line. Without a known duration the lines stretch to the last
// annotation.
func BuildNotesReport(project, source string, duration float64, sg segment.Segmenter, layers []annotation.Layer, annotations []annotation.Annotation) *NotesReport {
	r := &NotesReport{
		GeneratedAt: time.Now(),
		Project:     project,
		Source:      source,
		Duration:    duration,
		Total:       len(annotations),
	}

	names := make(map[string]string, len(layers))
	counts := annotation.CountByLayer(annotations)
	for _, l := range layers {
		names[l.ID] = l.Name
		r.Layers = append(r.Layers, LayerSummary{
			Name:    l.Name,
			Color:   l.Color.Hex(),
			Visible: l.IsVisible,
			Active:  l.IsActive,
			Count:   counts[l.ID],
		})
	}

	span := duration
	for _, a := range annotations {
		if a.Time > span {
			span = a.Time
		}
	}

	all := make(map[string]bool, len(layers))
	for _, l := range layers {
		all[l.ID] = true
	}

	for _, seg := range sg.All(span) {
		anns := annotation.InSegment(annotations, all, seg)
		if len(anns) == 0 {
			continue
		}

		line := LineNotes{Label: seg.Label()}
		for _, a := range anns {
			line.Notes = append(line.Notes, Note{
				Time:  segment.FormatTime(a.Time),
				Layer: names[a.LayerID],
				Text:  a.Text,
			})
		}
		r.Lines = append(r.Lines, line)
	}

	return r
}

// WriteMarkdownReport writes the notes report as Markdown
func WriteMarkdownReport(report *NotesReport, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(RenderMarkdown(report)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// RenderMarkdown returns the report as a Markdown document
func RenderMarkdown(report *NotesReport) string {
	var md strings.Builder

	md.WriteString(fmt.Sprintf("# %s\n\n", report.Project))
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))
	if report.Source != "" {
		md.WriteString(fmt.Sprintf("**Source:** `%s`\n\n", truncatePath(report.Source, 80)))
	}
	if report.Duration > 0 {
		md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", segment.FormatTime(report.Duration)))
	}
	if report.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", report.EventLogPath))
	}

	md.WriteString("---\n\n")

	md.WriteString("## Layers\n\n")
	md.WriteString("| Layer | Color | Annotations | Visible | Active |\n")
	md.WriteString("|-------|-------|-------------|---------|--------|\n")
	for _, l := range report.Layers {
		md.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s |\n", l.Name, l.Color, l.Count, yesNo(l.Visible), yesNo(l.Active)))
	}
	md.WriteString("\n")

	md.WriteString(fmt.Sprintf("## Annotations (%d)\n\n", report.Total))
	if len(report.Lines) == 0 {
		md.WriteString("*No annotations yet.*\n\n")
	}
	for _, line := range report.Lines {
		md.WriteString(fmt.Sprintf("### %s\n\n", line.Label))
		for _, n := range line.Notes {
			md.WriteString(fmt.Sprintf("- **%s** [%s] %s\n", n.Time, n.Layer, escapeMarkdown(n.Text)))
		}
		md.WriteString("\n")
	}

	return md.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}

// truncatePath truncates a file path to a maximum length
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	// Truncate from the middle, keeping start and end
	start := maxLen/2 - 2
	end := len(path) - (maxLen/2 - 2)
	return path[:start] + "..." + path[end:]
}

package meta

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dhowden/tag"
)

// Tags holds the embedded tags used to name a project
type Tags struct {
	Format string
	Title  string
	Artist string
	Album  string
}

// ReadTags reads embedded tags from a local file
func ReadTags(path string) (*Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	return &Tags{
		Format: string(m.Format()),
		Title:  strings.TrimSpace(m.Title()),
		Artist: strings.TrimSpace(m.Artist()),
		Album:  strings.TrimSpace(m.Album()),
	}, nil
}

// "01 - Title" and "01. Title"
var trackPrefix = regexp.MustCompile(`^\d+\s*[-_.]\s*`)

// DisplayName derives a project name for a source: "Artist - Title" from
// tags when both exist, the title alone, or else the cleaned file name.
func DisplayName(source string, tags *Tags) string {
	if tags != nil {
		switch {
		case tags.Artist != "" && tags.Title != "":
			return tags.Artist + " - " + tags.Title
		case tags.Title != "":
			return tags.Title
		}
	}

	base := source
	if i := strings.IndexAny(base, "?#"); i >= 0 && strings.Contains(source, "://") {
		base = base[:i]
	}
	base = filepath.Base(filepath.FromSlash(base))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = trackPrefix.ReplaceAllString(name, "")
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "Untitled"
	}
	return name
}

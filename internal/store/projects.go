package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/franz/track-notes/internal/annotation"
	"github.com/franz/track-notes/internal/project"
	"github.com/franz/track-notes/internal/util"
)

// ProjectSummary is a row of the project listing
type ProjectSummary struct {
	Name         string
	AudioURL     string
	CreatedAt    time.Time
	LastModified time.Time
	Duration     float64
	Layers       int
	Annotations  int
}

// SaveSnapshot stores a project, replacing any saved project of the same
// name wholesale. Lock contention is retried.
func (s *Store) SaveSnapshot(snap *project.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	return util.Retry(util.DefaultRetryConfig(), func() error {
		return s.Transaction(func(tx *sql.Tx) error {
			return saveSnapshot(tx, snap)
		})
	}, fmt.Sprintf("save project %q", snap.Name))
}

func saveSnapshot(tx *sql.Tx, snap *project.Snapshot) error {
	created := snap.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	modified := snap.LastModified
	if modified.IsZero() {
		modified = created
	}

	_, err := tx.Exec(`
		INSERT INTO projects (name, audio_url, created_at, last_modified, position, duration)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			audio_url = excluded.audio_url,
			created_at = excluded.created_at,
			last_modified = excluded.last_modified,
			position = excluded.position,
			duration = excluded.duration
	`, snap.Name, snap.AudioURL, created.UTC(), modified.UTC(), snap.AudioState.CurrentTime, snap.AudioState.Duration)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	var id int64
	if err := tx.QueryRow("SELECT id FROM projects WHERE name = ?", snap.Name).Scan(&id); err != nil {
		return fmt.Errorf("failed to get project ID: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM annotations WHERE project_id = ?", id); err != nil {
		return fmt.Errorf("failed to clear annotations: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM layers WHERE project_id = ?", id); err != nil {
		return fmt.Errorf("failed to clear layers: %w", err)
	}

	layerStmt, err := tx.Prepare(`
		INSERT INTO layers (project_id, layer_id, position, name, color, is_visible, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare layer insert: %w", err)
	}
	defer layerStmt.Close()

	for i, l := range snap.Layers {
		if _, err := layerStmt.Exec(id, l.ID, i, l.Name, l.Color.Hex(), l.IsVisible, l.IsActive); err != nil {
			return fmt.Errorf("failed to insert layer %s: %w", l.ID, err)
		}
	}

	annStmt, err := tx.Prepare(`
		INSERT INTO annotations (project_id, annotation_id, seq, time, text, layer_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare annotation insert: %w", err)
	}
	defer annStmt.Close()

	for i, a := range snap.Annotations {
		if _, err := annStmt.Exec(id, a.ID, i, a.Time, a.Text, a.LayerID); err != nil {
			return fmt.Errorf("failed to insert annotation %s: %w", a.ID, err)
		}
	}

	return nil
}

// LoadSnapshot reads a saved project. It returns nil, nil if no project has
// that name. Layer counts are left for the session to recompute.
func (s *Store) LoadSnapshot(name string) (*project.Snapshot, error) {
	var id int64
	snap := &project.Snapshot{
		Layers:      []annotation.Layer{},
		Annotations: []annotation.Annotation{},
	}

	err := s.db.QueryRow(`
		SELECT id, name, audio_url, created_at, last_modified, position, duration
		FROM projects WHERE name = ?
	`, name).Scan(
		&id, &snap.Name, &snap.AudioURL, &snap.CreatedAt, &snap.LastModified,
		&snap.AudioState.CurrentTime, &snap.AudioState.Duration,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	snap.AudioState.SourceRef = snap.AudioURL

	layers, err := s.db.Query(`
		SELECT layer_id, name, color, is_visible, is_active
		FROM layers WHERE project_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query layers: %w", err)
	}
	defer layers.Close()

	for layers.Next() {
		var l annotation.Layer
		var color string
		if err := layers.Scan(&l.ID, &l.Name, &color, &l.IsVisible, &l.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan layer: %w", err)
		}
		if l.Color, err = annotation.ParseColor(color); err != nil {
			return nil, fmt.Errorf("layer %s: %w", l.ID, err)
		}
		snap.Layers = append(snap.Layers, l)
	}
	if err := layers.Err(); err != nil {
		return nil, fmt.Errorf("failed to read layers: %w", err)
	}

	anns, err := s.db.Query(`
		SELECT annotation_id, time, text, layer_id
		FROM annotations WHERE project_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query annotations: %w", err)
	}
	defer anns.Close()

	for anns.Next() {
		var a annotation.Annotation
		if err := anns.Scan(&a.ID, &a.Time, &a.Text, &a.LayerID); err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		snap.Annotations = append(snap.Annotations, a)
	}
	if err := anns.Err(); err != nil {
		return nil, fmt.Errorf("failed to read annotations: %w", err)
	}

	return snap, nil
}

// ListProjects returns every saved project, most recently modified first
func (s *Store) ListProjects() ([]*ProjectSummary, error) {
	rows, err := s.db.Query(`
		SELECT p.name, p.audio_url, p.created_at, p.last_modified, p.duration,
		       (SELECT COUNT(*) FROM layers l WHERE l.project_id = p.id),
		       (SELECT COUNT(*) FROM annotations a WHERE a.project_id = p.id)
		FROM projects p
		ORDER BY p.last_modified DESC, p.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*ProjectSummary
	for rows.Next() {
		p := &ProjectSummary{}
		if err := rows.Scan(&p.Name, &p.AudioURL, &p.CreatedAt, &p.LastModified, &p.Duration, &p.Layers, &p.Annotations); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// DeleteProject removes a project with its layers and annotations
func (s *Store) DeleteProject(name string) error {
	result, err := s.db.Exec("DELETE FROM projects WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: project %q", util.ErrNotFound, name)
	}

	return nil
}

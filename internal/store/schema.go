package store

// Schema v1 - Initial database schema
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One row per project
CREATE TABLE IF NOT EXISTS projects (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT UNIQUE NOT NULL,
  audio_url TEXT NOT NULL,
  created_at DATETIME NOT NULL,
  last_modified DATETIME NOT NULL,
  position REAL NOT NULL DEFAULT 0,
  duration REAL NOT NULL DEFAULT 0
);

-- Layers, in display order
CREATE TABLE IF NOT EXISTS layers (
  project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  layer_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  name TEXT NOT NULL,
  color TEXT NOT NULL,
  is_visible INTEGER NOT NULL DEFAULT 1,
  is_active INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (project_id, layer_id)
);

-- Annotations, in insertion order
CREATE TABLE IF NOT EXISTS annotations (
  project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  annotation_id TEXT NOT NULL,
  seq INTEGER NOT NULL,
  time REAL NOT NULL,
  text TEXT NOT NULL DEFAULT '',
  layer_id TEXT NOT NULL,
  PRIMARY KEY (project_id, annotation_id),
  FOREIGN KEY (project_id, layer_id) REFERENCES layers(project_id, layer_id)
);

-- Waveform envelopes keyed by source identity
CREATE TABLE IF NOT EXISTS waveforms (
  source_key TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  sample_rate INTEGER,
  duration REAL,
  synthetic INTEGER NOT NULL DEFAULT 0,
  samples BLOB NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Schema v2 - Lookup indexes
const schemaV2 = `
CREATE INDEX IF NOT EXISTS idx_layers_project_position ON layers(project_id, position);
CREATE INDEX IF NOT EXISTS idx_annotations_project_seq ON annotations(project_id, seq);
CREATE INDEX IF NOT EXISTS idx_annotations_project_time ON annotations(project_id, time);
CREATE INDEX IF NOT EXISTS idx_waveforms_source ON waveforms(source);
`

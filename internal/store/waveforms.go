package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/franz/track-notes/internal/waveform"
)

// WaveformStats summarizes the envelope cache
type WaveformStats struct {
	Count int
	Bytes int64
}

// PutWaveform caches an envelope under a source key
func (s *Store) PutWaveform(sourceKey, source string, data *waveform.Data) error {
	_, err := s.db.Exec(`
		INSERT INTO waveforms (source_key, source, sample_rate, duration, synthetic, samples, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_key) DO UPDATE SET
			source = excluded.source,
			sample_rate = excluded.sample_rate,
			duration = excluded.duration,
			synthetic = excluded.synthetic,
			samples = excluded.samples,
			created_at = excluded.created_at
	`, sourceKey, source, data.SampleRate, data.Duration, data.Synthetic, encodeSamples(data.Samples), time.Now())

	if err != nil {
		return fmt.Errorf("failed to cache waveform: %w", err)
	}

	return nil
}

// GetWaveform returns a cached envelope, or nil, nil on a miss
func (s *Store) GetWaveform(sourceKey string) (*waveform.Data, error) {
	data := &waveform.Data{}
	var blob []byte

	err := s.db.QueryRow(`
		SELECT sample_rate, duration, synthetic, samples
		FROM waveforms WHERE source_key = ?
	`, sourceKey).Scan(&data.SampleRate, &data.Duration, &data.Synthetic, &blob)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get waveform: %w", err)
	}

	data.Samples, err = decodeSamples(blob)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// DeleteWaveform drops a cached envelope
func (s *Store) DeleteWaveform(sourceKey string) error {
	if _, err := s.db.Exec("DELETE FROM waveforms WHERE source_key = ?", sourceKey); err != nil {
		return fmt.Errorf("failed to delete waveform: %w", err)
	}
	return nil
}

// WaveformCacheStats counts cached envelopes and their stored size
func (s *Store) WaveformCacheStats() (*WaveformStats, error) {
	stats := &WaveformStats{}
	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(LENGTH(samples)), 0) FROM waveforms
	`).Scan(&stats.Count, &stats.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to query waveform cache: %w", err)
	}
	return stats, nil
}

// Envelope values are stored as little-endian float32
func encodeSamples(samples []float64) []byte {
	buf := make([]byte, 4*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(float32(v)))
	}
	return buf
}

func decodeSamples(blob []byte) ([]float64, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("corrupt waveform blob: %d bytes", len(blob))
	}
	samples := make([]float64, len(blob)/4)
	for i := range samples {
		samples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:])))
	}
	return samples, nil
}

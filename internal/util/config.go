package util

import "github.com/spf13/viper"

// Defaults shared by the CLI and the engine packages
const (
	DefaultSegmentLength    = 30.0
	DefaultWaveformBudget   = 10000
	DefaultDecodeSampleRate = 44100
	DefaultRenderWidth      = 80
)

// SegmentLength returns the configured line length in seconds
func SegmentLength() float64 {
	if v := viper.GetFloat64("segment_length"); v > 0 {
		return v
	}
	return DefaultSegmentLength
}

// WaveformBudget returns the configured maximum envelope size
func WaveformBudget() int {
	if v := viper.GetInt("waveform_budget"); v > 0 {
		return v
	}
	return DefaultWaveformBudget
}

// DecodeSampleRate returns the sample rate the decoder resamples to
func DecodeSampleRate() int {
	if v := viper.GetInt("decode_sample_rate"); v > 0 {
		return v
	}
	return DefaultDecodeSampleRate
}

// BinaryPath returns the configured path for an external tool, defaulting to its name
func BinaryPath(name string) string {
	if v := viper.GetString(name); v != "" {
		return v
	}
	return name
}

package waveform

// SyntheticLevel is the flat amplitude used when a source cannot be decoded
const SyntheticLevel = 0.1

// Synthetic builds the flat fallback envelope substituted for an undecodable
// source, so a missing waveform never blocks playback or annotation.
func Synthetic(duration float64, sampleRate, budget int) *Data {
	if budget <= 0 {
		budget = DefaultBudget
	}

	samples := make([]float64, budget)
	for i := range samples {
		samples[i] = SyntheticLevel
	}

	return &Data{
		Samples:    samples,
		SampleRate: sampleRate,
		Duration:   duration,
		Synthetic:  true,
	}
}

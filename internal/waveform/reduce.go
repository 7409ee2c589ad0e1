// Package waveform reduces decoded audio into a bounded amplitude envelope
// and runs that reduction as a cancellable background task.
package waveform

import "math"

// DefaultBudget caps the number of envelope values regardless of source length
const DefaultBudget = 10000

// Data is an immutable amplitude envelope. Every sample is in [0, 1].
type Data struct {
	Samples    []float64 `json:"samples"`
	SampleRate int       `json:"sampleRate"`
	Duration   float64   `json:"duration"`
	Synthetic  bool      `json:"synthetic,omitempty"`
}

// Len returns the number of envelope values
func (d *Data) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Samples)
}

// Reduce converts raw mono samples into an envelope of at most budget values.
// Sources longer than the budget are split into budget contiguous chunks of
// floor(len/budget) samples (the last chunk takes the remainder) and each
// chunk becomes its RMS amplitude. Values are then normalized by the peak;
// an all-silent source normalizes to zeros.
func Reduce(samples []float64, sampleRate int, duration float64, budget int) *Data {
	if budget <= 0 {
		budget = DefaultBudget
	}

	n := len(samples)
	target := n
	if target > budget {
		target = budget
	}

	out := make([]float64, target)
	if target == 0 {
		return &Data{Samples: out, SampleRate: sampleRate, Duration: duration}
	}

	chunk := n / target
	peak := 0.0
	for i := 0; i < target; i++ {
		start := i * chunk
		end := start + chunk
		if i == target-1 {
			end = n
		}

		sum := 0.0
		for _, x := range samples[start:end] {
			sum += x * x
		}
		rms := math.Sqrt(sum / float64(end-start))
		if math.IsNaN(rms) || math.IsInf(rms, 0) {
			rms = 0
		}

		out[i] = rms
		if rms > peak {
			peak = rms
		}
	}

	for i := range out {
		if peak == 0 {
			out[i] = 0
			continue
		}
		out[i] /= peak
	}

	return &Data{Samples: out, SampleRate: sampleRate, Duration: duration}
}

// Slice returns the envelope values covering [start, end) of a track lasting
// total seconds. The cut uses start/total and end/total fractions of the whole
// envelope so it holds for any reduction ratio. A non-positive total falls
// back to the envelope's own duration.
func (d *Data) Slice(start, end, total float64) []float64 {
	if d.Len() == 0 {
		return nil
	}
	if total <= 0 {
		total = d.Duration
	}
	if total <= 0 || end <= start {
		return nil
	}

	n := len(d.Samples)
	si := clampIndex(int(math.Floor(start/total*float64(n))), n)
	ei := clampIndex(int(math.Floor(end/total*float64(n))), n)
	if ei < si {
		ei = si
	}
	return d.Samples[si:ei:ei]
}

// Blocks groups samples into width columns of max(1, len/width) values and
// averages each one. Columns past the end of the data are zero.
func Blocks(samples []float64, width int) []float64 {
	if width <= 0 {
		return nil
	}

	blocks := make([]float64, width)
	per := len(samples) / width
	if per < 1 {
		per = 1
	}

	for i := 0; i < width; i++ {
		start := i * per
		if start >= len(samples) {
			break
		}
		end := start + per
		if end > len(samples) {
			end = len(samples)
		}

		sum := 0.0
		for _, v := range samples[start:end] {
			sum += v
		}
		blocks[i] = sum / float64(end-start)
	}

	return blocks
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

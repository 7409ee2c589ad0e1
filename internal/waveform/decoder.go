package waveform

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/franz/track-notes/internal/util"
)

// PCM is a decoded mono sample buffer with values in [-1, 1]
type PCM struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the buffer length in seconds
func (p *PCM) Duration() float64 {
	if p == nil || p.SampleRate <= 0 {
		return 0
	}
	return float64(len(p.Samples)) / float64(p.SampleRate)
}

// Decoder turns raw encoded audio into mono PCM
type Decoder interface {
	Decode(ctx context.Context, r io.Reader) (*PCM, error)
}

// DecodeError reports an unreadable or undecodable source.
// It matches util.ErrDecode with errors.Is.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes every DecodeError match util.ErrDecode
func (e *DecodeError) Is(target error) bool {
	return target == util.ErrDecode
}

// FFmpegDecoder decodes any format ffmpeg understands by streaming the input
// through stdin and reading mono little-endian int16 PCM from stdout.
type FFmpegDecoder struct {
	Binary     string
	SampleRate int
}

// NewFFmpegDecoder creates a decoder using the given ffmpeg binary
func NewFFmpegDecoder(binary string, sampleRate int) *FFmpegDecoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	if sampleRate <= 0 {
		sampleRate = util.DefaultDecodeSampleRate
	}
	return &FFmpegDecoder{Binary: binary, SampleRate: sampleRate}
}

// Decode runs ffmpeg on r
func (d *FFmpegDecoder) Decode(ctx context.Context, r io.Reader) (*PCM, error) {
	cmd := exec.CommandContext(ctx, d.Binary,
		"-i", "pipe:0",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", strconv.Itoa(d.SampleRate),
		"-loglevel", "error",
		"pipe:1",
	)
	cmd.Stdin = r

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("ffmpeg failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	if len(out) < 2 {
		return nil, errors.New("ffmpeg produced no audio")
	}

	return &PCM{Samples: FromPCM16LE(out), SampleRate: d.SampleRate}, nil
}

// FromPCM16LE converts little-endian signed 16-bit samples to floats in [-1, 1).
// A trailing odd byte is ignored.
func FromPCM16LE(b []byte) []float64 {
	samples := make([]float64, len(b)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(b[i*2 : i*2+2]))
		samples[i] = float64(v) / 32768.0
	}
	return samples
}

// Downmix averages interleaved multi-channel samples into mono
func Downmix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		return interleaved
	}

	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

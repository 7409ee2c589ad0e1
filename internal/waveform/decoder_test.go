package waveform

import (
	"errors"
	"fmt"
	"testing"

	"github.com/franz/track-notes/internal/util"
)

func TestFromPCM16LE(t *testing.T) {
	// 0, 16384, -32768 and a dangling odd byte
	raw := []byte{0x00, 0x00, 0x00, 0x40, 0x00, 0x80, 0x7f}

	got := FromPCM16LE(raw)
	expected := []float64{0, 0.5, -1}

	if len(got) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("sample %d = %v, expected %v", i, got[i], expected[i])
		}
	}
}

func TestDownmix(t *testing.T) {
	stereo := []float64{1, 0, 0.5, 0.5, -1, 1}

	got := Downmix(stereo, 2)
	expected := []float64{0.5, 0.5, 0}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("frame %d = %v, expected %v", i, got[i], expected[i])
		}
	}

	mono := []float64{0.1, 0.2}
	if out := Downmix(mono, 1); len(out) != 2 {
		t.Errorf("mono input should pass through, got %v", out)
	}
}

func TestPCMDuration(t *testing.T) {
	pcm := &PCM{Samples: make([]float64, 22050), SampleRate: 44100}
	if got := pcm.Duration(); got != 0.5 {
		t.Errorf("Duration() = %v, expected 0.5", got)
	}

	var empty *PCM
	if empty.Duration() != 0 {
		t.Error("nil PCM should have zero duration")
	}
}

func TestDecodeError(t *testing.T) {
	inner := fmt.Errorf("ffmpeg failed: invalid data")
	err := error(&DecodeError{Source: "broken.mp3", Err: inner})

	if !errors.Is(err, util.ErrDecode) {
		t.Error("DecodeError should match util.ErrDecode")
	}
	if !errors.Is(err, inner) {
		t.Error("DecodeError should unwrap to the underlying error")
	}

	var de *DecodeError
	if !errors.As(fmt.Errorf("analysis: %w", err), &de) || de.Source != "broken.mp3" {
		t.Error("expected to recover DecodeError with source")
	}
}

func TestNewFFmpegDecoder_Defaults(t *testing.T) {
	d := NewFFmpegDecoder("", 0)
	if d.Binary != "ffmpeg" {
		t.Errorf("expected default binary ffmpeg, got %q", d.Binary)
	}
	if d.SampleRate != util.DefaultDecodeSampleRate {
		t.Errorf("expected default sample rate, got %d", d.SampleRate)
	}
}

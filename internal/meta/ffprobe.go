// Package meta reads audio metadata: stream properties through ffprobe and
// embedded tags through dhowden/tag.
package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/franz/track-notes/internal/util"
)

// FFprobeInfo represents the output from ffprobe
type FFprobeInfo struct {
	Streams []FFprobeStream `json:"streams"`
	Format  *FFprobeFormat  `json:"format"`
}

// IntOrString can unmarshal both integers and strings from JSON
type IntOrString struct {
	Value int
}

// UnmarshalJSON implements custom unmarshaling for IntOrString
func (i *IntOrString) UnmarshalJSON(data []byte) error {
	var intVal int
	if err := json.Unmarshal(data, &intVal); err == nil {
		i.Value = intVal
		return nil
	}

	var strVal string
	if err := json.Unmarshal(data, &strVal); err != nil {
		return err
	}

	// Unparseable strings ("N/A", "") count as zero
	parsed, err := strconv.Atoi(strVal)
	if err != nil {
		i.Value = 0
		return nil
	}

	i.Value = parsed
	return nil
}

// FFprobeStream represents one stream
type FFprobeStream struct {
	Index         int         `json:"index"`
	CodecName     string      `json:"codec_name"`
	CodecType     string      `json:"codec_type"`
	SampleRate    int         `json:"sample_rate,string"`
	Channels      int         `json:"channels"`
	ChannelLayout string      `json:"channel_layout"`
	BitsPerSample IntOrString `json:"bits_per_sample"`
	Duration      string      `json:"duration"`
	BitRate       string      `json:"bit_rate"`
}

// FFprobeFormat represents container format metadata
type FFprobeFormat struct {
	Filename       string            `json:"filename"`
	FormatName     string            `json:"format_name"`
	FormatLongName string            `json:"format_long_name"`
	Duration       string            `json:"duration"`
	Size           string            `json:"size"`
	BitRate        string            `json:"bit_rate"`
	Tags           map[string]string `json:"tags"`
}

// AudioInfo is what the rest of the program needs from a probe
type AudioInfo struct {
	Duration    float64
	SampleRate  int
	Channels    int
	Codec       string
	Container   string
	BitrateKbps int
	Lossless    bool
	Title       string
	Artist      string
}

// Prober runs ffprobe
type Prober struct {
	Binary string
}

// NewProber creates a prober. An empty binary means "ffprobe" from PATH.
func NewProber(binary string) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{Binary: binary}
}

// Run executes ffprobe and parses the JSON output
func (p *Prober) Run(ctx context.Context, source string) (*FFprobeInfo, error) {
	if _, err := exec.LookPath(p.Binary); err != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrNotFound, p.Binary)
	}

	cmd := exec.CommandContext(ctx, p.Binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		source,
	)

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("ffprobe failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("ffprobe execution failed: %w", err)
	}

	return ParseFFprobe(output)
}

// ParseFFprobe decodes ffprobe's JSON output
func ParseFFprobe(output []byte) (*FFprobeInfo, error) {
	var info FFprobeInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &info, nil
}

// Probe reads the properties of the first audio stream
func (p *Prober) Probe(ctx context.Context, source string) (*AudioInfo, error) {
	info, err := p.Run(ctx, source)
	if err != nil {
		return nil, err
	}
	return info.Audio()
}

// Duration satisfies the playback prober signature
func (p *Prober) Duration(source string) (float64, error) {
	ai, err := p.Probe(context.Background(), source)
	if err != nil {
		return 0, err
	}
	if ai.Duration <= 0 {
		return 0, fmt.Errorf("%w: %s reports no duration", util.ErrDecode, source)
	}
	return ai.Duration, nil
}

// Audio extracts the first audio stream and container details
func (info *FFprobeInfo) Audio() (*AudioInfo, error) {
	ai := &AudioInfo{}

	var stream *FFprobeStream
	for i := range info.Streams {
		if info.Streams[i].CodecType == "audio" {
			stream = &info.Streams[i]
			break
		}
	}
	if stream == nil {
		return nil, fmt.Errorf("%w: no audio stream", util.ErrDecode)
	}

	ai.Codec = stream.CodecName
	ai.SampleRate = stream.SampleRate
	ai.Channels = stream.Channels
	ai.Lossless = isLosslessCodec(stream.CodecName)
	ai.Duration = parseSeconds(stream.Duration)

	if f := info.Format; f != nil {
		ai.Container = f.FormatName
		if d := parseSeconds(f.Duration); d > 0 {
			ai.Duration = d
		}
		if br, err := strconv.Atoi(f.BitRate); err == nil {
			ai.BitrateKbps = br / 1000
		}
		ai.Title = getTag(f.Tags, "title", "TITLE")
		ai.Artist = getTag(f.Tags, "artist", "ARTIST")
	}

	return ai, nil
}

// CheckFFprobeAvailable checks if ffprobe is available in PATH
func CheckFFprobeAvailable(binary string) bool {
	if binary == "" {
		binary = "ffprobe"
	}
	_, err := exec.LookPath(binary)
	return err == nil
}

// CheckFFmpegAvailable runs "ffmpeg -version"
func CheckFFmpegAvailable(binary string) error {
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.Command(binary, "-version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// getTag retrieves a tag value from a map, trying multiple keys
func getTag(tags map[string]string, keys ...string) string {
	for _, key := range keys {
		if val, ok := tags[key]; ok && val != "" {
			return val
		}
	}
	return ""
}

// isLosslessCodec checks if a codec is lossless
func isLosslessCodec(codec string) bool {
	codec = strings.ToLower(codec)
	lossless := map[string]bool{
		"flac":    true,
		"alac":    true,
		"ape":     true,
		"wavpack": true,
		"tta":     true,
	}
	if strings.HasPrefix(codec, "pcm_") {
		return true
	}
	return lossless[codec]
}

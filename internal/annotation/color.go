package annotation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/franz/track-notes/internal/util"
)

// Color is an RGB layer colour. It serializes as "#RRGGBB".
type Color struct {
	R, G, B uint8
}

// Palette is the predefined set offered for new layers
var Palette = []Color{
	{0x3B, 0x82, 0xF6}, // Blue
	{0xEF, 0x44, 0x44}, // Red
	{0x10, 0xB9, 0x81}, // Green
	{0xF5, 0x9E, 0x0B}, // Yellow
	{0x8B, 0x5C, 0xF6}, // Purple
	{0xF9, 0x73, 0x16}, // Orange
	{0x06, 0xB6, 0xD4}, // Cyan
	{0xEC, 0x48, 0x99}, // Pink
	{0x84, 0xCC, 0x16}, // Lime
	{0x63, 0x66, 0xF1}, // Indigo
}

// ParseColor parses "#RRGGBB" or "RRGGBB" (case-insensitive)
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("%w: color %q must be #RRGGBB", util.ErrInvalidInput, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: color %q is not hexadecimal", util.ErrInvalidInput, s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex returns the "#RRGGBB" form
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.Hex()
}

// MarshalJSON implements json.Marshaler
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// NextColor picks the palette colour for the layer created after n existing ones
func NextColor(n int) Color {
	if n < 0 {
		n = 0
	}
	return Palette[n%len(Palette)]
}

// Package rgb holds the linear colour value shared by the lighting, sky and
// snow blend calculations.
package rgb

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hsluv/hsluv-go"
)

// Color is an RGB triple with channels in [0,1].
type Color struct {
	R float64
	G float64
	B float64
}

var Black = Color{}

// Hex builds a colour from a 0xRRGGBB literal.
func Hex(v uint32) Color {
	return Color{
		R: float64((v>>16)&0xFF) / 255,
		G: float64((v>>8)&0xFF) / 255,
		B: float64(v&0xFF) / 255,
	}
}

// Parse accepts "#rrggbb", "rrggbb" or "0xrrggbb".
func Parse(s string) (Color, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(strings.ToLower(trimmed), "0x")
	if len(trimmed) != 6 {
		return Color{}, fmt.Errorf("colour %q must have six hex digits", s)
	}
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	return Hex(uint32(v)), nil
}

// MustParse is Parse for package-level palettes.
func MustParse(s string) Color {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Uint32 packs the colour back into 0xRRGGBB, rounding each channel.
func (c Color) Uint32() uint32 {
	return uint32(channel(c.R))<<16 | uint32(channel(c.G))<<8 | uint32(channel(c.B))
}

func (c Color) String() string {
	return fmt.Sprintf("#%06x", c.Uint32())
}

// Lerp moves from c toward other by t. t is clamped to [0,1].
func (c Color) Lerp(other Color, t float64) Color {
	t = clamp01(t)
	return Color{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
	}
}

// Scale multiplies every channel by f and clamps the result.
func (c Color) Scale(f float64) Color {
	return Color{R: clamp01(c.R * f), G: clamp01(c.G * f), B: clamp01(c.B * f)}
}

// Shade shifts the HSLuv lightness by delta percentage points while keeping
// hue and saturation.
func (c Color) Shade(delta float64) Color {
	h, s, l := hsluv.HsluvFromRGB(c.R, c.G, c.B)
	l = math.Max(0, math.Min(100, l+delta))
	r, g, b := hsluv.HsluvToRGB(h, s, l)
	return Color{R: clamp01(r), G: clamp01(g), B: clamp01(b)}
}

// Lightness reports the HSLuv lightness in [0,100].
func (c Color) Lightness() float64 {
	_, _, l := hsluv.HsluvFromRGB(c.R, c.G, c.B)
	return l
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func channel(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Package astro places the sun and moon on the sky for a given time of day
// and season and derives the colour of their light.
package astro

import (
	"fmt"
	"math"
	"strings"

	"hexisland/internal/rgb"
)

type Season uint8

const (
	Spring Season = iota
	Summer
	Autumn
	Winter
)

var seasonNames = [...]string{"spring", "summer", "autumn", "winter"}

func (s Season) String() string {
	if s.Valid() {
		return seasonNames[s]
	}
	return fmt.Sprintf("season(%d)", uint8(s))
}

func (s Season) Valid() bool {
	return s <= Winter
}

func ParseSeason(v string) (Season, error) {
	name := strings.ToLower(strings.TrimSpace(v))
	for i, candidate := range seasonNames {
		if candidate == name {
			return Season(i), nil
		}
	}
	return 0, fmt.Errorf("unknown season %q", v)
}

func (s Season) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Season) UnmarshalText(text []byte) error {
	parsed, err := ParseSeason(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Orbit bounds a body's daily arc.
type Orbit struct {
	MaxSummerElevation float64 `json:"maxSummerElevation"`
	MaxWinterElevation float64 `json:"maxWinterElevation"`
	AzimuthSwing       float64 `json:"azimuthSwing"`
}

func SunOrbit() Orbit {
	return Orbit{MaxSummerElevation: 75, MaxWinterElevation: 30, AzimuthSwing: 90}
}

func MoonOrbit() Orbit {
	return Orbit{MaxSummerElevation: 65, MaxWinterElevation: 65, AzimuthSwing: 100}
}

// PeakElevation is the noon elevation for a season. Spring and autumn sit
// five degrees either side of the midpoint.
func (o Orbit) PeakElevation(season Season) float64 {
	mid := (o.MaxSummerElevation + o.MaxWinterElevation) / 2
	switch season {
	case Summer:
		return o.MaxSummerElevation
	case Winter:
		return o.MaxWinterElevation
	case Spring:
		return mid + 5
	default:
		return mid - 5
	}
}

// horizonBias is how far below the horizon every body dips at its lowest.
const horizonBias = 10

// belowHorizon is the elevation under which a body's azimuth is mirrored
// and its light turns off.
const belowHorizon = -5

type Position struct {
	Elevation float64 `json:"elevation"`
	Azimuth   float64 `json:"azimuth"`
}

// Locate computes elevation and azimuth in degrees. timeOfDay is wrapped
// into [0,24).
func Locate(timeOfDay float64, season Season, orbit Orbit) Position {
	t := WrapHours(timeOfDay) / 24
	peak := orbit.PeakElevation(season)

	elevation := math.Sin(t*2*math.Pi-math.Pi/2)*(peak+horizonBias) - horizonBias
	elevation = math.Max(-90, math.Min(90, elevation))

	azimuth := 180 - math.Cos(t*2*math.Pi)*orbit.AzimuthSwing
	if elevation <= belowHorizon {
		azimuth += 180
	}
	return Position{Elevation: elevation, Azimuth: wrapDegrees(azimuth)}
}

// MoonTime is the clock the moon follows: half a day behind the sun.
func MoonTime(timeOfDay float64) float64 {
	return WrapHours(timeOfDay + 12)
}

type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Direction is the unit vector from the scene origin toward the body, with
// Y up.
func (p Position) Direction() Vector {
	el := p.Elevation * math.Pi / 180
	az := p.Azimuth * math.Pi / 180
	return Vector{
		X: math.Cos(el) * math.Cos(az),
		Y: math.Sin(el),
		Z: math.Cos(el) * math.Sin(az),
	}
}

var (
	nightSunColor   = rgb.Hex(0x050510)
	sunriseColor    = rgb.Hex(0xFF4500)
	twilightColor   = rgb.Hex(0x4682B4)
	horizonSetColor = rgb.Hex(0xFF8C00)
	middayColor     = rgb.Hex(0xFFFDD0)

	// MoonColor is the full moonlight tint.
	MoonColor = rgb.Hex(0xE0E8FF)
)

// SunLightColor walks the fixed anchors: night below -5 degrees, red-orange
// to twilight blue up to the horizon, then orange to warm white by 18
// degrees.
func SunLightColor(elevation float64) rgb.Color {
	norm := math.Min(math.Max(0, elevation), 90) / 90
	switch {
	case elevation < belowHorizon:
		return nightSunColor
	case elevation < 0:
		return sunriseColor.Lerp(twilightColor, (elevation+5)/5)
	case norm < 0.05:
		return sunriseColor.Lerp(horizonSetColor, norm/0.05)
	case norm < 0.20:
		return horizonSetColor.Lerp(middayColor, (norm-0.05)/0.15)
	default:
		return middayColor
	}
}

// MoonLightColor fades the base moon colour in over the 40 degrees above
// -5 and is black below.
func MoonLightColor(elevation float64, base rgb.Color) rgb.Color {
	if elevation < belowHorizon {
		return rgb.Black
	}
	return base.Scale(clamp01((elevation + 5) / 40))
}

func WrapHours(t float64) float64 {
	t = math.Mod(t, 24)
	if t < 0 {
		t += 24
	}
	if t >= 24 {
		t = 0
	}
	return t
}

func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
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

package environment

import (
	"fmt"
	"math"

	"hexisland/internal/astro"
	"hexisland/internal/rgb"
)

const snapEpsilon = 0.001

// snowAccumulator integrates the coverage ratio toward its target at
// separate rise and fall rates. The ratio never overshoots.
type snowAccumulator struct {
	ratio        float64
	accumulation float64
	melt         float64
}

func snowTarget(season astro.Season, weather Weather) float64 {
	if season == astro.Winter && weather == WeatherSnow {
		return 1
	}
	return 0
}

func (s *snowAccumulator) step(seconds, target float64) {
	diff := target - s.ratio
	if diff == 0 || seconds <= 0 {
		return
	}
	rate := s.accumulation
	if diff < 0 {
		rate = s.melt
	}
	change := seconds / rate
	if change >= math.Abs(diff) {
		s.ratio = target
		return
	}
	s.ratio += math.Copysign(change, diff)
	if math.Abs(target-s.ratio) < snapEpsilon {
		s.ratio = target
	}
	s.ratio = clamp01(s.ratio)
}

// Role says how a surface faces the sky.
type Role uint8

const (
	RoleTop Role = iota
	RoleSide
	// RoleEmissive surfaces (flames, lit glass) keep their own colour.
	RoleEmissive
)

func (r Role) String() string {
	switch r {
	case RoleSide:
		return "side"
	case RoleEmissive:
		return "emissive"
	default:
		return "top"
	}
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Heat is the lit heat source warming a surface. Lamps only warm their
// own fittings; a fire warms its whole building.
type Heat uint8

const (
	HeatNone Heat = iota
	HeatLamp
	HeatFire
)

func (h Heat) String() string {
	switch h {
	case HeatLamp:
		return "lamp"
	case HeatFire:
		return "fire"
	default:
		return "none"
	}
}

func (h Heat) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// SnowBlend tints surface colours toward snow.
type SnowBlend struct {
	Color          rgb.Color
	MaxLerp        float64
	WallMultiplier float64
	LampMultiplier float64
	FireMultiplier float64
}

func DefaultSnowBlend() SnowBlend {
	return SnowBlend{
		Color:          rgb.Hex(0xFFFAFA),
		MaxLerp:        0.85,
		WallMultiplier: 0.25,
		LampMultiplier: 0.3,
		FireMultiplier: 0.05,
	}
}

func (b SnowBlend) validate() error {
	for name, v := range map[string]float64{
		"max lerp":        b.MaxLerp,
		"wall multiplier": b.WallMultiplier,
		"lamp multiplier": b.LampMultiplier,
		"fire multiplier": b.FireMultiplier,
	} {
		if !inRange(v, 0, 1) {
			return fmt.Errorf("%w: snow %s must be within [0,1]", ErrInvalidConfiguration, name)
		}
	}
	return nil
}

// Factor is the lerp weight toward snow for one surface.
func (b SnowBlend) Factor(ratio float64, role Role, heat Heat) float64 {
	if role == RoleEmissive {
		return 0
	}
	f := clamp01(ratio) * b.MaxLerp
	if role == RoleSide {
		f *= b.WallMultiplier
	}
	switch heat {
	case HeatLamp:
		f *= b.LampMultiplier
	case HeatFire:
		f *= b.FireMultiplier
	}
	return clamp01(f)
}

// Apply returns the snow-tinted colour. A zero factor returns original
// unchanged.
func (b SnowBlend) Apply(original rgb.Color, ratio float64, role Role, heat Heat) rgb.Color {
	f := b.Factor(ratio, role, heat)
	if f == 0 {
		return original
	}
	return original.Lerp(b.Color, f)
}

package environment

import (
	"fmt"
	"math"

	"hexisland/internal/astro"
	"hexisland/internal/rgb"
)

type palette struct {
	dayZenith    rgb.Color
	dayHorizon   rgb.Color
	nightZenith  rgb.Color
	nightHorizon rgb.Color
}

func (p palette) lerp(other palette, t float64) palette {
	return palette{
		dayZenith:    p.dayZenith.Lerp(other.dayZenith, t),
		dayHorizon:   p.dayHorizon.Lerp(other.dayHorizon, t),
		nightZenith:  p.nightZenith.Lerp(other.nightZenith, t),
		nightHorizon: p.nightHorizon.Lerp(other.nightHorizon, t),
	}
}

var (
	clearPalette = palette{
		dayZenith:    rgb.Hex(0x87CEEB),
		dayHorizon:   rgb.Hex(0xADD8E6),
		nightZenith:  rgb.Hex(0x0A0A1A),
		nightHorizon: rgb.Hex(0x101025),
	}
	overcastPalette = palette{
		dayZenith:    rgb.Hex(0xB0C4DE),
		dayHorizon:   rgb.Hex(0x778899),
		nightZenith:  rgb.Hex(0x2F4F4F),
		nightHorizon: rgb.Hex(0x1E2D2D),
	}
	snowyPalette = palette{
		dayZenith:    rgb.Hex(0xC9D3DD),
		dayHorizon:   rgb.Hex(0xE4E9EE),
		nightZenith:  rgb.Hex(0x262B36),
		nightHorizon: rgb.Hex(0x3A404C),
	}
	rainHaze = rgb.Hex(0x333338)
)

const (
	fullDayAbove   = 15.0
	fullNightBelow = -8.0
)

func skyColor(sunElevation, moonElevation float64, sunColor rgb.Color, cond Conditions, snowRatio float64) rgb.Color {
	pal := clearPalette
	if cond.Overcast {
		pal = overcastPalette
	}
	pal = pal.lerp(snowyPalette, snowRatio)

	sunNorm := math.Max(0, math.Min(sunElevation, 90)) / 90
	moonNorm := math.Max(0, math.Min(moonElevation, 90)) / 90

	day := pal.dayHorizon.Lerp(pal.dayZenith, sunNorm*0.8)
	if sunElevation > -5 && sunElevation < 20 && !cond.Overcast {
		sunset := 1 - clamp01((sunElevation+5)/25)
		day = day.Lerp(sunColor, sunset*0.4)
	}

	night := pal.nightHorizon.Lerp(pal.nightZenith, 0.5+moonNorm*0.5)
	if moonElevation > 0 && !cond.Overcast {
		night = night.Lerp(astro.MoonColor, moonNorm*0.15)
	}

	var sky rgb.Color
	switch {
	case sunElevation > fullDayAbove:
		sky = day
	case sunElevation < fullNightBelow:
		sky = night
	default:
		sky = night.Lerp(day, (sunElevation-fullNightBelow)/(fullDayAbove-fullNightBelow))
	}

	if cond.Raining {
		sky = sky.Lerp(rainHaze, 0.5).Scale(0.7)
	}
	return sky
}

type Fog struct {
	Color rgb.Color `json:"color"`
	Near  float64   `json:"near"`
	Far   float64   `json:"far"`
}

type FogRange struct {
	Near float64
	Far  float64
}

func (r FogRange) lerp(other FogRange, t float64) FogRange {
	return FogRange{Near: lerp(r.Near, other.Near, t), Far: lerp(r.Far, other.Far, t)}
}

type FogPresets struct {
	Default FogRange
	Rainy   FogRange
	Snowy   FogRange
}

func DefaultFogPresets() FogPresets {
	return FogPresets{
		Default: FogRange{Near: 50, Far: 300},
		Rainy:   FogRange{Near: 20, Far: 140},
		Snowy:   FogRange{Near: 12, Far: 90},
	}
}

func (p FogPresets) validate() error {
	for _, r := range []FogRange{p.Default, p.Rainy, p.Snowy} {
		if r.Near < 0 || r.Far <= r.Near {
			return fmt.Errorf("%w: fog far distance must exceed a non-negative near distance", ErrInvalidConfiguration)
		}
	}
	return nil
}

// resolve picks the rain preset while raining and then closes in toward the
// snow preset by the snow ratio, which also covers melting.
func (p FogPresets) resolve(color rgb.Color, cond Conditions, snowRatio float64) Fog {
	r := p.Default
	if cond.Raining {
		r = p.Rainy
	}
	r = r.lerp(p.Snowy, snowRatio)
	return Fog{Color: color, Near: r.Near, Far: r.Far}
}

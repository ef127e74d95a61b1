package environment

import (
	"math"
	"testing"

	"hexisland/internal/astro"
)

func TestClearNoonLighting(t *testing.T) {
	env := newTestEnvironment(t, nil)
	frame := env.Current()

	if frame.Sun.Intensity != sunDayIntensity {
		t.Fatalf("sun intensity = %v, want %v", frame.Sun.Intensity, sunDayIntensity)
	}
	if !frame.Sun.Visible || !frame.Sun.CastShadow || !frame.Sun.DiscVisible {
		t.Fatalf("expected visible shadow-casting sun, got %+v", frame.Sun)
	}
	if frame.Moon.Visible {
		t.Fatalf("moon should not be visible at noon: %+v", frame.Moon)
	}
	if math.Abs(frame.Ambient-ambientBase) > 1e-12 {
		t.Fatalf("ambient = %v, want %v", frame.Ambient, ambientBase)
	}
	if frame.Sun.Color.Uint32() != 0xFFFDD0 {
		t.Fatalf("sun colour = %v", frame.Sun.Color)
	}
}

func TestOvercastDampsLightAndDisablesShadows(t *testing.T) {
	for _, weather := range []Weather{WeatherCloudy, WeatherRainy, WeatherSnow} {
		t.Run(string(weather), func(t *testing.T) {
			env := newTestEnvironment(t, func(cfg *Config) { cfg.InitialWeather = weather })
			frame := env.Current()
			if math.Abs(frame.Sun.Intensity-sunDayIntensity*sunOvercastFactor) > 1e-12 {
				t.Fatalf("sun intensity = %v", frame.Sun.Intensity)
			}
			if frame.Sun.CastShadow || frame.Sun.DiscVisible {
				t.Fatalf("expected no shadows or disc when overcast: %+v", frame.Sun)
			}
			if math.Abs(frame.Ambient-ambientOvercast) > 1e-12 {
				t.Fatalf("ambient = %v, want %v", frame.Ambient, ambientOvercast)
			}
		})
	}
}

func TestMidnightMoonlight(t *testing.T) {
	env := newTestEnvironment(t, func(cfg *Config) { cfg.InitialTimeOfDay = 0 })
	frame := env.Current()

	want := moonBaseIntensity * math.Sin(65*math.Pi/180)
	if math.Abs(frame.Moon.Intensity-want) > 1e-9 {
		t.Fatalf("moon intensity = %v, want %v", frame.Moon.Intensity, want)
	}
	if !frame.Moon.Visible || !frame.Moon.CastShadow {
		t.Fatalf("expected visible shadow-casting moon: %+v", frame.Moon)
	}
	if frame.Sun.Visible || frame.Sun.CastShadow {
		t.Fatalf("sun should be down at midnight: %+v", frame.Sun)
	}
	if frame.Sun.Intensity != sunNightIntensity {
		t.Fatalf("night sun intensity = %v", frame.Sun.Intensity)
	}
}

func TestSnowCoverRaisesAmbient(t *testing.T) {
	cond := deriveConditions(astro.Winter, WeatherClear, 1)
	light := computeLighting(astro.Locate(12, astro.Winter, astro.SunOrbit()), astro.Locate(0, astro.Winter, astro.MoonOrbit()), WeatherClear, cond, 1)
	if math.Abs(light.Ambient-ambientSnowPeak) > 1e-12 {
		t.Fatalf("ambient under full snow = %v, want %v", light.Ambient, ambientSnowPeak)
	}
	if !cond.Melting || cond.ActivelySnowing {
		t.Fatalf("unexpected conditions %+v", cond)
	}
}

func TestSkyColourBlends(t *testing.T) {
	sunColor := astro.SunLightColor(75)
	clearCond := deriveConditions(astro.Summer, WeatherClear, 0)

	noon := skyColor(75, -95, sunColor, clearCond, 0)
	want := clearPalette.dayHorizon.Lerp(clearPalette.dayZenith, 75.0/90*0.8)
	if noon.Uint32() != want.Uint32() {
		t.Fatalf("noon sky = %v, want %v", noon, want)
	}

	night := skyColor(-40, -60, sunColor, clearCond, 0)
	if night != clearPalette.nightHorizon.Lerp(clearPalette.nightZenith, 0.5) {
		t.Fatalf("moonless night sky = %v", night)
	}

	rainy := skyColor(75, -95, sunColor, deriveConditions(astro.Summer, WeatherRainy, 0), 0)
	if rainy.Lightness() >= noon.Lightness() {
		t.Fatalf("expected rain to darken the sky: %v vs %v", rainy, noon)
	}

	snowy := skyColor(75, -95, sunColor, deriveConditions(astro.Winter, WeatherSnow, 1), 1)
	wantSnowy := snowyPalette.dayHorizon.Lerp(snowyPalette.dayZenith, 75.0/90*0.8)
	if snowy.Uint32() != wantSnowy.Uint32() {
		t.Fatalf("snowy sky = %v, want %v", snowy, wantSnowy)
	}
}

func TestFogPresets(t *testing.T) {
	presets := DefaultFogPresets()
	calm := presets.resolve(clearPalette.dayZenith, deriveConditions(astro.Summer, WeatherClear, 0), 0)
	if calm.Near != 50 || calm.Far != 300 {
		t.Fatalf("clear fog = %+v", calm)
	}
	rain := presets.resolve(clearPalette.dayZenith, deriveConditions(astro.Summer, WeatherRainy, 0), 0)
	if rain.Near != 20 || rain.Far != 140 {
		t.Fatalf("rain fog = %+v", rain)
	}
	snow := presets.resolve(clearPalette.dayZenith, deriveConditions(astro.Winter, WeatherSnow, 1), 1)
	if snow.Near != 12 || snow.Far != 90 {
		t.Fatalf("snow fog = %+v", snow)
	}
	half := presets.resolve(clearPalette.dayZenith, deriveConditions(astro.Winter, WeatherClear, 0.5), 0.5)
	if half.Near != 31 || half.Far != 195 {
		t.Fatalf("melting fog = %+v", half)
	}
}

package environment

import (
	"math"

	"hexisland/internal/astro"
)

// Conditions are the weather flags every light, sky and fog calculation
// reads, derived once per tick.
type Conditions struct {
	Overcast        bool    `json:"overcast"`
	Raining         bool    `json:"raining"`
	ActivelySnowing bool    `json:"activelySnowing"`
	Melting         bool    `json:"melting"`
	OvercastFactor  float64 `json:"overcastFactor"`
}

func deriveConditions(season astro.Season, weather Weather, snowRatio float64) Conditions {
	snowing := weather == WeatherSnow && season == astro.Winter
	cond := Conditions{
		Overcast:        weather == WeatherCloudy || weather == WeatherRainy || weather == WeatherSnow,
		Raining:         weather == WeatherRainy,
		ActivelySnowing: snowing,
		Melting:         !snowing && snowRatio > 0,
	}
	if cond.Overcast {
		cond.OvercastFactor = 1
	}
	return cond
}

const (
	ambientBase     = 0.4
	ambientOvercast = 0.7
	ambientSnowPeak = 0.9

	sunDayIntensity   = 2.8
	sunNightIntensity = 0.05
	sunOvercastFactor = 0.3
	sunVisibleAbove   = -8
	sunShadowMin      = 0.1

	moonBaseIntensity  = 0.4
	moonOvercastFactor = 0.2
	moonShadowMin      = 0.05
	moonVisibleMin     = 0.01

	discVisibleAbove = -2
)

type lighting struct {
	Sun     Body
	Moon    Body
	Ambient float64
}

func computeLighting(sun, moon astro.Position, weather Weather, cond Conditions, snowRatio float64) lighting {
	ambient := lerp(ambientBase, ambientOvercast, cond.OvercastFactor)
	ambient = lerp(ambient, ambientSnowPeak, snowRatio)

	sunIntensity := sunNightIntensity
	if sun.Elevation > -5 {
		sunIntensity = sunDayIntensity
	}
	sunIntensity *= lerp(1, sunOvercastFactor, cond.OvercastFactor)
	sunVisible := sun.Elevation > sunVisibleAbove

	moonIntensity := moonBaseIntensity * math.Max(0, math.Sin(moon.Elevation*math.Pi/180))
	moonIntensity *= lerp(1, moonOvercastFactor, cond.OvercastFactor)
	moonVisible := moon.Elevation > -5 && sun.Elevation < 5 && moonIntensity > moonVisibleMin

	clearSky := weather == WeatherClear
	return lighting{
		Sun: Body{
			Position:    sun,
			Direction:   sun.Direction(),
			Color:       astro.SunLightColor(sun.Elevation),
			Intensity:   sunIntensity,
			Visible:     sunVisible,
			CastShadow:  sunVisible && sunIntensity > sunShadowMin && !cond.Overcast,
			DiscVisible: sun.Elevation > discVisibleAbove && clearSky,
		},
		Moon: Body{
			Position:    moon,
			Direction:   moon.Direction(),
			Color:       astro.MoonLightColor(moon.Elevation, astro.MoonColor),
			Intensity:   moonIntensity,
			Visible:     moonVisible,
			CastShadow:  moonVisible && moonIntensity > moonShadowMin && !cond.Overcast,
			DiscVisible: moon.Elevation > discVisibleAbove && clearSky,
		},
		Ambient: ambient,
	}
}

package registry

import "hexisland/internal/astro"

// lampSchedule ramps a lamp on through the evening, holds it overnight and
// ramps it off after dawn.
type lampSchedule struct {
	eveningStart float64
	nightStart   float64
	morningStart float64
	morningEnd   float64
	peak         float64
	onAbove      float64
}

func (s lampSchedule) intensity(hour float64) float64 {
	switch {
	case hour >= s.nightStart || hour < s.morningStart:
		return s.peak
	case hour >= s.eveningStart:
		return s.peak * (hour - s.eveningStart) / (s.nightStart - s.eveningStart)
	case hour < s.morningEnd:
		return s.peak * (1 - (hour-s.morningStart)/(s.morningEnd-s.morningStart))
	default:
		return 0
	}
}

var (
	houseLamp = lampSchedule{eveningStart: 17.5, nightStart: 19.5, morningStart: 6, morningEnd: 7, peak: 0.7, onAbove: 0.05}
	workLamp  = lampSchedule{eveningStart: 17.5, nightStart: 19.5, morningStart: 6, morningEnd: 6.5, peak: 0.5, onAbove: 0.05}
)

const (
	fireNight     = 2.0
	fireDawn      = 1.0
	fireDay       = 0.5
	fireLitAbove  = 0.3
	fireDawnStart = 6.0
	fireDawnEnd   = 8.0
	fireDusk      = 18.0
)

func fireIntensity(hour float64) float64 {
	switch {
	case hour > fireDusk || hour < fireDawnStart:
		return fireNight
	case hour < fireDawnEnd:
		return fireDawn
	default:
		return fireDay
	}
}

// LightIntensity is the light a building of type t gives off at hour.
func LightIntensity(t BuildingType, hour float64) float64 {
	hour = astro.WrapHours(hour)
	switch t {
	case Campfire:
		return fireIntensity(hour)
	case House:
		return houseLamp.intensity(hour)
	case Mine, Harbour:
		return workLamp.intensity(hour)
	default:
		return 0
	}
}

// IsLit reports whether the building's fire or lamp counts as on.
func IsLit(t BuildingType, hour float64) bool {
	v := LightIntensity(t, hour)
	switch t {
	case Campfire:
		return v > fireLitAbove
	case House:
		return v > houseLamp.onAbove
	case Mine, Harbour:
		return v > workLamp.onAbove
	default:
		return false
	}
}

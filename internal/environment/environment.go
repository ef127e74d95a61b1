// Package environment owns the season, weather and snow state of the scene
// and derives per-tick lighting, sky and fog from it.
package environment

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"hexisland/internal/astro"
	"hexisland/internal/rgb"
)

var (
	ErrInvalidConfiguration = errors.New("invalid environment configuration")
	ErrUnknownSeason        = errors.New("unknown season")
	ErrUnknownWeather       = errors.New("unknown weather")
)

type Weather string

const (
	WeatherClear  Weather = "clear"
	WeatherCloudy Weather = "cloudy"
	WeatherRainy  Weather = "rainy"
	WeatherSnow   Weather = "snow"
)

func (w Weather) Valid() bool {
	switch w {
	case WeatherClear, WeatherCloudy, WeatherRainy, WeatherSnow:
		return true
	}
	return false
}

func ParseWeather(s string) (Weather, error) {
	w := Weather(strings.ToLower(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownWeather, s)
	}
	return w, nil
}

type Phase string

const (
	PhaseDawn  Phase = "dawn"
	PhaseDay   Phase = "day"
	PhaseDusk  Phase = "dusk"
	PhaseNight Phase = "night"
)

func phaseForHour(hour float64) Phase {
	switch {
	case hour >= 5 && hour < 7:
		return PhaseDawn
	case hour >= 7 && hour < 18:
		return PhaseDay
	case hour >= 18 && hour < 21:
		return PhaseDusk
	default:
		return PhaseNight
	}
}

type Config struct {
	SunOrbit         astro.Orbit
	MoonOrbit        astro.Orbit
	SnowAccumulation time.Duration
	SnowMelt         time.Duration
	// DayLength advances the clock on every Step when positive. Zero keeps
	// the time of day fixed until SetTimeOfDay is called.
	DayLength        time.Duration
	InitialTimeOfDay float64
	InitialSeason    astro.Season
	InitialWeather   Weather
	Blend            SnowBlend
	Fog              FogPresets
}

func DefaultConfig() Config {
	return Config{
		SunOrbit:         astro.SunOrbit(),
		MoonOrbit:        astro.MoonOrbit(),
		SnowAccumulation: 30 * time.Second,
		SnowMelt:         15 * time.Second,
		InitialTimeOfDay: 12,
		InitialSeason:    astro.Summer,
		InitialWeather:   WeatherClear,
		Blend:            DefaultSnowBlend(),
		Fog:              DefaultFogPresets(),
	}
}

func applyDefaults(cfg Config) Config {
	if cfg.SunOrbit == (astro.Orbit{}) {
		cfg.SunOrbit = astro.SunOrbit()
	}
	if cfg.MoonOrbit == (astro.Orbit{}) {
		cfg.MoonOrbit = astro.MoonOrbit()
	}
	if cfg.InitialWeather == "" {
		cfg.InitialWeather = WeatherClear
	}
	if cfg.Blend == (SnowBlend{}) {
		cfg.Blend = DefaultSnowBlend()
	}
	if cfg.Fog == (FogPresets{}) {
		cfg.Fog = DefaultFogPresets()
	}
	return cfg
}

func (cfg Config) validate() error {
	if cfg.SnowAccumulation <= 0 {
		return fmt.Errorf("%w: snow accumulation time must be positive", ErrInvalidConfiguration)
	}
	if cfg.SnowMelt <= 0 {
		return fmt.Errorf("%w: snow melt time must be positive", ErrInvalidConfiguration)
	}
	if cfg.DayLength < 0 {
		return fmt.Errorf("%w: day length cannot be negative", ErrInvalidConfiguration)
	}
	for _, orbit := range []astro.Orbit{cfg.SunOrbit, cfg.MoonOrbit} {
		if !inRange(orbit.MaxSummerElevation, 0, 90) || !inRange(orbit.MaxWinterElevation, 0, 90) {
			return fmt.Errorf("%w: peak elevations must be within [0,90]", ErrInvalidConfiguration)
		}
	}
	if !cfg.InitialSeason.Valid() {
		return fmt.Errorf("%w: %w %d", ErrInvalidConfiguration, ErrUnknownSeason, cfg.InitialSeason)
	}
	if !cfg.InitialWeather.Valid() {
		return fmt.Errorf("%w: %w %q", ErrInvalidConfiguration, ErrUnknownWeather, cfg.InitialWeather)
	}
	if err := cfg.Blend.validate(); err != nil {
		return err
	}
	return cfg.Fog.validate()
}

// Body is the per-tick state of the sun or the moon.
type Body struct {
	Position    astro.Position `json:"position"`
	Direction   astro.Vector   `json:"direction"`
	Color       rgb.Color      `json:"color"`
	Intensity   float64        `json:"intensity"`
	Visible     bool           `json:"visible"`
	CastShadow  bool           `json:"castShadow"`
	DiscVisible bool           `json:"discVisible"`
}

// Frame is everything a renderer needs for one tick.
type Frame struct {
	TimeOfDay  float64      `json:"timeOfDay"`
	Phase      Phase        `json:"phase"`
	Season     astro.Season `json:"season"`
	Weather    Weather      `json:"weather"`
	SnowRatio  float64      `json:"snowAccumulationRatio"`
	Conditions Conditions   `json:"conditions"`
	Sun        Body         `json:"sun"`
	Moon       Body         `json:"moon"`
	Ambient    float64      `json:"ambientIntensity"`
	Sky        rgb.Color    `json:"skyColor"`
	Fog        Fog          `json:"fog"`
}

// Environment is single-writer (Step and the setters) and multi-reader.
type Environment struct {
	mu        sync.RWMutex
	cfg       Config
	timeOfDay float64
	season    astro.Season
	weather   Weather
	snow      snowAccumulator
	frame     Frame
}

// CheckConfig reports whether New would accept cfg.
func CheckConfig(cfg Config) error {
	return applyDefaults(cfg).validate()
}

func New(cfg Config) (*Environment, error) {
	cfg = applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	env := &Environment{
		cfg:       cfg,
		timeOfDay: astro.WrapHours(cfg.InitialTimeOfDay),
		season:    cfg.InitialSeason,
		weather:   cfg.InitialWeather,
		snow: snowAccumulator{
			accumulation: cfg.SnowAccumulation.Seconds(),
			melt:         cfg.SnowMelt.Seconds(),
		},
	}
	env.frame = env.compute()
	return env, nil
}

func (e *Environment) Config() Config {
	return e.cfg
}

// SetTimeOfDay wraps hours into [0,24).
func (e *Environment) SetTimeOfDay(hours float64) Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		hours = 0
	}
	e.timeOfDay = astro.WrapHours(hours)
	e.frame = e.compute()
	return e.frame
}

func (e *Environment) SetSeason(season astro.Season) (Frame, error) {
	if !season.Valid() {
		return Frame{}, fmt.Errorf("%w: %d", ErrUnknownSeason, season)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.season = season
	e.frame = e.compute()
	return e.frame, nil
}

// SetWeather accepts Snow in any season; outside winter it does not
// accumulate.
func (e *Environment) SetWeather(weather Weather) (Frame, error) {
	if !weather.Valid() {
		return Frame{}, fmt.Errorf("%w: %q", ErrUnknownWeather, weather)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weather = weather
	e.frame = e.compute()
	return e.frame, nil
}

// Step advances the simulation by delta and returns the new frame.
func (e *Environment) Step(delta time.Duration) Frame {
	if delta < 0 {
		delta = 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg.DayLength > 0 {
		e.timeOfDay = astro.WrapHours(e.timeOfDay + 24*float64(delta)/float64(e.cfg.DayLength))
	}
	e.snow.step(delta.Seconds(), snowTarget(e.season, e.weather))
	e.frame = e.compute()
	return e.frame
}

func (e *Environment) Current() Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frame
}

func (e *Environment) SnowRatio() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snow.ratio
}

func (e *Environment) compute() Frame {
	ratio := e.snow.ratio
	cond := deriveConditions(e.season, e.weather, ratio)

	sunPos := astro.Locate(e.timeOfDay, e.season, e.cfg.SunOrbit)
	moonPos := astro.Locate(astro.MoonTime(e.timeOfDay), e.season, e.cfg.MoonOrbit)
	light := computeLighting(sunPos, moonPos, e.weather, cond, ratio)
	sky := skyColor(sunPos.Elevation, moonPos.Elevation, light.Sun.Color, cond, ratio)

	return Frame{
		TimeOfDay:  e.timeOfDay,
		Phase:      phaseForHour(e.timeOfDay),
		Season:     e.season,
		Weather:    e.weather,
		SnowRatio:  ratio,
		Conditions: cond,
		Sun:        light.Sun,
		Moon:       light.Moon,
		Ambient:    light.Ambient,
		Sky:        sky,
		Fog:        e.cfg.Fog.resolve(sky, cond, ratio),
	}
}

func inRange(v, min, max float64) bool {
	return v >= min && v <= max
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

func lerp(a, b, t float64) float64 {
	return a + (b-a)*clamp01(t)
}

package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/src-d/go-billy.v4"
	"gopkg.in/yaml.v3"

	"hexisland/internal/astro"
	"hexisland/internal/environment"
	"hexisland/internal/rgb"
	"hexisland/internal/scenery"
	"hexisland/internal/terrain"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Grid        GridConfig        `yaml:"grid"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Biomes      BiomeConfig       `yaml:"biomes"`
	Sky         SkyConfig         `yaml:"sky"`
	Environment EnvironmentConfig `yaml:"environment"`
	Snow        SnowConfig        `yaml:"snow"`
	Scenery     SceneryConfig     `yaml:"scenery"`
}

type ServerConfig struct {
	ListenAddress string `yaml:"listen_address"`
	HTTPPort      int    `yaml:"http_port"`
	TickRate      string `yaml:"tick_rate"`
	StreamRate    string `yaml:"stream_rate"`
}

type GridConfig struct {
	Columns int `yaml:"columns"`
	Rows    int `yaml:"rows"`
}

type GeneratorConfig struct {
	NumIslands         int     `yaml:"num_islands"`
	IslandSizeFactor   float64 `yaml:"island_size_factor"`
	NoiseStrength      float64 `yaml:"noise_strength"`
	WarpFactor         float64 `yaml:"warp_factor"`
	IslandBorderFactor float64 `yaml:"island_border_factor"`
	RandomnessFactor   float64 `yaml:"randomness_factor"`
	// Seed of zero means the binaries seed from the wall clock.
	Seed    int64  `yaml:"seed"`
	Noise   string `yaml:"noise"`
	Workers int    `yaml:"workers"`
}

type BiomeConfig struct {
	WaterSurface  float64 `yaml:"water_surface"`
	ShallowDepth  float64 `yaml:"shallow_depth"`
	SandOffset    float64 `yaml:"sand_offset"`
	ClayOffset    float64 `yaml:"clay_offset"`
	PastureOffset float64 `yaml:"pasture_offset"`
	ForestOffset  float64 `yaml:"forest_offset"`
	StoneOffset   float64 `yaml:"stone_offset"`
}

type SkyConfig struct {
	MaxSummerElevation float64 `yaml:"max_summer_elevation"`
	MaxWinterElevation float64 `yaml:"max_winter_elevation"`
	AzimuthSwing       float64 `yaml:"azimuth_swing"`
	MoonMaxElevation   float64 `yaml:"moon_max_elevation"`
	MoonAzimuthSwing   float64 `yaml:"moon_azimuth_swing"`
}

type EnvironmentConfig struct {
	InitialTimeOfDay float64 `yaml:"initial_time_of_day"`
	InitialSeason    string  `yaml:"initial_season"`
	InitialWeather   string  `yaml:"initial_weather"`
	DayLength        string  `yaml:"day_length"`
	SnowAccumulation string  `yaml:"snow_accumulation"`
	SnowMelt         string  `yaml:"snow_melt"`
}

type SnowConfig struct {
	Color          string  `yaml:"color"`
	MaxLerp        float64 `yaml:"max_lerp"`
	WallMultiplier float64 `yaml:"wall_multiplier"`
	LampMultiplier float64 `yaml:"lamp_multiplier"`
	FireMultiplier float64 `yaml:"fire_multiplier"`
}

type SceneryConfig struct {
	MinTrees        int     `yaml:"min_trees"`
	ExtraTrees      int     `yaml:"extra_trees"`
	ExtraTreeChance float64 `yaml:"extra_tree_chance"`
	RockChance      float64 `yaml:"rock_chance"`
	MinRocks        int     `yaml:"min_rocks"`
	MaxRocks        int     `yaml:"max_rocks"`
	ReedChance      float64 `yaml:"reed_chance"`
	MinReeds        int     `yaml:"min_reeds"`
	MaxReeds        int     `yaml:"max_reeds"`
}

// Load decodes the YAML file at path on top of Default, so keys missing
// from the file keep their default values.
func Load(fs billy.Filesystem, path string) (*Config, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fills unset fields with defaults and reports every remaining
// problem at once.
func (c *Config) Validate() error {
	def := Default()
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = def.Server.ListenAddress
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = def.Server.HTTPPort
	}
	if c.Server.TickRate == "" {
		c.Server.TickRate = def.Server.TickRate
	}
	if c.Server.StreamRate == "" {
		c.Server.StreamRate = def.Server.StreamRate
	}
	if c.Grid.Columns == 0 && c.Grid.Rows == 0 {
		c.Grid = def.Grid
	}
	if c.Generator == (GeneratorConfig{}) {
		c.Generator = def.Generator
	}
	if c.Generator.IslandSizeFactor == 0 && c.Generator.NoiseStrength == 0 && c.Generator.WarpFactor == 0 &&
		c.Generator.IslandBorderFactor == 0 && c.Generator.RandomnessFactor == 0 {
		c.Generator.NoiseStrength = def.Generator.NoiseStrength
		c.Generator.WarpFactor = def.Generator.WarpFactor
		c.Generator.IslandBorderFactor = def.Generator.IslandBorderFactor
		c.Generator.RandomnessFactor = def.Generator.RandomnessFactor
	}
	if c.Generator.IslandSizeFactor == 0 {
		c.Generator.IslandSizeFactor = def.Generator.IslandSizeFactor
	}
	if c.Generator.Noise == "" {
		c.Generator.Noise = def.Generator.Noise
	}
	if c.Biomes == (BiomeConfig{}) {
		c.Biomes = def.Biomes
	}
	if c.Sky == (SkyConfig{}) {
		c.Sky = def.Sky
	}
	if c.Environment.InitialSeason == "" {
		c.Environment.InitialSeason = def.Environment.InitialSeason
	}
	if c.Environment.InitialWeather == "" {
		c.Environment.InitialWeather = def.Environment.InitialWeather
	}
	if c.Environment.DayLength == "" {
		c.Environment.DayLength = def.Environment.DayLength
	}
	if c.Environment.SnowAccumulation == "" {
		c.Environment.SnowAccumulation = def.Environment.SnowAccumulation
	}
	if c.Environment.SnowMelt == "" {
		c.Environment.SnowMelt = def.Environment.SnowMelt
	}
	if c.Snow == (SnowConfig{}) {
		c.Snow = def.Snow
	}
	if c.Snow.Color == "" {
		c.Snow.Color = def.Snow.Color
	}
	if c.Scenery == (SceneryConfig{}) {
		c.Scenery = def.Scenery
	}

	var errs error
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		errs = multierr.Append(errs, fmt.Errorf("server.http_port %d out of range", c.Server.HTTPPort))
	}
	for name, value := range map[string]string{
		"server.tick_rate":              c.Server.TickRate,
		"server.stream_rate":            c.Server.StreamRate,
		"environment.snow_accumulation": c.Environment.SnowAccumulation,
		"environment.snow_melt":         c.Environment.SnowMelt,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s invalid: %w", name, err))
			continue
		}
		if d <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if d, err := time.ParseDuration(c.Environment.DayLength); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("environment.day_length invalid: %w", err))
	} else if d < 0 {
		errs = multierr.Append(errs, errors.New("environment.day_length cannot be negative"))
	}
	if _, err := astro.ParseSeason(c.Environment.InitialSeason); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("environment.initial_season: %w", err))
	}
	if _, err := environment.ParseWeather(c.Environment.InitialWeather); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("environment.initial_weather: %w", err))
	}
	if _, err := terrain.ParseNoiseKind(c.Generator.Noise); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("generator.noise: %w", err))
	}
	if _, err := rgb.Parse(c.Snow.Color); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("snow.color: %w", err))
	}
	if c.Scenery.MinRocks > c.Scenery.MaxRocks || c.Scenery.MinReeds > c.Scenery.MaxReeds {
		errs = multierr.Append(errs, errors.New("scenery minimum counts cannot exceed maximum counts"))
	}
	if errs != nil {
		return errs
	}

	// The typed packages own their range checks.
	if err := c.TerrainParams().Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := c.EnvironmentConfig(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// TerrainParams translates the grid, generator and biome sections. The
// noise kind falls back to trig when it does not parse; Validate reports it.
func (c *Config) TerrainParams() terrain.Params {
	noise, _ := terrain.ParseNoiseKind(c.Generator.Noise)
	return terrain.Params{
		Columns:            c.Grid.Columns,
		Rows:               c.Grid.Rows,
		NumIslands:         c.Generator.NumIslands,
		IslandSizeFactor:   c.Generator.IslandSizeFactor,
		NoiseStrength:      c.Generator.NoiseStrength,
		WarpFactor:         c.Generator.WarpFactor,
		IslandBorderFactor: c.Generator.IslandBorderFactor,
		RandomnessFactor:   c.Generator.RandomnessFactor,
		Noise:              noise,
		Workers:            c.Generator.Workers,
		Biomes: terrain.BiomeParams{
			WaterSurface:  c.Biomes.WaterSurface,
			ShallowDepth:  c.Biomes.ShallowDepth,
			SandOffset:    c.Biomes.SandOffset,
			ClayOffset:    c.Biomes.ClayOffset,
			PastureOffset: c.Biomes.PastureOffset,
			ForestOffset:  c.Biomes.ForestOffset,
			StoneOffset:   c.Biomes.StoneOffset,
		},
	}
}

func (c *Config) EnvironmentConfig() (environment.Config, error) {
	season, err := astro.ParseSeason(c.Environment.InitialSeason)
	if err != nil {
		return environment.Config{}, err
	}
	weather, err := environment.ParseWeather(c.Environment.InitialWeather)
	if err != nil {
		return environment.Config{}, err
	}
	dayLength, err := time.ParseDuration(c.Environment.DayLength)
	if err != nil {
		return environment.Config{}, fmt.Errorf("environment.day_length invalid: %w", err)
	}
	accumulation, err := time.ParseDuration(c.Environment.SnowAccumulation)
	if err != nil {
		return environment.Config{}, fmt.Errorf("environment.snow_accumulation invalid: %w", err)
	}
	melt, err := time.ParseDuration(c.Environment.SnowMelt)
	if err != nil {
		return environment.Config{}, fmt.Errorf("environment.snow_melt invalid: %w", err)
	}
	snowColor, err := rgb.Parse(c.Snow.Color)
	if err != nil {
		return environment.Config{}, fmt.Errorf("snow.color: %w", err)
	}

	cfg := environment.Config{
		SunOrbit: astro.Orbit{
			MaxSummerElevation: c.Sky.MaxSummerElevation,
			MaxWinterElevation: c.Sky.MaxWinterElevation,
			AzimuthSwing:       c.Sky.AzimuthSwing,
		},
		MoonOrbit: astro.Orbit{
			MaxSummerElevation: c.Sky.MoonMaxElevation,
			MaxWinterElevation: c.Sky.MoonMaxElevation,
			AzimuthSwing:       c.Sky.MoonAzimuthSwing,
		},
		SnowAccumulation: accumulation,
		SnowMelt:         melt,
		DayLength:        dayLength,
		InitialTimeOfDay: astro.WrapHours(c.Environment.InitialTimeOfDay),
		InitialSeason:    season,
		InitialWeather:   weather,
		Blend: environment.SnowBlend{
			Color:          snowColor,
			MaxLerp:        c.Snow.MaxLerp,
			WallMultiplier: c.Snow.WallMultiplier,
			LampMultiplier: c.Snow.LampMultiplier,
			FireMultiplier: c.Snow.FireMultiplier,
		},
		Fog: environment.DefaultFogPresets(),
	}
	if err := environment.CheckConfig(cfg); err != nil {
		return environment.Config{}, err
	}
	return cfg, nil
}

func (c *Config) SceneryParams() scenery.Params {
	p := scenery.DefaultParams()
	p.MinTrees = c.Scenery.MinTrees
	p.ExtraTrees = c.Scenery.ExtraTrees
	p.ExtraTreeChance = c.Scenery.ExtraTreeChance
	p.RockChance = c.Scenery.RockChance
	p.MinRocks = c.Scenery.MinRocks
	p.MaxRocks = c.Scenery.MaxRocks
	p.ReedChance = c.Scenery.ReedChance
	p.MinReeds = c.Scenery.MinReeds
	p.MaxReeds = c.Scenery.MaxReeds
	return p
}

func (c *Config) TickRate() time.Duration {
	return mustDuration(c.Server.TickRate)
}

func (c *Config) StreamRate() time.Duration {
	return mustDuration(c.Server.StreamRate)
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", strings.TrimSpace(c.Server.ListenAddress), c.Server.HTTPPort)
}

// mustDuration is only called on validated fields.
func mustDuration(v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Sprintf("config: unvalidated duration %q", v))
	}
	return d
}

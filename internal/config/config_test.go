package config

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/src-d/go-billy.v4/memfs"
	"gopkg.in/src-d/go-billy.v4/util"

	"hexisland/internal/astro"
	"hexisland/internal/environment"
	"hexisland/internal/terrain"
)

func TestValidateAppliesDefaultsToEmptyConfig(t *testing.T) {
	var cfg Config
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	def := Default()
	if cfg.Server.HTTPPort != def.Server.HTTPPort {
		t.Errorf("HTTPPort = %d, want %d", cfg.Server.HTTPPort, def.Server.HTTPPort)
	}
	if cfg.Grid != def.Grid {
		t.Errorf("Grid = %+v, want %+v", cfg.Grid, def.Grid)
	}
	if cfg.Environment.DayLength != "0s" {
		t.Errorf("DayLength = %q, want 0s", cfg.Environment.DayLength)
	}
	if cfg.Snow != def.Snow {
		t.Errorf("Snow = %+v, want %+v", cfg.Snow, def.Snow)
	}
	if cfg.Generator != def.Generator {
		t.Errorf("Generator = %+v, want %+v", cfg.Generator, def.Generator)
	}
}

func TestDefaultTranslatesToPackageDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	if got, want := cfg.TerrainParams(), terrain.DefaultParams(); got != want {
		t.Errorf("TerrainParams() = %+v, want %+v", got, want)
	}

	envCfg, err := cfg.EnvironmentConfig()
	if err != nil {
		t.Fatalf("EnvironmentConfig() returned error: %v", err)
	}
	want := environment.DefaultConfig()
	if envCfg.SunOrbit != want.SunOrbit || envCfg.MoonOrbit != want.MoonOrbit {
		t.Errorf("orbits = %+v/%+v, want %+v/%+v", envCfg.SunOrbit, envCfg.MoonOrbit, want.SunOrbit, want.MoonOrbit)
	}
	if envCfg.SnowAccumulation != 30*time.Second || envCfg.SnowMelt != 15*time.Second {
		t.Errorf("snow times = %v/%v, want 30s/15s", envCfg.SnowAccumulation, envCfg.SnowMelt)
	}
	if envCfg.InitialSeason != astro.Summer || envCfg.InitialWeather != environment.WeatherClear {
		t.Errorf("initial state = %v/%v, want summer/clear", envCfg.InitialSeason, envCfg.InitialWeather)
	}
	if envCfg.Blend.Color.Uint32() != want.Blend.Color.Uint32() {
		t.Errorf("snow colour = %v, want %v", envCfg.Blend.Color, want.Blend.Color)
	}

	if got := cfg.SceneryParams(); got.MinReeds != 7 || got.MaxReeds != 13 || got.HexSize != 1 {
		t.Errorf("SceneryParams() = %+v", got)
	}
	if cfg.TickRate() != 50*time.Millisecond {
		t.Errorf("TickRate() = %v, want 50ms", cfg.TickRate())
	}
	if cfg.Address() != "0.0.0.0:28080" {
		t.Errorf("Address() = %q", cfg.Address())
	}
}

func TestValidateRejectsInvalidConfigurations(t *testing.T) {
	cases := map[string]func(*Config){
		"bad port":          func(c *Config) { c.Server.HTTPPort = 70000 },
		"bad tick rate":     func(c *Config) { c.Server.TickRate = "fast" },
		"zero stream rate":  func(c *Config) { c.Server.StreamRate = "0s" },
		"negative day":      func(c *Config) { c.Environment.DayLength = "-1m" },
		"unknown season":    func(c *Config) { c.Environment.InitialSeason = "monsoon" },
		"unknown weather":   func(c *Config) { c.Environment.InitialWeather = "hail" },
		"unknown noise":     func(c *Config) { c.Generator.Noise = "worley" },
		"bad snow colour":   func(c *Config) { c.Snow.Color = "#nothex" },
		"negative columns":  func(c *Config) { c.Grid.Columns = -1 },
		"unordered offsets": func(c *Config) { c.Biomes.ClayOffset = 0.01 },
		"rock range":        func(c *Config) { c.Scenery.MinRocks = 5 },
		"sky out of range":  func(c *Config) { c.Sky.MaxSummerElevation = 120 },
		"zero melt":         func(c *Config) { c.Environment.SnowMelt = "0s" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("Validate() = nil, want error")
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Environment.InitialSeason = "monsoon"
	cfg.Environment.InitialWeather = "hail"
	cfg.Generator.Noise = "worley"

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("Validate() = nil, want error")
	}
	if n := len(multierr.Errors(err)); n != 3 {
		t.Fatalf("Validate() reported %d errors, want 3: %v", n, err)
	}
}

func TestLoadReadsYAMLAndValidates(t *testing.T) {
	fs := memfs.New()
	if err := util.WriteFile(fs, "config.yaml", []byte(`
server:
  http_port: 0
grid:
  columns: 12
  rows: 10
generator:
  num_islands: 2
  seed: 42
  noise: simplex
environment:
  initial_season: winter
  initial_weather: snow
  day_length: 10m
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(fs, "config.yaml")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.HTTPPort != 28080 {
		t.Errorf("HTTPPort = %d, want 28080", cfg.Server.HTTPPort)
	}
	if cfg.Grid.Columns != 12 || cfg.Grid.Rows != 10 {
		t.Errorf("Grid = %+v, want 12x10", cfg.Grid)
	}
	if cfg.Generator.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Generator.Seed)
	}
	if p := cfg.TerrainParams(); p.Noise != terrain.NoiseSimplex || p.Biomes != terrain.DefaultBiomeParams() {
		t.Errorf("TerrainParams() = %+v", p)
	}
	envCfg, err := cfg.EnvironmentConfig()
	if err != nil {
		t.Fatalf("EnvironmentConfig() returned error: %v", err)
	}
	if envCfg.DayLength != 10*time.Minute || envCfg.InitialWeather != environment.WeatherSnow {
		t.Errorf("EnvironmentConfig() = %+v", envCfg)
	}
}

func TestLoadKeepsDefaultsForPartialSections(t *testing.T) {
	fs := memfs.New()
	if err := util.WriteFile(fs, "config.yaml", []byte(`
generator:
  num_islands: 6
  seed: 42
snow:
  max_lerp: 0.5
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(fs, "config.yaml")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	def := Default()
	want := def.Generator
	want.NumIslands = 6
	want.Seed = 42
	if cfg.Generator != want {
		t.Errorf("Generator = %+v, want %+v", cfg.Generator, want)
	}
	if cfg.Snow.MaxLerp != 0.5 || cfg.Snow.FireMultiplier != def.Snow.FireMultiplier || cfg.Snow.LampMultiplier != def.Snow.LampMultiplier {
		t.Errorf("Snow = %+v, want defaults with max_lerp 0.5", cfg.Snow)
	}
	if cfg.Sky != def.Sky || cfg.Scenery != def.Scenery {
		t.Errorf("untouched sections changed: sky %+v scenery %+v", cfg.Sky, cfg.Scenery)
	}

	gen, err := terrain.NewGenerator(cfg.TerrainParams(), rand.New(rand.NewSource(cfg.Generator.Seed)), nil)
	if err != nil {
		t.Fatalf("NewGenerator() returned error: %v", err)
	}
	m, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	for _, cell := range m.Cells {
		k := cell.Key
		edge := k.Column == 0 || k.Row == 0 || k.Column == m.Columns-1 || k.Row == m.Rows-1
		if edge && !cell.Biome.IsWater() {
			t.Fatalf("boundary cell %v classified %v", k, cell.Biome)
		}
	}
}

func TestLoadRejectsZeroIslandBorder(t *testing.T) {
	fs := memfs.New()
	if err := util.WriteFile(fs, "config.yaml", []byte("generator:\n  island_border_factor: 0\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(fs, "config.yaml"); !errors.Is(err, terrain.ErrInvalidConfiguration) {
		t.Fatalf("Load() = %v, want ErrInvalidConfiguration", err)
	}
}

func TestLoadPropagatesErrors(t *testing.T) {
	fs := memfs.New()
	if _, err := Load(fs, "missing.yaml"); err == nil || !strings.Contains(err.Error(), "read config") || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load() = %v, want read error wrapping os.ErrNotExist", err)
	}

	if err := util.WriteFile(fs, "broken.yaml", []byte("grid: [1, 2"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(fs, "broken.yaml"); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load() = %v, want parse error", err)
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	fs := memfs.New()
	if err := WriteDefault(fs, "configs/hexisland.yaml"); err != nil {
		t.Fatalf("WriteDefault() returned error: %v", err)
	}

	cfg, err := Load(fs, "configs/hexisland.yaml")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if *cfg != Default() {
		t.Fatalf("Load(WriteDefault()) = %+v, want %+v", *cfg, Default())
	}
}

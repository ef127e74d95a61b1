package config

import (
	"fmt"
	"path/filepath"

	"gopkg.in/src-d/go-billy.v4"
	"gopkg.in/src-d/go-billy.v4/util"
	"gopkg.in/yaml.v3"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddress: "0.0.0.0",
			HTTPPort:      28080,
			TickRate:      "50ms",
			StreamRate:    "200ms",
		},
		Grid: GridConfig{
			Columns: 48,
			Rows:    48,
		},
		Generator: GeneratorConfig{
			NumIslands:         4,
			IslandSizeFactor:   0.35,
			NoiseStrength:      0.5,
			WarpFactor:         0.2,
			IslandBorderFactor: 0.8,
			RandomnessFactor:   0.08,
			Noise:              "trig",
		},
		Biomes: BiomeConfig{
			WaterSurface:  0.505 / 4.0,
			ShallowDepth:  0.06,
			SandOffset:    0.05,
			ClayOffset:    0.12,
			PastureOffset: 0.30,
			ForestOffset:  0.50,
			StoneOffset:   0.70,
		},
		Sky: SkyConfig{
			MaxSummerElevation: 75,
			MaxWinterElevation: 30,
			AzimuthSwing:       90,
			MoonMaxElevation:   65,
			MoonAzimuthSwing:   100,
		},
		Environment: EnvironmentConfig{
			InitialTimeOfDay: 12,
			InitialSeason:    "summer",
			InitialWeather:   "clear",
			DayLength:        "0s",
			SnowAccumulation: "30s",
			SnowMelt:         "15s",
		},
		Snow: SnowConfig{
			Color:          "#fffafa",
			MaxLerp:        0.85,
			WallMultiplier: 0.25,
			LampMultiplier: 0.3,
			FireMultiplier: 0.05,
		},
		Scenery: SceneryConfig{
			MinTrees:        2,
			ExtraTrees:      5,
			ExtraTreeChance: 0.6,
			RockChance:      0.7,
			MinRocks:        1,
			MaxRocks:        4,
			ReedChance:      0.55,
			MinReeds:        7,
			MaxReeds:        13,
		},
	}
}

// WriteDefault writes the default configuration to the provided path.
func WriteDefault(fs billy.Filesystem, path string) error {
	cfg := Default()

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := util.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

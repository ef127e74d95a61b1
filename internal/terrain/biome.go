package terrain

import (
	"fmt"
	"strings"
)

type Biome uint8

const (
	DeepWater Biome = iota
	ShallowWater
	Sand
	Clay
	Pasture
	Forest
	Stone
	MountainPeak
)

var biomeNames = [...]string{
	DeepWater:    "deep_water",
	ShallowWater: "shallow_water",
	Sand:         "sand",
	Clay:         "clay",
	Pasture:      "pasture",
	Forest:       "forest",
	Stone:        "stone",
	MountainPeak: "mountain_peak",
}

// Biomes lists every biome in ascending elevation order.
var Biomes = []Biome{DeepWater, ShallowWater, Sand, Clay, Pasture, Forest, Stone, MountainPeak}

func (b Biome) String() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return fmt.Sprintf("biome(%d)", uint8(b))
}

func ParseBiome(s string) (Biome, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, candidate := range biomeNames {
		if candidate == name {
			return Biome(i), nil
		}
	}
	return 0, fmt.Errorf("unknown biome %q", s)
}

func (b Biome) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Biome) UnmarshalText(text []byte) error {
	parsed, err := ParseBiome(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b Biome) IsWater() bool {
	return b == DeepWater || b == ShallowWater
}

// Rank orders the land biomes from Sand (0) to MountainPeak (5). Water
// biomes rank -1.
func (b Biome) Rank() int {
	if b.IsWater() {
		return -1
	}
	return int(b) - int(Sand)
}

// BiomeParams derives every threshold from the water surface plus fixed
// offsets, so the bands are ordered by construction.
type BiomeParams struct {
	WaterSurface  float64
	ShallowDepth  float64
	SandOffset    float64
	ClayOffset    float64
	PastureOffset float64
	ForestOffset  float64
	StoneOffset   float64
}

func DefaultBiomeParams() BiomeParams {
	return BiomeParams{
		WaterSurface:  0.505 / 4.0,
		ShallowDepth:  0.06,
		SandOffset:    0.05,
		ClayOffset:    0.12,
		PastureOffset: 0.30,
		ForestOffset:  0.50,
		StoneOffset:   0.70,
	}
}

func (p BiomeParams) validate() error {
	if p.WaterSurface <= 0 || p.WaterSurface >= 1 {
		return fmt.Errorf("%w: water surface must be within (0,1)", ErrInvalidConfiguration)
	}
	if p.ShallowDepth < 0 || p.ShallowDepth > p.WaterSurface {
		return fmt.Errorf("%w: shallow depth must be within [0, water surface]", ErrInvalidConfiguration)
	}
	offsets := []float64{0, p.SandOffset, p.ClayOffset, p.PastureOffset, p.ForestOffset, p.StoneOffset}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] <= offsets[i-1] {
			return fmt.Errorf("%w: biome offsets must be positive and strictly increasing", ErrInvalidConfiguration)
		}
	}
	return nil
}

type Thresholds struct {
	Deep    float64
	Water   float64
	Sand    float64
	Clay    float64
	Pasture float64
	Forest  float64
	Stone   float64
}

func (p BiomeParams) Thresholds() Thresholds {
	return Thresholds{
		Deep:    p.WaterSurface - p.ShallowDepth,
		Water:   p.WaterSurface,
		Sand:    p.WaterSurface + p.SandOffset,
		Clay:    p.WaterSurface + p.ClayOffset,
		Pasture: p.WaterSurface + p.PastureOffset,
		Forest:  p.WaterSurface + p.ForestOffset,
		Stone:   p.WaterSurface + p.StoneOffset,
	}
}

// Band is the plain land classification: v is compared against the
// ascending thresholds with no bleed applied. Values below the sand
// threshold, including any below the water surface, map to Sand.
func (t Thresholds) Band(v float64) Biome {
	switch {
	case v < t.Sand:
		return Sand
	case v < t.Clay:
		return Clay
	case v < t.Pasture:
		return Pasture
	case v < t.Forest:
		return Forest
	case v < t.Stone:
		return Stone
	default:
		return MountainPeak
	}
}

// WaterBiome classifies by elevation alone; ok is false for land.
func (t Thresholds) WaterBiome(elevation float64) (Biome, bool) {
	switch {
	case elevation < t.Deep:
		return DeepWater, true
	case elevation < t.Water:
		return ShallowWater, true
	default:
		return 0, false
	}
}

const (
	clayToSandChance      = 0.4
	pastureToClayChance   = 0.25
	forestShoreChance     = 0.7
	forestInteriorChance  = 0.4
	stoneToForestChance   = 0.3
	clayShoreMargin       = 1.05
	stoneForestEdgeMargin = 1.08
	interiorShapeLimit    = 0.7
	interiorBaseLimit     = 0.55
)

// Sample carries the per-cell values the classifier looks at.
type Sample struct {
	Elevation float64
	Base      float64
	Shape     float64
}

type roller interface {
	Float64() float64
}

// Classify resolves the biome for a cell. Water is decided on elevation
// alone; land bands use elevation+jitter and may bleed one rank down so
// band edges look ragged.
func (t Thresholds) Classify(s Sample, jitter float64, rolls roller) Biome {
	if water, ok := t.WaterBiome(s.Elevation); ok {
		return water
	}
	check := s.Elevation + jitter
	band := t.Band(check)
	switch band {
	case Clay:
		if s.Elevation < t.Sand*clayShoreMargin && rolls.Float64() < clayToSandChance {
			return Sand
		}
	case Pasture:
		if s.Elevation < t.Sand && rolls.Float64() < pastureToClayChance {
			return Clay
		}
	case Forest:
		if s.Elevation < t.Sand && rolls.Float64() < forestShoreChance {
			return Pasture
		}
		if s.Shape < interiorShapeLimit && s.Base < interiorBaseLimit && rolls.Float64() < forestInteriorChance {
			return Pasture
		}
	case Stone:
		if check < t.Forest*stoneForestEdgeMargin && rolls.Float64() < stoneToForestChance {
			return Forest
		}
	}
	return band
}

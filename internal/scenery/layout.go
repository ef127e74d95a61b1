// Package scenery scatters decorative objects over a generated map and
// keeps the material table the snow blend runs over.
package scenery

import (
	"math"
	"math/rand"

	"hexisland/internal/environment"
	"hexisland/internal/registry"
	"hexisland/internal/terrain"
)

type Kind string

const (
	KindTree Kind = "tree"
	KindRock Kind = "rock"
	KindReed Kind = "reeds"
)

type Params struct {
	MinTrees        int
	ExtraTrees      int
	ExtraTreeChance float64
	RockChance      float64
	MinRocks        int
	MaxRocks        int
	ReedChance      float64
	MinReeds        int
	MaxReeds        int
	HexSize         float64
	TintJitter      float64
}

func DefaultParams() Params {
	return Params{
		MinTrees:        2,
		ExtraTrees:      5,
		ExtraTreeChance: 0.6,
		RockChance:      0.7,
		MinRocks:        1,
		MaxRocks:        4,
		ReedChance:      0.55,
		MinReeds:        7,
		MaxReeds:        13,
		HexSize:         1,
		TintJitter:      6,
	}
}

const (
	treeSpread = 0.75
	rockSpread = 0.8
	reedSpread = 0.85
)

// Object is one decorative item on a tile. Offsets are relative to the
// tile centre in world units.
type Object struct {
	Kind    Kind            `json:"kind"`
	Key     terrain.GridKey `json:"key"`
	OffsetX float64         `json:"offsetX"`
	OffsetZ float64         `json:"offsetZ"`
	Yaw     float64         `json:"yaw"`
	Scale   float64         `json:"scale"`
	Handles []Handle        `json:"handles,omitempty"`
}

type Layout struct {
	Objects []Object `json:"objects"`
}

// Count returns how many objects of kind were placed.
func (l *Layout) Count(kind Kind) int {
	n := 0
	for _, o := range l.Objects {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// OnTile returns the objects standing on key.
func (l *Layout) OnTile(key terrain.GridKey) []Object {
	var out []Object
	for _, o := range l.Objects {
		if o.Key == key {
			out = append(out, o)
		}
	}
	return out
}

// Populate places trees on forest, rocks on stone and peaks, and reed
// clumps in shallow water, registering each object's surfaces in mats.
// Land tiles register their top and side surfaces too.
func Populate(m *terrain.Map, p Params, rng *rand.Rand, mats *Materials) *Layout {
	layout := &Layout{}
	if m == nil {
		return layout
	}
	for _, cell := range m.Cells {
		if mats != nil && !cell.Biome.IsWater() {
			top := TileColors[cell.Biome]
			mats.Register(cell.Key, OwnerTerrain, "tile top", top, environment.RoleTop)
			mats.Register(cell.Key, OwnerTerrain, "tile side", top.Shade(-12), environment.RoleSide)
		}

		switch cell.Biome {
		case terrain.Forest:
			n := p.MinTrees
			for i := 0; i < p.ExtraTrees; i++ {
				if rng.Float64() < p.ExtraTreeChance {
					n++
				}
			}
			for i := 0; i < n; i++ {
				o := scatter(cell.Key, KindTree, treeSpread, p, rng, 0.8, 1.2)
				if mats != nil {
					jitter := (rng.Float64()*2 - 1) * p.TintJitter
					o.Handles = []Handle{
						mats.Register(cell.Key, OwnerScenery, "trunk", trunkColor, environment.RoleSide),
						mats.Register(cell.Key, OwnerScenery, "foliage", foliageColor.Shade(jitter), environment.RoleTop),
					}
				}
				layout.Objects = append(layout.Objects, o)
			}
		case terrain.Stone, terrain.MountainPeak:
			if rng.Float64() >= p.RockChance {
				continue
			}
			n := between(rng, p.MinRocks, p.MaxRocks)
			for i := 0; i < n; i++ {
				o := scatter(cell.Key, KindRock, rockSpread, p, rng, 0.5, 1.1)
				if mats != nil {
					jitter := (rng.Float64()*2 - 1) * p.TintJitter
					o.Handles = []Handle{mats.Register(cell.Key, OwnerScenery, "rock", rockColor.Shade(jitter), environment.RoleTop)}
				}
				layout.Objects = append(layout.Objects, o)
			}
		case terrain.ShallowWater:
			if rng.Float64() >= p.ReedChance {
				continue
			}
			n := between(rng, p.MinReeds, p.MaxReeds)
			for i := 0; i < n; i++ {
				o := scatter(cell.Key, KindReed, reedSpread, p, rng, 0.7, 1.3)
				if mats != nil {
					o.Handles = []Handle{mats.Register(cell.Key, OwnerScenery, "reeds", reedColor, environment.RoleSide)}
				}
				layout.Objects = append(layout.Objects, o)
			}
		}
	}
	return layout
}

// RegisterBuilding adds the surfaces of a placed building to mats.
func RegisterBuilding(mats *Materials, b registry.Building) []Handle {
	parts := BuildingParts(b.Type)
	handles := make([]Handle, 0, len(parts))
	for _, part := range parts {
		handles = append(handles, mats.add(Material{
			Key:           b.Key,
			Owner:         OwnerBuilding,
			Label:         string(b.Type) + " " + part.Name,
			Original:      part.Color,
			Role:          part.Role,
			HeatSensitive: part.HeatSensitive,
		}))
	}
	return handles
}

// scatter draws an offset uniformly over a disc of spread hex sizes.
func scatter(key terrain.GridKey, kind Kind, spread float64, p Params, rng *rand.Rand, minScale, maxScale float64) Object {
	radius := math.Sqrt(rng.Float64()) * p.HexSize * spread
	angle := rng.Float64() * 2 * math.Pi
	return Object{
		Kind:    kind,
		Key:     key,
		OffsetX: math.Cos(angle) * radius,
		OffsetZ: math.Sin(angle) * radius,
		Yaw:     rng.Float64() * 2 * math.Pi,
		Scale:   minScale + rng.Float64()*(maxScale-minScale),
	}
}

func between(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

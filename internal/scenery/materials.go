package scenery

import (
	"sort"
	"sync"

	"hexisland/internal/environment"
	"hexisland/internal/rgb"
	"hexisland/internal/terrain"
)

// Handle identifies one registered surface.
type Handle uint32

type Owner string

const (
	OwnerTerrain  Owner = "terrain"
	OwnerScenery  Owner = "scenery"
	OwnerBuilding Owner = "building"
)

type Material struct {
	Handle        Handle           `json:"handle"`
	Key           terrain.GridKey  `json:"key"`
	Owner         Owner            `json:"owner"`
	Label         string           `json:"label"`
	Original      rgb.Color        `json:"original"`
	Role          environment.Role `json:"role"`
	HeatSensitive bool             `json:"heat_sensitive,omitempty"`
}

// heat narrows the heat source on a material's tile to what actually warms
// it: a lit fire warms every part of its building, a lit lamp only the
// lamp fittings. Terrain and scenery never shed snow to heat.
func (mat Material) heat(tile environment.Heat) environment.Heat {
	if mat.Owner != OwnerBuilding {
		return environment.HeatNone
	}
	switch {
	case tile == environment.HeatFire:
		return environment.HeatFire
	case tile == environment.HeatLamp && mat.HeatSensitive:
		return environment.HeatLamp
	}
	return environment.HeatNone
}

// Tint is the blended colour of one material for the current tick.
type Tint struct {
	Handle Handle    `json:"handle"`
	Color  rgb.Color `json:"color"`
}

// HeatSource answers which heat source stands on a tile.
type HeatSource interface {
	HeatAt(key terrain.GridKey, hour float64) environment.Heat
}

// Materials maps handles to the original colour and role of each surface.
type Materials struct {
	mu      sync.RWMutex
	next    Handle
	entries map[Handle]Material
}

func NewMaterials() *Materials {
	return &Materials{entries: make(map[Handle]Material)}
}

func (m *Materials) Register(key terrain.GridKey, owner Owner, label string, original rgb.Color, role environment.Role) Handle {
	return m.add(Material{Key: key, Owner: owner, Label: label, Original: original, Role: role})
}

func (m *Materials) add(mat Material) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	mat.Handle = m.next
	m.entries[mat.Handle] = mat
	return mat.Handle
}

func (m *Materials) Get(h Handle) (Material, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mat, ok := m.entries[h]
	return mat, ok
}

// Release drops every material owner registered on key and returns how
// many were removed.
func (m *Materials) Release(key terrain.GridKey, owner Owner) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for h, mat := range m.entries {
		if mat.Key == key && mat.Owner == owner {
			delete(m.entries, h)
			removed++
		}
	}
	return removed
}

func (m *Materials) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[Handle]Material)
}

func (m *Materials) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// All returns the registered materials ordered by handle.
func (m *Materials) All() []Material {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Material, 0, len(m.entries))
	for _, mat := range m.entries {
		out = append(out, mat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// Blend applies the snow blend to every material in one pass. heat may be
// nil; each tile holding a building material is queried once.
func (m *Materials) Blend(blend environment.SnowBlend, ratio, hour float64, heat HeatSource) []Tint {
	all := m.All()
	tileHeat := make(map[terrain.GridKey]environment.Heat)
	out := make([]Tint, len(all))
	for i, mat := range all {
		h := environment.HeatNone
		if heat != nil && mat.Owner == OwnerBuilding {
			cached, ok := tileHeat[mat.Key]
			if !ok {
				cached = heat.HeatAt(mat.Key, hour)
				tileHeat[mat.Key] = cached
			}
			h = mat.heat(cached)
		}
		out[i] = Tint{Handle: mat.Handle, Color: blend.Apply(mat.Original, ratio, mat.Role, h)}
	}
	return out
}

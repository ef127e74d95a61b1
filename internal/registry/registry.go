// Package registry tracks which building stands on which tile.
package registry

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"hexisland/internal/environment"
	"hexisland/internal/terrain"
)

var (
	ErrNotFound         = errors.New("no building on tile")
	ErrOutOfBounds      = errors.New("tile outside the map")
	ErrNotBuildable     = errors.New("tile type is not buildable")
	ErrNotCoastal       = errors.New("harbour needs an adjacent water tile")
	ErrUnknownBuilding  = errors.New("unknown building type")
	ErrNoMapInitialized = errors.New("registry has no map")
)

type BuildingType string

const (
	House    BuildingType = "house"
	Farm     BuildingType = "farm"
	Campfire BuildingType = "campfire"
	Mine     BuildingType = "mine"
	Harbour  BuildingType = "harbour"
)

var BuildingTypes = []BuildingType{House, Farm, Campfire, Mine, Harbour}

func ParseBuildingType(s string) (BuildingType, error) {
	t := BuildingType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range BuildingTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBuilding, s)
}

// Buildable lists the tile types a building may stand on.
var Buildable = map[terrain.Biome]bool{
	terrain.Sand:    true,
	terrain.Clay:    true,
	terrain.Pasture: true,
	terrain.Forest:  true,
	terrain.Stone:   true,
}

type Building struct {
	Type     BuildingType    `json:"type"`
	Key      terrain.GridKey `json:"key"`
	Rotation float64         `json:"rotation"`
}

// Status is what the snow blend and the renderer need from a tile.
type Status struct {
	Type           BuildingType `json:"type"`
	IsLit          bool         `json:"isLit"`
	LightIntensity float64      `json:"lightIntensity"`
	Rotation       float64      `json:"rotation"`
}

type Registry struct {
	mu        sync.RWMutex
	tiles     *terrain.Map
	buildings map[terrain.GridKey]Building
	rng       *rand.Rand
}

func New(tiles *terrain.Map, rng *rand.Rand) *Registry {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Registry{
		tiles:     tiles,
		buildings: make(map[terrain.GridKey]Building),
		rng:       rng,
	}
}

// Reset swaps in a freshly generated map and drops every building.
func (r *Registry) Reset(tiles *terrain.Map) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiles = tiles
	r.buildings = make(map[terrain.GridKey]Building)
}

func (r *Registry) CanPlace(key terrain.GridKey, t BuildingType) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.canPlaceLocked(key, t)
}

func (r *Registry) canPlaceLocked(key terrain.GridKey, t BuildingType) error {
	if _, err := ParseBuildingType(string(t)); err != nil {
		return err
	}
	if r.tiles == nil {
		return ErrNoMapInitialized
	}
	cell, ok := r.tiles.Get(key)
	if !ok {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, key)
	}
	if !Buildable[cell.Biome] {
		return fmt.Errorf("%w: %v is %v", ErrNotBuildable, key, cell.Biome)
	}
	if t == Harbour {
		for _, n := range r.tiles.Neighbors(key) {
			if n.Biome.IsWater() {
				return nil
			}
		}
		return fmt.Errorf("%w: %v", ErrNotCoastal, key)
	}
	return nil
}

// Place puts a building on key, replacing any existing one. A nil rotation
// picks a random yaw.
func (r *Registry) Place(key terrain.GridKey, t BuildingType, rotation *float64) (Building, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.canPlaceLocked(key, t); err != nil {
		return Building{}, err
	}
	var yaw float64
	if rotation != nil {
		yaw = normalizeAngle(*rotation)
	} else {
		yaw = r.rng.Float64() * 2 * math.Pi
	}
	b := Building{Type: t, Key: key, Rotation: yaw}
	r.buildings[key] = b
	return b, nil
}

func (r *Registry) Rotate(key terrain.GridKey, radians float64) (Building, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buildings[key]
	if !ok {
		return Building{}, fmt.Errorf("%w: %v", ErrNotFound, key)
	}
	b.Rotation = normalizeAngle(b.Rotation + radians)
	r.buildings[key] = b
	return b, nil
}

func (r *Registry) Remove(key terrain.GridKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buildings[key]; !ok {
		return fmt.Errorf("%w: %v", ErrNotFound, key)
	}
	delete(r.buildings, key)
	return nil
}

func (r *Registry) Get(key terrain.GridKey) (Building, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.buildings[key]
	return b, ok
}

func (r *Registry) Lookup(key terrain.GridKey) (Building, error) {
	b, ok := r.Get(key)
	if !ok {
		return Building{}, fmt.Errorf("%w: %v", ErrNotFound, key)
	}
	return b, nil
}

// OnTile answers the per-tile query used by the snow blend. ok is false
// when the tile is empty.
func (r *Registry) OnTile(key terrain.GridKey, hour float64) (Status, bool) {
	b, ok := r.Get(key)
	if !ok {
		return Status{}, false
	}
	return Status{
		Type:           b.Type,
		IsLit:          IsLit(b.Type, hour),
		LightIntensity: LightIntensity(b.Type, hour),
		Rotation:       b.Rotation,
	}, true
}

// HeatAt reports the heat source standing on key at hour. Callers decide
// which surfaces on the tile it warms.
func (r *Registry) HeatAt(key terrain.GridKey, hour float64) environment.Heat {
	status, ok := r.OnTile(key, hour)
	if !ok || !status.IsLit {
		return environment.HeatNone
	}
	if status.Type == Campfire {
		return environment.HeatFire
	}
	return environment.HeatLamp
}

// All returns a copy of every building ordered by row then column.
func (r *Registry) All() []Building {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Building, 0, len(r.buildings))
	for _, b := range r.buildings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Row != out[j].Key.Row {
			return out[i].Key.Row < out[j].Key.Row
		}
		return out[i].Key.Column < out[j].Key.Column
	})
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buildings)
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

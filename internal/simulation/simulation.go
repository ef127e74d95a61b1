package simulation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"hexisland/internal/environment"
	"hexisland/internal/registry"
	"hexisland/internal/scenery"
	"hexisland/internal/terrain"
)

type Options struct {
	Terrain     terrain.Params
	Environment environment.Config
	Scenery     scenery.Params
	Seed        int64
	Logger      *log.Logger
}

// Snapshot is what a renderer needs after one tick: the environment frame
// and the blended colour of every registered material.
type Snapshot struct {
	Frame environment.Frame `json:"frame"`
	Tints []scenery.Tint    `json:"tints"`
}

// Simulation owns the island scene: the generated map, its scenery, the
// building registry and the environment state machine.
type Simulation struct {
	mu        sync.RWMutex
	opts      Options
	rng       *rand.Rand
	generator *terrain.Generator
	tiles     *terrain.Map
	seeds     []terrain.IslandSeed
	layout    *scenery.Layout
	env       *environment.Environment
	registry  *registry.Registry
	materials *scenery.Materials
	logger    *log.Logger
	last      Snapshot
}

func New(ctx context.Context, opts Options) (*Simulation, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	generator, err := terrain.NewGenerator(opts.Terrain, rng, logger)
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}
	env, err := environment.New(opts.Environment)
	if err != nil {
		return nil, fmt.Errorf("create environment: %w", err)
	}

	s := &Simulation{
		opts:      opts,
		rng:       rng,
		generator: generator,
		env:       env,
		registry:  registry.New(nil, rand.New(rand.NewSource(rng.Int63()))),
		materials: scenery.NewMaterials(),
		logger:    logger,
	}
	if _, err := s.Regenerate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Regenerate builds a fresh map, clears every building and rebuilds the
// scenery and material registry.
func (s *Simulation) Regenerate(ctx context.Context) (*terrain.Map, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seeds := s.generator.PlaceSeeds()
	tiles, err := s.generator.GenerateFrom(ctx, seeds)
	if err != nil {
		return nil, fmt.Errorf("generate map: %w", err)
	}

	s.materials.Clear()
	s.layout = scenery.Populate(tiles, s.opts.Scenery, s.rng, s.materials)
	s.registry.Reset(tiles)
	s.tiles = tiles
	s.seeds = seeds

	stats := tiles.Stats()
	s.logger.Printf("generated %dx%d map with %d islands: %.0f%% land, %d scenery objects, %d materials",
		tiles.Columns, tiles.Rows, len(seeds), stats.LandRatio()*100, len(s.layout.Objects), s.materials.Len())

	s.last = s.snapshotLocked(s.env.Current())
	return tiles, nil
}

// Tick advances the environment by delta and reblends every material.
func (s *Simulation) Tick(delta time.Duration) Snapshot {
	frame := s.env.Step(delta)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = s.snapshotLocked(frame)
	return s.last
}

func (s *Simulation) snapshotLocked(frame environment.Frame) Snapshot {
	blend := s.env.Config().Blend
	return Snapshot{
		Frame: frame,
		Tints: s.materials.Blend(blend, frame.SnowRatio, frame.TimeOfDay, s.registry),
	}
}

// Last returns the snapshot of the most recent tick.
func (s *Simulation) Last() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Run ticks the simulation at tickRate until ctx is done, handing every
// snapshot to sink.
func (s *Simulation) Run(ctx context.Context, tickRate time.Duration, sink func(Snapshot)) error {
	if tickRate <= 0 {
		return errors.New("tick rate must be positive")
	}
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			snap := s.Tick(now.Sub(last))
			last = now
			if sink != nil {
				sink(snap)
			}
		}
	}
}

func (s *Simulation) PlaceBuilding(key terrain.GridKey, t registry.BuildingType, rotation *float64) (registry.Building, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.registry.Place(key, t, rotation)
	if err != nil {
		return registry.Building{}, err
	}
	s.materials.Release(key, scenery.OwnerBuilding)
	scenery.RegisterBuilding(s.materials, b)
	return b, nil
}

func (s *Simulation) RotateBuilding(key terrain.GridKey, radians float64) (registry.Building, error) {
	return s.registry.Rotate(key, radians)
}

func (s *Simulation) RemoveBuilding(key terrain.GridKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.Remove(key); err != nil {
		return err
	}
	s.materials.Release(key, scenery.OwnerBuilding)
	return nil
}

func (s *Simulation) Map() *terrain.Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tiles
}

func (s *Simulation) Seeds() []terrain.IslandSeed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]terrain.IslandSeed, len(s.seeds))
	copy(out, s.seeds)
	return out
}

func (s *Simulation) Layout() *scenery.Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout
}

func (s *Simulation) Environment() *environment.Environment {
	return s.env
}

func (s *Simulation) Registry() *registry.Registry {
	return s.registry
}

func (s *Simulation) Materials() *scenery.Materials {
	return s.materials
}

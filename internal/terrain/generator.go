package terrain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

var ErrInvalidConfiguration = errors.New("invalid terrain configuration")

type Params struct {
	Columns            int
	Rows               int
	NumIslands         int
	IslandSizeFactor   float64
	NoiseStrength      float64
	WarpFactor         float64
	IslandBorderFactor float64
	RandomnessFactor   float64
	Noise              NoiseKind
	Workers            int
	Biomes             BiomeParams
}

func DefaultParams() Params {
	return Params{
		Columns:            48,
		Rows:               48,
		NumIslands:         4,
		IslandSizeFactor:   0.35,
		NoiseStrength:      0.5,
		WarpFactor:         0.2,
		IslandBorderFactor: 0.8,
		RandomnessFactor:   0.08,
		Noise:              NoiseTrig,
		Biomes:             DefaultBiomeParams(),
	}
}

func (p Params) Validate() error {
	if p.Columns <= 0 || p.Rows <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive", ErrInvalidConfiguration)
	}
	if p.NumIslands < 0 {
		return fmt.Errorf("%w: island count cannot be negative", ErrInvalidConfiguration)
	}
	if p.IslandSizeFactor <= 0 {
		return fmt.Errorf("%w: island size factor must be positive", ErrInvalidConfiguration)
	}
	if p.IslandBorderFactor <= 0 {
		return fmt.Errorf("%w: island border factor must be positive", ErrInvalidConfiguration)
	}
	if p.NoiseStrength < 0 || p.WarpFactor < 0 || p.RandomnessFactor < 0 {
		return fmt.Errorf("%w: shape factors cannot be negative", ErrInvalidConfiguration)
	}
	if p.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative", ErrInvalidConfiguration)
	}
	return p.Biomes.validate()
}

// Generator builds island maps. It draws seed placement from the injected
// rand.Rand and is not safe for concurrent Generate calls.
type Generator struct {
	params     Params
	thresholds Thresholds
	rng        *rand.Rand
	noise      NoiseSource
	logger     *log.Logger
}

func NewGenerator(params Params, rng *rand.Rand, logger *log.Logger) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidConfiguration)
	}
	noise, err := NewNoiseSource(params.Noise, rng.Int63())
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{
		params:     params,
		thresholds: params.Biomes.Thresholds(),
		rng:        rng,
		noise:      noise,
		logger:     logger,
	}, nil
}

func (g *Generator) Params() Params {
	return g.params
}

func (g *Generator) Thresholds() Thresholds {
	return g.thresholds
}

// PlaceSeeds scatters NumIslands seeds uniformly over the grid with
// strength in [0.7, 1.3).
func (g *Generator) PlaceSeeds() []IslandSeed {
	seeds := make([]IslandSeed, g.params.NumIslands)
	for i := range seeds {
		seeds[i] = IslandSeed{
			X:        g.rng.Float64() * float64(g.params.Columns),
			Y:        g.rng.Float64() * float64(g.params.Rows),
			Strength: 0.7 + g.rng.Float64()*0.6,
		}
	}
	return seeds
}

func (g *Generator) Generate(ctx context.Context) (*Map, error) {
	return g.GenerateFrom(ctx, g.PlaceSeeds())
}

type shape struct {
	maxDist float64
	centerX float64
	centerY float64
	radiusX float64
	radiusY float64
}

// GenerateFrom builds a map around the given seeds. Rows are fanned out to
// a worker pool; each cell only reads the shared seed list.
func (g *Generator) GenerateFrom(ctx context.Context, seeds []IslandSeed) (*Map, error) {
	p := g.params
	m := newMap(p.Columns, p.Rows, g.thresholds)

	centerX := float64(p.Columns-1) / 2
	centerY := float64(p.Rows-1) / 2
	sh := shape{
		maxDist: math.Hypot(float64(p.Columns), float64(p.Rows)) * p.IslandSizeFactor,
		centerX: centerX,
		centerY: centerY,
		radiusX: centerX * p.IslandBorderFactor,
		radiusY: centerY * p.IslandBorderFactor,
	}
	stream := g.rng.Int63()

	g.logger.Printf("island generation progress: 0%%")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type rowResult struct {
		row   int
		cells []Cell
		err   error
	}

	workers := g.workerCount(p.Rows)
	tasks := make(chan int, workers)
	results := make(chan rowResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range tasks {
				if err := ctx.Err(); err != nil {
					select {
					case results <- rowResult{err: err}:
					default:
					}
					return
				}
				cells := make([]Cell, p.Columns)
				for c := 0; c < p.Columns; c++ {
					cells[c] = g.cell(c, row, seeds, sh, stream)
				}
				select {
				case results <- rowResult{row: row, cells: cells}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(tasks)
		for r := 0; r < p.Rows; r++ {
			select {
			case <-ctx.Done():
				return
			case tasks <- r:
			}
		}
	}()

	done := 0
	nextLogPercent := 10
	for result := range results {
		if result.err != nil {
			cancel()
			return nil, result.err
		}
		copy(m.Cells[result.row*p.Columns:], result.cells)

		done++
		progress := done * 100 / p.Rows
		if progress >= nextLogPercent {
			g.logger.Printf("island generation progress: %d%%", progress)
			nextLogPercent = (progress/10 + 1) * 10
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if done != p.Rows {
		return nil, fmt.Errorf("island generation stopped after %d of %d rows", done, p.Rows)
	}
	return m, nil
}

func (g *Generator) cell(c, r int, seeds []IslandSeed, sh shape, stream int64) Cell {
	p := g.params
	fc, fr := float64(c), float64(r)
	wc, wr := DomainWarp(fc, fr, p.Columns, p.Rows, p.WarpFactor)

	base := math.Min(SeedInfluence(wc, wr, seeds, sh.maxDist), 1)
	noise := g.noise.Sample(wc, wr)

	combined := base*(0.6+noise*0.4*p.NoiseStrength) + ripple(fc, fr)
	if base > 0.2 {
		combined = math.Max(combined, 0.01)
	}

	falloff := EllipticalBorderFalloff(fc, fr, sh.centerX, sh.centerY, sh.radiusX, sh.radiusY)
	elevation := clamp01(combined * falloff)

	rolls := newCellRNG(c, r, stream)
	jitter := rolls.uniform(-p.RandomnessFactor, p.RandomnessFactor)
	biome := g.thresholds.Classify(Sample{Elevation: elevation, Base: base, Shape: falloff}, jitter, rolls)

	return Cell{
		Key:       GridKey{Column: c, Row: r},
		Elevation: elevation,
		Biome:     biome,
	}
}

func (g *Generator) workerCount(rows int) int {
	if rows <= 0 {
		return 1
	}
	if g.params.Workers > 0 {
		if g.params.Workers < rows {
			return g.params.Workers
		}
		return rows
	}
	workers := runtime.GOMAXPROCS(0) * 2
	if workers > rows {
		workers = rows
	}
	if workers <= 0 {
		workers = 1
	}
	return workers
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/src-d/go-billy.v4/osfs"
	"gopkg.in/src-d/go-billy.v4/util"

	"hexisland/internal/config"
	"hexisland/internal/preview"
	"hexisland/internal/scenery"
	"hexisland/internal/terrain"
)

type dump struct {
	Seed    int64                `json:"seed"`
	Seeds   []terrain.IslandSeed `json:"seeds"`
	Stats   terrain.Stats        `json:"stats"`
	Map     *terrain.Map         `json:"map"`
	Scenery *scenery.Layout      `json:"scenery"`
}

func main() {
	configPath := flag.String("config", "", "optional configuration file; flags override its generator settings")
	columns := flag.Int("columns", 0, "grid columns (0 keeps the configured value)")
	rows := flag.Int("rows", 0, "grid rows (0 keeps the configured value)")
	islands := flag.Int("islands", -1, "number of island seeds (-1 keeps the configured value)")
	seedFlag := flag.Int64("seed", 0, "random seed (0 uses the configured seed or the clock)")
	noise := flag.String("noise", "", "detail noise source: trig, perlin or simplex")
	workers := flag.Int("workers", 0, "generator workers (0 picks from GOMAXPROCS)")
	outDir := flag.String("out", ".", "output directory")
	jsonName := flag.String("json", "island.json", "JSON dump file name; empty disables")
	pngName := flag.String("png", "island.png", "preview image file name; empty disables")
	hexSize := flag.Float64("hex-size", 8, "preview hex radius in pixels")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		abs, err := filepath.Abs(*configPath)
		if err != nil {
			log.Fatalf("resolve config path: %v", err)
		}
		loaded, err := config.Load(osfs.New(filepath.Dir(abs)), filepath.Base(abs))
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = *loaded
	}
	if *columns > 0 {
		cfg.Grid.Columns = *columns
	}
	if *rows > 0 {
		cfg.Grid.Rows = *rows
	}
	if *islands >= 0 {
		cfg.Generator.NumIslands = *islands
	}
	if *noise != "" {
		cfg.Generator.Noise = *noise
	}
	if *workers > 0 {
		cfg.Generator.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid settings: %v", err)
	}

	seed := *seedFlag
	if seed == 0 {
		seed = cfg.Generator.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	logger := log.New(log.Writer(), "islandgen ", log.LstdFlags|log.Lmicroseconds)
	gen, err := terrain.NewGenerator(cfg.TerrainParams(), rng, logger)
	if err != nil {
		log.Fatalf("create generator: %v", err)
	}

	start := time.Now()
	seeds := gen.PlaceSeeds()
	m, err := gen.GenerateFrom(context.Background(), seeds)
	if err != nil {
		log.Fatalf("generate map: %v", err)
	}
	elapsed := time.Since(start)
	layout := scenery.Populate(m, cfg.SceneryParams(), rng, nil)
	stats := m.Stats()

	fmt.Println("== Island Generation ==")
	fmt.Printf("Seed: %d\n", seed)
	fmt.Printf("Grid: %dx%d\n", m.Columns, m.Rows)
	fmt.Printf("Noise: %s\n", cfg.Generator.Noise)
	fmt.Printf("Islands: %d\n", len(seeds))
	fmt.Printf("Elevation range: %.3f - %.3f\n", stats.MinElevation, stats.MaxElevation)
	fmt.Printf("Land: %.1f%% (%d of %d tiles)\n", stats.LandRatio()*100, stats.LandCells, stats.Cells)
	for _, b := range terrain.Biomes {
		fmt.Printf("  %-14s %d\n", b, stats.Counts[b])
	}
	fmt.Printf("Scenery: %d trees, %d rocks, %d reed clumps\n",
		layout.Count(scenery.KindTree), layout.Count(scenery.KindRock), layout.Count(scenery.KindReed))
	fmt.Printf("Generation time: %s\n", elapsed)

	absOut, err := filepath.Abs(*outDir)
	if err != nil {
		log.Fatalf("resolve output directory: %v", err)
	}
	if err := os.MkdirAll(absOut, 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}
	fs := osfs.New(absOut)

	if *jsonName != "" {
		data, err := json.MarshalIndent(dump{Seed: seed, Seeds: seeds, Stats: stats, Map: m, Scenery: layout}, "", "  ")
		if err != nil {
			log.Fatalf("encode map: %v", err)
		}
		if err := util.WriteFile(fs, *jsonName, data, 0o644); err != nil {
			log.Fatalf("write map: %v", err)
		}
		fmt.Printf("Map written to %s\n", filepath.Join(absOut, *jsonName))
	}

	if *pngName != "" {
		opts := preview.DefaultOptions()
		opts.HexSize = *hexSize
		img, err := preview.Render(m, opts)
		if err != nil {
			log.Fatalf("render preview: %v", err)
		}
		if err := preview.WritePNG(fs, *pngName, img); err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Printf("Preview written to %s\n", filepath.Join(absOut, *pngName))
	}
}

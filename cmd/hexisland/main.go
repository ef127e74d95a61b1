package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/src-d/go-billy.v4/osfs"

	"hexisland/internal/config"
	"hexisland/internal/server"
	"hexisland/internal/simulation"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "hexisland.yml", "configuration file for the island scene server")
	flag.Parse()

	abs, err := filepath.Abs(configPath)
	if err != nil {
		log.Fatalf("resolve config path: %v", err)
	}
	fs := osfs.New(filepath.Dir(abs))
	name := filepath.Base(abs)

	cfg, err := config.Load(fs, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := config.WriteDefault(fs, name); err != nil {
				log.Fatalf("write default config: %v", err)
			}
			log.Printf("no configuration found, default configuration written to %s", abs)
			cfg, err = config.Load(fs, name)
		}
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	envCfg, err := cfg.EnvironmentConfig()
	if err != nil {
		log.Fatalf("environment config: %v", err)
	}
	seed := cfg.Generator.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sim, err := simulation.New(ctx, simulation.Options{
		Terrain:     cfg.TerrainParams(),
		Environment: envCfg,
		Scenery:     cfg.SceneryParams(),
		Seed:        seed,
		Logger:      log.New(log.Writer(), "simulation ", log.LstdFlags|log.Lmicroseconds),
	})
	if err != nil {
		log.Fatalf("initialise simulation: %v", err)
	}
	log.Printf("island scene seeded with %d", seed)

	if err := server.New(cfg, sim).Run(ctx); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

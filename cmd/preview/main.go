package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/VoidMesh/terrain/internal/config"
	"github.com/VoidMesh/terrain/internal/db"
	"github.com/VoidMesh/terrain/internal/logging"
	"github.com/VoidMesh/terrain/internal/preset"
	"github.com/VoidMesh/terrain/internal/preview"
	"github.com/VoidMesh/terrain/pkg/noise"
	"github.com/VoidMesh/terrain/pkg/terrain"
)

func main() {
	width := flag.Float64("width", 48, "Terrain width in cells")
	depth := flag.Float64("depth", 32, "Terrain depth in cells")
	seed := flag.Int64("seed", 0, "Noise seed")
	color := flag.String("color", "4a7a3b", "Base color as six hex digits")
	maxHeight := flag.Float64("max-height", 8, "Maximum noise height")
	falloff := flag.Float64("falloff", 40, "Radial falloff radius from the origin corner")
	z := flag.Float64("z", 0, "Noise z slice")
	octaves := flag.Int("octaves", 4, "Fractal octave count")
	frequency := flag.Float64("frequency", 2, "Per-octave frequency multiplier")
	backend := flag.String("backend", noise.BackendOpenSimplex, "Noise backend (opensimplex, perlin)")
	presetName := flag.String("preset", "", "Render a stored preset instead of the flag parameters")
	dbPath := flag.String("db", "./terrain.db", "Path to the SQLite preset database")
	defaults := preview.DefaultOptions()
	maxColumns := flag.Int("max-columns", defaults.MaxColumns, "Downsample maps wider than this many cells")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	logLevel := flag.String("log", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger := logging.Configure(logging.Options{Level: *logLevel, Format: "text", Prefix: "preview"})

	settings := terrain.Settings{
		Width:            float32(*width),
		Depth:            float32(*depth),
		Seed:             *seed,
		Color:            *color,
		MaxHeight:        float32(*maxHeight),
		Falloff:          float32(*falloff),
		Z:                *z,
		FractalOctaves:   int32(*octaves),
		FractalFrequency: *frequency,
	}
	title := "Terrain preview"

	if *presetName != "" {
		p, err := loadPreset(*dbPath, *presetName)
		if err != nil {
			logger.Fatal("Failed to load preset", "error", err, "preset", *presetName, "db_path", *dbPath)
		}
		settings = p.Settings
		*backend = p.NoiseBackend
		title = fmt.Sprintf("Preset %s", p.Name)
		if p.Description != "" {
			title += " - " + p.Description
		}
	}

	src, err := noise.New(*backend)
	if err != nil {
		logger.Fatal("Unknown noise backend", "error", err, "available", noise.Backends())
	}

	cfg, err := settings.Configuration()
	if err != nil {
		logger.Fatal("Invalid terrain parameters", "error", err)
	}

	generator := terrain.NewGenerator(src, terrain.NewDefaultLoggerWrapper())
	grid := generator.BuildGrid(cfg)
	mesh := terrain.BuildMesh(grid, cfg.Color)
	if err := mesh.CheckFinite(); err != nil {
		logger.Warn("Mesh contains non-finite geometry", "error", err)
	}

	opts := defaults
	opts.MaxColumns = *maxColumns
	opts.Color = defaults.Color && !*noColor
	fmt.Println(preview.Render(fmt.Sprintf("%s (%s)", title, *backend), grid, mesh, cfg, opts))
}

func loadPreset(path, name string) (*preset.Preset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("preset database: %w", err)
	}

	database, err := db.Open(config.DatabaseConfig{
		Path:            path,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		return nil, err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	manager := preset.NewManager(db.NewLoggingQueries(database), terrain.NewDefaultLoggerWrapper())
	return manager.Get(ctx, name)
}

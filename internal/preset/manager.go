// Package preset stores named terrain parameter sets and generates meshes
// from them.
package preset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/VoidMesh/terrain/internal/db"
	"github.com/VoidMesh/terrain/pkg/noise"
	"github.com/VoidMesh/terrain/pkg/terrain"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrInvalidName    = errors.New("preset name must be 1-64 characters of letters, digits, '-' or '_'")
	ErrNonFinite      = errors.New("preset parameters must be finite")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Preset is a named, validated parameter set.
type Preset struct {
	Name         string
	Description  string
	Settings     terrain.Settings
	NoiseBackend string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store is the subset of db queries the manager needs.
type Store interface {
	UpsertPreset(ctx context.Context, arg db.UpsertPresetParams) error
	GetPreset(ctx context.Context, name string) (db.TerrainPreset, error)
	ListPresets(ctx context.Context) ([]db.TerrainPreset, error)
	DeletePreset(ctx context.Context, name string) (int64, error)
	CountPresets(ctx context.Context) (int64, error)
}

// Manager validates presets before they reach storage and builds meshes for
// stored presets with the noise backend each one names.
type Manager struct {
	store  Store
	logger terrain.LoggerInterface
}

func NewManager(store Store, logger terrain.LoggerInterface) *Manager {
	componentLogger := logger.With("component", "preset-manager")
	componentLogger.Debug("Creating new preset manager")
	return &Manager{
		store:  store,
		logger: componentLogger,
	}
}

// Save validates and stores p, replacing any preset with the same name.
func (m *Manager) Save(ctx context.Context, p Preset) (*Preset, error) {
	if !namePattern.MatchString(p.Name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, p.Name)
	}
	cfg, err := p.Settings.Configuration()
	if err != nil {
		return nil, err
	}
	if err := checkFinite(p.Settings); err != nil {
		return nil, err
	}

	backend := strings.ToLower(strings.TrimSpace(p.NoiseBackend))
	if backend == "" {
		backend = noise.BackendOpenSimplex
	}
	if _, err := noise.New(backend); err != nil {
		return nil, err
	}

	// Stored in canonical form so the lowercase color round-trips.
	s := cfg.Settings()
	err = m.store.UpsertPreset(ctx, db.UpsertPresetParams{
		Name:             p.Name,
		Description:      p.Description,
		Width:            float64(s.Width),
		Depth:            float64(s.Depth),
		Seed:             s.Seed,
		Color:            s.Color,
		MaxHeight:        float64(s.MaxHeight),
		Falloff:          float64(s.Falloff),
		Z:                s.Z,
		FractalOctaves:   int64(s.FractalOctaves),
		FractalFrequency: s.FractalFrequency,
		NoiseBackend:     backend,
	})
	if err != nil {
		m.logger.Error("Failed to save preset", "name", p.Name, "error", err)
		return nil, fmt.Errorf("failed to save preset %q: %w", p.Name, err)
	}

	m.logger.Info("Preset saved", "name", p.Name, "seed", s.Seed, "backend", backend)
	return m.Get(ctx, p.Name)
}

// Get returns the named preset or ErrPresetNotFound.
func (m *Manager) Get(ctx context.Context, name string) (*Preset, error) {
	row, err := m.store.GetPreset(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preset %q: %w", name, err)
	}
	return fromRow(row), nil
}

func (m *Manager) List(ctx context.Context) ([]*Preset, error) {
	rows, err := m.store.ListPresets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}

	presets := make([]*Preset, 0, len(rows))
	for _, row := range rows {
		presets = append(presets, fromRow(row))
	}
	return presets, nil
}

func (m *Manager) Delete(ctx context.Context, name string) error {
	affected, err := m.store.DeletePreset(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to delete preset %q: %w", name, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	m.logger.Info("Preset deleted", "name", name)
	return nil
}

// Count returns the number of stored presets.
func (m *Manager) Count(ctx context.Context) (int64, error) {
	n, err := m.store.CountPresets(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count presets: %w", err)
	}
	return n, nil
}

// Generate builds the mesh for a preset already loaded with Get, using the
// noise backend recorded with it.
func (m *Manager) Generate(p *Preset) (*terrain.Mesh, error) {
	src, err := noise.New(p.NoiseBackend)
	if err != nil {
		return nil, err
	}

	gen := terrain.NewGenerator(src, m.logger.With("preset", p.Name))
	return gen.GenerateFromSettings(p.Settings)
}

func fromRow(row db.TerrainPreset) *Preset {
	return &Preset{
		Name:        row.Name,
		Description: row.Description,
		Settings: terrain.Settings{
			Width:            float32(row.Width),
			Depth:            float32(row.Depth),
			Seed:             row.Seed,
			Color:            row.Color,
			MaxHeight:        float32(row.MaxHeight),
			Falloff:          float32(row.Falloff),
			Z:                row.Z,
			FractalOctaves:   int32(row.FractalOctaves),
			FractalFrequency: row.FractalFrequency,
		},
		NoiseBackend: row.NoiseBackend,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// checkFinite rejects values SQLite would store as NULL or JSON cannot carry.
func checkFinite(s terrain.Settings) error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"width", float64(s.Width)},
		{"depth", float64(s.Depth)},
		{"max_height", float64(s.MaxHeight)},
		{"falloff", float64(s.Falloff)},
		{"z", s.Z},
		{"fractal_frequency", s.FractalFrequency},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s=%v", ErrNonFinite, f.name, f.value)
		}
	}
	return nil
}

package terrain

import (
	"sync"
	"time"

	"github.com/VoidMesh/terrain/internal/logging"
	"github.com/VoidMesh/terrain/pkg/noise"
)

// LoggerInterface abstracts logging operations for dependency injection.
type LoggerInterface interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	With(keysAndValues ...interface{}) LoggerInterface
}

// DefaultLoggerWrapper wraps the internal logging package.
type DefaultLoggerWrapper struct {
	fields []interface{}
}

// NewDefaultLoggerWrapper creates a new default logger wrapper.
func NewDefaultLoggerWrapper() LoggerInterface {
	return &DefaultLoggerWrapper{}
}

func (l *DefaultLoggerWrapper) Debug(msg string, keysAndValues ...interface{}) {
	logging.GetLogger().With(l.fields...).Debug(msg, keysAndValues...)
}

func (l *DefaultLoggerWrapper) Info(msg string, keysAndValues ...interface{}) {
	logging.GetLogger().With(l.fields...).Info(msg, keysAndValues...)
}

func (l *DefaultLoggerWrapper) Warn(msg string, keysAndValues ...interface{}) {
	logging.GetLogger().With(l.fields...).Warn(msg, keysAndValues...)
}

func (l *DefaultLoggerWrapper) Error(msg string, keysAndValues ...interface{}) {
	logging.GetLogger().With(l.fields...).Error(msg, keysAndValues...)
}

func (l *DefaultLoggerWrapper) With(keysAndValues ...interface{}) LoggerInterface {
	fields := make([]interface{}, 0, len(l.fields)+len(keysAndValues))
	fields = append(fields, l.fields...)
	fields = append(fields, keysAndValues...)
	return &DefaultLoggerWrapper{fields: fields}
}

// Generator runs the terrain pipeline against a noise backend. It holds no
// per-call state and may be shared between goroutines as long as the noise
// source is safe for concurrent use.
type Generator struct {
	noise  noise.Source
	logger LoggerInterface
}

// NewGenerator creates a generator with dependency injection.
func NewGenerator(src noise.Source, logger LoggerInterface) *Generator {
	componentLogger := logger.With("component", "terrain-generator")
	componentLogger.Debug("Creating new terrain generator")
	return &Generator{
		noise:  src,
		logger: componentLogger,
	}
}

// NewGeneratorWithDefaults uses OpenSimplex noise and the default logger.
func NewGeneratorWithDefaults() *Generator {
	return NewGenerator(noise.NewOpenSimplex(), NewDefaultLoggerWrapper())
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

// Generate runs the pipeline with the package default generator.
func Generate(
	width, depth float32,
	seed int64,
	color string,
	maxHeight, falloff float32,
	z float64,
	fractalOctaves int32,
	fractalFrequency float64,
) (*Mesh, error) {
	defaultGeneratorOnce.Do(func() {
		defaultGenerator = NewGeneratorWithDefaults()
	})
	return defaultGenerator.Generate(width, depth, seed, color, maxHeight, falloff, z, fractalOctaves, fractalFrequency)
}

// Generate validates the parameters and builds the terrain mesh. The only
// failure is a ConfigurationError, returned before any geometry is built.
func (g *Generator) Generate(
	width, depth float32,
	seed int64,
	color string,
	maxHeight, falloff float32,
	z float64,
	fractalOctaves int32,
	fractalFrequency float64,
) (*Mesh, error) {
	cfg, err := NewConfiguration(width, depth, seed, color, maxHeight, falloff, z, fractalOctaves, fractalFrequency)
	if err != nil {
		g.logger.Error("Rejected terrain configuration", "error", err)
		return nil, err
	}
	return g.GenerateConfigured(cfg), nil
}

// GenerateFromSettings is the aggregate form of Generate.
func (g *Generator) GenerateFromSettings(s Settings) (*Mesh, error) {
	return g.Generate(s.Width, s.Depth, s.Seed, s.Color, s.MaxHeight, s.Falloff, s.Z, s.FractalOctaves, s.FractalFrequency)
}

// GenerateConfigured builds the mesh for an already validated configuration.
func (g *Generator) GenerateConfigured(cfg *Configuration) *Mesh {
	logger := g.logger.With("seed", cfg.Seed, "width", cfg.Width, "depth", cfg.Depth)
	logger.Debug("Starting terrain generation", "octaves", cfg.FractalOctaves, "frequency", cfg.FractalFrequency)

	if _, ok := g.noise.(*noise.Perlin); ok && noise.LatticeAligned(cfg.Z, cfg.FractalOctaves, cfg.FractalFrequency) {
		logger.Warn("Perlin noise samples only lattice points and the terrain will be flat; use a fractional z",
			"z", cfg.Z, "frequency", cfg.FractalFrequency)
	}

	start := time.Now()
	grid := g.BuildGrid(cfg)
	mesh := BuildMesh(grid, cfg.Color)

	if err := mesh.CheckFinite(); err != nil {
		logger.Warn("Generated mesh carries non-finite geometry", "error", err, "falloff", cfg.Falloff)
	}

	logger.Info("Terrain generation completed",
		"duration", time.Since(start),
		"columns", len(grid.Columns),
		"cubes", mesh.CubeCount(),
		"vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount(),
	)
	return mesh
}

// BuildGrid exposes the column sampling step on its own, for previews.
func (g *Generator) BuildGrid(cfg *Configuration) *Grid {
	return BuildGrid(g.noise, cfg)
}

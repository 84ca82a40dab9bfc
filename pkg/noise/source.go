// Package noise provides seeded, continuous 3D scalar fields used as the height
// oracle for terrain generation. Every backend is a pure function of
// (seed, x, y, z); per-seed state is kept in a bounded LRU cache that is safe
// for concurrent use.
package noise

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aquilax/go-perlin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ojrac/opensimplex-go"
)

const (
	BackendOpenSimplex = "opensimplex"
	BackendPerlin      = "perlin"
)

// DefaultCacheSize is the number of seeded generators a backend keeps.
const DefaultCacheSize = 256

// Perlin parameters. alpha=2, beta=2, n=3 give good terrain-like noise.
const (
	perlinAlpha = 2.0
	perlinBeta  = 2.0
	perlinN     = 3
)

var ErrUnknownBackend = errors.New("unknown noise backend")

// Source is a deterministic, continuous field keyed by seed and 3D coordinate.
// Values are nominally in [-1, 1].
type Source interface {
	Noise3(seed int64, x, y, z float64) float64
}

// Func adapts an ordinary function to the Source interface.
type Func func(seed int64, x, y, z float64) float64

func (f Func) Noise3(seed int64, x, y, z float64) float64 {
	return f(seed, x, y, z)
}

// New returns the backend registered under name with the default cache size.
func New(name string) (Source, error) {
	return NewSized(name, DefaultCacheSize)
}

// NewSized returns the backend registered under name, caching at most
// cacheSize seeds. A non-positive size uses DefaultCacheSize.
func NewSized(name string, cacheSize int) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendOpenSimplex:
		return NewOpenSimplexSized(cacheSize), nil
	case BackendPerlin:
		return NewPerlinSized(cacheSize), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Backends lists the names accepted by New.
func Backends() []string {
	return []string{BackendOpenSimplex, BackendPerlin}
}

// seedCache keeps the most recently used generators keyed by seed.
type seedCache[T any] struct {
	fields *lru.Cache[int64, T]
	create func(seed int64) T
}

func newSeedCache[T any](size int, create func(seed int64) T) *seedCache[T] {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for a non-positive size.
	fields, _ := lru.New[int64, T](size)
	return &seedCache[T]{fields: fields, create: create}
}

// get returns the cached generator for seed, building it on a miss. Two
// concurrent misses may both build; generators are pure functions of the
// seed so either result is correct.
func (c *seedCache[T]) get(seed int64) T {
	if n, ok := c.fields.Get(seed); ok {
		return n
	}
	n := c.create(seed)
	c.fields.Add(seed, n)
	return n
}

func (c *seedCache[T]) len() int {
	return c.fields.Len()
}

// OpenSimplex evaluates OpenSimplex noise, keeping one generator per recent seed.
type OpenSimplex struct {
	cache *seedCache[opensimplex.Noise]
}

func NewOpenSimplex() *OpenSimplex {
	return NewOpenSimplexSized(DefaultCacheSize)
}

func NewOpenSimplexSized(cacheSize int) *OpenSimplex {
	return &OpenSimplex{cache: newSeedCache(cacheSize, opensimplex.New)}
}

func (o *OpenSimplex) Noise3(seed int64, x, y, z float64) float64 {
	return o.cache.get(seed).Eval3(x, y, z)
}

// CachedSeeds reports how many seeded generators are held.
func (o *OpenSimplex) CachedSeeds() int {
	return o.cache.len()
}

// Perlin evaluates classic Perlin noise, keeping one generator per recent seed.
//
// Perlin noise is zero on integer lattice points. A fractal run whose z slice
// and per-octave frequency are both whole numbers samples only lattice points
// on a unit grid and yields flat terrain; see LatticeAligned.
type Perlin struct {
	cache *seedCache[*perlin.Perlin]
}

func NewPerlin() *Perlin {
	return NewPerlinSized(DefaultCacheSize)
}

func NewPerlinSized(cacheSize int) *Perlin {
	return &Perlin{cache: newSeedCache(cacheSize, func(seed int64) *perlin.Perlin {
		return perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed)
	})}
}

func (p *Perlin) Noise3(seed int64, x, y, z float64) float64 {
	return p.cache.get(seed).Noise3D(x, y, z)
}

// CachedSeeds reports how many seeded generators are held.
func (p *Perlin) CachedSeeds() int {
	return p.cache.len()
}

// LatticeAligned reports whether a fractal run over integer grid coordinates
// samples only integer lattice points: z is whole and, beyond the first
// octave, so is the frequency multiplier.
func LatticeAligned(z float64, octaves int32, frequency float64) bool {
	if !isWhole(z) {
		return false
	}
	return octaves <= 1 || isWhole(frequency)
}

func isWhole(v float64) bool {
	return !math.IsInf(v, 0) && v == math.Trunc(v)
}

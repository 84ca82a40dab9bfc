package terrain

import (
	"math"

	"github.com/VoidMesh/terrain/pkg/noise"
)

// Column is one sampled grid cell. Height includes the one-unit base slab.
type Column struct {
	X      float32
	Y      float32
	Height float32
}

// Grid holds sampled columns in x-major order: all y samples for x=0, then
// x=1, and so on.
type Grid struct {
	Columns []Column
	// Rows is the number of x samples, Cols the number of y samples per row.
	Rows int
	Cols int
}

// At returns the column for the given row (x step) and column (y step).
func (g *Grid) At(row, col int) Column {
	return g.Columns[row*g.Cols+col]
}

// samples counts the unit steps in [0, extent).
func samples(extent float32) int {
	n := 0
	for v := float32(0); v < extent; v += CubeSize {
		n++
	}
	return n
}

// BuildGrid samples the fractal height field over [0, Width) x [0, Depth) in
// unit steps and shapes it with a radial falloff around the origin corner.
func BuildGrid(src noise.Source, cfg *Configuration) *Grid {
	rows, cols := samples(cfg.Width), samples(cfg.Depth)
	grid := &Grid{
		Columns: make([]Column, 0, rows*cols),
		Rows:    rows,
		Cols:    cols,
	}

	for x := float32(0); x < cfg.Width; x += CubeSize {
		for y := float32(0); y < cfg.Depth; y += CubeSize {
			height := FractalNoise(src, cfg, x, y, cfg.Z)
			grid.Columns = append(grid.Columns, Column{
				X:      x,
				Y:      y,
				Height: float32(height*FalloffFactor(x, y, cfg.Falloff)) + CubeSize,
			})
		}
	}

	return grid
}

// FalloffFactor is max(0, 1 - dist/falloff) where dist is measured from the
// origin corner. A NaN ratio (zero falloff at the origin) is passed through.
func FalloffFactor(x, y, falloff float32) float32 {
	dist := float32(math.Sqrt(float64(float32(x*x) + float32(y*y))))
	factor := 1 - dist/falloff
	if factor < 0 {
		return 0
	}
	return factor
}

package preview

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/terrain/internal/testutil"
	"github.com/VoidMesh/terrain/pkg/terrain"
)

func TestGlyph(t *testing.T) {
	tests := []struct {
		name      string
		height    float32
		maxHeight float32
		expected  rune
	}{
		{name: "base slab is blank", height: 1, maxHeight: 5, expected: ' '},
		{name: "full height is densest", height: 6, maxHeight: 5, expected: '@'},
		{name: "midway", height: 3.5, maxHeight: 5, expected: '+'},
		{name: "zero max height", height: 1, maxHeight: 0, expected: ' '},
		{name: "nan", height: float32(math.NaN()), maxHeight: 5, expected: NonFiniteSymbol},
		{name: "above range clamps", height: 100, maxHeight: 5, expected: '@'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, string(tt.expected), string(Glyph(tt.height, tt.maxHeight)))
		})
	}
}

func testGrid(t *testing.T, width, depth float32, noiseValue float64, falloff float32) (*terrain.Grid, *terrain.Mesh, *terrain.Configuration) {
	t.Helper()
	cfg, err := terrain.NewConfiguration(width, depth, 1, "336699", 4, falloff, 0, 1, 2)
	require.NoError(t, err)
	grid := terrain.BuildGrid(testutil.ConstantNoise(noiseValue), cfg)
	return grid, terrain.BuildMesh(grid, cfg.Color), cfg
}

func TestHeightMap(t *testing.T) {
	grid, _, cfg := testGrid(t, 3, 2, 0, 10)

	out := HeightMap(grid, cfg, Options{})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2, "one line per y sample")
	for _, line := range lines {
		assert.Equal(t, strings.Repeat(" ", 6), line, "flat terrain is blank, two characters per cell")
	}
}

func TestHeightMap_Downsamples(t *testing.T) {
	grid, _, cfg := testGrid(t, 10, 10, 0.5, 100)

	out := HeightMap(grid, cfg, Options{MaxColumns: 5})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		assert.Len(t, []rune(line), 10)
	}
}

func TestHeightMap_MarksNonFinite(t *testing.T) {
	grid, _, cfg := testGrid(t, 2, 2, 0.5, 0)

	out := HeightMap(grid, cfg, Options{})
	assert.True(t, strings.HasPrefix(out, "??"), "origin column is NaN with zero falloff: %q", out)
}

func TestHeightMap_Empty(t *testing.T) {
	grid, _, cfg := testGrid(t, 0, 0, 0.5, 10)
	assert.Equal(t, "(empty terrain)", HeightMap(grid, cfg, Options{}))
}

func TestSummarize(t *testing.T) {
	grid, mesh, _ := testGrid(t, 1, 1, 0.5, 10)

	stats := Summarize(grid, mesh)
	assert.Equal(t, 1, stats.Columns)
	assert.Equal(t, 3, stats.Cubes)
	assert.Equal(t, 24, stats.Vertices)
	assert.Equal(t, 36, stats.Triangles)
	assert.Equal(t, float32(3), stats.MinHeight)
	assert.Equal(t, float32(3), stats.MaxHeight)
	assert.Equal(t, float32(3), stats.MeanHeight)
	assert.Zero(t, stats.NonFinite)

	grid, mesh, _ = testGrid(t, 2, 2, 0.5, 0)
	stats = Summarize(grid, mesh)
	assert.Equal(t, 1, stats.NonFinite)
	assert.Equal(t, float32(1), stats.MinHeight)
	assert.Equal(t, float32(1), stats.MeanHeight)
}

func TestRender(t *testing.T) {
	grid, mesh, cfg := testGrid(t, 4, 4, 0.5, 0)

	out := Render("island", grid, mesh, cfg, Options{Color: true})
	for _, want := range []string{"island", "Parameters", "seed:      1", "#336699", "cubes:", "non-finite columns: 1"} {
		assert.Contains(t, out, want)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 64, opts.MaxColumns)
	assert.True(t, opts.Color)

	opts.Color = false
	grid, _, cfg := testGrid(t, 100, 2, 0.5, 200)
	lines := strings.Split(HeightMap(grid, cfg, opts), "\n")
	require.Len(t, lines, 1, "two y samples downsampled by a step of two")
	assert.LessOrEqual(t, len([]rune(lines[0])), 2*opts.MaxColumns)
}

// Package preview draws a terminal top-down view of generated terrain.
package preview

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/VoidMesh/terrain/pkg/terrain"
)

type Options struct {
	// MaxColumns caps the map width in cells; larger grids are downsampled.
	MaxColumns int
	// Color styles cells with each column's top color.
	Color bool
}

func DefaultOptions() Options {
	return Options{MaxColumns: 64, Color: true}
}

// Stats summarizes a grid and the mesh built from it.
type Stats struct {
	Columns    int
	Cubes      int
	Vertices   int
	Triangles  int
	MinHeight  float32
	MaxHeight  float32
	MeanHeight float32
	NonFinite  int
}

func Summarize(grid *terrain.Grid, mesh *terrain.Mesh) Stats {
	s := Stats{
		Columns:   len(grid.Columns),
		Cubes:     mesh.CubeCount(),
		Vertices:  mesh.VertexCount(),
		Triangles: mesh.TriangleCount(),
	}

	var sum float64
	finite := 0
	for _, col := range grid.Columns {
		h := float64(col.Height)
		if math.IsNaN(h) || math.IsInf(h, 0) {
			s.NonFinite++
			continue
		}
		if finite == 0 || col.Height < s.MinHeight {
			s.MinHeight = col.Height
		}
		if finite == 0 || col.Height > s.MaxHeight {
			s.MaxHeight = col.Height
		}
		sum += h
		finite++
	}
	if finite > 0 {
		s.MeanHeight = float32(sum / float64(finite))
	}
	return s
}

// Glyph picks the ramp symbol for a column height. The one-unit base slab is
// excluded so flat terrain renders blank.
func Glyph(height, maxHeight float32) rune {
	h := float64(height)
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return NonFiniteSymbol
	}
	if maxHeight <= 0 {
		return heightRamp[0]
	}

	level := (h - terrain.CubeSize) / float64(maxHeight)
	idx := int(math.Round(level * float64(len(heightRamp)-1)))
	idx = max(0, min(idx, len(heightRamp)-1))
	return heightRamp[idx]
}

// HeightMap renders one line per y sample, with x increasing to the right.
// Each cell is two characters wide.
func HeightMap(grid *terrain.Grid, cfg *terrain.Configuration, opts Options) string {
	if len(grid.Columns) == 0 {
		return "(empty terrain)"
	}

	step := 1
	if opts.MaxColumns > 0 && grid.Rows > opts.MaxColumns {
		step = (grid.Rows + opts.MaxColumns - 1) / opts.MaxColumns
	}

	var b strings.Builder
	for col := 0; col < grid.Cols; col += step {
		if col > 0 {
			b.WriteByte('\n')
		}
		for row := 0; row < grid.Rows; row += step {
			b.WriteString(cell(grid.At(row, col), cfg, opts))
		}
	}
	return b.String()
}

func cell(c terrain.Column, cfg *terrain.Configuration, opts Options) string {
	g := string(Glyph(c.Height, cfg.MaxHeight))
	text := g + g
	if !opts.Color {
		return text
	}
	if g == string(NonFiniteSymbol) {
		return WarningStyle.Render(text)
	}
	top := terrain.TopColor(cfg.Color, c.Height)
	hex := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", top.R, top.G, top.B))
	return lipgloss.NewStyle().Foreground(hex).Render(text)
}

// StatsPanel lists the parameters and mesh statistics.
func StatsPanel(cfg *terrain.Configuration, stats Stats) string {
	var info strings.Builder

	info.WriteString(SubtitleStyle.Render("Parameters") + "\n")
	info.WriteString(fmt.Sprintf("size:      %g x %g\n", cfg.Width, cfg.Depth))
	info.WriteString(fmt.Sprintf("seed:      %d\n", cfg.Seed))
	info.WriteString(fmt.Sprintf("color:     #%s\n", cfg.Color))
	info.WriteString(fmt.Sprintf("height:    %g\n", cfg.MaxHeight))
	info.WriteString(fmt.Sprintf("falloff:   %g\n", cfg.Falloff))
	info.WriteString(fmt.Sprintf("z:         %g\n", cfg.Z))
	info.WriteString(fmt.Sprintf("octaves:   %d @ %g\n", cfg.FractalOctaves, cfg.FractalFrequency))

	info.WriteString("\n" + SubtitleStyle.Render("Mesh") + "\n")
	info.WriteString(fmt.Sprintf("columns:   %d\n", stats.Columns))
	info.WriteString(fmt.Sprintf("cubes:     %d\n", stats.Cubes))
	info.WriteString(fmt.Sprintf("vertices:  %d\n", stats.Vertices))
	info.WriteString(fmt.Sprintf("triangles: %d\n", stats.Triangles))
	info.WriteString(fmt.Sprintf("heights:   %.2f..%.2f (mean %.2f)", stats.MinHeight, stats.MaxHeight, stats.MeanHeight))

	if stats.NonFinite > 0 {
		info.WriteString("\n" + WarningStyle.Render(fmt.Sprintf("non-finite columns: %d", stats.NonFinite)))
	}

	return InfoPanelStyle.Render(info.String())
}

// Render lays out the title, height map and stats panel.
func Render(title string, grid *terrain.Grid, mesh *terrain.Mesh, cfg *terrain.Configuration, opts Options) string {
	stats := Summarize(grid, mesh)
	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		BorderStyle.Render(HeightMap(grid, cfg, opts)),
		StatsPanel(cfg, stats),
	)
	return lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), body)
}

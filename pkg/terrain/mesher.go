package terrain

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// cubeIndices lists the 12 triangles of a cube relative to its first vertex.
// Corners 0-3 are the front face (z = base), 4-7 the back face (z = base+size).
var cubeIndices = [indicesPerCube]uint32{
	0, 1, 2, 0, 2, 3, // front
	4, 6, 5, 4, 7, 6, // back
	4, 0, 3, 4, 3, 7, // left
	1, 5, 6, 1, 6, 2, // right
	3, 2, 6, 3, 6, 7, // top
	4, 5, 1, 4, 1, 0, // bottom
}

// BuildMesh converts every column of grid into stacked cubes. Columns lower
// than one unit produce no geometry.
func BuildMesh(grid *Grid, base RGB) *Mesh {
	cubes := 0
	for _, col := range grid.Columns {
		if col.Height < CubeSize {
			continue
		}
		levels, _ := splitHeight(col.Height)
		cubes += max(levels-1, 0) + 1
	}

	mesh := newMesh(cubes)
	for _, col := range grid.Columns {
		mesh.addColumn(col, base)
	}
	return mesh
}

func (m *Mesh) addColumn(col Column, base RGB) {
	if col.Height < CubeSize {
		return
	}

	levels, fraction := splitHeight(col.Height)

	// Full cubes for levels 1..N-1; level N is covered by the cap.
	for level := 1; level < levels; level++ {
		ratio := float32(levels-level+1) / float32(levels)
		t := col.Height - float32(ratio*0.5)
		m.addCube(
			mgl32.Vec3{col.X, float32(level) * CubeSize, col.Y},
			CubeSize,
			CubeSize,
			shade(base, t),
		)
	}

	// The cap is emitted even when fraction is zero.
	m.addCube(
		mgl32.Vec3{col.X, CubeSize * float32(levels), col.Y},
		CubeSize,
		fraction,
		shade(base, col.Height),
	)
}

func (m *Mesh) addCube(origin mgl32.Vec3, size, height float32, c color.RGBA) {
	start := uint32(len(m.Positions))

	m.Positions = append(m.Positions,
		origin,
		origin.Add(mgl32.Vec3{size, 0, 0}),
		origin.Add(mgl32.Vec3{size, height, 0}),
		origin.Add(mgl32.Vec3{0, height, 0}),
		origin.Add(mgl32.Vec3{0, 0, size}),
		origin.Add(mgl32.Vec3{size, 0, size}),
		origin.Add(mgl32.Vec3{size, height, size}),
		origin.Add(mgl32.Vec3{0, height, size}),
	)

	for _, idx := range cubeIndices {
		m.Indices = append(m.Indices, start+idx)
	}

	for range verticesPerCube {
		m.Colors = append(m.Colors, c)
	}
}

// splitHeight returns the integer level count and the fractional remainder.
// Non-finite heights yield zero levels and a non-finite remainder, so the
// degenerate value still reaches the cap cube's vertices.
func splitHeight(h float32) (int, float32) {
	whole := math.Trunc(float64(h))
	fraction := h - float32(whole)

	switch {
	case math.IsNaN(whole) || math.IsInf(whole, 0):
		return 0, fraction
	case whole > math.MaxInt32:
		return math.MaxInt32, fraction
	default:
		return int(whole), fraction
	}
}

// TopColor is the color of the uppermost cube of a column of the given height.
func TopColor(base RGB, height float32) color.RGBA {
	return shade(base, height)
}

// shade applies the vertical gradient to the green channel. Values outside
// the byte range saturate; NaN maps to zero.
func shade(base RGB, t float32) color.RGBA {
	return color.RGBA{
		R: base.R,
		G: saturateByte(float32(base.G) + 0.25 + float32(float32(0.45*t)*50)),
		B: base.B,
		A: 255,
	}
}

func saturateByte(v float32) uint8 {
	switch {
	case v != v:
		return 0
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

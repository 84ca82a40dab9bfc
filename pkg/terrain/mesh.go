package terrain

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	verticesPerCube = 8
	indicesPerCube  = 36
)

// Mesh is an indexed triangle list with one color per vertex.
type Mesh struct {
	Positions []mgl32.Vec3
	Indices   []uint32
	Colors    []color.RGBA
}

func newMesh(cubes int) *Mesh {
	return &Mesh{
		Positions: make([]mgl32.Vec3, 0, cubes*verticesPerCube),
		Indices:   make([]uint32, 0, cubes*indicesPerCube),
		Colors:    make([]color.RGBA, 0, cubes*verticesPerCube),
	}
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles described by Indices.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// CubeCount returns the number of cubes the mesh was built from.
func (m *Mesh) CubeCount() int {
	return len(m.Positions) / verticesPerCube
}

// CheckFinite returns an error wrapping ErrNumericDegeneracy for the first
// position holding a NaN or infinite coordinate.
func (m *Mesh) CheckFinite() error {
	for i, p := range m.Positions {
		for axis, v := range p {
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return fmt.Errorf("%w: vertex %d axis %d is %v", ErrNumericDegeneracy, i, axis, v)
			}
		}
	}
	return nil
}

// Validate checks the structural invariants: whole triangles, in-range
// indices and one color per position.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}
	if len(m.Colors) != len(m.Positions) {
		return fmt.Errorf("color count %d does not match position count %d", len(m.Colors), len(m.Positions))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("index %d at %d is out of range for %d positions", idx, i, len(m.Positions))
		}
	}
	return nil
}

// Package mesh provides CPU-side triangle meshes.
package mesh

import (
	"errors"
	"fmt"
)

// FloatsPerVertex is the interleaved vertex size: position (3) + uv (2) + color (4).
const FloatsPerVertex = 9

// ErrMalformed is returned by Validate for inconsistent meshes.
var ErrMalformed = errors.New("malformed mesh")

// Mesh is an indexed triangle list.
type Mesh struct {
	Positions [][3]float32
	UVs       [][2]float32
	Colors    [][4]float32 // Linear RGBA; nil means white
	Indices   []uint32
}

// New allocates a mesh with room for the given number of quads.
func New(quads int) *Mesh {
	return &Mesh{
		Positions: make([][3]float32, 0, quads*4),
		UVs:       make([][2]float32, 0, quads*4),
		Colors:    make([][4]float32, 0, quads*4),
		Indices:   make([]uint32, 0, quads*6),
	}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Validate checks attribute lengths and index bounds.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if len(m.UVs) != n {
		return fmt.Errorf("%w: %d positions, %d uvs", ErrMalformed, n, len(m.UVs))
	}
	if m.Colors != nil && len(m.Colors) != n {
		return fmt.Errorf("%w: %d positions, %d colors", ErrMalformed, n, len(m.Colors))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a triangle list", ErrMalformed, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d at %d out of range", ErrMalformed, idx, i)
		}
	}
	return nil
}

// Interleave packs the vertex attributes for upload, FloatsPerVertex per vertex.
func (m *Mesh) Interleave() []float32 {
	out := make([]float32, 0, len(m.Positions)*FloatsPerVertex)
	for i, p := range m.Positions {
		c := [4]float32{1, 1, 1, 1}
		if m.Colors != nil {
			c = m.Colors[i]
		}
		uv := m.UVs[i]
		out = append(out, p[0], p[1], p[2], uv[0], uv[1], c[0], c[1], c[2], c[3])
	}
	return out
}

// Rectangle builds a width x height quad in the XY plane centred on the origin,
// facing +Z, with the full texture mapped upright.
func Rectangle(width, height float32) *Mesh {
	hw, hh := width/2, height/2
	return &Mesh{
		Positions: [][3]float32{
			{-hw, hh, 0},  // Top-left
			{-hw, -hh, 0}, // Bottom-left
			{hw, -hh, 0},  // Bottom-right
			{hw, hh, 0},   // Top-right
		},
		UVs: [][2]float32{
			{0, 0},
			{0, 1},
			{1, 1},
			{1, 0},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Package mesh holds triangle-mesh buffers and the small amount of derived
// geometry (bounds, bounds volume, index-width handling) the fragmentation
// pipeline needs. Meshes are plain buffer bundles; renderer and physics
// representations are built from them by external collaborators.
package mesh

import (
	"fmt"
	"math"

	"github.com/banshee-data/rubble/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinDimension is the floor applied to each bounding-box dimension when
// deriving a volume, so a flat sliver never yields a zero or degenerate mass.
const MinDimension = 0.001

// MinSolidVertices is the smallest vertex count that can enclose a volume.
// Meshes below it are discarded as too degenerate for a solid.
const MinSolidVertices = 4

// Mesh is an indexed triangle mesh. Normals and UVs are optional: either
// empty or exactly one entry per vertex. Indices are triples forming
// triangles with counter-clockwise front faces.
type Mesh struct {
	Positions []r3.Vec
	Normals   []r3.Vec
	UVs       []r2.Vec
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// HasNormals reports whether per-vertex normals are present.
func (m *Mesh) HasNormals() bool { return len(m.Normals) > 0 }

// HasUVs reports whether per-vertex texture coordinates are present.
func (m *Mesh) HasUVs() bool { return len(m.UVs) > 0 }

// Validate checks structural consistency: non-empty buffers, index triples in
// range, and optional attributes either absent or matching the vertex count.
func (m *Mesh) Validate() error {
	if m == nil {
		return fmt.Errorf("nil mesh")
	}
	if len(m.Positions) == 0 {
		return fmt.Errorf("mesh has no vertices")
	}
	if len(m.Indices) == 0 {
		return fmt.Errorf("mesh has no triangles")
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("index %d at position %d out of range (%d vertices)",
				idx, i, len(m.Positions))
		}
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("normal count %d does not match vertex count %d",
			len(m.Normals), len(m.Positions))
	}
	if len(m.UVs) != 0 && len(m.UVs) != len(m.Positions) {
		return fmt.Errorf("uv count %d does not match vertex count %d",
			len(m.UVs), len(m.Positions))
	}
	return nil
}

// Clone returns a deep copy sharing no buffers with the receiver.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return nil
	}
	c := &Mesh{
		Positions: append([]r3.Vec(nil), m.Positions...),
		Indices:   append([]uint32(nil), m.Indices...),
	}
	if m.HasNormals() {
		c.Normals = append([]r3.Vec(nil), m.Normals...)
	}
	if m.HasUVs() {
		c.UVs = append([]r2.Vec(nil), m.UVs...)
	}
	return c
}

// Bounds returns the axis-aligned bounding box of the vertex positions.
// An empty mesh yields a zero box.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	if m == nil || len(m.Positions) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		min.Z = math.Min(min.Z, p.Z)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		max.Z = math.Max(max.Z, p.Z)
	}
	return min, max
}

// BoundsVolume returns the volume of the bounding box after applying the
// given scale, with each dimension floored to MinDimension.
func (m *Mesh) BoundsVolume(scale r3.Vec) float64 {
	min, max := m.Bounds()
	dims := geom.MulElem(r3.Sub(max, min), scale)
	lx := math.Max(math.Abs(dims.X), MinDimension)
	ly := math.Max(math.Abs(dims.Y), MinDimension)
	lz := math.Max(math.Abs(dims.Z), MinDimension)
	return lx * ly * lz
}

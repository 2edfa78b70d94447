// Package slicer splits a triangle mesh in two with a cutting plane and owns
// the lifetime of the buffers that operation produces. Slice is a pure
// function; Result holds the output and intermediate buffers as a single
// allocation epoch (created together, destroyed together); ResultRef shares
// one Result between exactly two downstream consumers.
package slicer

import (
	"fmt"
	"sync/atomic"

	"github.com/banshee-data/rubble/internal/mesh"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Side identifies one half of a sliced mesh relative to the cutting plane.
type Side int

const (
	// SidePositive is the half on the side the plane normal points to
	// (signed distance ≥ −ε).
	SidePositive Side = iota
	// SideNegative is the other half.
	SideNegative
)

func (s Side) String() string {
	if s == SidePositive {
		return "positive"
	}
	return "negative"
}

// Opposite returns the sibling side.
func (s Side) Opposite() Side {
	if s == SidePositive {
		return SideNegative
	}
	return SidePositive
}

// liveResults counts valid Results whose buffers have not been disposed.
// Tests assert it returns to zero, which is the deterministic replacement for
// a finalizer-based leak check.
var liveResults atomic.Int64

// LiveResults returns the number of valid, not-yet-disposed Results.
func LiveResults() int64 { return liveResults.Load() }

// sideBuffers accumulates the output mesh of one side.
type sideBuffers struct {
	positions []r3.Vec
	normals   []r3.Vec
	uvs       []r2.Vec
	indices   []uint32
}

// Result holds everything one slice operation produced: the two side meshes,
// the per-vertex classification intermediates, and the collected cut polygon.
// All buffers live and die together; Dispose releases them exactly once.
type Result struct {
	valid bool

	sides [2]sideBuffers

	// Intermediates, retained so the whole operation is one allocation epoch.
	classes    []int8    // per input vertex: +1 positive, -1 negative
	distances  []float64 // per input vertex signed distance to the plane
	remap      [2][]int32
	cutPolygon []r3.Vec // welded intersection points, sorted around the cut

	capTriangles [2]int

	hasNormals bool
	hasUVs     bool

	disposed atomic.Bool
}

// Valid reports whether the slice ran to completion. An invalid Result holds
// no buffers.
func (r *Result) Valid() bool { return r != nil && r.valid }

// Disposed reports whether the buffers have been released.
func (r *Result) Disposed() bool { return r.disposed.Load() }

// VertexCount returns the number of vertices emitted on one side.
func (r *Result) VertexCount(s Side) int { return len(r.sides[s].positions) }

// TriangleCount returns the number of triangles emitted on one side,
// including cap triangles.
func (r *Result) TriangleCount(s Side) int { return len(r.sides[s].indices) / 3 }

// CapTriangleCount returns the number of cap triangles synthesised on one side.
func (r *Result) CapTriangleCount(s Side) int { return r.capTriangles[s] }

// CutPolygon returns the welded intersection polygon in the mesh's local
// space, ordered around the cut. The returned slice aliases the Result's
// buffers and must not be used after disposal.
func (r *Result) CutPolygon() []r3.Vec { return r.cutPolygon }

// BuildMesh copies one side's buffers into a standalone mesh. The copy is
// deliberate: the returned mesh stays usable after the shared Result has been
// released by both consumers.
func (r *Result) BuildMesh(s Side) (*mesh.Mesh, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("build %s side: invalid slice result", s)
	}
	if r.Disposed() {
		return nil, fmt.Errorf("build %s side: slice result already disposed", s)
	}
	b := &r.sides[s]
	if len(b.positions) == 0 || len(b.indices) == 0 {
		return nil, fmt.Errorf("build %s side: empty half", s)
	}
	m := &mesh.Mesh{
		Positions: append([]r3.Vec(nil), b.positions...),
		Indices:   append([]uint32(nil), b.indices...),
	}
	if r.hasNormals {
		m.Normals = append([]r3.Vec(nil), b.normals...)
	}
	if r.hasUVs {
		m.UVs = append([]r2.Vec(nil), b.uvs...)
	}
	return m, nil
}

// Dispose releases every buffer of the Result. It is idempotent: only the
// first call does anything, later calls (and calls on invalid Results) are
// no-ops.
func (r *Result) Dispose() {
	if r == nil || !r.valid {
		return
	}
	if !r.disposed.CompareAndSwap(false, true) {
		return
	}
	for s := range r.sides {
		r.sides[s] = sideBuffers{}
		r.remap[s] = nil
	}
	r.classes = nil
	r.distances = nil
	r.cutPolygon = nil
	liveResults.Add(-1)
}

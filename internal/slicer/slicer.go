package slicer

import (
	"fmt"
	"math"
	"sort"

	"github.com/banshee-data/rubble/internal/geom"
	"github.com/banshee-data/rubble/internal/mesh"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon widens the positive classification bucket (distance ≥ −ε) and
// bounds degenerate-edge detection.
const Epsilon = geom.Epsilon

// Slice partitions m with a plane given in the mesh's local space and returns
// the two half-meshes plus the intersection polygon. Every triangle falls
// into exactly one of three cases: copied verbatim to one side, or split into
// one lone-side and two majority-side triangles with attributes interpolated
// at the plane crossings. If the plane passes through solid material, each
// half is closed with a centroid-fan cap.
//
// Known limitation: the cap fan assumes a roughly convex single-loop
// intersection polygon. Self-intersecting or multi-loop cuts on non-convex
// input can produce bowtie cap geometry.
//
// An empty or structurally broken input yields an invalid Result holding no
// buffers, along with the error.
func Slice(m *mesh.Mesh, pl geom.Plane) (*Result, error) {
	if err := m.Validate(); err != nil {
		return &Result{}, fmt.Errorf("slice input: %w", err)
	}

	sp := &splitter{m: m, pl: pl}
	sp.res = &Result{
		valid:      true,
		hasNormals: m.HasNormals(),
		hasUVs:     m.HasUVs(),
	}
	sp.classify()
	sp.splitAll()
	sp.buildCaps()
	liveResults.Add(1)
	return sp.res, nil
}

// interpVertex is a vertex synthesised at a plane crossing.
type interpVertex struct {
	pos    r3.Vec
	normal r3.Vec
	uv     r2.Vec
}

type splitter struct {
	m   *mesh.Mesh
	pl  geom.Plane
	res *Result
}

// classify computes per-vertex signed distances and side classes and resets
// the per-side index remap tables.
func (sp *splitter) classify() {
	n := sp.m.VertexCount()
	sp.res.distances = make([]float64, n)
	sp.res.classes = make([]int8, n)
	for i, p := range sp.m.Positions {
		d := sp.pl.SignedDistance(p)
		sp.res.distances[i] = d
		if d >= -Epsilon {
			sp.res.classes[i] = 1
		} else {
			sp.res.classes[i] = -1
		}
	}
	for s := range sp.res.remap {
		sp.res.remap[s] = make([]int32, n)
		for i := range sp.res.remap[s] {
			sp.res.remap[s][i] = -1
		}
	}
}

func sideOf(class int8) Side {
	if class > 0 {
		return SidePositive
	}
	return SideNegative
}

func (sp *splitter) splitAll() {
	idx := sp.m.Indices
	for t := 0; t < len(idx); t += 3 {
		i0, i1, i2 := idx[t], idx[t+1], idx[t+2]
		c0 := sp.res.classes[i0]
		c1 := sp.res.classes[i1]
		c2 := sp.res.classes[i2]

		if c0 == c1 && c1 == c2 {
			sp.copyTriangle(sideOf(c0), i0, i1, i2)
			continue
		}

		// Mixed: rotate so the lone vertex comes first, preserving the
		// original cyclic winding.
		switch {
		case c0 != c1 && c0 != c2:
			sp.splitTriangle(i0, i1, i2)
		case c1 != c0 && c1 != c2:
			sp.splitTriangle(i1, i2, i0)
		default:
			sp.splitTriangle(i2, i0, i1)
		}
	}
}

// emitOriginal re-emits an input vertex on one side, deduplicated through the
// side's remap table, and returns its index in that side's buffers.
func (sp *splitter) emitOriginal(s Side, orig uint32) uint32 {
	if mapped := sp.res.remap[s][orig]; mapped >= 0 {
		return uint32(mapped)
	}
	b := &sp.res.sides[s]
	out := uint32(len(b.positions))
	b.positions = append(b.positions, sp.m.Positions[orig])
	if sp.res.hasNormals {
		b.normals = append(b.normals, sp.m.Normals[orig])
	}
	if sp.res.hasUVs {
		b.uvs = append(b.uvs, sp.m.UVs[orig])
	}
	sp.res.remap[s][orig] = int32(out)
	return out
}

// emitInterp appends a plane-crossing vertex to one side. Interpolated
// vertices are never deduplicated; each split triangle owns its copies.
func (sp *splitter) emitInterp(s Side, v interpVertex) uint32 {
	b := &sp.res.sides[s]
	out := uint32(len(b.positions))
	b.positions = append(b.positions, v.pos)
	if sp.res.hasNormals {
		b.normals = append(b.normals, v.normal)
	}
	if sp.res.hasUVs {
		b.uvs = append(b.uvs, v.uv)
	}
	return out
}

func (sp *splitter) emitTriangle(s Side, a, b, c uint32) {
	buf := &sp.res.sides[s]
	buf.indices = append(buf.indices, a, b, c)
}

func (sp *splitter) copyTriangle(s Side, i0, i1, i2 uint32) {
	sp.emitTriangle(s, sp.emitOriginal(s, i0), sp.emitOriginal(s, i1), sp.emitOriginal(s, i2))
}

// splitTriangle handles a mixed triangle (lone, p, q) where lone sits alone
// on its side and the cyclic order matches the input winding. It emits one
// triangle on the lone side and two on the majority side, and records both
// crossings into the shared cut polygon.
func (sp *splitter) splitTriangle(lone, p, q uint32) {
	loneSide := sideOf(sp.res.classes[lone])
	majSide := loneSide.Opposite()

	vp := sp.intersect(lone, p)
	vq := sp.intersect(lone, q)

	// Lone side keeps the lone vertex first; the majority triangles follow
	// the original edge traversal direction around the quad (vp, p, q, vq).
	li := sp.emitOriginal(loneSide, lone)
	sp.emitTriangle(loneSide, li, sp.emitInterp(loneSide, vp), sp.emitInterp(loneSide, vq))

	mp := sp.emitInterp(majSide, vp)
	mq := sp.emitInterp(majSide, vq)
	pi := sp.emitOriginal(majSide, p)
	qi := sp.emitOriginal(majSide, q)
	sp.emitTriangle(majSide, mp, pi, qi)
	sp.emitTriangle(majSide, mp, qi, mq)

	// Record crossings in a consistent positive→negative edge direction.
	if loneSide == SidePositive {
		sp.addCutPoint(vp.pos)
		sp.addCutPoint(vq.pos)
	} else {
		sp.addCutPoint(vq.pos)
		sp.addCutPoint(vp.pos)
	}
}

// intersect computes the crossing of edge (l → o) with the plane,
// interpolating position, UV and normal by the clipped parametric distance.
// A degenerate edge, or one nearly parallel to the plane, returns the nearer
// endpoint instead of dividing by a near-zero denominator.
func (sp *splitter) intersect(l, o uint32) interpVertex {
	dl := sp.res.distances[l]
	do := sp.res.distances[o]
	pa := sp.m.Positions[l]
	pb := sp.m.Positions[o]

	var t float64
	denom := dl - do
	if r3.Norm(r3.Sub(pb, pa)) < Epsilon || math.Abs(denom) < Epsilon {
		if math.Abs(dl) <= math.Abs(do) {
			t = 0
		} else {
			t = 1
		}
	} else {
		t = math.Min(1, math.Max(0, dl/denom))
	}

	v := interpVertex{pos: geom.Lerp(pa, pb, t)}
	if sp.res.hasNormals {
		n := geom.Lerp(sp.m.Normals[l], sp.m.Normals[o], t)
		if mag := r3.Norm(n); mag > Epsilon {
			v.normal = r3.Scale(1/mag, n)
		} else {
			// Opposed endpoint normals cancel out; fall back to the edge start.
			v.normal = sp.m.Normals[l]
		}
	}
	if sp.res.hasUVs {
		ua := sp.m.UVs[l]
		ub := sp.m.UVs[o]
		v.uv = r2.Add(ua, r2.Scale(t, r2.Sub(ub, ua)))
	}
	return v
}

// addCutPoint collects a crossing into the shared cut polygon, welding points
// that coincide within Epsilon so shared edges contribute one polygon vertex.
func (sp *splitter) addCutPoint(p r3.Vec) {
	for _, q := range sp.res.cutPolygon {
		if r3.Norm(r3.Sub(p, q)) < Epsilon {
			return
		}
	}
	sp.res.cutPolygon = append(sp.res.cutPolygon, p)
}

// buildCaps closes both halves across the cut with a centroid fan: polygon
// points are ordered around their centroid in the plane's tangent basis
// (which also assigns the cap UVs), then fanned into count−2 triangles per
// side. Cap normals are ±plane normal with opposite winding on the two sides
// so both caps face outward from their half.
func (sp *splitter) buildCaps() {
	poly := sp.res.cutPolygon
	if len(poly) < 3 {
		return
	}

	centroid := r3.Vec{}
	for _, p := range poly {
		centroid = r3.Add(centroid, p)
	}
	centroid = r3.Scale(1/float64(len(poly)), centroid)

	u, v := sp.pl.Tangents()
	sort.Slice(poly, func(i, j int) bool {
		return capAngle(poly[i], centroid, u, v) < capAngle(poly[j], centroid, u, v)
	})

	n := len(poly)
	for _, s := range []Side{SidePositive, SideNegative} {
		normal := sp.pl.Normal
		if s == SidePositive {
			// The positive half lies along +normal; its cap faces back
			// toward the plane.
			normal = r3.Scale(-1, normal)
		}

		b := &sp.res.sides[s]
		base := uint32(len(b.positions))
		for _, p := range poly {
			b.positions = append(b.positions, p)
			if sp.res.hasNormals {
				b.normals = append(b.normals, normal)
			}
			if sp.res.hasUVs {
				rel := r3.Sub(p, centroid)
				b.uvs = append(b.uvs, r2.Vec{
					X: 0.5 + r3.Dot(rel, u),
					Y: 0.5 + r3.Dot(rel, v),
				})
			}
		}
		for i := 1; i < n-1; i++ {
			if s == SideNegative {
				// Sorted counter-clockwise around +normal.
				sp.emitTriangle(s, base, base+uint32(i), base+uint32(i+1))
			} else {
				sp.emitTriangle(s, base, base+uint32(i+1), base+uint32(i))
			}
		}
		sp.res.capTriangles[s] = n - 2
	}
}

func capAngle(p, centroid, u, v r3.Vec) float64 {
	rel := r3.Sub(p, centroid)
	return math.Atan2(r3.Dot(rel, v), r3.Dot(rel, u))
}

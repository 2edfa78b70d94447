package mesh

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestUnitCube(t *testing.T) {
	m := NewUnitCube()
	if m.VertexCount() != 8 {
		t.Errorf("vertex count = %d, want 8", m.VertexCount())
	}
	if m.TriangleCount() != 12 {
		t.Errorf("triangle count = %d, want 12", m.TriangleCount())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	min, max := m.Bounds()
	want := 0.5
	for _, v := range []float64{-min.X, -min.Y, -min.Z, max.X, max.Y, max.Z} {
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("bounds = %v..%v, want ±0.5", min, max)
		}
	}
}

// TestUnitCubeWinding checks that every face normal points away from the
// centre, i.e. the index winding is counter-clockwise seen from outside.
func TestUnitCubeWinding(t *testing.T) {
	m := NewUnitCube()
	for i := 0; i < len(m.Indices); i += 3 {
		a := m.Positions[m.Indices[i]]
		b := m.Positions[m.Indices[i+1]]
		c := m.Positions[m.Indices[i+2]]
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		centroid := r3.Scale(1.0/3.0, r3.Add(a, r3.Add(b, c)))
		if r3.Dot(n, centroid) <= 0 {
			t.Errorf("triangle %d winds inward (normal %v at %v)", i/3, n, centroid)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mesh    *Mesh
		wantErr bool
	}{
		{"nil mesh", nil, true},
		{"empty", &Mesh{}, true},
		{"no indices", &Mesh{Positions: []r3.Vec{{}, {}, {}}}, true},
		{"ragged indices", &Mesh{
			Positions: []r3.Vec{{}, {}, {}},
			Indices:   []uint32{0, 1},
		}, true},
		{"index out of range", &Mesh{
			Positions: []r3.Vec{{}, {}, {}},
			Indices:   []uint32{0, 1, 3},
		}, true},
		{"normal count mismatch", &Mesh{
			Positions: []r3.Vec{{}, {}, {}},
			Indices:   []uint32{0, 1, 2},
			Normals:   []r3.Vec{{}},
		}, true},
		{"uv count mismatch", &Mesh{
			Positions: []r3.Vec{{}, {}, {}},
			Indices:   []uint32{0, 1, 2},
			UVs:       []r2.Vec{{}},
		}, true},
		{"valid minimal", &Mesh{
			Positions: []r3.Vec{{}, {X: 1}, {Y: 1}},
			Indices:   []uint32{0, 1, 2},
		}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.mesh.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}

func TestBoundsVolumeFloorsDimensions(t *testing.T) {
	// A flat quad has zero thickness; the volume must floor that dimension
	// to MinDimension instead of collapsing to zero.
	flat := &Mesh{
		Positions: []r3.Vec{{}, {X: 2}, {X: 2, Z: 3}, {Z: 3}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
	got := flat.BoundsVolume(r3.Vec{X: 1, Y: 1, Z: 1})
	want := 2.0 * MinDimension * 3.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("BoundsVolume = %v, want %v", got, want)
	}
}

func TestBoundsVolumeAppliesScale(t *testing.T) {
	m := NewUnitCube()
	got := m.BoundsVolume(r3.Vec{X: 2, Y: 3, Z: 4})
	if math.Abs(got-24) > 1e-9 {
		t.Errorf("BoundsVolume with scale = %v, want 24", got)
	}
}

func TestIndices16(t *testing.T) {
	m := NewUnitCube()
	idx, err := m.Indices16()
	if err != nil {
		t.Fatalf("Indices16: %v", err)
	}
	if len(idx) != len(m.Indices) {
		t.Fatalf("length %d, want %d", len(idx), len(m.Indices))
	}
	for i := range idx {
		if uint32(idx[i]) != m.Indices[i] {
			t.Fatalf("index %d: %d != %d", i, idx[i], m.Indices[i])
		}
	}
}

// TestIndices16Overflow pins the 16-bit/32-bit switch at the 65535-vertex
// boundary: conversion must fail loudly, never truncate.
func TestIndices16Overflow(t *testing.T) {
	m := &Mesh{Indices: []uint32{0, 1, 1 << 16}}
	if _, err := m.Indices16(); err == nil {
		t.Fatal("expected error for index beyond uint16 range")
	}

	big := &Mesh{Positions: make([]r3.Vec, maxUint16Vertices+1)}
	if f := big.PreferredIndexFormat(); f != IndexFormatUint32 {
		t.Errorf("PreferredIndexFormat for %d vertices = %v, want uint32",
			big.VertexCount(), f)
	}
	small := &Mesh{Positions: make([]r3.Vec, 8)}
	if f := small.PreferredIndexFormat(); f != IndexFormatUint16 {
		t.Errorf("PreferredIndexFormat for 8 vertices = %v, want uint16", f)
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := NewUnitCube()
	m.UVs = make([]r2.Vec, m.VertexCount())
	c := m.Clone()
	c.Positions[0] = r3.Vec{X: 99}
	c.Indices[0] = 7
	c.UVs[0] = r2.Vec{X: 1}
	if m.Positions[0].X == 99 || m.Indices[0] == 7 || m.UVs[0].X == 1 {
		t.Error("Clone shares buffers with original")
	}
}

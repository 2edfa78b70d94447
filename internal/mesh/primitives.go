package mesh

import "gonum.org/v1/gonum/spatial/r3"

// NewBox returns an axis-aligned box centred at the origin with the given
// edge lengths: 8 shared vertices, 12 triangles, counter-clockwise front
// faces viewed from outside. No normals or UVs are attached; shared corner
// vertices cannot carry per-face attributes.
func NewBox(size r3.Vec) *Mesh {
	hx, hy, hz := size.X/2, size.Y/2, size.Z/2
	positions := []r3.Vec{
		{X: -hx, Y: -hy, Z: -hz}, // 0
		{X: +hx, Y: -hy, Z: -hz}, // 1
		{X: +hx, Y: +hy, Z: -hz}, // 2
		{X: -hx, Y: +hy, Z: -hz}, // 3
		{X: -hx, Y: -hy, Z: +hz}, // 4
		{X: +hx, Y: -hy, Z: +hz}, // 5
		{X: +hx, Y: +hy, Z: +hz}, // 6
		{X: -hx, Y: +hy, Z: +hz}, // 7
	}
	indices := []uint32{
		// -Z face (back), outward normal -Z
		0, 2, 1, 0, 3, 2,
		// +Z face (front), outward normal +Z
		4, 5, 6, 4, 6, 7,
		// -Y face (bottom)
		0, 1, 5, 0, 5, 4,
		// +Y face (top)
		3, 6, 2, 3, 7, 6,
		// -X face (left)
		0, 4, 7, 0, 7, 3,
		// +X face (right)
		1, 2, 6, 1, 6, 5,
	}
	return &Mesh{Positions: positions, Indices: indices}
}

// NewUnitCube returns an axis-aligned cube with edge length 1 centred at the
// origin.
func NewUnitCube() *Mesh {
	return NewBox(r3.Vec{X: 1, Y: 1, Z: 1})
}

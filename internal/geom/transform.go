package geom

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is a TRS (translate-rotate-scale) transform mapping local
// coordinates to world coordinates: world = T + R*(S*local).
type Transform struct {
	Position r3.Vec
	Rotation r3.Rotation
	Scale    r3.Vec
}

// IdentityTransform returns a transform that maps local to world unchanged.
func IdentityTransform() Transform {
	return Transform{
		Rotation: r3.Rotation(quat.Number{Real: 1}),
		Scale:    r3.Vec{X: 1, Y: 1, Z: 1},
	}
}

// inverse returns the rotation applying the opposite spin. Rotations are unit
// quaternions, so the conjugate is the inverse.
func inverse(r r3.Rotation) r3.Rotation {
	return r3.Rotation(quat.Conj(quat.Number(r)))
}

// ApplyPoint maps a local-space point to world space.
func (t Transform) ApplyPoint(p r3.Vec) r3.Vec {
	return r3.Add(t.Position, t.Rotation.Rotate(MulElem(t.Scale, p)))
}

// ApplyDirection maps a local-space direction to world space (scaled and
// rotated, no translation). The result is not normalised.
func (t Transform) ApplyDirection(d r3.Vec) r3.Vec {
	return t.Rotation.Rotate(MulElem(t.Scale, d))
}

// InvPoint maps a world-space point to local space.
func (t Transform) InvPoint(p r3.Vec) r3.Vec {
	return DivElem(inverse(t.Rotation).Rotate(r3.Sub(p, t.Position)), t.Scale)
}

// PlaneToLocal transforms a world-space plane into this transform's local
// space. Points transform by the inverse TRS; the normal transforms by the
// inverse-transpose of the linear part so it stays perpendicular under
// non-uniform scale, and is renormalised afterwards. Classification error
// grows with any residual transform skew, so slicing always happens in local
// space through this function.
func (t Transform) PlaneToLocal(world Plane) Plane {
	// Linear part local→world is R*S, so world→local normals go through its
	// transpose: n_local ∝ S * R⁻¹ * n_world.
	localNormal := MulElem(t.Scale, inverse(t.Rotation).Rotate(world.Normal))
	localPoint := t.InvPoint(world.PointOn())
	return NewPlane(localNormal, localPoint)
}

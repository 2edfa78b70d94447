package geom

import "gonum.org/v1/gonum/spatial/r3"

// Plane is an infinite plane in the form n·x + d = 0 with n a unit vector.
// The signed distance of a point is positive on the side the normal points to.
type Plane struct {
	Normal   r3.Vec
	Distance float64
}

// NewPlane builds a plane from a (not necessarily unit) normal and a point
// the plane passes through.
func NewPlane(normal, point r3.Vec) Plane {
	n := r3.Unit(normal)
	return Plane{Normal: n, Distance: -r3.Dot(n, point)}
}

// SignedDistance returns the signed distance from p to the plane.
func (pl Plane) SignedDistance(p r3.Vec) float64 {
	return r3.Dot(pl.Normal, p) + pl.Distance
}

// PointOn returns an arbitrary point lying on the plane.
func (pl Plane) PointOn() r3.Vec {
	return r3.Scale(-pl.Distance, pl.Normal)
}

// Tangents returns two unit vectors spanning the plane. The first tangent is
// derived from whichever cardinal axis is least aligned with the normal, so
// the basis is stable for axis-dominated normals; the second completes a
// right-handed frame (u × v points along the normal).
func (pl Plane) Tangents() (u, v r3.Vec) {
	// Pick the cardinal axis following the dominant component of the normal;
	// crossing against it can never be degenerate.
	var ref r3.Vec
	switch DominantAxis(pl.Normal) {
	case 0:
		ref = AxisY
	case 1:
		ref = AxisZ
	default:
		ref = AxisX
	}
	u = r3.Unit(r3.Cross(ref, pl.Normal))
	v = r3.Cross(pl.Normal, u)
	return u, v
}

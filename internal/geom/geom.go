// Package geom provides the small amount of linear algebra the fragmentation
// pipeline needs: planes with signed distances, TRS transforms with correct
// normal handling under non-uniform scale, axis-aligned bounds, and the
// random-direction helpers used by the cutting-plane policy.
//
// Coordinate convention: X=right, Y=up, Z=forward. Vectors are
// gonum.org/v1/gonum/spatial/r3 values throughout.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the tolerance used for side classification and degenerate-edge
// detection throughout the slicing code.
const Epsilon = 1e-5

// Cardinal world axes.
var (
	AxisX = r3.Vec{X: 1}
	AxisY = r3.Vec{Y: 1}
	AxisZ = r3.Vec{Z: 1}

	// Up and Right are the fallback reference directions used when deriving
	// perpendicular vectors from near-degenerate input.
	Up    = AxisY
	Right = AxisX
)

// MulElem multiplies two vectors component-wise.
func MulElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z}
}

// DivElem divides a by b component-wise. Components of b smaller than
// Epsilon in magnitude divide as if they were Epsilon, keeping the result
// finite for degenerate scales.
func DivElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{
		X: a.X / clampMagnitude(b.X),
		Y: a.Y / clampMagnitude(b.Y),
		Z: a.Z / clampMagnitude(b.Z),
	}
}

func clampMagnitude(v float64) float64 {
	if math.Abs(v) < Epsilon {
		if v < 0 {
			return -Epsilon
		}
		return Epsilon
	}
	return v
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// DominantAxis returns the index (0=X, 1=Y, 2=Z) of the component of v with
// the largest magnitude.
func DominantAxis(v r3.Vec) int {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	switch {
	case ax >= ay && ax >= az:
		return 0
	case ay >= az:
		return 1
	default:
		return 2
	}
}

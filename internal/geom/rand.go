package geom

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// RandUnitVec returns a direction drawn uniformly from the unit sphere
// surface using the given source.
func RandUnitVec(rng *rand.Rand) r3.Vec {
	// Marsaglia rejection sampling from the unit ball, normalised.
	for {
		v := r3.Vec{
			X: 2*rng.Float64() - 1,
			Y: 2*rng.Float64() - 1,
			Z: 2*rng.Float64() - 1,
		}
		n := r3.Norm(v)
		if n > Epsilon && n <= 1 {
			return r3.Scale(1/n, v)
		}
	}
}

// RandInSphere returns a point drawn uniformly from the interior of a sphere
// of the given radius centred at the origin.
func RandInSphere(rng *rand.Rand, radius float64) r3.Vec {
	// Uniform over volume: scale a unit direction by radius * cbrt(u).
	return r3.Scale(radius*math.Cbrt(rng.Float64()), RandUnitVec(rng))
}

// Perpendicular derives a unit vector perpendicular to v. A random unit
// vector seeds the cross product; if the seed is nearly parallel to v the
// world-up and world-right axes are tried in turn, and if everything is
// degenerate (v near zero) a uniformly random direction is returned.
func Perpendicular(rng *rand.Rand, v r3.Vec) r3.Vec {
	for _, ref := range []r3.Vec{RandUnitVec(rng), Up, Right} {
		c := r3.Cross(v, ref)
		if r3.Norm(c) > Epsilon {
			return r3.Unit(c)
		}
	}
	return RandUnitVec(rng)
}

package main

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/rubble/internal/fracture"
	"github.com/banshee-data/rubble/internal/geom"
	"github.com/banshee-data/rubble/internal/mesh"
)

// simBody is the headless stand-in for a physics-engine rigid body. It only
// integrates the explosion impulse into a velocity; no collision or gravity.
type simBody struct {
	transform geom.Transform
	mesh      *mesh.Mesh
	mass      float64
	velocity  r3.Vec
	active    bool
}

func (b *simBody) SetTransform(t geom.Transform)  { b.transform = t }
func (b *simBody) SetMesh(m *mesh.Mesh)           { b.mesh = m }
func (b *simBody) SetConvexCollider(m *mesh.Mesh) {}
func (b *simBody) SetMass(kg float64)             { b.mass = kg }
func (b *simBody) SetLinearVelocity(v r3.Vec)     { b.velocity = v }
func (b *simBody) SetActive(a bool)               { b.active = a }
func (b *simBody) Active() bool                   { return b.active }

// ApplyExplosionForce pushes the body away from the origin with linear
// falloff over the radius, the way game physics engines model explosions.
func (b *simBody) ApplyExplosionForce(force float64, origin r3.Vec, radius float64) {
	if b.mass <= 0 || radius <= 0 {
		return
	}
	dir := r3.Sub(b.transform.Position, origin)
	dist := r3.Norm(dir)
	if dist >= radius {
		return
	}
	if dist < 1e-9 {
		dir = r3.Vec{Y: 1}
		dist = 0
	} else {
		dir = r3.Scale(1/dist, dir)
	}
	falloff := 1 - dist/radius
	impulse := force * falloff / math.Max(b.mass, 1e-9)
	b.velocity = r3.Add(b.velocity, r3.Scale(impulse, dir))
}

var _ fracture.Body = (*simBody)(nil)

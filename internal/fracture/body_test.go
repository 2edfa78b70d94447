package fracture

import (
	"testing"

	"github.com/banshee-data/rubble/internal/geom"
	"github.com/banshee-data/rubble/internal/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// mockBody records every call the pipeline makes on it.
type mockBody struct {
	transform geom.Transform
	mesh      *mesh.Mesh
	collider  *mesh.Mesh
	mass      float64
	velocity  r3.Vec
	active    bool
	impulses  int
	destroyed bool
}

func (b *mockBody) SetTransform(t geom.Transform)  { b.transform = t }
func (b *mockBody) SetMesh(m *mesh.Mesh)           { b.mesh = m }
func (b *mockBody) SetConvexCollider(m *mesh.Mesh) { b.collider = m }
func (b *mockBody) SetMass(kg float64)             { b.mass = kg }
func (b *mockBody) SetLinearVelocity(v r3.Vec)     { b.velocity = v }
func (b *mockBody) SetActive(a bool)               { b.active = a }
func (b *mockBody) Active() bool                   { return b.active }

func (b *mockBody) ApplyExplosionForce(force float64, origin r3.Vec, radius float64) {
	b.impulses++
}

func newTestPool(t *testing.T, capacity int) *SimplePool {
	t.Helper()
	p, err := NewSimplePool(capacity, PoolCallbacks{
		New:       func() Body { return &mockBody{} },
		OnRelease: func(b Body) { b.SetActive(false) },
		OnDestroy: func(b Body) { b.(*mockBody).destroyed = true },
	})
	if err != nil {
		t.Fatalf("NewSimplePool: %v", err)
	}
	return p
}

func TestSimplePoolReusesReleasedBodies(t *testing.T) {
	p := newTestPool(t, 4)

	a := p.Acquire()
	p.Release(a)
	if p.Idle() != 1 {
		t.Fatalf("Idle = %d, want 1", p.Idle())
	}

	b := p.Acquire()
	if a != b {
		t.Error("expected the released body to be reused")
	}
	if p.Created() != 1 {
		t.Errorf("Created = %d, want 1", p.Created())
	}
	if b.Active() {
		t.Error("reused body should be inactive after OnRelease")
	}
}

func TestSimplePoolDestroysPastCapacity(t *testing.T) {
	p := newTestPool(t, 1)

	a := p.Acquire()
	b := p.Acquire()
	p.Release(a)
	p.Release(b)

	if p.Idle() != 1 {
		t.Fatalf("Idle = %d, want 1", p.Idle())
	}
	if a.(*mockBody).destroyed {
		t.Error("first release fit in capacity, should not be destroyed")
	}
	if !b.(*mockBody).destroyed {
		t.Error("second release exceeded capacity, should be destroyed")
	}
}

func TestSimplePoolRequiresNew(t *testing.T) {
	if _, err := NewSimplePool(4, PoolCallbacks{}); err == nil {
		t.Fatal("expected error for missing New callback")
	}
	if _, err := NewSimplePool(-1, PoolCallbacks{New: func() Body { return &mockBody{} }}); err == nil {
		t.Fatal("expected error for negative capacity")
	}
}

package fracture

import (
	"fmt"
	"sync"

	"github.com/banshee-data/rubble/internal/geom"
	"github.com/banshee-data/rubble/internal/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Body is one physical fragment instance owned by the host engine. The
// activator hands bodies back fully configured: transform, mesh, collider,
// mass and velocity are all set before a body is activated, so the host
// performs no further per-fragment setup. Material and other render state
// belong to the host and are assigned once in the pool's New callback, where
// the concrete body type is known.
type Body interface {
	SetTransform(geom.Transform)
	SetMesh(*mesh.Mesh)
	// SetConvexCollider assigns the collision hull geometry. Hosts typically
	// build a convex hull from it; the pipeline passes the fragment mesh.
	SetConvexCollider(*mesh.Mesh)
	SetMass(kg float64)
	SetLinearVelocity(r3.Vec)
	// ApplyExplosionForce applies an explosion-style impulse. Hosts require
	// this inside a physics step; the pipeline only calls it from
	// ForceQueue.PhysicsStep.
	ApplyExplosionForce(force float64, origin r3.Vec, radius float64)
	SetActive(bool)
	Active() bool
}

// Pool is the object-lifecycle collaborator fragments are acquired from and
// returned to. Capacity and eviction are the pool's business, not the
// pipeline's.
type Pool interface {
	Acquire() Body
	Release(Body)
}

// PoolCallbacks configure a SimplePool's lifecycle hooks.
type PoolCallbacks struct {
	// New creates a fresh instance when the free list is empty. Required.
	New func() Body
	// OnAcquire resets transient physics state before reuse.
	OnAcquire func(Body)
	// OnRelease deactivates an instance returning to the free list.
	OnRelease func(Body)
	// OnDestroy disposes an instance the free list has no room for.
	OnDestroy func(Body)
}

// SimplePool is a bounded free-list Pool. Instances released past capacity
// are destroyed instead of retained.
type SimplePool struct {
	cb       PoolCallbacks
	capacity int

	mu      sync.Mutex
	free    []Body
	created int
}

// NewSimplePool builds a pool retaining at most capacity idle instances.
func NewSimplePool(capacity int, cb PoolCallbacks) (*SimplePool, error) {
	if cb.New == nil {
		return nil, fmt.Errorf("pool requires a New callback")
	}
	if capacity < 0 {
		return nil, fmt.Errorf("pool capacity %d is negative", capacity)
	}
	return &SimplePool{cb: cb, capacity: capacity}, nil
}

// Acquire returns an idle instance, creating one if none is free.
func (p *SimplePool) Acquire() Body {
	p.mu.Lock()
	var b Body
	if n := len(p.free); n > 0 {
		b = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		b = p.cb.New()
		p.created++
	}
	p.mu.Unlock()

	if p.cb.OnAcquire != nil {
		p.cb.OnAcquire(b)
	}
	return b
}

// Release returns an instance to the free list, destroying it if the list is
// already at capacity.
func (p *SimplePool) Release(b Body) {
	if b == nil {
		return
	}
	if p.cb.OnRelease != nil {
		p.cb.OnRelease(b)
	}

	p.mu.Lock()
	room := len(p.free) < p.capacity
	if room {
		p.free = append(p.free, b)
	}
	p.mu.Unlock()

	if !room && p.cb.OnDestroy != nil {
		p.cb.OnDestroy(b)
	}
}

// Idle returns the current free-list size.
func (p *SimplePool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Created returns how many instances the pool has ever constructed.
func (p *SimplePool) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

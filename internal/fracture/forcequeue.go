package fracture

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// DeferredForce is one explosion impulse waiting for the next physics step.
type DeferredForce struct {
	Fragment *Fragment
	Force    float64
	Origin   r3.Vec
	Radius   float64
}

// ForceQueue accumulates explosion impulses during a tick and applies them on
// the physics-step boundary. Physics engines require forces inside a physics
// step, not at an arbitrary point mid-tick, so activation only defers here.
type ForceQueue struct {
	mu      sync.Mutex
	pending []DeferredForce
}

// NewForceQueue returns an empty queue.
func NewForceQueue() *ForceQueue {
	return &ForceQueue{}
}

// Defer queues one impulse for the fragment.
func (q *ForceQueue) Defer(f *Fragment, force float64, origin r3.Vec, radius float64) {
	if f == nil || f.Body == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, DeferredForce{Fragment: f, Force: force, Origin: origin, Radius: radius})
	q.mu.Unlock()
}

// Cancel drops any queued impulses for the fragment. Called when a fragment
// is retired before the physics step that would have applied them.
func (q *ForceQueue) Cancel(f *Fragment) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.pending[:0]
	for _, d := range q.pending {
		if d.Fragment != f {
			kept = append(kept, d)
		}
	}
	q.pending = kept
}

// Pending returns the number of queued impulses.
func (q *ForceQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// PhysicsStep applies every queued impulse to fragments still alive and
// active, then clears the queue. It returns the number of impulses applied.
func (q *ForceQueue) PhysicsStep() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	applied := 0
	for _, d := range batch {
		if !d.Fragment.Body.Active() {
			continue
		}
		d.Fragment.Body.ApplyExplosionForce(d.Force, d.Origin, d.Radius)
		applied++
	}
	return applied
}

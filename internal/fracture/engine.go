package fracture

import (
	"fmt"
	"time"

	"github.com/banshee-data/rubble/internal/geom"
	"github.com/banshee-data/rubble/internal/mesh"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// EngineConfig bundles the per-subsystem configuration of one fragmentation
// engine. Dependencies are injected here once; nothing is looked up through
// globals afterwards.
type EngineConfig struct {
	Scheduler SchedulerConfig
	Activator ActivatorConfig
	// Recorder optionally persists slice and fragment events; nil disables
	// recording.
	Recorder Recorder
}

// Engine drives the whole pipeline: one Tick call per frame runs the
// scheduler and activator under their caps, one PhysicsStep call per physics
// tick flushes the deferred forces.
type Engine struct {
	scheduler *Scheduler
	activator *Activator
	forces    *ForceQueue
	stats     *Stats
}

// NewEngine wires scheduler, activator and force queue together.
func NewEngine(cfg EngineConfig) *Engine {
	stats := &Stats{}
	if cfg.Activator.Forces == nil {
		cfg.Activator.Forces = NewForceQueue()
	}
	activator := NewActivator(cfg.Activator, stats, cfg.Recorder)
	scheduler := NewScheduler(cfg.Scheduler, activator, stats, cfg.Recorder)
	activator.SetScheduler(scheduler)
	return &Engine{
		scheduler: scheduler,
		activator: activator,
		forces:    cfg.Activator.Forces,
		stats:     stats,
	}
}

// Scheduler exposes the slice scheduler.
func (e *Engine) Scheduler() *Scheduler { return e.scheduler }

// Activator exposes the fragment activator.
func (e *Engine) Activator() *Activator { return e.activator }

// Forces exposes the deferred force queue.
func (e *Engine) Forces() *ForceQueue { return e.forces }

// Stats returns a copy of the engine counters.
func (e *Engine) Stats() Stats { return *e.stats }

// Tick runs one scheduling pass: launch and drain slices, then drain
// activations and expire pooled fragments.
func (e *Engine) Tick(now time.Time) {
	e.scheduler.Tick()
	e.activator.Tick(now)
}

// PhysicsStep applies the deferred explosion impulses accumulated since the
// last step and returns how many were applied.
func (e *Engine) PhysicsStep() int {
	return e.forces.PhysicsStep()
}

// Idle reports whether no work remains anywhere in the pipeline.
func (e *Engine) Idle() bool {
	return e.scheduler.QueueLen() == 0 &&
		e.scheduler.InFlight() == 0 &&
		e.activator.QueueLen() == 0 &&
		e.forces.Pending() == 0
}

// Destructible is an intact entity that can be fractured. Fracture is the
// sole entry point creating a depth-0 slice task.
type Destructible struct {
	Mesh      *mesh.Mesh
	Transform geom.Transform
	Velocity  r3.Vec

	// Density converts fragment bounds volume to mass.
	Density float64
	// FragmentLifetime is the pooled fragments' time before auto-return.
	FragmentLifetime time.Duration
	// MaxDepth bounds the fragmentation tree.
	MaxDepth int

	SmallFragmentThreshold float64
	RecursiveFragmentRatio float64
}

// Fracture starts fragmenting the entity around an impact. The entity's mesh
// is snapshotted; the caller may keep using the original.
func (d *Destructible) Fracture(e *Engine, impact r3.Vec, force, radius float64) error {
	if e == nil {
		return fmt.Errorf("fracture: no engine")
	}
	if err := d.Mesh.Validate(); err != nil {
		return fmt.Errorf("fracture: %w", err)
	}

	snapshot := d.Mesh.Clone()
	e.scheduler.Enqueue(&SliceTask{
		ID:                uuid.NewString(),
		Mesh:              snapshot,
		Transform:         d.Transform,
		PlaneOrigin:       impact,
		ImpactPoint:       impact,
		ExplosionForce:    force,
		ExplosionRadius:   radius,
		Density:           d.Density,
		FragmentLifetime:  d.FragmentLifetime,
		InheritedVelocity: d.Velocity,
		Depth:             0,
		MaxDepth:          d.MaxDepth,
		Policy: VolumePolicy{
			OriginalVolume:         snapshot.BoundsVolume(d.Transform.Scale),
			SmallFragmentThreshold: d.SmallFragmentThreshold,
			RecursiveFragmentRatio: d.RecursiveFragmentRatio,
		},
	})
	return nil
}

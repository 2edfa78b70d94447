package fracture

import (
	"math/rand"
	"testing"
	"time"

	"github.com/banshee-data/rubble/internal/geom"
	"github.com/banshee-data/rubble/internal/mesh"
	"github.com/banshee-data/rubble/internal/slicer"
	"gonum.org/v1/gonum/spatial/r3"
)

// memRecorder collects pipeline records in memory.
type memRecorder struct {
	slices    []SliceRecord
	fragments []FragmentRecord
}

func (r *memRecorder) RecordSlice(rec SliceRecord)       { r.slices = append(r.slices, rec) }
func (r *memRecorder) RecordFragment(rec FragmentRecord) { r.fragments = append(r.fragments, rec) }

func newTestEngine(t *testing.T, rec Recorder) *Engine {
	t.Helper()
	return NewEngine(EngineConfig{
		Scheduler: SchedulerConfig{
			Rand: rand.New(rand.NewSource(42)),
		},
		Activator: ActivatorConfig{
			Pool: newTestPool(t, 64),
		},
		Recorder: rec,
	})
}

// runUntilIdle ticks the engine until no work remains anywhere in the
// pipeline, failing the test if it takes unreasonably long.
func runUntilIdle(t *testing.T, e *Engine) {
	t.Helper()
	now := time.Now()
	deadline := time.Now().Add(10 * time.Second)
	for !e.Idle() {
		if time.Now().After(deadline) {
			t.Fatal("engine did not drain in time")
		}
		e.Tick(now)
		e.PhysicsStep()
		now = now.Add(16 * time.Millisecond) // simulated frame time
		time.Sleep(time.Millisecond)         // let slice goroutines finish
	}
}

func TestEngineFracturesCubeEndToEnd(t *testing.T) {
	violations := captureViolations(t)
	rec := &memRecorder{}
	engine := newTestEngine(t, rec)

	d := &Destructible{
		Mesh:                   mesh.NewUnitCube(),
		Transform:              geom.IdentityTransform(),
		Density:                800,
		FragmentLifetime:       time.Hour, // nothing expires during the test
		MaxDepth:               2,
		SmallFragmentThreshold: 0.01,
		RecursiveFragmentRatio: 0.45,
	}
	if err := d.Fracture(engine, r3.Vec{}, 500, 2); err != nil {
		t.Fatalf("Fracture: %v", err)
	}
	runUntilIdle(t, engine)

	stats := engine.Stats()
	if stats.SlicesCompleted == 0 {
		t.Fatal("no slice completed")
	}
	if stats.FragmentsActivated < 2 {
		t.Fatalf("FragmentsActivated = %d, want at least 2", stats.FragmentsActivated)
	}
	if stats.LifecycleViolations != 0 || len(*violations) != 0 {
		t.Fatalf("lifecycle violations: %d (%v)", stats.LifecycleViolations, *violations)
	}
	if live := slicer.LiveResults(); live != 0 {
		t.Fatalf("LiveResults = %d after drain, want 0", live)
	}

	// Every activated fragment was recorded and received its impulse through
	// the physics step.
	if int64(len(rec.fragments)) != stats.FragmentsActivated {
		t.Errorf("recorded %d fragments, activated %d", len(rec.fragments), stats.FragmentsActivated)
	}
	if int64(len(rec.slices)) != stats.SlicesCompleted {
		t.Errorf("recorded %d slices, completed %d", len(rec.slices), stats.SlicesCompleted)
	}
	for _, f := range engine.Activator().Fragments() {
		if f.Body.(*mockBody).impulses == 0 {
			t.Errorf("fragment %s never received its explosion impulse", f.ID)
		}
		if f.Depth > d.MaxDepth {
			t.Errorf("fragment %s at depth %d exceeds max depth %d", f.ID, f.Depth, d.MaxDepth)
		}
	}
}

func TestEngineReplacesRecursiveParentsWithChildren(t *testing.T) {
	engine := newTestEngine(t, nil)

	// A low recursive ratio drives the cube through the full depth budget.
	d := &Destructible{
		Mesh:                   mesh.NewUnitCube(),
		Transform:              geom.IdentityTransform(),
		Density:                800,
		FragmentLifetime:       time.Hour,
		MaxDepth:               2,
		SmallFragmentThreshold: 0.01,
		RecursiveFragmentRatio: 0.1,
	}
	if err := d.Fracture(engine, r3.Vec{}, 500, 2); err != nil {
		t.Fatalf("Fracture: %v", err)
	}
	runUntilIdle(t, engine)

	stats := engine.Stats()
	if stats.FragmentsRecursive == 0 {
		t.Fatal("expected at least one recursive fragment")
	}
	// Once the pipeline drains, every recursive fragment has been superseded
	// by the children carved from its own mesh; only its descendants remain.
	live := engine.Activator().Fragments()
	for _, f := range live {
		if f.Fate == FateRecursive {
			t.Errorf("recursive fragment %s still live after the pipeline drained", f.ID)
		}
	}
	if stats.PoolReturns != stats.FragmentsRecursive {
		t.Errorf("PoolReturns = %d, want %d (one per replaced parent)",
			stats.PoolReturns, stats.FragmentsRecursive)
	}
	if got, want := int64(len(live)), stats.FragmentsActivated-stats.FragmentsRecursive; got != want {
		t.Errorf("live fragments = %d, want %d", got, want)
	}
}

func TestEngineDepthBudgetBoundsRecursion(t *testing.T) {
	engine := newTestEngine(t, nil)

	d := &Destructible{
		Mesh:             mesh.NewUnitCube(),
		Transform:        geom.IdentityTransform(),
		Density:          800,
		FragmentLifetime: time.Hour,
		MaxDepth:         0, // depth budget spent before the first cut
	}
	if err := d.Fracture(engine, r3.Vec{}, 500, 2); err != nil {
		t.Fatalf("Fracture: %v", err)
	}
	runUntilIdle(t, engine)

	stats := engine.Stats()
	if stats.SlicesLaunched != 0 {
		t.Errorf("SlicesLaunched = %d, want 0", stats.SlicesLaunched)
	}
	if stats.TasksRejected != 1 {
		t.Errorf("TasksRejected = %d, want 1", stats.TasksRejected)
	}
	// The intact mesh still becomes one fragment through the direct path.
	if stats.FragmentsActivated != 1 {
		t.Errorf("FragmentsActivated = %d, want 1", stats.FragmentsActivated)
	}
}

func TestFractureSnapshotsTheMesh(t *testing.T) {
	engine := newTestEngine(t, nil)

	original := mesh.NewUnitCube()
	d := &Destructible{
		Mesh:             original,
		Transform:        geom.IdentityTransform(),
		Density:          800,
		FragmentLifetime: time.Hour,
		MaxDepth:         1,
	}
	if err := d.Fracture(engine, r3.Vec{}, 500, 2); err != nil {
		t.Fatalf("Fracture: %v", err)
	}

	// Mutating the entity's mesh after the trigger must not affect the
	// queued task.
	original.Positions[0] = r3.Vec{X: 99}
	runUntilIdle(t, engine)

	for _, f := range engine.Activator().Fragments() {
		lo, hi := f.Body.(*mockBody).mesh.Bounds()
		if hi.X > 1 || lo.X < -1 {
			t.Fatalf("fragment bounds [%v, %v] reflect the mutated mesh", lo, hi)
		}
	}
}

func TestFractureRejectsInvalidMesh(t *testing.T) {
	engine := newTestEngine(t, nil)

	d := &Destructible{Mesh: nil, Transform: geom.IdentityTransform()}
	if err := d.Fracture(engine, r3.Vec{}, 500, 2); err == nil {
		t.Fatal("expected error for nil mesh")
	}
	if err := d.Fracture(nil, r3.Vec{}, 500, 2); err == nil {
		t.Fatal("expected error for nil engine")
	}
}

package fracture

import (
	"time"

	"github.com/banshee-data/rubble/internal/geom"
	"github.com/banshee-data/rubble/internal/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// SliceTask is one pending cut of one mesh. It is immutable once enqueued and
// consumed exactly once: either the slicer takes the mesh, or rejection
// transfers it straight to the activation path.
type SliceTask struct {
	ID string

	// Mesh is the geometry snapshot to slice, in its own local space.
	Mesh *mesh.Mesh
	// Transform places the mesh in the world; cutting planes are computed in
	// world space and carried into local space through it.
	Transform geom.Transform

	// PlaneOrigin is the world-space hint the cutting-plane policy jitters
	// around.
	PlaneOrigin r3.Vec
	// ImpactPoint is the world-space impact that started the fragmentation.
	ImpactPoint r3.Vec

	ExplosionForce  float64
	ExplosionRadius float64

	// Density converts bounds-derived volume to mass for activated fragments.
	Density float64
	// FragmentLifetime is how long a pooled fragment stays live before
	// automatic pool return.
	FragmentLifetime time.Duration
	// InheritedVelocity is applied to fragments created from this task.
	InheritedVelocity r3.Vec

	// Depth is this task's position in the fragmentation tree; MaxDepth is
	// the budget. A task at Depth == MaxDepth is never sliced.
	Depth    int
	MaxDepth int

	Policy VolumePolicy

	// replaces is the recursive fragment this task supersedes. The fragment
	// stays live while the task's slice runs and returns to the pool the
	// moment the task's outcome reaches the activator.
	replaces *Fragment
}

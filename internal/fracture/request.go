package fracture

import (
	"fmt"

	"github.com/banshee-data/rubble/internal/mesh"
	"github.com/banshee-data/rubble/internal/slicer"
)

// ActivationRequest asks the activator to turn one mesh into a live fragment.
// It is either a creation request (one side of a shared slice result) or a
// direct request (an already-finished mesh from a task too small or too deep
// to slice). Exactly one of the two is populated; the constructors enforce
// that at enqueue time rather than leaving it to be discovered later.
type ActivationRequest struct {
	task *SliceTask

	// Creation path.
	ref  *slicer.ResultRef
	side slicer.Side

	// Activation-only path.
	direct *mesh.Mesh
}

// NewCreationRequest builds a request consuming one side of a shared slice
// result. The caller hands over one of the reference's two counts.
func NewCreationRequest(task *SliceTask, ref *slicer.ResultRef, side slicer.Side) (*ActivationRequest, error) {
	if task == nil {
		return nil, fmt.Errorf("creation request without task")
	}
	if ref == nil || ref.Result() == nil {
		return nil, fmt.Errorf("creation request without slice result (task %s)", task.ID)
	}
	return &ActivationRequest{task: task, ref: ref, side: side}, nil
}

// NewDirectRequest builds a request around a finished mesh, transferring its
// ownership to the activator.
func NewDirectRequest(task *SliceTask, m *mesh.Mesh) (*ActivationRequest, error) {
	if task == nil {
		return nil, fmt.Errorf("direct request without task")
	}
	if m == nil {
		return nil, fmt.Errorf("direct request without mesh (task %s)", task.ID)
	}
	return &ActivationRequest{task: task, direct: m}, nil
}

// IsCreation reports whether the request consumes a shared slice result.
func (r *ActivationRequest) IsCreation() bool { return r.ref != nil }

// Task returns the originating slice task.
func (r *ActivationRequest) Task() *SliceTask { return r.task }

// Package fracture turns an unbounded recursive fragmentation tree into
// bounded per-tick work: a scheduler that launches and drains asynchronous
// slice operations under per-tick caps, an activator that turns half-meshes
// into live pooled fragments, a deferred force queue drained on the physics
// step, and the volume policy deciding whether a fragment recurses, waits for
// pool return, or persists.
package fracture

// VolumePolicy carries the volume-ratio thresholds a fragmentation root is
// classified against. Thresholds are configuration, not constants.
type VolumePolicy struct {
	// OriginalVolume is the bounds-derived volume of the object this
	// fragmentation tree started from. A recursive fragment becomes a new
	// root with its own volume here.
	OriginalVolume float64

	// SmallFragmentThreshold: fragments with volume/OriginalVolume at or
	// below it are pooled for automatic return.
	SmallFragmentThreshold float64

	// RecursiveFragmentRatio: fragments above it keep fragmenting while the
	// depth budget lasts.
	RecursiveFragmentRatio float64
}

// FateClass is the lifecycle class assigned to a fragment at activation.
// The classes are mutually exclusive and exhaustive over ratio ∈ [0,1].
type FateClass int

const (
	// FatePersistent fragments stay live indefinitely: not pooled, not
	// automatically sliced again.
	FatePersistent FateClass = iota
	// FateRecursive fragments become new fragmentation roots.
	FateRecursive
	// FatePooled fragments return to the pool after their lifetime expires.
	FatePooled
)

func (f FateClass) String() string {
	switch f {
	case FateRecursive:
		return "recursive"
	case FatePooled:
		return "pooled"
	default:
		return "persistent"
	}
}

// ClassifyFate assigns a fragment's lifecycle class from its volume ratio and
// whether recursion budget remains. It is a pure function; fragment state
// never mutates between classes.
func ClassifyFate(ratio float64, depthRemaining bool, p VolumePolicy) FateClass {
	if ratio <= p.SmallFragmentThreshold {
		return FatePooled
	}
	if ratio > p.RecursiveFragmentRatio && depthRemaining {
		return FateRecursive
	}
	return FatePersistent
}

package fracture

import "time"

// Fragment is the record of one live fragment: the pooled body it occupies
// and the lifecycle class assigned at activation. The class never changes;
// pooled fragments additionally carry their auto-return deadline, and
// recursive fragments return to the pool when the child fragmentation root
// carved from their mesh takes over.
type Fragment struct {
	ID   string
	Body Body

	Fate        FateClass
	Volume      float64
	VolumeRatio float64
	Mass        float64
	Depth       int

	// poolReturnAt is set only for pooled fragments and cleared when the
	// fragment is released for any other reason, so a manual release never
	// races the auto-return timer into a double release.
	poolReturnAt time.Time
}

// PoolReturnAt returns the auto-return deadline, zero for fragments that are
// not pooled.
func (f *Fragment) PoolReturnAt() time.Time { return f.poolReturnAt }

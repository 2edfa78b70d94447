package fracture

// Stats counts pipeline events for one engine. All fields are written from
// the tick thread only; read a copy via Engine.Stats for a consistent view.
type Stats struct {
	TasksEnqueued int64
	TasksRejected int64

	SlicesLaunched  int64
	SlicesCompleted int64
	SlicesDiscarded int64

	FragmentsActivated  int64
	FragmentsRecursive  int64
	FragmentsPooled     int64
	FragmentsPersistent int64
	PoolReturns         int64

	DegenerateDiscards  int64
	LifecycleViolations int64
}

func (s *Stats) countFate(f FateClass) {
	switch f {
	case FateRecursive:
		s.FragmentsRecursive++
	case FatePooled:
		s.FragmentsPooled++
	default:
		s.FragmentsPersistent++
	}
}

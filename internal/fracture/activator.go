package fracture

import (
	"log"
	"time"

	"github.com/banshee-data/rubble/internal/mesh"
	"github.com/banshee-data/rubble/internal/monitoring"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// ActivatorConfig bounds an Activator and names its collaborators.
type ActivatorConfig struct {
	// MaxActivationsPerTick caps how many requests one tick may drain.
	// Default 4.
	MaxActivationsPerTick int
	// Pool supplies fragment bodies. A nil pool disables activation: the
	// condition is logged once and requests are drained by discarding, with
	// shared references still released.
	Pool Pool
	// Forces receives the deferred explosion impulses.
	Forces *ForceQueue
	// Logger is optional; if nil, uses log.Default().
	Logger *log.Logger
}

// Activator drains activation requests under a per-tick cap, builds fragments
// from half-meshes, and applies the recursion/pool/persist policy. The two
// sibling requests of one slice are independent: they may be drained in
// either order, in the same tick or ticks apart.
type Activator struct {
	cfg       ActivatorConfig
	log       *log.Logger
	stats     *Stats
	recorder  Recorder
	scheduler *Scheduler

	queue     []*ActivationRequest
	fragments []*Fragment
}

// NewActivator builds an activator. The scheduler backlink for recursive
// fragments is attached afterwards with SetScheduler because the two are
// mutually dependent.
func NewActivator(cfg ActivatorConfig, stats *Stats, recorder Recorder) *Activator {
	if cfg.MaxActivationsPerTick <= 0 {
		cfg.MaxActivationsPerTick = 4
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Forces == nil {
		cfg.Forces = NewForceQueue()
	}
	if cfg.Pool == nil {
		logger.Printf("fragment activator: no pool configured; activation disabled")
	}
	return &Activator{cfg: cfg, log: logger, stats: stats, recorder: recorder}
}

// SetScheduler closes the recursion loop. Without a scheduler no fragment is
// ever classified recursive.
func (a *Activator) SetScheduler(s *Scheduler) { a.scheduler = s }

// Enqueue accepts a request built by one of the request constructors.
func (a *Activator) Enqueue(req *ActivationRequest) {
	if req == nil {
		return
	}
	a.queue = append(a.queue, req)
}

// QueueLen returns the number of requests waiting for activation.
func (a *Activator) QueueLen() int { return len(a.queue) }

// Fragments returns a snapshot of the live fragment records.
func (a *Activator) Fragments() []*Fragment {
	return append([]*Fragment(nil), a.fragments...)
}

// Tick drains up to MaxActivationsPerTick requests in FIFO order, then
// returns pooled fragments whose lifetime expired.
func (a *Activator) Tick(now time.Time) {
	for drained := 0; drained < a.cfg.MaxActivationsPerTick && len(a.queue) > 0; drained++ {
		req := a.queue[0]
		a.queue = a.queue[1:]
		a.activate(req, now)
	}
	a.expirePooled(now)
}

// obtainMesh resolves a request to a standalone mesh. For creation requests
// it builds one half and releases the shared reference; the returned flag
// reports whether that release performed the disposal.
func (a *Activator) obtainMesh(req *ActivationRequest) (m *mesh.Mesh, disposed bool) {
	if !req.IsCreation() {
		return req.direct, false
	}
	m, err := req.ref.Result().BuildMesh(req.side)
	disposed = req.ref.Release()
	if err != nil {
		// Degenerate halves are expected and frequent; stay silent.
		return nil, disposed
	}
	return m, disposed
}

func (a *Activator) activate(req *ActivationRequest, now time.Time) {
	task := req.task
	a.retireReplaced(task)
	m, disposed := a.obtainMesh(req)

	if m == nil || m.VertexCount() < mesh.MinSolidVertices {
		// Not a valid convex solid; discard.
		a.stats.DegenerateDiscards++
		if req.IsCreation() && !disposed && req.ref.Refs() <= 0 {
			// The count reached zero without anyone disposing: the shared
			// buffers were leaked by a counting bug, not by this discard.
			a.stats.LifecycleViolations++
			monitoring.Violationf("task %s: %s half failed to build but shared slice buffers were not freed",
				task.ID, req.side)
			req.ref.ForceDispose()
		}
		return
	}

	if a.cfg.Pool == nil {
		return // disabled at construction; already logged once
	}

	volume := m.BoundsVolume(task.Transform.Scale)
	mass := volume * task.Density
	ratio := 1.0
	if task.Policy.OriginalVolume > 0 {
		ratio = volume / task.Policy.OriginalVolume
	}

	// A pooled body may carry stale state from a previous life: configure
	// everything, then assign exactly one lifecycle behaviour below.
	body := a.cfg.Pool.Acquire()
	body.SetTransform(task.Transform)
	body.SetMesh(m)
	body.SetConvexCollider(m)
	body.SetMass(mass)
	body.SetLinearVelocity(task.InheritedVelocity)
	body.SetActive(true)

	depthRemaining := req.IsCreation() && a.scheduler != nil &&
		a.scheduler.CanSlice(m.VertexCount(), task.Depth+1, task.MaxDepth)
	fate := ClassifyFate(ratio, depthRemaining, task.Policy)

	frag := &Fragment{
		ID:          uuid.NewString(),
		Body:        body,
		Fate:        fate,
		Volume:      volume,
		VolumeRatio: ratio,
		Mass:        mass,
		Depth:       task.Depth,
	}

	switch fate {
	case FatePooled:
		frag.poolReturnAt = now.Add(task.FragmentLifetime)
	case FateRecursive:
		frag.poolReturnAt = time.Time{}
		a.enqueueRecursive(task, m, volume, frag)
	default:
		frag.poolReturnAt = time.Time{}
	}

	a.fragments = append(a.fragments, frag)
	a.stats.FragmentsActivated++
	a.stats.countFate(fate)

	a.cfg.Forces.Defer(frag, task.ExplosionForce, task.ImpactPoint, task.ExplosionRadius)

	if a.recorder != nil {
		a.recorder.RecordFragment(FragmentRecord{
			FragmentID:  frag.ID,
			TaskID:      task.ID,
			Depth:       frag.Depth,
			Fate:        fate,
			Volume:      volume,
			VolumeRatio: ratio,
			Mass:        mass,
			TSUnixNanos: now.UnixNano(),
		})
	}
}

// enqueueRecursive seeds a child fragmentation root from an activated
// fragment: same policy thresholds and impact context, the fragment's own
// volume as the new original volume, one more level of depth spent. The
// fragment itself stays live only until the child root takes over; the child
// task carries it so retireReplaced can return it then.
func (a *Activator) enqueueRecursive(parent *SliceTask, m *mesh.Mesh, volume float64, replaced *Fragment) {
	lo, hi := m.Bounds()
	center := parent.Transform.ApplyPoint(r3.Scale(0.5, r3.Add(lo, hi)))

	child := &SliceTask{
		ID:                uuid.NewString(),
		Mesh:              m,
		Transform:         parent.Transform,
		PlaneOrigin:       center,
		ImpactPoint:       parent.ImpactPoint,
		ExplosionForce:    parent.ExplosionForce,
		ExplosionRadius:   parent.ExplosionRadius,
		Density:           parent.Density,
		FragmentLifetime:  parent.FragmentLifetime,
		InheritedVelocity: parent.InheritedVelocity,
		Depth:             parent.Depth + 1,
		MaxDepth:          parent.MaxDepth,
		Policy: VolumePolicy{
			OriginalVolume:         volume,
			SmallFragmentThreshold: parent.Policy.SmallFragmentThreshold,
			RecursiveFragmentRatio: parent.Policy.RecursiveFragmentRatio,
		},
		replaces: replaced,
	}
	a.scheduler.Enqueue(child)
}

// retireReplaced returns the fragment a child task supersedes. A recursive
// fragment's mesh has been handed on to its children, so keeping it live past
// this point would leave the same matter in the world twice. Any impulse
// still pending for it is dropped with it. Runs at most once per task.
func (a *Activator) retireReplaced(task *SliceTask) {
	if task == nil || task.replaces == nil {
		return
	}
	f := task.replaces
	task.replaces = nil
	for i, g := range a.fragments {
		if g != f {
			continue
		}
		a.fragments = append(a.fragments[:i], a.fragments[i+1:]...)
		a.cfg.Forces.Cancel(f)
		a.returnToPool(f)
		return
	}
}

// expirePooled returns pooled fragments whose deadline passed.
func (a *Activator) expirePooled(now time.Time) {
	live := a.fragments[:0]
	for _, f := range a.fragments {
		if f.Fate == FatePooled && !f.poolReturnAt.IsZero() && !now.Before(f.poolReturnAt) {
			a.returnToPool(f)
			continue
		}
		live = append(live, f)
	}
	a.fragments = live
}

// Release returns a fragment to the pool ahead of its timer, clearing the
// auto-return deadline so the expiry pass cannot release it a second time.
func (a *Activator) Release(f *Fragment) {
	if f == nil {
		return
	}
	for i, g := range a.fragments {
		if g == f {
			a.fragments = append(a.fragments[:i], a.fragments[i+1:]...)
			a.returnToPool(f)
			return
		}
	}
}

func (a *Activator) returnToPool(f *Fragment) {
	f.poolReturnAt = time.Time{}
	if a.cfg.Pool != nil {
		a.cfg.Pool.Release(f.Body)
	}
	a.stats.PoolReturns++
}

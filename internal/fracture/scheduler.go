package fracture

import (
	"log"
	"math/rand"
	"time"

	"github.com/banshee-data/rubble/internal/geom"
	"github.com/banshee-data/rubble/internal/mesh"
	"github.com/banshee-data/rubble/internal/slicer"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cutting-plane policy constants. The plane origin is jittered inside a small
// sphere so repeated cuts never pass through the same point, and most planes
// stay loosely axis-aligned so the fracture pattern looks structured rather
// than chaotic.
const (
	planeOriginJitterRadius = 0.1
	axisAlignedProbability  = 0.6
)

var worldAxes = [3]r3.Vec{geom.AxisX, geom.AxisY, geom.AxisZ}

// SchedulerConfig bounds and seeds a Scheduler.
type SchedulerConfig struct {
	// MaxSlicesPerTick caps how many slice operations one tick may launch,
	// regardless of queue depth. Default 2.
	MaxSlicesPerTick int
	// MaxCompletedPerTick caps how many finished operations one tick may
	// drain into activation requests. Default 2.
	MaxCompletedPerTick int
	// MinVerticesForSlice is the smallest mesh worth cutting further.
	// Default mesh.MinSolidVertices.
	MinVerticesForSlice int
	// Rand drives the cutting-plane policy; if nil a time-seeded source is
	// used. Supply a fixed seed for reproducible fracture patterns.
	Rand *rand.Rand
	// Logger is optional; if nil, uses log.Default().
	Logger *log.Logger
}

// sliceOutcome is what an asynchronous slice operation delivers.
type sliceOutcome struct {
	res *slicer.Result
	err error
}

// sliceJob is one in-flight asynchronous slice operation: an opaque handle
// the tick thread polls. The goroutine owns the task's buffers exclusively
// until it sends; completion is only ever observed by polling, never by a
// callback into slicer code.
type sliceJob struct {
	task    *SliceTask
	started time.Time
	done    chan sliceOutcome
}

// tryResult polls the operation without blocking.
func (j *sliceJob) tryResult() (sliceOutcome, bool) {
	select {
	case out := <-j.done:
		return out, true
	default:
		return sliceOutcome{}, false
	}
}

// Scheduler accepts slice tasks and feeds the activator, spending at most a
// bounded amount of work per tick. Tasks move Queued → Scheduled → Completed
// → Drained, or are rejected at enqueue straight into direct activation.
type Scheduler struct {
	cfg       SchedulerConfig
	rng       *rand.Rand
	log       *log.Logger
	activator *Activator
	stats     *Stats
	recorder  Recorder

	queue    []*SliceTask
	inflight []*sliceJob
}

// NewScheduler wires a scheduler to the activator it feeds. Dependencies are
// explicit; there is no process-wide registry.
func NewScheduler(cfg SchedulerConfig, activator *Activator, stats *Stats, recorder Recorder) *Scheduler {
	if cfg.MaxSlicesPerTick <= 0 {
		cfg.MaxSlicesPerTick = 2
	}
	if cfg.MaxCompletedPerTick <= 0 {
		cfg.MaxCompletedPerTick = 2
	}
	if cfg.MinVerticesForSlice <= 0 {
		cfg.MinVerticesForSlice = mesh.MinSolidVertices
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		cfg:       cfg,
		rng:       rng,
		log:       logger,
		activator: activator,
		stats:     stats,
		recorder:  recorder,
	}
}

// CanSlice reports whether a mesh of the given vertex count at the given
// depth is worth scheduling. The activator uses the same predicate when
// deciding fate eligibility, so an enqueued recursive task is never bounced
// back as a duplicate direct activation.
func (s *Scheduler) CanSlice(vertexCount, depth, maxDepth int) bool {
	return vertexCount >= s.cfg.MinVerticesForSlice && depth < maxDepth
}

// Enqueue accepts a task. Tasks too small or too deep to slice are rejected
// into the activator's direct path with their mesh unchanged, transferring
// mesh ownership; a task with no mesh at all is discarded.
func (s *Scheduler) Enqueue(t *SliceTask) {
	if t == nil {
		return
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.stats.TasksEnqueued++

	if t.Mesh == nil {
		s.stats.TasksRejected++
		s.log.Printf("slice task %s discarded: no mesh", t.ID)
		return
	}
	if !s.CanSlice(t.Mesh.VertexCount(), t.Depth, t.MaxDepth) {
		s.stats.TasksRejected++
		req, err := NewDirectRequest(t, t.Mesh)
		if err != nil {
			s.log.Printf("slice task %s discarded: %v", t.ID, err)
			return
		}
		s.activator.Enqueue(req)
		return
	}
	s.queue = append(s.queue, t)
}

// QueueLen returns the number of tasks waiting to be scheduled.
func (s *Scheduler) QueueLen() int { return len(s.queue) }

// InFlight returns the number of launched, not-yet-drained operations.
func (s *Scheduler) InFlight() int { return len(s.inflight) }

// Tick launches up to MaxSlicesPerTick queued tasks and drains up to
// MaxCompletedPerTick finished operations, both in FIFO order. The two caps
// bound the tick's cost independent of backlog size and completion bursts.
func (s *Scheduler) Tick() {
	for launched := 0; launched < s.cfg.MaxSlicesPerTick && len(s.queue) > 0; launched++ {
		t := s.queue[0]
		s.queue = s.queue[1:]
		s.launch(t)
	}
	s.drainCompleted()
}

// launch computes this task's cutting plane, carries it into the mesh's
// local space, and starts the slice operation asynchronously.
func (s *Scheduler) launch(t *SliceTask) {
	world := s.cuttingPlane(t)
	local := t.Transform.PlaneToLocal(world)

	job := &sliceJob{
		task:    t,
		started: time.Now(),
		done:    make(chan sliceOutcome, 1),
	}
	go func() {
		res, err := slicer.Slice(t.Mesh, local)
		job.done <- sliceOutcome{res: res, err: err}
	}()
	s.inflight = append(s.inflight, job)
	s.stats.SlicesLaunched++
}

// drainCompleted finalizes completed operations: each valid result becomes a
// shared reference with count 2 feeding one activation request per side.
// Failed operations are discarded with a warning; the task's mesh is simply
// dropped.
func (s *Scheduler) drainCompleted() {
	drained := 0
	remaining := s.inflight[:0]
	for i, job := range s.inflight {
		if drained >= s.cfg.MaxCompletedPerTick {
			remaining = append(remaining, s.inflight[i:]...)
			break
		}
		out, ok := job.tryResult()
		if !ok {
			remaining = append(remaining, job)
			continue
		}
		drained++

		if out.err != nil || !out.res.Valid() {
			s.stats.SlicesDiscarded++
			// A recursive parent waiting on this slice still has to retire.
			s.activator.retireReplaced(job.task)
			s.log.Printf("slice task %s discarded: %v", job.task.ID, out.err)
			continue
		}
		s.stats.SlicesCompleted++

		if s.recorder != nil {
			s.recorder.RecordSlice(SliceRecord{
				TaskID:         job.task.ID,
				Depth:          job.task.Depth,
				InputTriangles: job.task.Mesh.TriangleCount(),
				PositiveTris:   out.res.TriangleCount(slicer.SidePositive),
				NegativeTris:   out.res.TriangleCount(slicer.SideNegative),
				CutPolygonSize: len(out.res.CutPolygon()),
				Duration:       time.Since(job.started),
				TSUnixNanos:    time.Now().UnixNano(),
			})
		}

		ref := slicer.NewResultRef(out.res)
		for _, side := range []slicer.Side{slicer.SidePositive, slicer.SideNegative} {
			req, err := NewCreationRequest(job.task, ref, side)
			if err != nil {
				// Cannot happen with a valid result; release our half of the
				// count so the sibling can still dispose.
				s.log.Printf("slice task %s: %v", job.task.ID, err)
				ref.Release()
				continue
			}
			s.activator.Enqueue(req)
		}
	}
	s.inflight = remaining
}

// cuttingPlane picks the world-space plane for a task: the origin hint plus a
// small jitter, and a direction that is usually a world axis, sometimes
// perpendicular to the impact direction, always blended with one more random
// unit vector.
func (s *Scheduler) cuttingPlane(t *SliceTask) geom.Plane {
	origin := r3.Add(t.PlaneOrigin, geom.RandInSphere(s.rng, planeOriginJitterRadius))

	var dir r3.Vec
	if s.rng.Float64() < axisAlignedProbability {
		dir = worldAxes[s.rng.Intn(len(worldAxes))]
	} else {
		dir = geom.Perpendicular(s.rng, r3.Sub(t.ImpactPoint, origin))
	}

	dir = r3.Add(dir, geom.RandUnitVec(s.rng))
	if r3.Norm(dir) < geom.Epsilon {
		dir = geom.RandUnitVec(s.rng)
	}
	return geom.NewPlane(dir, origin)
}

// fracture-sim runs a headless fragmentation of a box mesh and records the
// run into a sqlite database, optionally rendering an HTML report of it.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/rubble/internal/config"
	"github.com/banshee-data/rubble/internal/fracture"
	"github.com/banshee-data/rubble/internal/geom"
	"github.com/banshee-data/rubble/internal/mesh"
	"github.com/banshee-data/rubble/internal/report"
	"github.com/banshee-data/rubble/internal/storage/sqlite"
	"github.com/banshee-data/rubble/internal/version"
)

func main() {
	dbPath := flag.String("db", "fracture.db", "Path to the run database")
	configPath := flag.String("config", "", "Optional tuning config JSON (defaults apply otherwise)")
	sizeX := flag.Float64("size-x", 1, "Box width in metres")
	sizeY := flag.Float64("size-y", 1, "Box height in metres")
	sizeZ := flag.Float64("size-z", 1, "Box depth in metres")
	force := flag.Float64("force", 500, "Explosion force")
	radius := flag.Float64("radius", 2, "Explosion radius in metres")
	seed := flag.Int64("seed", 0, "Cutting-plane seed; 0 means time-seeded")
	maxTicks := flag.Int("max-ticks", 10000, "Bail out after this many ticks")
	tickRate := flag.Duration("tick", 16*time.Millisecond, "Simulated frame duration")
	reportPath := flag.String("report", "", "Optional HTML report output path")
	notes := flag.String("notes", "", "Free-form notes stored with the run")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("fracture-sim %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *seed == 0 {
		*seed = tuning.GetSeed()
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	db, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	store, err := sqlite.NewRunStore(db, *seed, tuning.GetMaxDepth(), *notes, nil)
	if err != nil {
		log.Fatalf("start run: %v", err)
	}

	pool, err := fracture.NewSimplePool(tuning.GetPoolCapacity(), fracture.PoolCallbacks{
		New:       func() fracture.Body { return &simBody{} },
		OnRelease: func(b fracture.Body) { b.SetActive(false) },
	})
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}

	engine := fracture.NewEngine(fracture.EngineConfig{
		Scheduler: fracture.SchedulerConfig{
			MaxSlicesPerTick:    tuning.GetMaxSlicesPerTick(),
			MaxCompletedPerTick: tuning.GetMaxCompletedPerTick(),
			MinVerticesForSlice: tuning.GetMinVerticesForSlice(),
			Rand:                rand.New(rand.NewSource(*seed)),
		},
		Activator: fracture.ActivatorConfig{
			MaxActivationsPerTick: tuning.GetMaxActivationsPerTick(),
			Pool:                  pool,
		},
		Recorder: store,
	})

	size := r3.Vec{X: *sizeX, Y: *sizeY, Z: *sizeZ}
	target := &fracture.Destructible{
		Mesh:                   mesh.NewBox(size),
		Transform:              geom.IdentityTransform(),
		Density:                tuning.GetDensity(),
		FragmentLifetime:       tuning.GetFragmentLifetime(),
		MaxDepth:               tuning.GetMaxDepth(),
		SmallFragmentThreshold: tuning.GetSmallFragmentThreshold(),
		RecursiveFragmentRatio: tuning.GetRecursiveFragmentRatio(),
	}

	// Impact at the box centre.
	if err := target.Fracture(engine, r3.Vec{}, *force, *radius); err != nil {
		log.Fatalf("fracture: %v", err)
	}

	now := time.Now()
	ticks := 0
	for !engine.Idle() && ticks < *maxTicks {
		engine.Tick(now)
		engine.PhysicsStep()
		now = now.Add(*tickRate)
		ticks++
		time.Sleep(time.Millisecond)
	}

	stats := engine.Stats()
	if err := store.Finish(stats); err != nil {
		log.Fatalf("finish run: %v", err)
	}

	fmt.Printf("run %d finished after %d ticks (seed %d)\n", store.RunID(), ticks, *seed)
	fmt.Printf("  tasks enqueued:      %d (rejected %d)\n", stats.TasksEnqueued, stats.TasksRejected)
	fmt.Printf("  slices completed:    %d (discarded %d)\n", stats.SlicesCompleted, stats.SlicesDiscarded)
	fmt.Printf("  fragments activated: %d (recursive %d, pooled %d, persistent %d)\n",
		stats.FragmentsActivated, stats.FragmentsRecursive, stats.FragmentsPooled, stats.FragmentsPersistent)
	fmt.Printf("  pool returns:        %d, degenerate discards: %d\n",
		stats.PoolReturns, stats.DegenerateDiscards)
	if stats.LifecycleViolations > 0 {
		fmt.Printf("  LIFECYCLE VIOLATIONS: %d\n", stats.LifecycleViolations)
	}

	if *reportPath != "" {
		if err := report.GenerateFile(db, store.RunID(), *reportPath); err != nil {
			log.Fatalf("render report: %v", err)
		}
		fmt.Printf("report written to %s\n", *reportPath)
	}
}

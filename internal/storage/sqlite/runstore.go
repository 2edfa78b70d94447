package sqlite

import (
	"fmt"
	"log"
	"time"

	"github.com/banshee-data/rubble/internal/fracture"
)

// RunStore persists the events of one fragmentation run. It implements
// fracture.Recorder; record methods log and drop failed inserts rather than
// propagating errors into the tick loop.
type RunStore struct {
	db    *DB
	log   *log.Logger
	runID int64
}

// RunInfo is one row of the runs table.
type RunInfo struct {
	RunID              int64
	StartedAt          time.Time
	FinishedAt         *time.Time
	Seed               int64
	MaxDepth           int
	Notes              string
	TasksEnqueued      int64
	SlicesCompleted    int64
	SlicesDiscarded    int64
	FragmentsActivated int64
	PoolReturns        int64
}

// NewRunStore starts a new run row and returns a store recording into it.
func NewRunStore(db *DB, seed int64, maxDepth int, notes string, logger *log.Logger) (*RunStore, error) {
	if logger == nil {
		logger = log.Default()
	}
	res, err := db.Exec(
		`INSERT INTO runs (seed, max_depth, notes) VALUES (?, ?, ?)`,
		seed, maxDepth, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get run ID: %w", err)
	}
	return &RunStore{db: db, log: logger, runID: runID}, nil
}

// RunID returns the row ID of the run this store records into.
func (s *RunStore) RunID() int64 { return s.runID }

// RecordSlice stores one completed slice event.
func (s *RunStore) RecordSlice(rec fracture.SliceRecord) {
	_, err := s.db.Exec(
		`INSERT INTO slice_events (
			run_id, task_id, depth, input_triangles, positive_triangles,
			negative_triangles, cut_polygon_size, duration_us, ts_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, rec.TaskID, rec.Depth, rec.InputTriangles, rec.PositiveTris,
		rec.NegativeTris, rec.CutPolygonSize, rec.Duration.Microseconds(), rec.TSUnixNanos,
	)
	if err != nil {
		s.log.Printf("failed to record slice event for task %s: %v", rec.TaskID, err)
	}
}

// RecordFragment stores one activated fragment.
func (s *RunStore) RecordFragment(rec fracture.FragmentRecord) {
	_, err := s.db.Exec(
		`INSERT INTO fragments (
			run_id, fragment_id, task_id, depth, fate, volume, volume_ratio,
			mass, ts_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, rec.FragmentID, rec.TaskID, rec.Depth, rec.Fate.String(),
		rec.Volume, rec.VolumeRatio, rec.Mass, rec.TSUnixNanos,
	)
	if err != nil {
		s.log.Printf("failed to record fragment %s: %v", rec.FragmentID, err)
	}
}

// Finish closes the run row with its final counters.
func (s *RunStore) Finish(stats fracture.Stats) error {
	_, err := s.db.Exec(
		`UPDATE runs SET
			finished_at = CURRENT_TIMESTAMP,
			tasks_enqueued = ?,
			slices_completed = ?,
			slices_discarded = ?,
			fragments_activated = ?,
			pool_returns = ?
		WHERE run_id = ?`,
		stats.TasksEnqueued, stats.SlicesCompleted, stats.SlicesDiscarded,
		stats.FragmentsActivated, stats.PoolReturns, s.runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", s.runID, err)
	}
	return nil
}

// Run loads one run row.
func (db *DB) Run(runID int64) (*RunInfo, error) {
	row := db.QueryRow(
		`SELECT run_id, started_at, finished_at, seed, max_depth, notes,
			COALESCE(tasks_enqueued, 0), COALESCE(slices_completed, 0),
			COALESCE(slices_discarded, 0), COALESCE(fragments_activated, 0),
			COALESCE(pool_returns, 0)
		FROM runs WHERE run_id = ?`, runID)

	var info RunInfo
	err := row.Scan(&info.RunID, &info.StartedAt, &info.FinishedAt, &info.Seed,
		&info.MaxDepth, &info.Notes, &info.TasksEnqueued, &info.SlicesCompleted,
		&info.SlicesDiscarded, &info.FragmentsActivated, &info.PoolReturns)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	return &info, nil
}

// LatestRunID returns the most recently started run.
func (db *DB) LatestRunID() (int64, error) {
	var runID int64
	err := db.QueryRow(`SELECT run_id FROM runs ORDER BY run_id DESC LIMIT 1`).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to find latest run: %w", err)
	}
	return runID, nil
}

// FateCounts returns the number of fragments per fate for one run.
func (db *DB) FateCounts(runID int64) (map[string]int64, error) {
	rows, err := db.Query(
		`SELECT fate, COUNT(*) FROM fragments WHERE run_id = ? GROUP BY fate`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fate counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var fate string
		var n int64
		if err := rows.Scan(&fate, &n); err != nil {
			return nil, fmt.Errorf("failed to scan fate count: %w", err)
		}
		counts[fate] = n
	}
	return counts, rows.Err()
}

// FragmentSample is one fragment's volume profile for analysis queries.
type FragmentSample struct {
	Depth       int
	Fate        string
	VolumeRatio float64
	Mass        float64
}

// FragmentSamples returns every fragment of one run ordered by activation time.
func (db *DB) FragmentSamples(runID int64) ([]FragmentSample, error) {
	rows, err := db.Query(
		`SELECT depth, fate, volume_ratio, mass FROM fragments
		WHERE run_id = ? ORDER BY ts_unix_nanos`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fragments: %w", err)
	}
	defer rows.Close()

	var samples []FragmentSample
	for rows.Next() {
		var s FragmentSample
		if err := rows.Scan(&s.Depth, &s.Fate, &s.VolumeRatio, &s.Mass); err != nil {
			return nil, fmt.Errorf("failed to scan fragment: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// SliceDurationsUs returns the per-slice durations in microseconds for one
// run, in completion order.
func (db *DB) SliceDurationsUs(runID int64) ([]int64, error) {
	rows, err := db.Query(
		`SELECT duration_us FROM slice_events
		WHERE run_id = ? ORDER BY ts_unix_nanos`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query slice durations: %w", err)
	}
	defer rows.Close()

	var durations []int64
	for rows.Next() {
		var d int64
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan slice duration: %w", err)
		}
		durations = append(durations, d)
	}
	return durations, rows.Err()
}

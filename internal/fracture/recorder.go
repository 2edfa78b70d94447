package fracture

import "time"

// SliceRecord summarises one completed slice operation.
type SliceRecord struct {
	TaskID         string
	Depth          int
	InputTriangles int
	PositiveTris   int
	NegativeTris   int
	CutPolygonSize int
	Duration       time.Duration
	TSUnixNanos    int64
}

// FragmentRecord summarises one activated fragment.
type FragmentRecord struct {
	FragmentID  string
	TaskID      string
	Depth       int
	Fate        FateClass
	Volume      float64
	VolumeRatio float64
	Mass        float64
	TSUnixNanos int64
}

// Recorder receives pipeline events for persistence or analysis. All calls
// happen on the tick thread. A nil Recorder disables recording.
type Recorder interface {
	RecordSlice(SliceRecord)
	RecordFragment(FragmentRecord)
}

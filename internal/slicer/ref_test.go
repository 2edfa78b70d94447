package slicer

import (
	"strings"
	"sync"
	"testing"

	"github.com/banshee-data/rubble/internal/geom"
	"github.com/banshee-data/rubble/internal/mesh"
	"github.com/banshee-data/rubble/internal/monitoring"
	"gonum.org/v1/gonum/spatial/r3"
)

func captureViolations(t *testing.T) *[]string {
	t.Helper()
	original := monitoring.Logf
	t.Cleanup(func() { monitoring.Logf = original })
	var mu sync.Mutex
	var lines []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, format)
	})
	return &lines
}

func newTestResult(t *testing.T) *Result {
	t.Helper()
	res, err := Slice(mesh.NewUnitCube(), geom.NewPlane(r3.Vec{X: 1}, r3.Vec{}))
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	return res
}

func TestResultRefTwoReleasesDisposeOnce(t *testing.T) {
	violations := captureViolations(t)
	res := newTestResult(t)
	ref := NewResultRef(res)

	if ref.Release() {
		t.Error("first release must not dispose")
	}
	if res.Disposed() {
		t.Fatal("disposed after one release")
	}
	if !ref.Release() {
		t.Error("second release must dispose")
	}
	if !res.Disposed() {
		t.Fatal("not disposed after two releases")
	}

	// Third release is a counting bug: reported, no double free, no panic.
	if ref.Release() {
		t.Error("over-release must not report disposal")
	}
	if len(*violations) == 0 {
		t.Error("over-release not reported")
	}
	if n := LiveResults(); n != 0 {
		t.Errorf("%d live results after full release", n)
	}
}

// TestResultRefSiblingOrderIndependent releases the two sides concurrently:
// exactly one release observes disposal regardless of ordering.
func TestResultRefSiblingOrderIndependent(t *testing.T) {
	for i := 0; i < 100; i++ {
		res := newTestResult(t)
		ref := NewResultRef(res)

		results := make(chan bool, 2)
		var wg sync.WaitGroup
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- ref.Release()
			}()
		}
		wg.Wait()
		close(results)

		disposals := 0
		for r := range results {
			if r {
				disposals++
			}
		}
		if disposals != 1 {
			t.Fatalf("iteration %d: %d release calls observed disposal, want exactly 1", i, disposals)
		}
		if !res.Disposed() {
			t.Fatalf("iteration %d: result not disposed", i)
		}
	}
	if n := LiveResults(); n != 0 {
		t.Fatalf("%d live results leaked", n)
	}
}

func TestForceDisposeFlagsLeak(t *testing.T) {
	violations := captureViolations(t)
	res := newTestResult(t)
	ref := NewResultRef(res)

	ref.Release() // one side released, sibling forgotten
	ref.ForceDispose()

	if !res.Disposed() {
		t.Fatal("ForceDispose did not free the buffers")
	}
	found := false
	for _, line := range *violations {
		if strings.Contains(line, "outstanding") {
			found = true
		}
	}
	if !found {
		t.Error("leak not reported by ForceDispose")
	}
	if n := LiveResults(); n != 0 {
		t.Errorf("%d live results after ForceDispose", n)
	}
}

func TestForceDisposeQuietWhenFullyReleased(t *testing.T) {
	violations := captureViolations(t)
	res := newTestResult(t)
	ref := NewResultRef(res)
	ref.Release()
	ref.Release()

	ref.ForceDispose() // idempotent, nothing to report
	if len(*violations) != 0 {
		t.Errorf("unexpected diagnostics: %v", *violations)
	}
}

func TestBuildMeshAfterDisposeFails(t *testing.T) {
	res := newTestResult(t)
	ref := NewResultRef(res)
	ref.Release()
	ref.Release()
	if _, err := res.BuildMesh(SidePositive); err == nil {
		t.Error("expected error building from disposed result")
	}
}

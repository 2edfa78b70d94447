package slicer

import (
	"sync/atomic"

	"github.com/banshee-data/rubble/internal/monitoring"
)

// ResultRef shares one Result between exactly two consumers, one per side.
// The counter is purely a disposal-ownership mechanism, not a mutation guard:
// both consumers only read the buffers after hand-off, so no lock is needed.
type ResultRef struct {
	result *Result
	refs   atomic.Int32
}

// NewResultRef wraps a Result with its reference count initialised to 2,
// one reference per side-consumer.
func NewResultRef(result *Result) *ResultRef {
	ref := &ResultRef{result: result}
	ref.refs.Store(2)
	return ref
}

// Result returns the shared Result. Callers holding an unreleased reference
// may read its buffers; after calling Release they must not touch it again.
func (ref *ResultRef) Result() *Result { return ref.result }

// Refs returns the current reference count.
func (ref *ResultRef) Refs() int32 { return ref.refs.Load() }

// Release drops one reference. The call that carries the count to zero
// disposes the Result and returns true; every other call returns false.
// Releasing more times than the count allows is a counting bug: it is
// reported and ignored so the buffers are never freed twice.
func (ref *ResultRef) Release() bool {
	n := ref.refs.Add(-1)
	switch {
	case n == 0:
		ref.result.Dispose()
		return true
	case n < 0:
		ref.refs.Store(0)
		monitoring.Violationf("slice result released %d more times than acquired", -n)
		return false
	default:
		return false
	}
}

// ForceDispose is the diagnostic safety net for a reference that never
// reached zero: it flags the counting bug but still frees the buffers rather
// than leaking them. A fully released reference disposes quietly (Dispose is
// idempotent).
func (ref *ResultRef) ForceDispose() {
	if n := ref.refs.Load(); n > 0 && ref.result.Valid() && !ref.result.Disposed() {
		monitoring.Violationf("slice result dropped with %d outstanding reference(s); disposing anyway", n)
	}
	ref.result.Dispose()
}

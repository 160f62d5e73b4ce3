// Package refcount implements the atomic reference counter behind the
// shared-value handles.
//
// The counter answers exactly one interesting question: "is this the sole
// remaining reference?". Reclaiming memory is the garbage collector's job;
// the count exists so that the claim protocol (ref.Shared.Claim) can decide,
// at mutation time, whether an allocation may be reused in place or has to
// be copied.
//
// Two operations race against each other: IsOne (the claim check) and Dec
// (a sibling handle being dropped). Both are single sync/atomic operations
// on the same word, so a claim that observes "sole owner" is guaranteed that
// no other live reference to the same cell existed at the moment of the
// check — any such reference would have kept the count above one.
package refcount

import "sync/atomic"

// Count is an atomic reference count.
//
// The zero Count is unreferenced; call Init before handing out the first
// reference. A Count is embedded in the heap cell it guards, is never shared
// between cells, and must not be touched again after Dec returns true.
type Count struct {
	n atomic.Int32
}

// Init sets the count to one, representing the initial exclusive reference.
func (c *Count) Init() {
	c.n.Store(1)
}

// Inc records one additional reference.
//
//go:nosplit
func (c *Count) Inc() {
	c.n.Add(1)
}

// IsOne reports whether exactly one reference remains.
//
// This is the claim check. A true result is stable: the only handle that
// could change the count afterwards is the one the caller itself holds.
// A false result is only a snapshot — siblings may be dropped at any time.
//
//go:nosplit
func (c *Count) IsOne() bool {
	return c.n.Load() == 1
}

// Dec drops one reference and reports whether it was the final one.
//
// When the count is already one the caller holds the only reference, no
// other thread can touch the counter, and the atomic subtract is skipped.
// Exactly one Dec returns true for any cell, however many goroutines drop
// their references concurrently: every path to true requires either reading
// one (sole holder) or subtracting the count to zero.
//
//go:nosplit
func (c *Count) Dec() bool {
	if c.IsOne() {
		return true
	}
	return c.n.Add(-1) == 0
}

// Refs returns the current count. Diagnostic only: the value may be stale
// by the time the caller looks at it, except when it reads one (see IsOne).
func (c *Count) Refs() int32 {
	return c.n.Load()
}

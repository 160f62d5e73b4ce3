// Package ref implements reference-counted ownership handles over a single
// heap cell.
//
// Two handle types share one allocation:
//
//   - Owned[T] grants exclusive, mutable access. It is move-only: Share and
//     Release consume it, and any later use panics with ErrReleased.
//   - Shared[T] grants shared, read-only access. Copies are made explicitly
//     with Clone (count increment) and dropped with Release (decrement).
//
// The conversion Owned → Shared (Share) is one-directional; the only way
// back is Claim, which succeeds exactly when the caller holds the last
// remaining reference and never copies the value. Claim is the single
// synchronization-sensitive operation of the whole design — everything else
// is plain pointer manipulation.
//
// Handles are small structs passed by value. Assigning a handle to another
// variable does NOT acquire a reference; use Clone for that. This is the
// same discipline every explicit-refcount Go API follows, and the cost of
// not having copy constructors.
package ref

import (
	"unsafe"

	"github.com/brickingsoft/errors"

	"github.com/kolkov/cowval/refcount"
)

var (
	// ErrReleased is the panic value for any use of a handle that has been
	// released or consumed by a move-style operation (Share, Claim).
	ErrReleased = errors.Define("ref: use of released handle")

	// ErrMisalignedCell is the panic value of the allocation-time alignment
	// assertion. Tag-bit stealing (package tagged) requires every cell
	// address to have a zero least-significant bit. Go's allocator aligns
	// far coarser than 2 bytes, so this can only fire on a broken runtime;
	// asserting it here keeps the tag-bit invariant enforced at the one
	// place addresses are minted.
	ErrMisalignedCell = errors.Define("ref: cell allocation is not 2-byte aligned")
)

// cell is the single heap allocation behind every handle: the counter and
// the value side by side, so constructing a reference-counted value costs
// exactly one allocation.
type cell[T any] struct {
	count refcount.Count
	value T
}

func newCell[T any]() *cell[T] {
	c := &cell[T]{}
	if uintptr(unsafe.Pointer(c))&1 != 0 {
		panic(ErrMisalignedCell)
	}
	c.count.Init()
	return c
}

// Owned is the exclusive handle: only its holder may mutate the value.
//
// The zero Owned is released. Owned must not be copied by assignment;
// transfer it by value and treat the source as consumed, or go through
// Share/Release.
type Owned[T any] struct {
	c *cell[T]
}

// New allocates a cell holding value and returns the exclusive handle to it.
func New[T any](value T) Owned[T] {
	c := newCell[T]()
	c.value = value
	return Owned[T]{c: c}
}

// NewShared allocates a cell holding value and returns it already shared.
// Shorthand for New followed by Share.
func NewShared[T any](value T) Shared[T] {
	owned := New(value)
	return owned.Share()
}

// NewInPlace allocates a cell holding the zero value of T and lets build
// construct the value in place, avoiding a copy of T on the way in. A nil
// build leaves the zero value.
func NewInPlace[T any](build func(*T)) Owned[T] {
	c := newCell[T]()
	if build != nil {
		build(&c.value)
	}
	return Owned[T]{c: c}
}

// Get returns the value for mutation. The pointer stays valid across a
// subsequent Share — it keeps pointing into the same cell.
func (o Owned[T]) Get() *T {
	if o.c == nil {
		panic(ErrReleased)
	}
	return &o.c.value
}

// Share converts the exclusive handle into a shared one, consuming the
// receiver. The value is not copied and the count is unchanged: the one
// exclusive reference becomes the one shared reference.
func (o *Owned[T]) Share() Shared[T] {
	if o.c == nil {
		panic(ErrReleased)
	}
	c := o.c
	o.c = nil
	return Shared[T]{c: c}
}

// Release drops the exclusive reference. Releasing an already released
// handle is a no-op, so Release is safe to defer unconditionally.
func (o *Owned[T]) Release() {
	if o.c == nil {
		return
	}
	o.c.count.Dec()
	o.c = nil
}

// Shared is the shared, read-only handle.
//
// The zero Shared is released. The pointer returned by Get must be treated
// as read-only: the allocation may be visible through any number of sibling
// handles on any number of goroutines.
type Shared[T any] struct {
	c *cell[T]
}

// Get returns the referenced value for reading.
func (s Shared[T]) Get() *T {
	if s.c == nil {
		panic(ErrReleased)
	}
	return &s.c.value
}

// Valid reports whether the handle still holds a reference.
func (s Shared[T]) Valid() bool {
	return s.c != nil
}

// Clone acquires one more reference to the same cell and returns the new
// handle. This is the cheap-copy operation: one atomic increment, no
// allocation, no copy of T.
func (s Shared[T]) Clone() Shared[T] {
	if s.c == nil {
		panic(ErrReleased)
	}
	s.c.count.Inc()
	return Shared[T]{c: s.c}
}

// Release drops this reference. Releasing an already released handle is a
// no-op.
func (s *Shared[T]) Release() {
	if s.c == nil {
		return
	}
	s.c.count.Dec()
	s.c = nil
}

// Claim attempts to convert the shared handle back into the exclusive one
// without copying the value.
//
// If the receiver is the sole remaining reference, Claim consumes it and
// returns the exclusive handle to the same cell, true. Otherwise it returns
// the zero Owned, false, and the receiver is untouched and remains valid.
//
// Claims racing against sibling Release calls are safe: at most one holder
// of a given cell can ever observe "sole owner" (see refcount.Count).
// Claims racing against sibling Clone calls are not a thing — cloning
// requires a live sibling, which would keep the count above one.
func (s *Shared[T]) Claim() (Owned[T], bool) {
	if s.c == nil {
		panic(ErrReleased)
	}
	if !s.c.count.IsOne() {
		return Owned[T]{}, false
	}
	c := s.c
	s.c = nil
	return Owned[T]{c: c}, true
}

// Refs returns the current reference count of the cell. Diagnostic only.
func (s Shared[T]) Refs() int32 {
	if s.c == nil {
		return 0
	}
	return s.c.count.Refs()
}

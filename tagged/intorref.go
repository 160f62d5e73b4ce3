package tagged

import (
	"github.com/brickingsoft/errors"

	"github.com/kolkov/cowval/ref"
)

// ErrNumberRange is returned by TryNumber (and is the panic value of Number)
// when the integer does not survive the one-bit tag shift.
var ErrNumberRange = errors.Define("tagged: number does not fit into a tagged word")

// IntOrRef holds either a pointer-width integer or a reference-counted,
// read-only handle to T, in a footprint of two words.
//
// The original overlapping-storage design would hide the handle inside the
// integer word; a garbage-collected runtime must keep live pointers visible,
// so the cell carries the handle in its own word and keeps the tagged
// integer encoding — including the LSB discriminant invariant — intact.
//
// The zero IntOrRef is empty: it is the state consuming operations (Take,
// Release) leave behind, both discriminant queries report false, and it is
// inert. Freshly constructed cells are never empty.
//
// Cells are copied with Clone and dropped with Release; plain assignment of
// a reference-case cell aliases the handle without acquiring a reference.
type IntOrRef[T any] struct {
	word int64
	h    ref.Shared[T]
}

// Number returns an integer-case cell holding n. It panics with
// ErrNumberRange when n needs more than the available bits; TryNumber is
// the checked form.
func Number[T any](n int64) IntOrRef[T] {
	v, err := TryNumber[T](n)
	if err != nil {
		panic(err)
	}
	return v
}

// TryNumber returns an integer-case cell holding n, or ErrNumberRange.
func TryNumber[T any](n int64) (IntOrRef[T], error) {
	if n < MinNumber || n > MaxNumber {
		return IntOrRef[T]{}, ErrNumberRange
	}
	return IntOrRef[T]{word: packNumber(n)}, nil
}

// NewRef allocates a fresh T holding value and returns the reference-case
// cell.
func NewRef[T any](value T) IntOrRef[T] {
	owned := ref.New(value)
	return FromOwned(&owned)
}

// NewRefInPlace allocates a fresh T constructed in place by build and
// returns the reference-case cell.
func NewRefInPlace[T any](build func(*T)) IntOrRef[T] {
	owned := ref.NewInPlace(build)
	return FromOwned(&owned)
}

// FromOwned narrows an exclusive handle into a reference-case cell: the
// handle is consumed and re-wrapped as a shared, read-only one. The value
// is not copied and nothing is allocated, so reference identity is
// preserved.
func FromOwned[T any](owned *ref.Owned[T]) IntOrRef[T] {
	return IntOrRef[T]{h: owned.Share()}
}

// FromShared adopts an existing shared handle. The cell takes over the
// caller's reference; the caller must not release it afterwards.
func FromShared[T any](shared ref.Shared[T]) IntOrRef[T] {
	return IntOrRef[T]{h: shared}
}

// HasNumber reports whether the integer member is live.
//
//go:nosplit
func (v IntOrRef[T]) HasNumber() bool {
	return hasNumberBit(v.word)
}

// HasRef reports whether the reference member is live. HasNumber and HasRef
// are mutually exclusive; both are false only for the empty cell.
func (v IntOrRef[T]) HasRef() bool {
	return v.h.Valid()
}

// Number returns the stored integer, or false if the integer member is not
// the live one.
func (v IntOrRef[T]) Number() (int64, bool) {
	if !v.HasNumber() {
		return 0, false
	}
	return unpackNumber(v.word), true
}

// Ref returns the referenced value, or nil if the reference member is not
// the live one. The pointer must be treated as read-only.
func (v IntOrRef[T]) Ref() *T {
	if !v.h.Valid() {
		return nil
	}
	return v.h.Get()
}

// Get is the explicit two-case view for pattern-style consumption: exactly
// one side is meaningful. A nil pointer means the integer case.
func (v IntOrRef[T]) Get() (int64, *T) {
	if p := v.Ref(); p != nil {
		return 0, p
	}
	n, _ := v.Number()
	return n, nil
}

// Refs returns the reference count of the referenced cell, or zero for the
// integer and empty cases. Diagnostic only.
func (v IntOrRef[T]) Refs() int32 {
	return v.h.Refs()
}

// Clone copies the cell, constructing only the live member: the reference
// case acquires one more reference, the integer (and empty) case copies the
// raw word.
func (v IntOrRef[T]) Clone() IntOrRef[T] {
	if v.h.Valid() {
		return IntOrRef[T]{h: v.h.Clone()}
	}
	return IntOrRef[T]{word: v.word}
}

// Take moves the cell out of the receiver: the result holds whatever was
// live, the receiver becomes empty, and the reference count is unchanged.
func (v *IntOrRef[T]) Take() IntOrRef[T] {
	out := *v
	*v = IntOrRef[T]{}
	return out
}

// Release destroys the live member exactly once and leaves the cell empty.
// Releasing an empty or integer-case cell only clears the word.
func (v *IntOrRef[T]) Release() {
	v.h.Release()
	v.word = 0
}

// Equal reports whether two cells hold the same logical value: both
// reference-case with equal referenced values, or both integer-case with
// equal numbers. A reference is never equal to an integer, even when
// numerically coincidental; empty cells equal only each other.
func Equal[T comparable](a, b IntOrRef[T]) bool {
	ap, bp := a.Ref(), b.Ref()
	switch {
	case ap != nil && bp != nil:
		return *ap == *bp
	case ap != nil || bp != nil:
		return false
	default:
		// Covers number-vs-number, number-vs-empty and empty-vs-empty:
		// tagged words are canonical, so raw comparison is exact.
		return a.word == b.word
	}
}

// EqualFunc is Equal for payload types that are not comparable; eq decides
// equality of two referenced values.
func EqualFunc[T any](a, b IntOrRef[T], eq func(x, y *T) bool) bool {
	ap, bp := a.Ref(), b.Ref()
	switch {
	case ap != nil && bp != nil:
		return eq(ap, bp)
	case ap != nil || bp != nil:
		return false
	default:
		return a.word == b.word
	}
}

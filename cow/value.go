package cow

import "github.com/kolkov/cowval/ref"

// Cloner is implemented by payload types whose copy needs more than plain
// assignment. The forced copy in Mutable prefers it when present. Any type
// carrying reference-counted handles (nested cow.Value fields, ref.Shared
// members, tagged.IntOrRef cells) needs it so that the copy acquires its
// own references.
type Cloner[T any] interface {
	Clone() T
}

// Value is a copy-on-write wrapper around a shared, reference-counted T.
//
// The zero Value is in the lazy-default state. Values are copied with Clone
// and dropped with Release; plain assignment aliases the wrapper without
// acquiring a reference and is a bug unless the source is abandoned.
type Value[T any] struct {
	h ref.Shared[T]
}

// New builds a wrapper owning a fresh allocation holding value.
func New[T any](value T) Value[T] {
	return Value[T]{h: ref.NewShared(value)}
}

// NewInPlace builds a wrapper owning a fresh allocation constructed in
// place by build.
func NewInPlace[T any](build func(*T)) Value[T] {
	owned := ref.NewInPlace(build)
	return Value[T]{h: owned.Share()}
}

// Lazy returns a wrapper in the lazy-default state. Equivalent to the zero
// Value; it exists for call sites that want to spell the state out.
func Lazy[T any]() Value[T] {
	return Value[T]{}
}

// IsLazyDefault reports whether the wrapper still defers its allocation.
// True from construction by Lazy (or the zero Value) until the first
// Mutable call.
func (v Value[T]) IsLazyDefault() bool {
	return !v.h.Valid()
}

// Load returns the current value for reading.
//
// In the lazy-default state this is the canonical shared default instance
// of T — no allocation happens. The pointer must be treated as read-only:
// the backing allocation may be shared with any number of clones.
func (v Value[T]) Load() *T {
	if !v.h.Valid() {
		return canonicalDefault[T]()
	}
	return v.h.Get()
}

// Mutable returns the value for writing, copying it first if — and only
// if — the allocation is still shared with other clones.
//
// The returned pointer is valid until the wrapper is cloned, released or
// mutated again; callers should not store it and rather re-request it as
// needed. With and Update are the safer forms.
func (v *Value[T]) Mutable() *T {
	if !v.h.Valid() {
		owned := ref.NewInPlace[T](nil)
		p := owned.Get()
		v.h = owned.Share()
		return p
	}
	if owned, ok := v.h.Claim(); ok {
		// Sole owner: the allocation is reused in place. Re-sharing keeps
		// the pointer valid — it is the same cell.
		p := owned.Get()
		v.h = owned.Share()
		return p
	}
	owned := ref.New(copyOf(v.h.Get()))
	p := owned.Get()
	// Drop the old reference only after the copy succeeded, so a panic in
	// the payload's Clone leaves this wrapper untouched.
	v.h.Release()
	v.h = owned.Share()
	return p
}

// With returns a mutated copy of the wrapper, leaving the receiver as it
// was: it clones the wrapper, applies mutator to the clone's mutable value
// and hands the clone back.
func (v Value[T]) With(mutator func(*T)) Value[T] {
	out := v.Clone()
	mutator(out.Mutable())
	return out
}

// Update is the in-place form of With: it applies mutator to the receiver's
// mutable value.
func (v *Value[T]) Update(mutator func(*T)) {
	mutator(v.Mutable())
}

// Clone returns a new wrapper sharing the same allocation. One atomic
// increment; the payload is not copied.
func (v Value[T]) Clone() Value[T] {
	if !v.h.Valid() {
		return Value[T]{}
	}
	return Value[T]{h: v.h.Clone()}
}

// Release drops this wrapper's reference and resets it to the lazy-default
// state, so later use is well-defined rather than a logic error. Releasing
// a lazy-default wrapper is a no-op; the canonical default instance is
// never deallocated.
func (v *Value[T]) Release() {
	v.h.Release()
}

// copyOf copies the payload for the forced-copy path, through Clone when
// the payload provides it.
func copyOf[T any](src *T) T {
	if c, ok := any(*src).(Cloner[T]); ok {
		return c.Clone()
	}
	return *src
}

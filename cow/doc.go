// Package cow implements a copy-on-write wrapper around a reference-counted
// value.
//
// Copying a Value with Clone is as cheap as copying a pointer (one atomic
// increment), however large the wrapped payload is. The actual copy of the
// payload is deferred until a clone asks for mutable access, and even then
// it only happens if the allocation is still aliased: the sole remaining
// holder reuses its allocation in place.
//
// # Claim protocol
//
// Mutable drives everything through ref.Shared.Claim:
//
//	lazy-default  -> allocate a fresh default T, adopt it
//	sole owner    -> claim succeeds, reuse the allocation, no copy
//	aliased       -> copy the payload into a fresh allocation, repoint;
//	                 the old allocation stays untouched for its holders
//
// In both non-lazy outcomes the wrapper ends up as the sole owner of the
// allocation behind the returned pointer, so an immediately following
// Mutable call takes the claim-success path and does not allocate.
//
// # Lazy default
//
// The zero Value is in the lazy-default state: it holds no allocation and
// reads as a canonical, process-wide default instance of T that is created
// once, shared by every lazy wrapper of the same T, never mutated and never
// torn down. The first Mutable call allocates a private default instance.
//
// # Payload contract
//
// T must tolerate concurrent read-only access from multiple goroutines and
// must not have identity-based behavior (clones are indistinguishable).
// If plain assignment is not a correct copy of T — in particular when T
// itself contains cow.Value fields or other reference-counted handles — T
// must implement Clone() T; the forced copy uses it. A panic raised by
// Clone propagates to the Mutable caller and leaves the wrapper in its
// pre-mutation state.
//
// # Concurrency
//
// Distinct clones of the same logical value may call Mutable concurrently:
// at most one of them can observe sole ownership, the rest fall back to
// copying. A single Value instance is not internally synchronized; callers
// must serialize concurrent use of the same instance.
package cow

// Package tagged implements a discriminated scalar-or-reference cell: a
// value that is either a small integer or a reference-counted handle.
//
// Integer payloads are packed into a tagged word as (n<<1)|1: the value is
// shifted up one position and the vacated least-significant bit carries the
// discriminant.
//
// Layout: [number:63][tag:1]
//
// The tag bit can only be stolen because no reference-counted allocation
// ever has its low address bit set — Go's allocator aligns far coarser than
// 2 bytes, and ref.New asserts it when the cell is minted. The price is one
// bit of range: numbers span [MinNumber, MaxNumber], the native word width
// minus one bit, signed.
package tagged

import "math"

const (
	// TagBits is the number of low bits stolen for the discriminant.
	TagBits = 1

	// numberTag marks a word whose remaining bits hold a packed integer.
	numberTag = 1

	// MaxNumber is the largest storable integer: 2^62-1 on 64-bit words.
	MaxNumber = math.MaxInt64 >> TagBits

	// MinNumber is the smallest storable integer: -2^62 on 64-bit words.
	MinNumber = math.MinInt64 >> TagBits
)

// packNumber encodes n into a tagged word. Callers range-check first; the
// shift silently drops the top bit otherwise.
//
//go:nosplit
func packNumber(n int64) int64 {
	return n<<TagBits | numberTag
}

// unpackNumber decodes a tagged word. The shift is arithmetic, so negative
// payloads survive the round trip.
//
//go:nosplit
func unpackNumber(w int64) int64 {
	return w >> TagBits
}

// hasNumberBit reports whether the word's discriminant bit is set.
//
//go:nosplit
func hasNumberBit(w int64) bool {
	return w&numberTag != 0
}

package tagged

import (
	"testing"

	"github.com/brickingsoft/errors"

	"github.com/kolkov/cowval/ref"
)

type foo struct {
	value int
}

// TestNumber_RoundTrip tests the scalar case across the representable range
// boundaries.
func TestNumber_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		n    int64
	}{
		{name: "zero", n: 0},
		{name: "one", n: 1},
		{name: "minus one", n: -1},
		{name: "the answer", n: 42},
		{name: "max number", n: MaxNumber},
		{name: "min number", n: MinNumber},
		{name: "max minus one", n: MaxNumber - 1},
		{name: "min plus one", n: MinNumber + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Number[foo](tt.n)

			if !v.HasNumber() {
				t.Error("Expected HasNumber() = true")
			}
			if v.HasRef() {
				t.Error("Expected HasRef() = false")
			}
			if got, ok := v.Number(); !ok || got != tt.n {
				t.Errorf("Expected Number() = (%d, true), got (%d, %v)", tt.n, got, ok)
			}
			if v.Ref() != nil {
				t.Error("Expected Ref() = nil for the integer case")
			}
		})
	}
}

// TestNumber_TagBitInvariant tests that the raw word keeps its LSB set for
// the integer case.
func TestNumber_TagBitInvariant(t *testing.T) {
	for _, n := range []int64{0, 1, -1, MaxNumber, MinNumber} {
		v := Number[foo](n)
		if v.word&1 != 1 {
			t.Errorf("Number(%d): Expected the word's least-significant bit to be set, word = %#x", n, v.word)
		}
	}
}

// TestTryNumber_Range tests rejection of integers that would lose their top
// bit to the tag shift.
func TestTryNumber_Range(t *testing.T) {
	tests := []struct {
		name    string
		n       int64
		wantErr bool
	}{
		{name: "max ok", n: MaxNumber, wantErr: false},
		{name: "min ok", n: MinNumber, wantErr: false},
		{name: "max plus one", n: MaxNumber + 1, wantErr: true},
		{name: "min minus one", n: MinNumber - 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TryNumber[foo](tt.n)
			if tt.wantErr && !errors.Is(err, ErrNumberRange) {
				t.Errorf("Expected ErrNumberRange, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

// TestNumber_PanicsOutOfRange tests the unchecked constructor's panic value.
func TestNumber_PanicsOutOfRange(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrNumberRange) {
			t.Fatalf("Expected panic with ErrNumberRange, got %v", r)
		}
	}()
	Number[foo](MaxNumber + 1)
}

// TestNewRef_RoundTrip tests the reference case.
func TestNewRef_RoundTrip(t *testing.T) {
	v := NewRef(foo{value: 42})
	defer v.Release()

	if v.HasNumber() {
		t.Error("Expected HasNumber() = false")
	}
	if !v.HasRef() {
		t.Error("Expected HasRef() = true")
	}
	if _, ok := v.Number(); ok {
		t.Error("Expected Number() to report absent for the reference case")
	}
	if got := v.Ref(); got == nil || got.value != 42 {
		t.Errorf("Expected Ref() to point at {42}, got %+v", got)
	}
}

// TestNewRefInPlace tests in-place construction of the reference case.
func TestNewRefInPlace(t *testing.T) {
	v := NewRefInPlace(func(f *foo) { f.value = 7 })
	defer v.Release()

	if got := v.Ref(); got == nil || got.value != 7 {
		t.Errorf("Expected Ref() to point at {7}, got %+v", got)
	}
}

// TestGet_TwoCaseView tests the explicit variant accessor.
func TestGet_TwoCaseView(t *testing.T) {
	num := Number[foo](9)
	if n, p := num.Get(); p != nil || n != 9 {
		t.Errorf("Expected (9, nil), got (%d, %v)", n, p)
	}

	rv := NewRef(foo{value: 3})
	defer rv.Release()
	if n, p := rv.Get(); p == nil || p.value != 3 || n != 0 {
		t.Errorf("Expected (0, &{3}), got (%d, %v)", n, p)
	}
}

// TestFromOwned_NarrowingPreservesIdentity tests that narrowing an exclusive
// handle consumes it without copying the value or touching the count.
func TestFromOwned_NarrowingPreservesIdentity(t *testing.T) {
	owned := ref.New(foo{value: 13})
	before := owned.Get()

	v := FromOwned(&owned)
	defer v.Release()

	if v.Ref() != before {
		t.Error("Expected narrowing to preserve the backing allocation")
	}
	if v.Refs() != 1 {
		t.Errorf("Expected the count to be unchanged by narrowing, got %d", v.Refs())
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ref.ErrReleased) {
			t.Fatalf("Expected the owned handle to be consumed, got %v", r)
		}
	}()
	owned.Get()
}

// TestFromOwned_NoExtraAllocation tests that the whole allocate-narrow-release
// cycle costs exactly the one cell allocation.
func TestFromOwned_NoExtraAllocation(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		owned := ref.New(foo{value: 1})
		v := FromOwned(&owned)
		v.Release()
	})
	if allocs != 1 {
		t.Errorf("Expected 1 allocation for the cycle (the cell itself), got %v", allocs)
	}
}

// TestClone_Release_LiveMember tests copy/destroy bookkeeping of the live
// member.
func TestClone_Release_LiveMember(t *testing.T) {
	v := NewRef(foo{value: 1})
	if v.Refs() != 1 {
		t.Errorf("Expected Refs() = 1, got %d", v.Refs())
	}

	c := v.Clone()
	if v.Refs() != 2 {
		t.Errorf("Expected Refs() = 2 after Clone, got %d", v.Refs())
	}
	if c.Ref() != v.Ref() {
		t.Error("Expected the clone to alias the same referenced value")
	}

	c.Release()
	if v.Refs() != 1 {
		t.Errorf("Expected Refs() = 1 after Release, got %d", v.Refs())
	}
	v.Release()

	n := Number[foo](5)
	nc := n.Clone()
	if got, ok := nc.Number(); !ok || got != 5 {
		t.Errorf("Expected the cloned integer case to read 5, got (%d, %v)", got, ok)
	}
}

// TestTake_EmptiesSource tests move semantics: the value travels, the source
// becomes the inert empty cell, the count is untouched.
func TestTake_EmptiesSource(t *testing.T) {
	v := NewRef(foo{value: 2})
	moved := v.Take()
	defer moved.Release()

	if v.HasNumber() || v.HasRef() {
		t.Error("Expected the moved-from cell to be empty")
	}
	if v.Ref() != nil {
		t.Error("Expected Ref() = nil on the empty cell")
	}
	if _, ok := v.Number(); ok {
		t.Error("Expected Number() absent on the empty cell")
	}
	v.Release() // Inert.

	if moved.Refs() != 1 {
		t.Errorf("Expected the count to be unchanged by Take, got %d", moved.Refs())
	}
	if got := moved.Ref(); got == nil || got.value != 2 {
		t.Errorf("Expected the moved cell to reference {2}, got %+v", got)
	}
}

// TestEqual tests the equality matrix: same-case comparisons by value,
// cross-case never equal.
func TestEqual(t *testing.T) {
	refA := NewRef(foo{value: 42})
	defer refA.Release()
	refB := NewRef(foo{value: 42})
	defer refB.Release()
	refC := NewRef(foo{value: 7})
	defer refC.Release()

	tests := []struct {
		name string
		a, b IntOrRef[foo]
		want bool
	}{
		{name: "equal numbers", a: Number[foo](42), b: Number[foo](42), want: true},
		{name: "unequal numbers", a: Number[foo](42), b: Number[foo](7), want: false},
		{name: "refs with equal values", a: refA, b: refB, want: true},
		{name: "refs with unequal values", a: refA, b: refC, want: false},
		{name: "ref never equals coincidental number", a: refA, b: Number[foo](42), want: false},
		{name: "number never equals ref", a: Number[foo](7), b: refC, want: false},
		{name: "empty equals empty", a: IntOrRef[foo]{}, b: IntOrRef[foo]{}, want: true},
		{name: "empty does not equal number zero", a: IntOrRef[foo]{}, b: Number[foo](0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
			if got := EqualFunc(tt.a, tt.b, func(x, y *foo) bool { return x.value == y.value }); got != tt.want {
				t.Errorf("EqualFunc() = %v, want %v", got, tt.want)
			}
		})
	}
}

// BenchmarkNumber_PackUnpack benchmarks the tagged-word round trip.
func BenchmarkNumber_PackUnpack(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		v := Number[foo](int64(i) & MaxNumber)
		if n, ok := v.Number(); !ok || n != int64(i)&MaxNumber {
			b.Fatal("round trip failed")
		}
	}
}

// BenchmarkIntOrRef_CloneRef benchmarks cheap copies of the reference case.
func BenchmarkIntOrRef_CloneRef(b *testing.B) {
	v := NewRef(foo{value: 1})
	defer v.Release()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c := v.Clone()
		c.Release()
	}
}

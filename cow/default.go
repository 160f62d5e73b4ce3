package cow

import (
	"reflect"
	"sync"
)

// defaults keeps the canonical default instance for every payload type that
// has ever been read in the lazy-default state. Entries are immutable and
// live for the process lifetime; there is no teardown path.
var defaults sync.Map // reflect.Type -> *T

// canonicalDefault returns the process-wide default instance of T.
//
// LoadOrStore keeps the first instance ever published for a given type, so
// every lazy-default wrapper of the same T observes the same backing
// address, on every goroutine, with single-initialization semantics.
func canonicalDefault[T any]() *T {
	key := reflect.TypeFor[T]()
	if p, ok := defaults.Load(key); ok {
		return p.(*T)
	}
	p, _ := defaults.LoadOrStore(key, new(T))
	return p.(*T)
}

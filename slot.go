package atomichash

import (
	"sync/atomic"
	"unsafe"
)

// entry is an immutable key-value record. Once published into a slot it is
// never written again; an update publishes a new entry and the old one is
// left to the garbage collector, so a reader holding an *entry can keep
// using it after a concurrent overwrite.
type entry[K comparable, V any] struct {
	key   K
	value V
}

// slot is a single table cell holding either nothing or one *entry.
//
// swap is the only publishing primitive. It gives no protection against a
// concurrent writer having changed the slot since the caller last looked at
// it, so every caller must inspect what swap hands back.
type slot[K comparable, V any] struct {
	p unsafe.Pointer // *entry[K, V]
}

//go:nosplit
func (s *slot[K, V]) isEmpty() bool {
	return loadPtr(&s.p) == nil
}

// load returns the currently published entry, or nil.
//
//go:nosplit
func (s *slot[K, V]) load() *entry[K, V] {
	return (*entry[K, V])(loadPtr(&s.p))
}

// swap publishes e and returns the previous entry, if any. The caller owns
// the returned entry: it either drops it or publishes it somewhere else.
func (s *slot[K, V]) swap(e *entry[K, V]) *entry[K, V] {
	return (*entry[K, V])(atomic.SwapPointer(&s.p, unsafe.Pointer(e)))
}

// clear publishes empty regardless of the current content.
func (s *slot[K, V]) clear() {
	atomic.StorePointer(&s.p, nil)
}

// compareAndClear publishes empty only if old is still the published entry.
func (s *slot[K, V]) compareAndClear(old *entry[K, V]) bool {
	return atomic.CompareAndSwapPointer(&s.p, unsafe.Pointer(old), nil)
}

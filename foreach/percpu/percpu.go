/*
Package percpu provides a fixed array of per-worker slots, each padded to
its own cache line, so that unrelated workers writing to their own slots
never cause false sharing.

This plays the role of Galois's PerCPU<T>: a piece of per-worker mutable
state (iteration context, statistics, termination token, ...) that only
its owning worker ever writes, and that any worker may read via Remote for
diagnostics or merging at teardown.
*/
package percpu

import "sync/atomic"

// cacheLineSize is sized so that two adjacent Slot values never share a
// cache line on common 64-byte-line architectures, regardless of the size
// of T (as long as T itself is not absurdly large).
const cacheLineSize = 64

// A Slot holds one worker's value of T padded out to a full cache line.
type Slot[T any] struct {
	Value T
	_     [0]byte
	pad   [cacheLineSize]byte
}

// Slots is a fixed-size, cache-line-padded array of per-worker values.
// The zero value is not usable; use New.
type Slots[T any] struct {
	slots []Slot[T]
}

// New returns a Slots with room for n workers.
func New[T any](n int) *Slots[T] {
	return &Slots[T]{slots: make([]Slot[T], n)}
}

// Len returns the number of worker slots.
func (s *Slots[T]) Len() int { return len(s.slots) }

// Local returns a pointer to the slot owned by worker id. Only that
// worker should write through the returned pointer; other workers may
// read it via Remote, but concurrent unsynchronized writes from multiple
// workers to the same slot are a race, exactly as with the original's
// per-thread state.
func (s *Slots[T]) Local(id int) *T {
	return &s.slots[id].Value
}

// Remote returns a copy of the value owned by worker id, for use by
// another worker (e.g. to merge statistics at teardown). Callers that
// need up-to-date values while the owner may still be writing should have
// the owner publish through an atomic or under its own synchronization
// instead.
func (s *Slots[T]) Remote(id int) T {
	return s.slots[id].Value
}

// A Flag is a single word, padded to its own cache line, that one writer
// updates and any number of readers poll. It backs the ForEach engine's
// break and abort flags: writes are unordered and single-writer-at-a-time
// is only guaranteed by the caller's own discipline, matching the
// original's plain "volatile long" fields.
type Flag struct {
	word uint32
	_    [cacheLineSize - 4]byte
}

// Raise sets the flag.
func (f *Flag) Raise() { atomic.StoreUint32(&f.word, 1) }

// Clear resets the flag.
func (f *Flag) Clear() { atomic.StoreUint32(&f.word, 0) }

// IsRaised reports whether the flag is currently set.
func (f *Flag) IsRaised() bool { return atomic.LoadUint32(&f.word) != 0 }

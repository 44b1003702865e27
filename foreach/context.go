package foreach

import "github.com/exascience/amorphous/lazyarray"

// A Context is the per-worker, engine-owned handle an Operator uses to
// push new work, request early termination, and allocate scratch memory.
// It is reset between iterations: the push buffer is drained or cleared,
// the scratch allocator is reset, and the break flag is cleared on abort.
type Context[T any] struct {
	pushBuffer []T
	scratch    *lazyarray.Array[byte]
	breakFlag  bool
}

func newContext[T any](scratchSize int) *Context[T] {
	c := &Context[T]{}
	if scratchSize > 0 {
		c.scratch = lazyarray.New[byte](scratchSize)
	}
	return c
}

// Push queues item to be added to the shared worklist once the current
// iteration commits. Pushes made during an iteration that aborts are
// discarded.
func (c *Context[T]) Push(item T) {
	c.pushBuffer = append(c.pushBuffer, item)
}

// BreakLoop requests that the engine stop consuming new items once the
// current iteration commits. It has no effect if the iteration aborts.
func (c *Context[T]) BreakLoop() {
	c.breakFlag = true
}

// Scratch returns the per-iteration scratch allocator, or nil if the
// engine was not configured with a scratch arena (Engine.ScratchSize ==
// 0) or the operator does not implement PerIterAllocUser. Its contents
// are only valid for the duration of the current iteration.
func (c *Context[T]) Scratch() *lazyarray.Array[byte] {
	return c.scratch
}

func (c *Context[T]) resetBreak() {
	c.breakFlag = false
}

func (c *Context[T]) breakRequested() bool {
	return c.breakFlag
}

func (c *Context[T]) drainPush() []T {
	buf := c.pushBuffer
	c.pushBuffer = nil
	return buf
}

func (c *Context[T]) clearPush() {
	c.pushBuffer = c.pushBuffer[:0]
}

func (c *Context[T]) resetAlloc() {
	if c.scratch != nil {
		c.scratch.Reset()
	}
}

/*
Package speculative provides speculative parallel predicate evaluation
that terminates early once the final answer is known.

Only And survives from the teacher's fuller family (Or, ErrDo, the
Range/ErrRange group, and their per-type Reduce variants): the sole
caller in this domain is sort.IsSorted's parallel is-it-already-sorted
check, which only ever needs "do all of these subranges report
sorted?" — a single And over two speculative subproblems. The rest of
the teacher's family had no caller here and was dropped; see DESIGN.md.
*/
package speculative

import "sync"

/*
And receives zero or more predicate functions and executes them in
parallel.

Each predicate is invoked in its own goroutine, and And returns true if
all of them return true; or And returns false when at least one of them
returns false, without waiting for the other predicates to terminate.

If one or more predicates panic, the corresponding goroutines recover
the panics, and And may eventually panic with the left-most recovered
panic value. If both panics occur and false values are returned, then
the left-most of these events takes precedence.
*/
func And(predicates ...func() bool) (result bool) {
	switch len(predicates) {
	case 0:
		return true
	case 1:
		return predicates[0]()
	}
	var b0, b1 bool
	var p interface{}
	var wg sync.WaitGroup
	wg.Add(1)
	switch len(predicates) {
	case 2:
		go func() {
			defer func() {
				p = recover()
				wg.Done()
			}()
			b1 = predicates[1]()
		}()
		b0 = predicates[0]()
	default:
		half := len(predicates) / 2
		go func() {
			defer func() {
				p = recover()
				wg.Done()
			}()
			b1 = And(predicates[half:]...)
		}()
		b0 = And(predicates[:half]...)
	}
	if !b0 {
		return false
	}
	wg.Wait()
	if p != nil {
		panic(p)
	}
	return b1
}

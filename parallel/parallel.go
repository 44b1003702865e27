// Package parallel provides functions for expressing parallel
// algorithms.
//
// See https://github.com/ExaScience/pargo/wiki/TaskParallelism for a
// general overview.
//
// Only Do and Range survive from the teacher's fuller family (And, Or,
// RangeAnd, RangeOr, and the per-type RangeReduce variants): the
// ForEach engine's InitialFill (foreach/fill.go) fans out over worker
// slices through Range, which also serves as its barrier, and sort's
// parallel quicksort forks its two partitions with Do. The rest of the
// family had no caller in this domain and was dropped; see DESIGN.md.
package parallel

import (
	"fmt"
	"sync"

	"github.com/exascience/amorphous/internal"
)

// Do receives zero or more thunks and executes them in parallel.
//
// Each thunk is invoked in its own goroutine, and Do returns only
// when all thunks have terminated, returning the left-most error
// value that is different from nil.
//
// If one or more thunks panic, the corresponding goroutines recover
// the panics, and Do eventually panics with the left-most
// recovered panic value.
func Do(thunks ...func() error) (err error) {
	switch len(thunks) {
	case 0:
		return nil
	case 1:
		return thunks[0]()
	}
	var err0, err1 error
	var p interface{}
	var wg sync.WaitGroup
	wg.Add(1)
	switch len(thunks) {
	case 2:
		go func() {
			defer func() {
				p = recover()
				wg.Done()
			}()
			err1 = thunks[1]()
		}()
		err0 = thunks[0]()
	default:
		half := len(thunks) / 2
		go func() {
			defer func() {
				p = recover()
				wg.Done()
			}()
			err1 = Do(thunks[half:]...)
		}()
		err0 = Do(thunks[:half]...)
	}
	wg.Wait()
	if p != nil {
		panic(p)
	}
	if err0 != nil {
		err = err0
	} else {
		err = err1
	}
	return
}

// Range receives a range, a batch count n, and a range function f,
// divides the range into batches, and invokes the range function for
// each of these batches in parallel, covering the half-open interval
// from low to high, including low but excluding high.
//
// The range is specified by a low and high integer, with low <=
// high. The batches are determined by dividing up the size of the
// range (high - low) by n. If n is 0, a reasonable default is used
// that takes runtime.GOMAXPROCS(0) into account.
//
// The range function is invoked for each batch in its own goroutine,
// with 0 <= low <= high, and Range returns only when all range
// functions have terminated, returning the left-most error value
// that is different from nil.
//
// Range panics if high < low, or if n < 0.
//
// If one or more range function invocations panic, the corresponding
// goroutines recover the panics, and Range eventually panics with
// the left-most recovered panic value.
func Range(
	low, high, n int,
	f func(low, high int) error,
) error {
	var recur func(int, int, int) error
	recur = func(low, high, n int) (err error) {
		switch {
		case n == 1:
			return f(low, high)
		case n > 1:
			batchSize := ((high - low - 1) / n) + 1
			half := n / 2
			mid := low + batchSize*half
			if mid >= high {
				return f(low, high)
			}
			var err0, err1 error
			var p interface{}
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer func() {
					p = recover()
					wg.Done()
				}()
				err1 = recur(mid, high, n-half)
			}()
			err0 = recur(low, mid, half)
			wg.Wait()
			if p != nil {
				panic(p)
			}
			if err0 != nil {
				err = err0
			} else {
				err = err1
			}
			return
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
	}
	return recur(low, high, internal.ComputeNofBatches(low, high, n))
}

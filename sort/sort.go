/*
Package sort provides a parallel quicksort, kept from the teacher for
one purpose: partition.AssignMirrors (mirror.go) needs each host's
master-GID list sorted ascending before broadcast, so peers can binary
search it to find a ghost's true owner. The teacher's IntSlice,
Float64Slice, StringSlice element types and its parallel merge sort
(StableSort) had no caller in this domain and were dropped along with
them; see DESIGN.md.
*/
package sort

import (
	"sort"
	"sync/atomic"

	"github.com/exascience/amorphous/speculative"
)

/*
SequentialSorter is a type, typically a collection, that can be
sequentially sorted. This is needed as a base case for the parallel
sorting algorithms in this package. It is recommended to implement
this interface by using the functions in the sort package of Go's
standard library.
*/
type SequentialSorter interface {
	// Sort the range that starts at index i and ends at index j. If the
	// collection that is represented by this interface is a slice, then
	// the slice expression collection[i:j] returns the correct slice to
	// be sorted.
	SequentialSort(i, j int)
}

const serialCutoff = 10

/*
IsSorted determines in parallel whether data is already sorted. It
attempts to terminate early when the return value is false, via
speculative.And.
*/
func IsSorted(data sort.Interface) bool {
	size := data.Len()
	if size < qsortGrainSize {
		return sort.IsSorted(data)
	}
	for i := 1; i < serialCutoff; i++ {
		if data.Less(i, i-1) {
			return false
		}
	}
	var done int32
	defer atomic.StoreInt32(&done, 1)
	var pTest func(int, int) bool
	pTest = func(index, size int) bool {
		if size < qsortGrainSize {
			for i := index; i < index+size; i++ {
				if ((i % 1024) == 0) && (atomic.LoadInt32(&done) != 0) {
					return false
				}
				if data.Less(i, i-1) {
					return false
				}
			}
			return true
		}
		half := size / 2
		return speculative.And(
			func() bool { return pTest(index, half) },
			func() bool { return pTest(index+half, size-half) },
		)
	}
	return pTest(serialCutoff, size-serialCutoff)
}

/*
Uint64Slice attaches the methods of sort.Interface and SequentialSorter
to []uint64, sorting in increasing order. The partitioner's Mirror
Assignment phase sorts each host's master-GID list with it before
broadcasting the list for peers to binary-search.
*/
type Uint64Slice []uint64

// SequentialSort implements the method of the SequentialSorter interface.
func (s Uint64Slice) SequentialSort(i, j int) {
	sort.Stable(uint64slice(s[i:j]))
}

func (s Uint64Slice) Len() int {
	return len(s)
}

func (s Uint64Slice) Less(i, j int) bool {
	return s[i] < s[j]
}

func (s Uint64Slice) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

// uint64slice adapts Uint64Slice to the standard library's sort.Interface
// for use with sort.Stable in SequentialSort.
type uint64slice []uint64

func (s uint64slice) Len() int           { return len(s) }
func (s uint64slice) Less(i, j int) bool { return s[i] < s[j] }
func (s uint64slice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

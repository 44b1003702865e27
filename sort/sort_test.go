package sort

import (
	"math/rand"
	"sort"
	"testing"
)

func makeRandomUint64Slice(size int) Uint64Slice {
	result := make(Uint64Slice, size)
	for i := range result {
		result[i] = uint64(rand.Int63n(1 << 40))
	}
	return result
}

// TestSort checks that the parallel quicksort mirror.go's
// masterGIDsAscending relies on produces the same ascending order as
// the standard library's sequential sort, over a slice large enough to
// cross qsortGrainSize and exercise the parallel recursion.
func TestSort(t *testing.T) {
	orgSlice := makeRandomUint64Slice(100 * 0x6000)
	want := make(Uint64Slice, len(orgSlice))
	got := make(Uint64Slice, len(orgSlice))
	copy(want, orgSlice)
	copy(got, orgSlice)

	sort.Sort(uint64slice(want))
	Sort(got)

	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("parallel sort diverges from sequential sort at index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func BenchmarkSort(b *testing.B) {
	orgSlice := makeRandomUint64Slice(100 * 0x6000)
	s := make(Uint64Slice, len(orgSlice))
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		copy(s, orgSlice)
		b.StartTimer()
		Sort(s)
	}
}

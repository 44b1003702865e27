package bitset_test

import (
	"sync"
	"testing"

	"github.com/exascience/amorphous/partition/bitset"
)

func TestSetAndTest(t *testing.T) {
	s := bitset.New(130)
	if s.Test(5) {
		t.Fatal("bit 5 set before Set was called")
	}
	s.Set(5)
	s.Set(129)
	if !s.Test(5) || !s.Test(129) {
		t.Fatal("Set bits not reported as set")
	}
	if s.Test(6) {
		t.Fatal("untouched bit reported as set")
	}
}

func TestConcurrentSetNeverLosesABit(t *testing.T) {
	s := bitset.New(256)
	var wg sync.WaitGroup
	for i := uint64(0); i < 256; i++ {
		wg.Add(1)
		go func(i uint64) {
			defer wg.Done()
			s.Set(i)
		}(i)
	}
	wg.Wait()
	for i := uint64(0); i < 256; i++ {
		if !s.Test(i) {
			t.Fatalf("bit %d lost under concurrent Set", i)
		}
	}
}

func TestOrUnion(t *testing.T) {
	a := bitset.New(64)
	b := bitset.New(64)
	a.Set(1)
	b.Set(2)
	a.Or(b)
	if !a.Test(1) || !a.Test(2) {
		t.Fatal("Or did not union both operands' bits")
	}
}

func TestRangeVisitsSetBitsAscending(t *testing.T) {
	s := bitset.New(20)
	s.Set(3)
	s.Set(7)
	s.Set(15)
	var got []uint64
	s.Range(func(i uint64) bool {
		got = append(got, i)
		return true
	})
	want := []uint64{3, 7, 15}
	if len(got) != len(want) {
		t.Fatalf("Range visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Range visited %v, want %v", got, want)
		}
	}
}

package lazyarray

import "testing"

func TestConstructDestroy(t *testing.T) {
	a := New[string](4)
	if a.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", a.Len())
	}
	for i := 0; i < 4; i++ {
		if a.IsLive(i) {
			t.Fatalf("index %d live before construction", i)
		}
	}
	a.Construct(1, "one")
	a.Construct(2, "two")
	if !a.IsLive(1) || !a.IsLive(2) {
		t.Fatal("constructed indices not live")
	}
	if a.IsLive(0) || a.IsLive(3) {
		t.Fatal("unconstructed indices reported live")
	}
	if got := a.Get(1); got != "one" {
		t.Fatalf("Get(1) = %q, want %q", got, "one")
	}
	a.Destroy(1)
	if a.IsLive(1) {
		t.Fatal("index 1 still live after Destroy")
	}
}

func TestAtRangeCheck(t *testing.T) {
	a := New[int](3)
	a.Construct(0, 42)
	if v, err := a.At(0); err != nil || v != 42 {
		t.Fatalf("At(0) = (%d, %v), want (42, nil)", v, err)
	}
	if _, err := a.At(3); err == nil {
		t.Fatal("At(3) did not error on out-of-range index")
	}
	if _, err := a.At(-1); err == nil {
		t.Fatal("At(-1) did not error on out-of-range index")
	}
}

func TestEmplace(t *testing.T) {
	a := New[int](2)
	calls := 0
	a.Emplace(0, func() int {
		calls++
		return 7
	})
	if calls != 1 {
		t.Fatalf("build thunk called %d times, want 1", calls)
	}
	if got := a.Get(0); got != 7 {
		t.Fatalf("Get(0) = %d, want 7", got)
	}
}

func TestReset(t *testing.T) {
	a := New[int](3)
	a.Construct(0, 1)
	a.Construct(1, 2)
	a.Reset()
	for i := 0; i < 3; i++ {
		if a.IsLive(i) {
			t.Fatalf("index %d live after Reset", i)
		}
	}
}

func TestForEachOrder(t *testing.T) {
	a := New[int](5)
	a.Construct(0, 10)
	a.Construct(2, 20)
	a.Construct(4, 40)

	var forward []int
	a.ForEach(func(i, v int) bool {
		forward = append(forward, v)
		return true
	})
	want := []int{10, 20, 40}
	if len(forward) != len(want) {
		t.Fatalf("ForEach visited %v, want %v", forward, want)
	}
	for i := range want {
		if forward[i] != want[i] {
			t.Fatalf("ForEach visited %v, want %v", forward, want)
		}
	}

	var reverse []int
	a.ForEachReverse(func(i, v int) bool {
		reverse = append(reverse, v)
		return true
	})
	wantReverse := []int{40, 20, 10}
	for i := range wantReverse {
		if reverse[i] != wantReverse[i] {
			t.Fatalf("ForEachReverse visited %v, want %v", reverse, wantReverse)
		}
	}
}

func TestForEachEarlyStop(t *testing.T) {
	a := New[int](5)
	for i := 0; i < 5; i++ {
		a.Construct(i, i)
	}
	var seen int
	a.ForEach(func(i, v int) bool {
		seen++
		return v < 2
	})
	if seen != 3 {
		t.Fatalf("ForEach visited %d elements before stopping, want 3", seen)
	}
}

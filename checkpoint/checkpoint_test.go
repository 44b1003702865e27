package checkpoint_test

import (
	"path/filepath"
	"testing"

	"github.com/exascience/amorphous/checkpoint"
)

// TestStoreRoundTrip exercises checkpoint.Store end to end against a
// real sqlite file: schema creation, a couple of recorded snapshots, and
// Latest returning the most recent one.
func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")

	s, err := checkpoint.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.Latest("PageRank"); err != nil {
		t.Fatalf("Latest on empty store: %v", err)
	} else if ok {
		t.Fatal("Latest on empty store returned ok = true")
	}

	if err := s.Record("PageRank", 100, 3, 2); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record("PageRank", 250, 5, 0); err != nil {
		t.Fatalf("Record: %v", err)
	}

	snap, ok, err := s.Latest("PageRank")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !ok {
		t.Fatal("Latest returned ok = false after Record")
	}
	if snap.Iterations != 250 || snap.Conflicts != 5 || snap.AbortedPending != 0 {
		t.Errorf("Latest = %+v, want the second recorded snapshot", snap)
	}

	if _, ok, err := s.Latest("OtherLoop"); err != nil {
		t.Fatalf("Latest for unrecorded loop: %v", err)
	} else if ok {
		t.Fatal("Latest for unrecorded loop returned ok = true")
	}
}

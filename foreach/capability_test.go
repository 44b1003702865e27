package foreach_test

import (
	"testing"

	"github.com/exascience/amorphous/foreach"
)

type plainOp struct{}

func (plainOp) Apply(int, *foreach.Context[int]) error { return nil }

type fullyExemptOp struct{}

func (fullyExemptOp) Apply(int, *foreach.Context[int]) error { return nil }
func (fullyExemptOp) NoStats()                               {}
func (fullyExemptOp) NoPush()                                {}

type breakAwareOp struct{}

func (breakAwareOp) Apply(int, *foreach.Context[int]) error { return nil }
func (breakAwareOp) NeedsBreak()                             {}

func TestConfigureDefaults(t *testing.T) {
	caps := foreach.Configure[int](plainOp{})
	if !caps.CollectStats || !caps.NeedsPush {
		t.Fatalf("plain operator should default to needing stats/push, got %+v", caps)
	}
	if caps.NeedsBreak {
		t.Fatalf("plain operator should default NeedsBreak = false, got %+v", caps)
	}
}

func TestConfigureExemptions(t *testing.T) {
	caps := foreach.Configure[int](fullyExemptOp{})
	if caps.CollectStats || caps.NeedsPush {
		t.Fatalf("fully exempt operator should opt out of stats/push, got %+v", caps)
	}
}

func TestConfigureBreakCapable(t *testing.T) {
	caps := foreach.Configure[int](breakAwareOp{})
	if !caps.NeedsBreak {
		t.Fatalf("break-aware operator should have NeedsBreak = true, got %+v", caps)
	}
}

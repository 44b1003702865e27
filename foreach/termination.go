package foreach

import "sync/atomic"

// terminationDetector implements the distributed quiescence protocol from
// C2 as a shared atomic countdown rather than the token-ring the original
// runtime uses across CPUs: since all of an in-process engine's workers
// share memory, a single atomic active-worker count already satisfies the
// contract (global termination once every worker has announced idle and
// no WorkHappened has occurred since) without the ring's cross-core
// message-passing cost. A distributed version spanning hosts would need
// the ring or an equivalent token scheme; see partition's host-level
// coordination for that case.
type terminationDetector struct {
	active int32
}

func newTerminationDetector(workers int) *terminationDetector {
	return &terminationDetector{active: int32(workers)}
}

// tokenHolder is one worker's private handle onto the shared detector.
type tokenHolder struct {
	td        *terminationDetector
	announced bool
}

func (td *terminationDetector) tokenFor(int) *tokenHolder {
	return &tokenHolder{td: td}
}

// WorkHappened is advisory: called whenever this worker successfully pops
// an item, so that a worker which had previously announced idle is
// counted as active again.
func (h *tokenHolder) WorkHappened() {
	if h.announced {
		atomic.AddInt32(&h.td.active, 1)
		h.announced = false
	}
}

// LocalTermination announces that this worker found no work and is now
// idle.
func (h *tokenHolder) LocalTermination() {
	if !h.announced {
		atomic.AddInt32(&h.td.active, -1)
		h.announced = true
	}
}

// GlobalTermination reports whether every worker is currently announced
// idle.
func (td *terminationDetector) GlobalTermination() bool {
	return atomic.LoadInt32(&td.active) <= 0
}

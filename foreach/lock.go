package foreach

import "errors"

// ErrConflict is the designated conflict signal: an Operator returns it
// (directly, or wrapped) from within Apply to abort the current
// iteration. The iteration is rolled back and the item is requeued for
// retry; ErrConflict never escapes Engine.Run.
var ErrConflict = errors.New("foreach: conflict")

// A Lockable is the conflict-detection primitive's contract. It is an
// external collaborator: the engine only ever calls TryAcquire and
// Release on it through an IterationContext, and never inspects its
// internal state. A real implementation detects lock-order violations or
// double-acquisition across concurrently running iterations and returns
// ErrConflict from TryAcquire when it does.
type Lockable interface {
	// TryAcquire records this iteration as an owner of the lock. It
	// returns ErrConflict (or an error wrapping it) if doing so would
	// violate the primitive's ordering discipline.
	TryAcquire() error
	// Release removes this iteration's ownership. Called during
	// CancelIteration for every lock acquired since the last
	// StartIteration.
	Release()
}

// An IterationContext is a per-worker mutable record of the locks
// acquired during the current speculative iteration. StartIteration,
// CommitIteration, and CancelIteration delimit its lifetime; Acquire
// records a Lockable so CancelIteration can release it if the iteration
// aborts.
type IterationContext struct {
	locks []Lockable
}

// StartIteration begins a new iteration, discarding any locks left over
// from a previous one (there should be none if Commit/Cancel was always
// called).
func (ic *IterationContext) StartIteration() {
	ic.locks = ic.locks[:0]
}

// Acquire attempts to acquire l on behalf of the current iteration. On
// success l is remembered so a later CancelIteration releases it; on
// failure (a conflict) the caller should let the error propagate out of
// the operator so the engine can roll back.
func (ic *IterationContext) Acquire(l Lockable) error {
	if err := l.TryAcquire(); err != nil {
		return err
	}
	ic.locks = append(ic.locks, l)
	return nil
}

// CommitIteration finalizes the iteration, dropping this context's record
// of the acquired locks without calling Release on them. Neither this
// method nor a later StartIteration releases a committed iteration's
// locks.
func (ic *IterationContext) CommitIteration() {
	ic.locks = ic.locks[:0]
}

// CancelIteration releases every lock acquired since the last
// StartIteration, in reverse acquisition order, and resets the context to
// an empty state.
func (ic *IterationContext) CancelIteration() {
	for i := len(ic.locks) - 1; i >= 0; i-- {
		ic.locks[i].Release()
	}
	ic.locks = ic.locks[:0]
}

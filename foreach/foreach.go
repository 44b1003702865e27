package foreach

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/exascience/amorphous/foreach/percpu"
	"github.com/exascience/amorphous/foreach/stats"
)

// LoopStatistics are the two per-worker counters the original tags every
// loop with, merged across workers when a Run completes.
type LoopStatistics struct {
	Iterations uint64
	Conflicts  uint64
}

// An Engine runs one ForEach loop (C6). The zero Engine is usable: it
// picks GOMAXPROCS(0) workers and a default ChunkedFIFO worklist.
type Engine[T any] struct {
	// Workers is the number of worker goroutines. 0 means
	// runtime.GOMAXPROCS(0).
	Workers int
	// Worklist is the concurrent bag items are drawn from. nil means a
	// fresh ChunkedFIFO.
	Worklist Worklist[T]
	// Reporter, if non-nil, receives Iterations/Conflicts sums and
	// distributions under loopName after Run completes.
	Reporter *stats.Reporter
	// ScratchSize, if > 0, gives operators that declare
	// PerIterAllocUser a lazyarray.Array[byte] of this size as their
	// per-iteration scratch allocator.
	ScratchSize int

	last LoopStatistics
}

type workerState[T any] struct {
	ctx   *Context[T]
	iter  IterationContext
	stats LoopStatistics
	token *tokenHolder
}

// run holds everything shared across workers for one Engine.Run call.
type run[T any] struct {
	ctx           context.Context
	worklist      Worklist[T]
	aborted       *abortedQueue[T]
	term          *terminationDetector
	breakFlag     *percpu.Flag
	hardStop      *percpu.Flag
	abortHappened *percpu.Flag
	caps          Capabilities
	op            Operator[T]
	states        []*workerState[T]
}

func (r *run[T]) shouldStop() bool {
	if r.hardStop.IsRaised() {
		return true
	}
	if r.caps.NeedsBreak && r.breakFlag.IsRaised() {
		return true
	}
	if r.ctx != nil && r.ctx.Err() != nil {
		return true
	}
	return false
}

// process runs op on one item within st's iteration context, following
// the per-iteration protocol from spec: on conflict, cancel, requeue, and
// reset the scratch allocator; on success, flush pushes, reset the scratch
// allocator, and propagate a requested break.
func (r *run[T]) process(workerID int, item T, st *workerState[T]) error {
	if r.caps.CollectStats {
		st.stats.Iterations++
	}
	st.iter.StartIteration()
	err := r.op.Apply(item, st.ctx)

	if isConflict(err) {
		st.iter.CancelIteration()
		if r.caps.CollectStats {
			st.stats.Conflicts++
		}
		r.aborted.push(workerID, item)
		r.abortHappened.Raise()
		st.ctx.resetBreak()
		st.ctx.clearPush()
		if r.caps.NeedsPIA {
			st.ctx.resetAlloc()
		}
		return nil
	}
	if err != nil {
		r.hardStop.Raise()
		return err
	}

	if r.caps.NeedsPush {
		for _, pushed := range st.ctx.drainPush() {
			r.worklist.Push(pushed)
		}
	} else {
		st.ctx.clearPush()
	}
	if r.caps.NeedsPIA {
		st.ctx.resetAlloc()
	}
	if r.caps.NeedsBreak && st.ctx.breakRequested() {
		r.breakFlag.Raise()
	}
	st.iter.CommitIteration()
	return nil
}

func isConflict(err error) bool {
	return err != nil && errors.Is(err, ErrConflict)
}

func (r *run[T]) drainAborted(workerID int, isLeader bool, st *workerState[T]) error {
	if !isLeader {
		return nil
	}
	if !r.abortHappened.IsRaised() {
		return nil
	}
	st.token.WorkHappened()
	r.abortHappened.Clear()
	for {
		item, ok := r.aborted.pop(workerID)
		if !ok {
			return nil
		}
		if r.shouldStop() {
			return nil
		}
		if err := r.process(workerID, item, st); err != nil {
			return err
		}
	}
}

func (r *run[T]) worker(id int) error {
	isLeader := id == 0
	st := r.states[id]
	for {
		if r.shouldStop() {
			return nil
		}
		item, ok := r.worklist.Pop()
		if ok {
			st.token.WorkHappened()
		}
		for ok {
			if r.shouldStop() {
				return nil
			}
			if err := r.process(id, item, st); err != nil {
				return err
			}
			if err := r.drainAborted(id, isLeader, st); err != nil {
				return err
			}
			item, ok = r.worklist.Pop()
		}
		if err := r.drainAborted(id, isLeader, st); err != nil {
			return err
		}
		if r.shouldStop() {
			return nil
		}
		st.token.LocalTermination()
		if r.term.GlobalTermination() {
			return nil
		}
		runtime.Gosched()
	}
}

// Run executes op on every item in initial and on every item
// subsequently pushed, until the worklist and aborted queue both
// quiesce or a break is observed, then returns. It returns the left-most
// non-nil, non-conflict error any worker's operator produced, if any.
func (e *Engine[T]) Run(ctx context.Context, initial []T, op Operator[T], loopName string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}
	wl := e.Worklist
	if wl == nil {
		wl = NewChunkedFIFO[T]()
		e.Worklist = wl
	}
	caps := Configure[T](op)
	term := newTerminationDetector(workers)
	states := make([]*workerState[T], workers)
	for i := range states {
		var scratch int
		if caps.NeedsPIA {
			scratch = e.ScratchSize
		}
		states[i] = &workerState[T]{ctx: newContext[T](scratch), token: term.tokenFor(i)}
	}

	r := &run[T]{
		ctx:            ctx,
		worklist:       wl,
		aborted:        newAbortedQueue[T](workers),
		term:           term,
		breakFlag:      &percpu.Flag{},
		hardStop:       &percpu.Flag{},
		abortHappened:  &percpu.Flag{},
		caps:           caps,
		op:             op,
		states:         states,
	}

	InitialFill(wl, initial, workers, nil)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for id := 0; id < workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			errs[id] = r.worker(id)
		}(id)
	}
	wg.Wait()

	var total LoopStatistics
	for _, st := range states {
		total.Iterations += st.stats.Iterations
		total.Conflicts += st.stats.Conflicts
	}
	e.last = total
	if e.Reporter != nil {
		e.Reporter.ReportSum("Iterations", loopName, int64(total.Iterations))
		e.Reporter.ReportSum("Conflicts", loopName, int64(total.Conflicts))
		for _, st := range states {
			e.Reporter.ReportAvg("IterationsDistribution", loopName, float64(st.stats.Iterations))
			e.Reporter.ReportAvg("ConflictsDistribution", loopName, float64(st.stats.Conflicts))
		}
	}

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stats returns the merged iteration/conflict counters from the most
// recent Run.
func (e *Engine[T]) Stats() LoopStatistics { return e.last }

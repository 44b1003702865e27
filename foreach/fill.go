package foreach

import "github.com/exascience/amorphous/parallel"

// fillRange drives InitialFill's fan-out through parallel.Range (the kept
// teacher package's fork-join range-batcher): it divides [0, n) into
// roughly chunk-sized batches and applies each in its own goroutine.
// parallel.Range's recursive fork-join both runs the batches concurrently
// and acts as the barrier the original's FillWork relies on before the
// engine's first pop.
func fillRange(apply func(lo, hi int), n, chunk int) {
	if n == 0 {
		return
	}
	if chunk <= 0 {
		chunk = n
	}
	nofBatches := (n + chunk - 1) / chunk
	_ = parallel.Range(0, n, nofBatches, func(lo, hi int) error {
		apply(lo, hi)
		return nil
	})
}

/*
Package foreach provides a speculative optimistic parallel-for engine: a
worker-pool-driven, work-stealing executor that applies a user-supplied
operator to items drawn from a dynamic worklist, with per-iteration
conflict detection, abort-and-retry semantics, distributed termination
detection, and configuration-time specialization over operator
capabilities.

The engine is a direct Go port of the ForEachWork/FillWork machinery in
Galois's Runtime/ParallelWork.h: pop an item, run the operator inside an
iteration context that tracks acquired locks, commit on success or cancel
and requeue on conflict, and repeat until the worklist and the
aborted-item queue are both empty and every worker agrees the loop has
quiesced.

Operator capabilities (whether it needs statistics, may call BreakLoop,
pushes new items, or uses the per-iteration scratch allocator) are
derived once via Configure, by type-asserting the operator value against
four small marker interfaces, the Go analogue of the original's
compile-time type-trait Configurator.
*/
package foreach

// Package amorphous provides a speculative optimistic parallel-for engine
// and a custom edge-cut graph partitioner for exploiting amorphous
// data-parallelism in irregular graph computations, together with the
// fork-join task-parallelism building blocks the engine is built from.
//
// amorphous/foreach provides the ForEach engine: a worker-pool-driven
// work-stealing executor that applies a user operator to items drawn from a
// dynamic worklist, with per-iteration conflict detection, abort-and-retry
// semantics, and distributed termination detection.
//
// amorphous/partition provides a custom edge-cut graph partitioner: it
// consumes a global edge list plus a precomputed vertex-to-host assignment,
// exchanges metadata across hosts, materializes local master/mirror
// vertices and their edges, and prepares communication metadata for
// subsequent bulk-synchronous iteration.
//
// amorphous/parallel provides simple functions for executing series of
// thunks in parallel, and for applying a function to batches of a range in
// parallel. The ForEach engine's initial work-fill uses Range to fan out
// across workers, and amorphous/sort's quicksort uses Do to fork its
// partitions.
//
// amorphous/speculative provides a speculative parallel And that
// terminates early as soon as one branch reports false, used by
// amorphous/sort's IsSorted check.
//
// amorphous/sort provides a parallel quicksort over uint64 slices, used by
// the partitioner to keep per-host master-vertex lists ascending for binary
// search.
//
// amorphous/pipeline provides a parallel batch-processing pipeline; the
// partitioner's edge-distribution phase is built as a pipeline.
//
// amorphous/lazyarray provides a fixed-capacity, explicit-lifetime storage
// block used as the ForEach engine's per-iteration scratch allocator.
//
// amorphous/config provides environment-driven, validated configuration for
// both subsystems.
//
// amorphous/checkpoint provides an optional sqlite-backed snapshot store for
// long-running ForEach loops.
//
// amorphous/partition/store provides an optional PostgreSQL-backed
// implementation of partition.MetaReader, for deployments that keep
// partition metadata in a database instead of sidecar META files.
package amorphous

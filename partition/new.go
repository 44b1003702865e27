package partition

import (
	"fmt"

	"github.com/exascience/amorphous/foreach/stats"
	"github.com/exascience/amorphous/partition/transport"
)

// New drives Partition Metadata Reader through Mirror Assignment
// (C8-C13) for one host: it reads every host's META records via reader
// to reconstruct the coarse GIDToHost table, reads self's vertexIDMap
// slice, then runs Edge Inspection, Metadata Exchange, Local Node
// Construction, Edge Distribution, and Mirror Assignment in sequence,
// returning the finished Graph.
//
// numGlobalNodes and numGlobalEdges are known before construction
// (spec.md §3) and supplied by the caller rather than derived from the
// META files, which carry no edge counts.
//
// Any read failure — a missing META file, a missing vertexID map file,
// or a malformed record — is returned as a wrapped error rather than
// causing New to panic. Per spec.md §7, callers driving a real host
// process are expected to report the error to stderr and abort; see
// example_partition_test.go.
func New(
	self, numHosts int,
	numGlobalNodes, numGlobalEdges uint64,
	reader MetaReader,
	edges EdgeSource,
	tr transport.Transport,
	reporter *stats.Reporter,
) (*Graph, error) {
	gidToHost := make([]HostRange, numHosts)
	for h := 0; h < numHosts; h++ {
		records, err := reader.ReadMeta(h, numHosts)
		if err != nil {
			return nil, fmt.Errorf("partition: reading META file for host %d: %w", h, err)
		}
		lo, hi, err := metaRange(records, h)
		if err != nil {
			return nil, err
		}
		gidToHost[h] = HostRange{Lo: lo, Hi: hi}
	}

	r := gidToHost[self]
	vertexIDMap, err := reader.ReadVertexIDMap(r.Lo, r.Hi)
	if err != nil {
		return nil, fmt.Errorf("partition: reading vertexID map for host %d: %w", self, err)
	}

	g := NewGraph(HostID(self), numGlobalNodes, numGlobalEdges, gidToHost, vertexIDMap)

	insp := InspectEdges(g, edges)
	ReportDegreeDistribution(g, insp, reporter)

	ex, err := ExchangeMetadata(g, insp, tr, 1)
	if err != nil {
		return nil, fmt.Errorf("partition: exchanging metadata: %w", err)
	}
	ConstructLocalNodes(g, ex)

	installed, err := DistributeEdges(g, edges, tr, 2)
	if err != nil {
		return nil, fmt.Errorf("partition: distributing edges: %w", err)
	}
	if err := ReceiveEdges(g, tr, 2, installed); err != nil {
		return nil, fmt.Errorf("partition: receiving edges: %w", err)
	}
	if err := AssignMirrors(g, tr, 3); err != nil {
		return nil, fmt.Errorf("partition: assigning mirrors: %w", err)
	}
	return g, nil
}

// metaRange derives host h's coarse GID range from its own META records:
// lo is the first record's global_id minus its local_id, hi is lo plus
// the record count. Every record is checked against h (owner_id) and
// against the expected contiguous local_id sequence, so a shuffled or
// cross-assigned META file is reported as an error instead of silently
// producing a wrong coarse range.
func metaRange(records []MetaRecord, h int) (lo, hi uint64, err error) {
	if len(records) == 0 {
		return 0, 0, nil
	}
	lo = records[0].GlobalID - records[0].LocalID
	hi = lo + uint64(len(records))
	for i, rec := range records {
		if rec.OwnerID != uint64(h) {
			return 0, 0, fmt.Errorf("partition: META record %d for host %d claims owner %d", i, h, rec.OwnerID)
		}
		if rec.GlobalID != lo+rec.LocalID {
			return 0, 0, fmt.Errorf("partition: META record %d for host %d is not contiguous: global_id %d, local_id %d, expected base %d", i, h, rec.GlobalID, rec.LocalID, lo)
		}
	}
	return lo, hi, nil
}

package partition

import "github.com/exascience/amorphous/partition/bitset"

// EdgeSource is the external, deliberately-out-of-scope collaborator
// (spec.md §1) that owns the raw global edge list. A host only ever
// calls it for GIDs in its own coarse range, i.e. the range whose edge
// data physically lives on this host regardless of which host the
// custom vertexIDMap eventually assigns as true owner.
type EdgeSource interface {
	// Degree returns the out-degree of vertex gid.
	Degree(gid uint64) int
	// OutEdges returns the destination GIDs of gid's outgoing edges, in
	// a stable order that InspectEdges and DistributeEdges must agree
	// on (they are called for the same gid at different phases).
	OutEdges(gid uint64) []uint64
}

// InspectionResult holds the per-true-owner-host tallies Edge Inspector
// (C9) produces from one pass over self's coarse range.
type InspectionResult struct {
	// NumOutgoingEdges[h][j] is 1+degree(s) for local coarse-range GID
	// s = selfRange.Lo+j whose true owner is host h, else 0.
	NumOutgoingEdges [][]uint64
	// HasIncomingEdge[h] has bit d set for every edge (s, d) where s's
	// true owner is h.
	HasIncomingEdge []*bitset.Set
	// NumAssignedNodesPerHost[h] counts local coarse-range GIDs truly
	// owned by h.
	NumAssignedNodesPerHost []uint64
	// NumAssignedEdgesPerHost[h] sums degree(s) over local coarse-range
	// GIDs s truly owned by h.
	NumAssignedEdgesPerHost []uint64
}

// InspectEdges runs Edge Inspector (C9) over self's coarse range using
// g's VertexIDMap to determine each vertex's true owner. See spec.md
// §4.7: the "+1" in NumOutgoingEdges marks a vertex as owned by h even
// when degree(s) == 0, since the receiver of this tally cannot otherwise
// distinguish "unowned" from "owned but isolated" (see scenario S6).
func InspectEdges(g *Graph, edges EdgeSource) *InspectionResult {
	numHosts := len(g.GIDToHost)
	r := g.selfRange()
	n := r.size()

	res := &InspectionResult{
		NumOutgoingEdges:        make([][]uint64, numHosts),
		HasIncomingEdge:         make([]*bitset.Set, numHosts),
		NumAssignedNodesPerHost: make([]uint64, numHosts),
		NumAssignedEdgesPerHost: make([]uint64, numHosts),
	}
	for h := 0; h < numHosts; h++ {
		res.NumOutgoingEdges[h] = make([]uint64, n)
		res.HasIncomingEdge[h] = bitset.New(g.NumGlobalNodes)
	}

	for s := r.Lo; s < r.Hi; s++ {
		h := HostID(g.VertexIDMap[s-r.Lo])
		degree := edges.Degree(s)
		res.NumOutgoingEdges[h][s-r.Lo] = 1 + uint64(degree)
		res.NumAssignedNodesPerHost[h]++
		res.NumAssignedEdgesPerHost[h] += uint64(degree)
		for _, d := range edges.OutEdges(s) {
			res.HasIncomingEdge[h].Set(d)
		}
	}
	return res
}

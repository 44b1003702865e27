/*
Package partition implements the custom edge-cut graph partitioner: it
consumes a global edge list plus a precomputed vertex-to-host assignment,
exchanges metadata across hosts, materializes local master/mirror
vertices and their edges, and prepares the mirrorNodes communication
metadata subsequent bulk-synchronous supersteps need.

It is grounded on original_source/libdist/include/galois/graphs/
DistributedGraph_CustomEdgeCut.h: field names, the two-pass local-node
construction, and the edge-distribution send/receive protocol all mirror
that header directly, ported from compile-time C++ templates to Go
generics and interfaces where the original used type traits.
*/
package partition

import "fmt"

// HostID identifies one host participating in the partition. It is an
// alias of transport.HostID's underlying type kept local to avoid every
// caller importing the transport package just to name a host.
type HostID int

// A HostRange is the contiguous global-id range [Lo, Hi) pre-assigned to
// one host by the external, coarse vertex-to-host map (gid2host in
// spec.md §3). The custom vertexIDMap overrides ownership within this
// range on a per-vertex basis.
type HostRange struct {
	Lo, Hi uint64
}

func (r HostRange) contains(gid uint64) bool { return gid >= r.Lo && gid < r.Hi }

func (r HostRange) size() uint64 { return r.Hi - r.Lo }

// Graph is one host's local view of the partitioned graph: its master
// vertices, its mirror (ghost) vertices, their CSR edge storage, and the
// bookkeeping needed to translate between global and local ids. The
// field set is unchanged from the header this is ported from.
type Graph struct {
	// Self is this host's id.
	Self HostID

	// NumGlobalNodes and NumGlobalEdges are totals across the whole
	// partitioned graph, known before construction.
	NumGlobalNodes uint64
	NumGlobalEdges uint64

	// GIDToHost is the external, coarse vertex-to-host range table,
	// indexed by HostID.
	GIDToHost []HostRange

	// VertexIDMap holds, for each GID in this host's coarse range
	// [GIDToHost[Self].Lo, GIDToHost[Self].Hi), the true owning HostID
	// as an int32 (custom per-vertex assignment overriding GIDToHost).
	// Indexed by gid - GIDToHost[Self].Lo.
	VertexIDMap []int32

	// LocalToGlobal is the dense LID -> GID map. Invariant: LIDs
	// [0, NumOwned) are masters, [NumOwned, len(LocalToGlobal)) are
	// ghosts.
	LocalToGlobal []uint64

	// GlobalToLocal is the inverse of LocalToGlobal, a bijection on its
	// domain (the local vertex set only).
	GlobalToLocal map[uint64]uint32

	// OwnerVec holds, per LID, the HostID that owns it. For masters
	// this is always Self; for ghosts it is filled in by Mirror
	// Assignment (C13) — until then a ghost's entry is unset (-1).
	OwnerVec []HostID

	// PrefixSumOfEdges[lid] is the running total of outgoing edges
	// through lid inclusive; edge lid's outgoing edges occupy
	// [EdgeBegin(lid), EdgeEnd(lid)) in Edges.
	PrefixSumOfEdges []uint64

	// Edges is the CSR destination-LID array, length NumEdges.
	Edges []uint32

	// NumOwned is the number of local master vertices; NumEdges is the
	// number of local outgoing edges, both frozen after construction.
	NumOwned uint64
	NumEdges uint64

	// MirrorNodes[h] holds the GIDs of local ghosts owned by remote
	// host h, populated by Mirror Assignment (C13).
	MirrorNodes map[HostID][]uint64
}

// NewGraph allocates an empty Graph for host self, with the coarse
// vertex-to-host range table gid2host and the custom per-vertex owner
// map vertexIDMap for self's own coarse range.
func NewGraph(self HostID, numGlobalNodes, numGlobalEdges uint64, gid2host []HostRange, vertexIDMap []int32) *Graph {
	r := gid2host[self]
	if uint64(len(vertexIDMap)) != r.size() {
		panic(fmt.Sprintf("partition: vertexIDMap has %d entries, host %d owns range of size %d", len(vertexIDMap), self, r.size()))
	}
	return &Graph{
		Self:           self,
		NumGlobalNodes: numGlobalNodes,
		NumGlobalEdges: numGlobalEdges,
		GIDToHost:      gid2host,
		VertexIDMap:    vertexIDMap,
		GlobalToLocal:  make(map[uint64]uint32),
		MirrorNodes:    make(map[HostID][]uint64),
	}
}

// selfRange returns this host's coarse [lo, hi) range.
func (g *Graph) selfRange() HostRange { return g.GIDToHost[g.Self] }

// hostForGID returns the coarse owning host of gid, and false if gid
// falls outside every host's range in GIDToHost. Per the Open Question
// decision recorded in DESIGN.md (the original's find_hostID has dead
// code after an unconditional return and never reports a miss), this
// implementation restores the miss-reporting the original's control
// flow could never reach; callers that expect gid to always be in range
// (a malformed GIDToHost table) should panic on the false return
// themselves rather than have hostForGID do it for them.
func (g *Graph) hostForGID(gid uint64) (HostID, bool) {
	for h, r := range g.GIDToHost {
		if r.contains(gid) {
			return HostID(h), true
		}
	}
	return 0, false
}

// TrueOwner returns the true owning host of a GID within self's coarse
// range, consulting VertexIDMap rather than the coarse table.
func (g *Graph) TrueOwner(gid uint64) HostID {
	r := g.selfRange()
	if !r.contains(gid) {
		panic(fmt.Sprintf("partition: TrueOwner called with gid %d outside host %d's coarse range %v", gid, g.Self, r))
	}
	return HostID(g.VertexIDMap[gid-r.Lo])
}

// IsOwned reports whether gid is a master vertex this host actually
// holds. Unlike TrueOwner, which only accepts a gid within self's own
// coarse range, IsOwned tests local mastership directly against
// OwnerVec — the check ReceiveEdges needs, since a received edgeBatch's
// SrcGID is by construction a vertex from the sender's coarse range
// that VertexIDMap reassigned to self.
func (g *Graph) IsOwned(gid uint64) bool {
	lid, ok := g.G2L(gid)
	if !ok {
		return false
	}
	return g.OwnerVec[lid] == g.Self
}

// G2L translates a GID already present in the local vertex set to its
// LID.
func (g *Graph) G2L(gid uint64) (uint32, bool) {
	lid, ok := g.GlobalToLocal[gid]
	return lid, ok
}

// L2G translates a local LID to its GID.
func (g *Graph) L2G(lid uint32) uint64 { return g.LocalToGlobal[lid] }

// NumNodes returns the total number of local vertices, masters plus
// ghosts.
func (g *Graph) NumNodes() int { return len(g.LocalToGlobal) }

// EdgeBegin and EdgeEnd bound lid's outgoing edges within Edges.
func (g *Graph) EdgeBegin(lid uint32) uint64 {
	if lid == 0 {
		return 0
	}
	return g.PrefixSumOfEdges[lid-1]
}

func (g *Graph) EdgeEnd(lid uint32) uint64 { return g.PrefixSumOfEdges[lid] }

// checkInvariants verifies the structural invariants spec.md §3 states.
// Called at the end of construction; a violation is fatal, matching the
// "invariant violation is checked via assertions" error-handling policy
// in spec.md §7.
func (g *Graph) checkInvariants() {
	n := uint64(len(g.LocalToGlobal))
	if n != uint64(g.NumNodes()) {
		panic("partition: numNodes does not match len(LocalToGlobal)")
	}
	if g.NumOwned > n {
		panic(fmt.Sprintf("partition: numOwned %d exceeds numNodes %d", g.NumOwned, n))
	}
	if len(g.PrefixSumOfEdges) != int(g.NumOwned) {
		panic(fmt.Sprintf("partition: prefixSumOfEdges has %d entries, want %d (numOwned)", len(g.PrefixSumOfEdges), g.NumOwned))
	}
	if len(g.PrefixSumOfEdges) > 0 && g.PrefixSumOfEdges[len(g.PrefixSumOfEdges)-1] != g.NumEdges {
		panic(fmt.Sprintf("partition: prefixSumOfEdges.back() == %d, want NumEdges %d", g.PrefixSumOfEdges[len(g.PrefixSumOfEdges)-1], g.NumEdges))
	}
	if uint64(len(g.GlobalToLocal)) != n {
		panic("partition: globalToLocalMap is not a bijection over the local vertex set")
	}
	for lid := uint64(0); lid < n; lid++ {
		gid := g.LocalToGlobal[lid]
		if got, ok := g.GlobalToLocal[gid]; !ok || uint64(got) != lid {
			panic(fmt.Sprintf("partition: globalToLocalMap[%d] inconsistent with localToGlobalVector[%d]", gid, lid))
		}
	}
}

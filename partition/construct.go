package partition

// ConstructLocalNodes runs Local Node Construction (C11): a two-pass
// build that keeps masters contiguous at LIDs [0, numOwned) and ghosts
// after them, from the metadata Exchange gathered from every peer.
func ConstructLocalNodes(g *Graph, ex *ExchangeResult) {
	// Pass 1: masters. Any entry j with a nonzero tally in some peer's
	// NumOutgoingEdges corresponds to a master GID (peer.RangeLo + j)
	// this host truly owns.
	for _, pi := range ex.PeerInfos {
		for j, count := range pi.NumOutgoingEdges {
			if count == 0 {
				continue
			}
			gid := pi.RangeLo + uint64(j)
			g.appendLocalVertex(gid, g.Self)
			g.NumEdges += count - 1
			g.PrefixSumOfEdges = append(g.PrefixSumOfEdges, g.NumEdges)
		}
	}
	g.NumOwned = uint64(len(g.LocalToGlobal))

	// Pass 2: ghosts. Any GID with an incoming edge from a vertex this
	// host truly owns, that isn't itself a local master, is a ghost.
	const unassignedOwner = HostID(-1)
	ex.HasIncomingEdge.Range(func(gid uint64) bool {
		if _, isMaster := g.GlobalToLocal[gid]; isMaster {
			return true
		}
		g.appendLocalVertex(gid, unassignedOwner)
		return true
	})

	g.Edges = make([]uint32, g.NumEdges)
	g.checkInvariants()
}

// appendLocalVertex assigns gid the next LID and records owner in
// OwnerVec. owner is HostID(-1) for a ghost whose true owner is not yet
// known (Mirror Assignment fills it in).
func (g *Graph) appendLocalVertex(gid uint64, owner HostID) {
	lid := uint32(len(g.LocalToGlobal))
	g.LocalToGlobal = append(g.LocalToGlobal, gid)
	g.GlobalToLocal[gid] = lid
	g.OwnerVec = append(g.OwnerVec, owner)
}

package partition

import (
	stdsort "sort"

	"github.com/exascience/amorphous/partition/transport"
	"github.com/exascience/amorphous/sort"
)

// AssignMirrors runs Mirror Assignment (C13): every host broadcasts its
// ascending master-GID list, and on receipt a host binary-searches each
// of its own ghosts against every peer's list to find the ghost's owner,
// populating g.OwnerVec and g.MirrorNodes.
func AssignMirrors(g *Graph, tr transport.Transport, phase uint64) error {
	masters := g.masterGIDsAscending()
	buf, err := encodeWire([]uint64(masters))
	if err != nil {
		return err
	}
	numHosts := tr.NumHosts()
	self := tr.Self()
	for h := 0; h < numHosts; h++ {
		if transport.HostID(h) == self {
			continue
		}
		if err := tr.SendTagged(transport.HostID(h), phase, buf); err != nil {
			return err
		}
	}
	if err := tr.Flush(); err != nil {
		return err
	}

	peerMasters := make([][]uint64, numHosts)
	peerMasters[self] = masters

	for received := 0; received < numHosts-1; {
		src, rbuf, ok, err := tr.ReceiveTagged(phase)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		var list []uint64
		if err := decodeWire(rbuf, &list); err != nil {
			return err
		}
		peerMasters[src] = list
		received++
	}

	for lid := uint64(g.NumOwned); lid < uint64(len(g.LocalToGlobal)); lid++ {
		gid := g.LocalToGlobal[lid]
		owner, found := findOwner(gid, peerMasters, HostID(self))
		if !found {
			panic("partition: ghost not claimed by any remote host's master list")
		}
		g.OwnerVec[lid] = owner
		g.MirrorNodes[owner] = append(g.MirrorNodes[owner], gid)
	}
	return nil
}

// findOwner binary-searches gid in every peer's ascending master list
// except self's own.
func findOwner(gid uint64, peerMasters [][]uint64, self HostID) (HostID, bool) {
	for h, list := range peerMasters {
		if HostID(h) == self {
			continue
		}
		i := stdsort.Search(len(list), func(i int) bool { return list[i] >= gid })
		if i < len(list) && list[i] == gid {
			return HostID(h), true
		}
	}
	return 0, false
}

// masterGIDsAscending returns g's master GIDs sorted ascending, using
// the kept teacher sort package's parallel quicksort rather than the
// standard library's sort.Slice — the same fork-join sort the rest of
// this port keeps for every other ascending-order requirement.
func (g *Graph) masterGIDsAscending() sort.Uint64Slice {
	out := make(sort.Uint64Slice, g.NumOwned)
	copy(out, g.LocalToGlobal[:g.NumOwned])
	sort.Sort(out)
	return out
}

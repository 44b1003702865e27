package partition

import (
	"fmt"

	"github.com/exascience/amorphous/partition/bitset"
	"github.com/exascience/amorphous/partition/transport"
)

// wireMasterInfo is what one host sends one peer during Metadata
// Exchange: the peer's own tallies over the sender's coarse range.
type wireMasterInfo struct {
	NumNodes         uint64
	NumEdges         uint64
	NumOutgoingEdges []uint64
	IncomingWords    []uint64
}

// PeerMasterInfo is a received (or, for self, locally-retained) tally
// from one host's coarse range, keyed by which host sent it.
type PeerMasterInfo struct {
	Host             HostID
	RangeLo          uint64
	NumOutgoingEdges []uint64
}

// ExchangeResult is the output of Metadata Exchange (C10): one
// PeerMasterInfo per host (indexed by HostID) plus the union of every
// peer's incoming-edge bitset for self.
type ExchangeResult struct {
	PeerInfos       []PeerMasterInfo
	HasIncomingEdge *bitset.Set
}

// ExchangeMetadata runs Metadata Exchange (C10): an all-to-all, tagged
// with phase, of each host's Edge Inspector tallies about every peer.
// The receive loop spins on ReceiveTagged(phase) exactly as spec.md
// §4.8 describes, since Transport.ReceiveTagged is non-blocking by
// contract.
func ExchangeMetadata(g *Graph, insp *InspectionResult, tr transport.Transport, phase uint64) (*ExchangeResult, error) {
	numHosts := tr.NumHosts()
	self := tr.Self()

	for h := 0; h < numHosts; h++ {
		if transport.HostID(h) == self {
			continue
		}
		payload := wireMasterInfo{
			NumNodes:         insp.NumAssignedNodesPerHost[h],
			NumEdges:         insp.NumAssignedEdgesPerHost[h],
			NumOutgoingEdges: insp.NumOutgoingEdges[h],
			IncomingWords:    insp.HasIncomingEdge[h].Words(),
		}
		buf, err := encodeWire(payload)
		if err != nil {
			return nil, err
		}
		if err := tr.SendTagged(transport.HostID(h), phase, buf); err != nil {
			return nil, fmt.Errorf("partition: sending metadata to host %d: %w", h, err)
		}
	}
	if err := tr.Flush(); err != nil {
		return nil, err
	}

	result := &ExchangeResult{
		PeerInfos:       make([]PeerMasterInfo, numHosts),
		HasIncomingEdge: bitset.New(g.NumGlobalNodes),
	}
	result.PeerInfos[self] = PeerMasterInfo{
		Host:             HostID(self),
		RangeLo:          g.GIDToHost[self].Lo,
		NumOutgoingEdges: insp.NumOutgoingEdges[self],
	}
	result.HasIncomingEdge.Or(insp.HasIncomingEdge[self])

	want := numHosts - 1
	for received := 0; received < want; {
		src, buf, ok, err := tr.ReceiveTagged(phase)
		if err != nil {
			return nil, fmt.Errorf("partition: receiving metadata: %w", err)
		}
		if !ok {
			continue
		}
		var w wireMasterInfo
		if err := decodeWire(buf, &w); err != nil {
			return nil, err
		}
		result.PeerInfos[src] = PeerMasterInfo{
			Host:             HostID(src),
			RangeLo:          g.GIDToHost[src].Lo,
			NumOutgoingEdges: w.NumOutgoingEdges,
		}
		result.HasIncomingEdge.Or(bitset.FromWords(g.NumGlobalNodes, w.IncomingWords))
		received++
	}
	return result, nil
}

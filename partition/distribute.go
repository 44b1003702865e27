package partition

import (
	"fmt"
	"sync"

	"github.com/exascience/amorphous/partition/transport"
	"github.com/exascience/amorphous/pipeline"
)

// DistributeHighWaterMark bounds how many destination GIDs accumulate in
// a per-destination-host send buffer before Edge Distribution flushes it
// early instead of waiting for the pass to finish.
const DistributeHighWaterMark = 4096

// edgeBatch is one master's destinations, batched for transmission to
// its true owner: "(src_gid, vector<dst_gid>)" from spec.md §4.10.
type edgeBatch struct {
	SrcGID uint64
	Dsts   []uint64
}

// DistributeEdges runs pass 2 of construction (C12) — the send side.
// It scans self's own coarse GID range (the edge data this host physically
// holds) through a pipeline.Par stage (kept teacher package): each
// parallel batch either installs an edge directly into g.Edges, when its
// true owner is self, or accumulates it into a per-destination-host send
// buffer flushed via tr.SendTagged once DistributeHighWaterMark is
// crossed. It returns the number of edges installed locally by this
// pass, which the caller needs to know how many more to expect over the
// network in ReceiveEdges.
func DistributeEdges(g *Graph, edges EdgeSource, tr transport.Transport, phase uint64) (uint64, error) {
	r := g.selfRange()
	gids := make([]uint64, 0, r.size())
	for s := r.Lo; s < r.Hi; s++ {
		gids = append(gids, s)
	}

	var mu sync.Mutex
	pending := make(map[HostID][]edgeBatch)
	pendingCount := make(map[HostID]int)
	var installedLocally uint64
	var firstErr error

	flushLocked := func(h HostID) {
		batches := pending[h]
		if len(batches) == 0 {
			return
		}
		buf, err := encodeWire(batches)
		delete(pending, h)
		delete(pendingCount, h)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		if err := tr.SendTagged(transport.HostID(h), phase, buf); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("partition: sending edge batch to host %d: %w", h, err)
		}
	}

	var p pipeline.Pipeline
	p.Source(gids)
	p.Add(pipeline.Par(pipeline.Receive(func(_ int, data interface{}) interface{} {
		for _, s := range data.([]uint64) {
			h := g.TrueOwner(s)
			dsts := edges.OutEdges(s)
			if h == g.Self {
				lid, ok := g.G2L(s)
				if !ok {
					panic(fmt.Sprintf("partition: local master %d missing from globalToLocalMap during edge distribution", s))
				}
				begin := g.EdgeBegin(lid)
				for i, d := range dsts {
					dlid, ok := g.G2L(d)
					if !ok {
						panic(fmt.Sprintf("partition: destination %d of edge from local master %d has no local LID", d, s))
					}
					g.Edges[begin+uint64(i)] = dlid
				}
				mu.Lock()
				installedLocally += uint64(len(dsts))
				mu.Unlock()
				continue
			}
			mu.Lock()
			pending[h] = append(pending[h], edgeBatch{SrcGID: s, Dsts: dsts})
			pendingCount[h] += len(dsts)
			if pendingCount[h] >= DistributeHighWaterMark {
				flushLocked(h)
			}
			mu.Unlock()
		}
		return data
	})))
	p.Run()
	if err := p.Err(nil); err != nil {
		return installedLocally, err
	}
	if firstErr != nil {
		return installedLocally, firstErr
	}

	mu.Lock()
	for h := range pending {
		flushLocked(h)
	}
	mu.Unlock()
	if firstErr != nil {
		return installedLocally, firstErr
	}
	return installedLocally, tr.Flush()
}

// ReceiveEdges runs the receive side of Edge Distribution (C12): it
// polls Transport.ReceiveTagged(phase) until every edge this host owns
// but did not install locally in DistributeEdges has arrived, installing
// each batch's destinations at its master's precomputed CSR offset.
func ReceiveEdges(g *Graph, tr transport.Transport, phase uint64, installedLocally uint64) error {
	remaining := g.NumEdges - installedLocally
	for remaining > 0 {
		src, buf, ok, err := tr.ReceiveTagged(phase)
		if err != nil {
			return fmt.Errorf("partition: receiving edges: %w", err)
		}
		if !ok {
			continue
		}
		var batches []edgeBatch
		if err := decodeWire(buf, &batches); err != nil {
			return err
		}
		for _, b := range batches {
			if !g.IsOwned(b.SrcGID) {
				panic(fmt.Sprintf("partition: host %d received edges for %d, which it does not own", g.Self, b.SrcGID))
			}
			lid, ok := g.G2L(b.SrcGID)
			if !ok {
				panic(fmt.Sprintf("partition: owned master %d missing from globalToLocalMap", b.SrcGID))
			}
			begin, end := g.EdgeBegin(lid), g.EdgeEnd(lid)
			if uint64(len(b.Dsts)) != end-begin {
				panic(fmt.Sprintf("partition: received %d edges for master %d from host %d, want %d", len(b.Dsts), b.SrcGID, src, end-begin))
			}
			for i, d := range b.Dsts {
				dlid, ok := g.G2L(d)
				if !ok {
					panic(fmt.Sprintf("partition: destination %d of received edge from %d has no local LID", d, b.SrcGID))
				}
				g.Edges[begin+uint64(i)] = dlid
			}
			remaining -= uint64(len(b.Dsts))
		}
	}
	return nil
}

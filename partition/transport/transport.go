/*
Package transport defines the MPI-like network transport contract the
partitioner's metadata exchange (C10) and edge distribution (C12) phases
are built on, and provides an in-process implementation of it for testing
and single-process deployments.

The contract (external collaborator per the design this partitioner is
ported from): SendTagged is non-blocking and reliable, buffers arrive in
send order per (src, dest, phase) triple; ReceiveTagged is non-blocking
and returns ok == false rather than blocking when nothing has arrived yet;
Flush pushes pending outbound traffic without waiting for delivery. A real
multi-host deployment plugs an actual MPI (or similar) binding that
satisfies the same interface; InProcess exists so the rest of the package,
and its tests, do not need one.
*/
package transport

import "sync"

// HostID identifies one host participating in the partition.
type HostID int

// A Transport delivers phase-tagged byte payloads between hosts.
// Implementations must guarantee buffers from a given (src, dst, phase)
// triple arrive in send order, and that ReceiveTagged never blocks.
type Transport interface {
	// SendTagged queues payload for delivery to dest, tagged with phase.
	SendTagged(dest HostID, phase uint64, payload []byte) error
	// ReceiveTagged returns the next available payload tagged with
	// phase from any peer, or ok == false if none has arrived yet.
	ReceiveTagged(phase uint64) (src HostID, payload []byte, ok bool, err error)
	// Flush pushes any buffered outbound traffic. It does not wait for
	// delivery.
	Flush() error
	// Self returns this endpoint's own host id.
	Self() HostID
	// NumHosts returns the total number of hosts in the partition.
	NumHosts() int
}

// A Fabric is the shared in-process switch InProcess endpoints send
// through. One Fabric represents one partition's entire network; call
// Endpoint once per host to obtain that host's Transport.
type Fabric struct {
	numHosts  int
	mu        sync.Mutex
	mailboxes map[mailboxKey][][]byte
}

type mailboxKey struct {
	src, dst HostID
	phase    uint64
}

// NewFabric returns a Fabric for numHosts hosts.
func NewFabric(numHosts int) *Fabric {
	return &Fabric{numHosts: numHosts, mailboxes: make(map[mailboxKey][][]byte)}
}

// Endpoint returns the Transport for host id within this Fabric.
func (f *Fabric) Endpoint(id HostID) Transport {
	return &InProcess{host: id, fabric: f}
}

// InProcess is a Fabric-backed Transport: SendTagged appends to an
// in-memory per-(src,dst,phase) queue guarded by the Fabric's mutex, and
// ReceiveTagged pops from it. It never actually blocks and never fails.
type InProcess struct {
	host   HostID
	fabric *Fabric
}

// Self implements Transport.
func (t *InProcess) Self() HostID { return t.host }

// NumHosts implements Transport.
func (t *InProcess) NumHosts() int { return t.fabric.numHosts }

// SendTagged implements Transport.
func (t *InProcess) SendTagged(dest HostID, phase uint64, payload []byte) error {
	buf := append([]byte(nil), payload...)
	key := mailboxKey{src: t.host, dst: dest, phase: phase}
	f := t.fabric
	f.mu.Lock()
	f.mailboxes[key] = append(f.mailboxes[key], buf)
	f.mu.Unlock()
	return nil
}

// ReceiveTagged implements Transport. It scans peers in ascending host-id
// order and returns the first pending message it finds.
func (t *InProcess) ReceiveTagged(phase uint64) (HostID, []byte, bool, error) {
	f := t.fabric
	f.mu.Lock()
	defer f.mu.Unlock()
	for src := HostID(0); int(src) < f.numHosts; src++ {
		key := mailboxKey{src: src, dst: t.host, phase: phase}
		q := f.mailboxes[key]
		if len(q) > 0 {
			payload := q[0]
			if len(q) == 1 {
				delete(f.mailboxes, key)
			} else {
				f.mailboxes[key] = q[1:]
			}
			return src, payload, true, nil
		}
	}
	return 0, nil, false, nil
}

// Flush implements Transport. InProcess delivery is synchronous, so
// Flush is a no-op.
func (t *InProcess) Flush() error { return nil }

// A PhaseCounter issues monotonically increasing, nonzero epoch numbers
// tied to a transport, replacing the original's process-wide evilPhase
// counter. Each host keeps its own PhaseCounter; as long as every host
// calls Next() the same number of times in the same call order,
// independently-issued phase numbers still line up across hosts, which is
// all the contract in spec.md §9 requires. partition.New does not use a
// PhaseCounter; it tags its three phases with the fixed numbers 1, 2 and
// 3.
type PhaseCounter struct {
	mu sync.Mutex
	n  uint64
}

// Next returns the next phase number, starting at 1.
func (p *PhaseCounter) Next() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	return p.n
}

/*
Package bitset provides a fixed-size, concurrency-safe dynamic bitset used
by the partitioner to record, per host, which global vertex ids have an
incoming edge from that host's locally-owned vertices (C9's
hasIncomingEdge) and, unioned across hosts, which global ids the local
host must materialize as ghosts (C11).

Set is grounded on the atomic fetch-or idiom
(Tingshow-liu-Cluster-BFS-Golang/bitutils.FetchOr): concurrent Set calls
from different goroutines racing on the same word never lose a bit, since
each retries a compare-and-swap until it observes its own bit reflected
back.
*/
package bitset

import "sync/atomic"

const wordBits = 64

// A Set is a fixed-size bitset over [0, n). The zero Set is not usable;
// use New.
type Set struct {
	words []uint64
	n     uint64
}

// New returns a Set with room for n bits, all initially clear.
func New(n uint64) *Set {
	return &Set{words: make([]uint64, (n+wordBits-1)/wordBits), n: n}
}

// Len returns the number of bits the set was sized for.
func (s *Set) Len() uint64 { return s.n }

// Set atomically sets bit i.
func (s *Set) Set(i uint64) {
	word, mask := &s.words[i/wordBits], uint64(1)<<(i%wordBits)
	for {
		old := atomic.LoadUint64(word)
		if old&mask != 0 {
			return
		}
		if atomic.CompareAndSwapUint64(word, old, old|mask) {
			return
		}
	}
}

// Test reports whether bit i is set.
func (s *Set) Test(i uint64) bool {
	return atomic.LoadUint64(&s.words[i/wordBits])&(uint64(1)<<(i%wordBits)) != 0
}

// Or ORs other into s in place, word by word. s and other must have the
// same word count (the same Len rounded up to a word boundary); this is
// the union step Metadata Exchange (C10) performs across every peer's
// hasIncomingEdge bitset.
func (s *Set) Or(other *Set) {
	for i := range s.words {
		for {
			old := atomic.LoadUint64(&s.words[i])
			merged := old | other.words[i]
			if merged == old || atomic.CompareAndSwapUint64(&s.words[i], old, merged) {
				break
			}
		}
	}
}

// Words returns the backing word slice, for serialization by the
// metadata-exchange phase. Callers must not mutate the returned slice
// concurrently with Set/Or calls on this Set.
func (s *Set) Words() []uint64 { return s.words }

// FromWords returns a new Set of n bits whose words are copied verbatim
// from words; len(words) must equal len(New(n).Words()). Used to
// deserialize a peer's incoming-edge bitset received over the network
// transport.
func FromWords(n uint64, words []uint64) *Set {
	s := New(n)
	copy(s.words, words)
	return s
}

// Range calls f for every set bit in ascending order. If f returns
// false, Range stops early.
func (s *Set) Range(f func(i uint64) bool) {
	for wi, w := range s.words {
		if w == 0 {
			continue
		}
		base := uint64(wi) * wordBits
		for b := uint64(0); b < wordBits && base+b < s.n; b++ {
			if w&(1<<b) != 0 {
				if !f(base + b) {
					return
				}
			}
		}
	}
}

package search

import (
	"sort"

	"github.com/skeindb/skein/internal/cost"
	"github.com/skeindb/skein/internal/graph"
)

// MinHash scores candidates with bottom-k sketches of the neighbor-supernode
// sets. Sketches are built per call from current adjacency, so deletions can
// never leave a stale estimate; with the sketch size fixed, each comparison
// is O(k log k) regardless of supernode degree.
type MinHash struct {
	// K is the sketch size (number of minimum hash values kept).
	K int
	// Seed perturbs the hash so independent engines disagree on ties.
	Seed uint64
}

// NewMinHash returns a strategy with sketch size k.
func NewMinHash(k int, seed uint64) *MinHash {
	if k <= 0 {
		k = 16
	}
	return &MinHash{K: k, Seed: seed}
}

// Propose implements Strategy.
func (m *MinHash) Propose(v cost.View, n graph.NodeID, budget int) []graph.SupernodeID {
	own, ok := v.SupernodeOf(n)
	if !ok || budget <= 0 {
		return nil
	}
	base := m.sketch(neighborSet(v, own))
	pool := candidatePool(v, n, budget)
	cands := make([]scored, 0, len(pool))
	for _, sn := range pool {
		est := estimateJaccard(base, m.sketch(neighborSet(v, sn)), m.K)
		cands = append(cands, scored{sn: sn, score: est})
	}
	return rank(cands, budget)
}

// sketch returns the k smallest hash values of the set, ascending.
func (m *MinHash) sketch(set map[graph.SupernodeID]int) []uint64 {
	hashes := make([]uint64, 0, len(set))
	for sn := range set {
		hashes = append(hashes, mix64(m.Seed, uint64(sn)))
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	if len(hashes) > m.K {
		hashes = hashes[:m.K]
	}
	return hashes
}

// estimateJaccard estimates |A∩B| / |A∪B| from two bottom-k sketches by
// counting shared values among the k smallest of the union.
func estimateJaccard(a, b []uint64, k int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared, taken := 0, 0
	i, j := 0, 0
	for taken < k && (i < len(a) || j < len(b)) {
		switch {
		case j >= len(b) || (i < len(a) && a[i] < b[j]):
			i++
		case i >= len(a) || b[j] < a[i]:
			j++
		default: // equal
			shared++
			i++
			j++
		}
		taken++
	}
	if taken == 0 {
		return 0
	}
	return float64(shared) / float64(taken)
}

// mix64 is a 64-bit finalizer (splitmix64 style) keyed by seed.
func mix64(seed, x uint64) uint64 {
	z := x + seed + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

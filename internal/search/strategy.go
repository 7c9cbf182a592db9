// Package search proposes and scores restructuring candidates for the
// summarization engine. Strategies are stateless over a read-only view and
// strictly bounded: a fixed candidate budget and a fixed number of rounds,
// independent of graph size. Cost minimization is best effort; correctness
// never depends on what the search returns.
package search

import (
	"sort"

	"github.com/skeindb/skein/internal/cost"
	"github.com/skeindb/skein/internal/graph"
)

// Strategy shortlists supernodes that a touched node's supernode might merge
// with. Implementations must not retain the view across calls.
type Strategy interface {
	// Propose returns up to budget candidate supernodes for node n, ranked
	// best first. The node's own supernode is never included.
	Propose(v cost.View, n graph.NodeID, budget int) []graph.SupernodeID
}

// scored pairs a candidate with its similarity estimate.
type scored struct {
	sn    graph.SupernodeID
	score float64
}

// candidatePool collects the supernodes reachable from n: owners of its
// neighbors plus supernodes already sharing edges with n's own supernode.
// The pool is capped at 4x the budget before scoring.
func candidatePool(v cost.View, n graph.NodeID, budget int) []graph.SupernodeID {
	own, ok := v.SupernodeOf(n)
	if !ok {
		return nil
	}
	limit := budget * 4
	seen := make(map[graph.SupernodeID]struct{})
	pool := make([]graph.SupernodeID, 0, limit)
	add := func(sn graph.SupernodeID) bool {
		if sn == own {
			return true
		}
		if _, dup := seen[sn]; dup {
			return true
		}
		seen[sn] = struct{}{}
		pool = append(pool, sn)
		return len(pool) < limit
	}
	for w := range v.NodeNeighbors(n) {
		sw, _ := v.SupernodeOf(w)
		if !add(sw) {
			return pool
		}
	}
	for x := range v.SupernodePairs(own) {
		if !add(x) {
			return pool
		}
	}
	return pool
}

// rank sorts candidates by score descending, ties by id for determinism, and
// truncates to budget.
func rank(cands []scored, budget int) []graph.SupernodeID {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].sn < cands[j].sn
	})
	if len(cands) > budget {
		cands = cands[:budget]
	}
	out := make([]graph.SupernodeID, len(cands))
	for i, c := range cands {
		out[i] = c.sn
	}
	return out
}

// neighborSet returns the supernode ids adjacent to sn (including sn itself
// when it has internal edges), the signal both strategies compare.
func neighborSet(v cost.View, sn graph.SupernodeID) map[graph.SupernodeID]int {
	return v.SupernodePairs(sn)
}

// Jaccard scores candidates by the exact Jaccard similarity of
// neighbor-supernode sets. Exact but O(min set size) per candidate; the
// default for small candidate pools and for tests.
type Jaccard struct{}

// Propose implements Strategy.
func (Jaccard) Propose(v cost.View, n graph.NodeID, budget int) []graph.SupernodeID {
	own, ok := v.SupernodeOf(n)
	if !ok || budget <= 0 {
		return nil
	}
	base := neighborSet(v, own)
	pool := candidatePool(v, n, budget)
	cands := make([]scored, 0, len(pool))
	for _, sn := range pool {
		cands = append(cands, scored{sn: sn, score: jaccard(base, neighborSet(v, sn))})
	}
	return rank(cands, budget)
}

func jaccard(a, b map[graph.SupernodeID]int) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for k := range small {
		if _, ok := large[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

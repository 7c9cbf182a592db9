// Package cost implements the description-length cost model for the summary.
//
// The total encoded size is a weighted sum of the supernode count, the
// superedge count and the correction count. Every query works by local
// counting over a read-only view (sizes and crossing-edge counts); nothing in
// this package scans the full graph except Total, which exists for snapshot
// loading and for cross-checking the engine's incremental account.
package cost

import (
	"math"

	"github.com/skeindb/skein/internal/graph"
)

// View is the read-only state the model computes against. It is passed in per
// call; the model retains nothing across calls.
type View interface {
	SupernodeCount() int
	SupernodeSize(sn graph.SupernodeID) int
	SupernodeOf(n graph.NodeID) (graph.SupernodeID, bool)
	Supernodes() []graph.SupernodeID
	SupernodePairs(sn graph.SupernodeID) map[graph.SupernodeID]int
	PairEdgeCount(a, b graph.SupernodeID) int
	NodeNeighbors(n graph.NodeID) map[graph.NodeID]struct{}
}

// Model holds the encoding weights. The zero value is unusable; use the
// engine defaults or set all three weights explicitly.
type Model struct {
	SupernodeWeight  float64
	SuperedgeWeight  float64
	CorrectionWeight float64
}

// PairCapacity returns the number of potential member pairs between a and b
// (or within a, when a == b).
func PairCapacity(v View, a, b graph.SupernodeID) int {
	if a == b {
		n := v.SupernodeSize(a)
		return n * (n - 1) / 2
	}
	return v.SupernodeSize(a) * v.SupernodeSize(b)
}

func capacityOf(sizeA, sizeB int, self bool) int {
	if self {
		return sizeA * (sizeA - 1) / 2
	}
	return sizeA * sizeB
}

// PairCost returns the cheaper encoding cost for a supernode pair with the
// given crossing-edge count and capacity: either a superedge plus one
// deletion correction per missing pair, or one addition correction per edge.
func (m Model) PairCost(edges, capacity int) float64 {
	sparse := float64(edges) * m.CorrectionWeight
	if edges == 0 {
		return 0
	}
	dense := m.SuperedgeWeight + float64(capacity-edges)*m.CorrectionWeight
	return math.Min(dense, sparse)
}

// UseSuperedge reports whether the superedge encoding is strictly cheaper for
// the pair. Ties go to the correction-only side, which touches fewer
// structures.
func (m Model) UseSuperedge(edges, capacity int) bool {
	if edges == 0 {
		return false
	}
	dense := m.SuperedgeWeight + float64(capacity-edges)*m.CorrectionWeight
	sparse := float64(edges) * m.CorrectionWeight
	return dense < sparse
}

// Total recomputes the full encoded size of the current state. Used at
// snapshot load and in tests; the engine maintains the same quantity by
// deltas during streaming.
func (m Model) Total(v View) float64 {
	total := float64(v.SupernodeCount()) * m.SupernodeWeight
	for _, a := range v.Supernodes() {
		for b, edges := range v.SupernodePairs(a) {
			if b < a {
				continue // counted from the lower endpoint
			}
			total += m.PairCost(edges, capacityOf(v.SupernodeSize(a), v.SupernodeSize(b), a == b))
		}
	}
	return total
}

// MergeDelta returns the change in total encoded size if supernodes a and b
// were merged, computed from pair counts only. Negative means beneficial.
func (m Model) MergeDelta(v View, a, b graph.SupernodeID) float64 {
	if a == b {
		return math.Inf(1)
	}
	na, nb := v.SupernodeSize(a), v.SupernodeSize(b)

	var old float64
	// Every pair touching a or b, each counted once.
	for x, edges := range v.SupernodePairs(a) {
		old += m.PairCost(edges, capacityOf(na, v.SupernodeSize(x), x == a))
	}
	for x, edges := range v.SupernodePairs(b) {
		if x == a {
			continue // already counted from a's side
		}
		old += m.PairCost(edges, capacityOf(nb, v.SupernodeSize(x), x == b))
	}

	merged := na + nb
	selfEdges := v.PairEdgeCount(a, a) + v.PairEdgeCount(b, b) + v.PairEdgeCount(a, b)
	neu := m.PairCost(selfEdges, capacityOf(merged, 0, true))
	for x, edges := range v.SupernodePairs(a) {
		if x == a || x == b {
			continue
		}
		neu += m.PairCost(edges+v.PairEdgeCount(b, x), capacityOf(merged, v.SupernodeSize(x), false))
	}
	for x, edges := range v.SupernodePairs(b) {
		if x == a || x == b {
			continue
		}
		if v.PairEdgeCount(a, x) > 0 {
			continue // merged above from a's side
		}
		neu += m.PairCost(edges, capacityOf(merged, v.SupernodeSize(x), false))
	}

	return neu - old - m.SupernodeWeight
}

// SplitDelta returns the change in total encoded size if node n were moved
// out of its supernode into a fresh singleton. Negative means beneficial.
func (m Model) SplitDelta(v View, n graph.NodeID) float64 {
	a, ok := v.SupernodeOf(n)
	if !ok || v.SupernodeSize(a) <= 1 {
		return math.Inf(1)
	}
	na := v.SupernodeSize(a)

	// touch[x] counts n's edges into supernode x (x == a: edges kept inside).
	touch := make(map[graph.SupernodeID]int)
	for w := range v.NodeNeighbors(n) {
		sw, _ := v.SupernodeOf(w)
		touch[sw]++
	}

	var old, neu float64
	for x, edges := range v.SupernodePairs(a) {
		old += m.PairCost(edges, capacityOf(na, v.SupernodeSize(x), x == a))
	}

	// Remainder a' has na-1 members; the singleton s has one.
	neu += m.PairCost(v.PairEdgeCount(a, a)-touch[a], capacityOf(na-1, 0, true))
	neu += m.PairCost(touch[a], na-1) // pair (a', s)
	for x, edges := range v.SupernodePairs(a) {
		if x == a {
			continue
		}
		neu += m.PairCost(edges-touch[x], capacityOf(na-1, v.SupernodeSize(x), false))
		neu += m.PairCost(touch[x], v.SupernodeSize(x)) // pair (s, x)
	}

	return neu - old + m.SupernodeWeight
}

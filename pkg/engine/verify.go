package engine

import (
	"fmt"
	"math"

	"github.com/skeindb/skein/internal/graph"
)

// ReconstructEdges materializes the original edge set implied by the current
// summary: member pairs of every superedge, minus DELETE corrections, plus
// ADD corrections. Keys are packed unordered node pairs.
func (e *Engine) ReconstructEdges() map[uint64]struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reconstructLocked()
}

func (e *Engine) reconstructLocked() map[uint64]struct{} {
	decoded := make(map[uint64]struct{}, e.store.EdgeCount())
	for _, se := range e.store.Superedges() {
		a, b := se[0], se[1]
		if a == b {
			for u := range e.store.Members(a) {
				for v := range e.store.Members(a) {
					if u < v {
						decoded[graph.PackPair(uint32(u), uint32(v))] = struct{}{}
					}
				}
			}
			continue
		}
		for u := range e.store.Members(a) {
			for v := range e.store.Members(b) {
				decoded[graph.PackPair(uint32(u), uint32(v))] = struct{}{}
			}
		}
	}
	e.store.AscendCorrections(func(c graph.Correction) bool {
		k := graph.PackPair(uint32(c.U), uint32(c.V))
		if c.Sign == graph.SignAdd {
			decoded[k] = struct{}{}
		} else {
			delete(decoded, k)
		}
		return true
	})
	return decoded
}

// CheckInvariants verifies losslessness, the partition invariant, correction
// minimality and the cost account against the committed state. Intended for
// tests and debug builds: any returned error wraps ErrInvariantViolation and
// indicates a defect in the restructuring logic.
func (e *Engine) CheckInvariants() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Partition: every node owned, every member set consistent.
	total := 0
	for _, sn := range e.store.Supernodes() {
		size := e.store.SupernodeSize(sn)
		if size == 0 {
			return fmt.Errorf("empty supernode %d: %w", sn, graph.ErrInvariantViolation)
		}
		total += size
		for n := range e.store.Members(sn) {
			owner, ok := e.store.SupernodeOf(n)
			if !ok || owner != sn {
				return fmt.Errorf("node %d listed in supernode %d but owned by %d: %w",
					n, sn, owner, graph.ErrInvariantViolation)
			}
		}
	}
	if total != e.store.NodeCount() {
		return fmt.Errorf("partition covers %d of %d nodes: %w",
			total, e.store.NodeCount(), graph.ErrInvariantViolation)
	}

	// Losslessness: the decoded edge set equals ground truth exactly.
	decoded := e.reconstructLocked()
	if len(decoded) != e.store.EdgeCount() {
		return fmt.Errorf("decoded %d edges, ground truth has %d: %w",
			len(decoded), e.store.EdgeCount(), graph.ErrInvariantViolation)
	}
	for k := range decoded {
		u, v := graph.NodeID(k>>32), graph.NodeID(k&0xffffffff)
		if !e.store.HasEdge(u, v) {
			return fmt.Errorf("decoded edge (%d, %d) not in ground truth: %w",
				u, v, graph.ErrInvariantViolation)
		}
	}

	// Correction minimality: an entry exists only where the implied state
	// disagrees with ground truth.
	var corrErr error
	e.store.AscendCorrections(func(c graph.Correction) bool {
		su, okU := e.store.SupernodeOf(c.U)
		sv, okV := e.store.SupernodeOf(c.V)
		if !okU || !okV {
			corrErr = fmt.Errorf("correction (%d, %d) references unknown node: %w",
				c.U, c.V, graph.ErrInvariantViolation)
			return false
		}
		se := e.store.HasSuperedge(su, sv)
		actual := e.store.HasEdge(c.U, c.V)
		valid := (c.Sign == graph.SignDelete && se && !actual) ||
			(c.Sign == graph.SignAdd && !se && actual)
		if !valid {
			corrErr = fmt.Errorf("stale %s correction for (%d, %d): %w",
				c.Sign, c.U, c.V, graph.ErrInvariantViolation)
			return false
		}
		return true
	})
	if corrErr != nil {
		return corrErr
	}

	// Superedges only between pairs that still share edges.
	for _, se := range e.store.Superedges() {
		if e.store.PairEdgeCount(se[0], se[1]) == 0 {
			return fmt.Errorf("superedge (%d, %d) with no crossing edges: %w",
				se[0], se[1], graph.ErrInvariantViolation)
		}
	}

	// Cost account: the delta-maintained total matches a full recomputation.
	if full := e.model.Total(e.store); math.Abs(full-e.totalCost) > 1e-6 {
		return fmt.Errorf("running cost %.6f, recomputed %.6f: %w",
			e.totalCost, full, graph.ErrInvariantViolation)
	}
	return nil
}

package engine

import (
	"errors"
	"fmt"

	"github.com/skeindb/skein/internal/cost"
	"github.com/skeindb/skein/internal/graph"
	"github.com/skeindb/skein/internal/search"
	"github.com/skeindb/skein/internal/stream"
	"github.com/skeindb/skein/pkg/metrics"
)

// Process runs one stream event through the update state machine:
// ground-truth update, correction fix-up, bounded restructuring, commit.
// An inconsistent event (duplicate insert, missing delete, capacity) is
// rejected with no state change at all; any other outcome is a full commit
// that leaves every invariant satisfied.
func (e *Engine) Process(ev stream.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if ev.Op == stream.OpInsert {
		err = e.applyInsert(ev.U, ev.V)
	} else {
		err = e.applyDelete(ev.U, ev.V)
	}
	if err != nil {
		if errors.Is(err, graph.ErrDuplicateEdge) || errors.Is(err, graph.ErrMissingEdge) {
			e.rejected++
			if e.opts.EnableMetrics {
				metrics.RejectedEventsTotal.Inc()
			}
		}
		return err
	}

	// Restructuring may help around either endpoint; each evaluation is
	// bounded by the candidate budget and the round limit.
	e.restructure(ev.U)
	e.restructure(ev.V)

	e.events++
	if ev.Op == stream.OpInsert {
		e.inserts++
	} else {
		e.deletes++
	}
	e.publishMetrics(ev.Op)
	return nil
}

func (e *Engine) applyInsert(u, v graph.NodeID) error {
	if u == v {
		return fmt.Errorf("self loop on node %d: %w", u, graph.ErrDuplicateEdge)
	}
	if e.store.HasEdge(u, v) {
		return fmt.Errorf("edge (%d, %d): %w", u, v, graph.ErrDuplicateEdge)
	}
	if e.opts.MaxNodes > 0 {
		needed := 0
		if !e.store.HasNode(u) {
			needed++
		}
		if !e.store.HasNode(v) {
			needed++
		}
		if needed > 0 && e.store.NodeCount()+needed > e.opts.MaxNodes {
			return fmt.Errorf("limit %d nodes: %w", e.opts.MaxNodes, graph.ErrCapacityExceeded)
		}
	}

	// Nothing can fail past this point: the event commits atomically.
	su, created := e.store.EnsureNode(u)
	if created {
		e.totalCost += e.model.SupernodeWeight
	}
	sv, created := e.store.EnsureNode(v)
	if created {
		e.totalCost += e.model.SupernodeWeight
	}

	old := e.pairCost(su, sv)
	if err := e.store.AddEdge(u, v); err != nil {
		return err // unreachable after the checks above
	}

	// Correctness fallback: the (u, v) correction alone restores
	// losslessness before any restructuring is even considered.
	if e.store.HasSuperedge(su, sv) {
		e.store.DeleteCorrection(u, v)
	} else {
		e.store.SetCorrection(u, v, graph.SignAdd)
	}
	e.reencodePair(su, sv)
	e.totalCost += e.pairCost(su, sv) - old
	return nil
}

func (e *Engine) applyDelete(u, v graph.NodeID) error {
	if !e.store.HasEdge(u, v) {
		return fmt.Errorf("edge (%d, %d): %w", u, v, graph.ErrMissingEdge)
	}
	su, _ := e.store.SupernodeOf(u)
	sv, _ := e.store.SupernodeOf(v)

	old := e.pairCost(su, sv)
	if err := e.store.RemoveEdge(u, v); err != nil {
		return err // unreachable, existence checked above
	}

	if e.store.HasSuperedge(su, sv) {
		e.store.SetCorrection(u, v, graph.SignDelete)
	} else {
		e.store.DeleteCorrection(u, v)
	}
	e.reencodePair(su, sv)
	e.totalCost += e.pairCost(su, sv) - old
	return nil
}

// reencodePair switches the pair to the cheaper encoding if the cheaper side
// changed, rebuilding its corrections. No-op while the current encoding is
// already the cheaper one.
func (e *Engine) reencodePair(a, b graph.SupernodeID) {
	edges := e.store.PairEdgeCount(a, b)
	use := e.model.UseSuperedge(edges, cost.PairCapacity(e.store, a, b))
	if use == e.store.HasSuperedge(a, b) {
		return
	}
	e.rebuildPair(a, b, use)
}

// rebuildPair re-derives the full encoding of one supernode pair: sets or
// clears the superedge and rewrites the correction of every member pair to
// match ground truth under the chosen side.
func (e *Engine) rebuildPair(a, b graph.SupernodeID, superedge bool) {
	if superedge {
		e.store.SetSuperedge(a, b)
	} else {
		e.store.UnsetSuperedge(a, b)
	}
	if a == b {
		for u := range e.store.Members(a) {
			for v := range e.store.Members(a) {
				if u < v {
					e.fixCorrection(u, v, superedge)
				}
			}
		}
		return
	}
	for u := range e.store.Members(a) {
		for v := range e.store.Members(b) {
			e.fixCorrection(u, v, superedge)
		}
	}
}

// fixCorrection makes the correction entry for one node pair agree with
// ground truth: an entry exists exactly when the implied state is wrong.
func (e *Engine) fixCorrection(u, v graph.NodeID, superedge bool) {
	actual := e.store.HasEdge(u, v)
	switch {
	case superedge && !actual:
		e.store.SetCorrection(u, v, graph.SignDelete)
	case !superedge && actual:
		e.store.SetCorrection(u, v, graph.SignAdd)
	default:
		e.store.DeleteCorrection(u, v)
	}
}

// restructure asks the searcher for the best move around node n and applies
// accepted decisions for up to SearchRounds rounds.
func (e *Engine) restructure(n graph.NodeID) {
	for round := 0; round < e.opts.SearchRounds; round++ {
		dec := e.searcher.Evaluate(e.store, n)
		switch dec.Kind {
		case search.KindMerge:
			e.applyMerge(dec.Source, dec.Target)
			e.merges++
			if e.opts.EnableMetrics {
				metrics.MergesTotal.Inc()
			}
		case search.KindSplit:
			e.applySplit(dec.Node)
			e.splits++
			if e.opts.EnableMetrics {
				metrics.SplitsTotal.Inc()
			}
		default:
			return
		}
	}
}

// applyMerge combines two supernodes, re-deriving the encoding of every
// affected pair and accounting the exact cost change.
func (e *Engine) applyMerge(a, b graph.SupernodeID) {
	// The smaller side donates its members, so the move work is bounded by
	// the smaller volume.
	if e.store.SupernodeSize(b) > e.store.SupernodeSize(a) {
		a, b = b, a
	}

	old := 0.0
	seen := make(map[uint64]struct{})
	addOld := func(x, y graph.SupernodeID) {
		k := graph.PackPair(uint32(x), uint32(y))
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		old += e.pairCost(x, y)
	}
	for x := range e.store.SupernodePairs(a) {
		addOld(a, x)
	}
	for x := range e.store.SupernodePairs(b) {
		addOld(b, x)
	}

	donors := make([]graph.NodeID, 0, e.store.SupernodeSize(b))
	for n := range e.store.Members(b) {
		donors = append(donors, n)
	}
	for _, n := range donors {
		e.store.MoveNode(n, a)
	}

	// Every pair touching the merged supernode carries node pairs whose
	// governing pair changed; rebuild them all from ground truth.
	targets := make([]graph.SupernodeID, 0, len(e.store.SupernodePairs(a)))
	for x := range e.store.SupernodePairs(a) {
		targets = append(targets, x)
	}
	neu := 0.0
	for _, x := range targets {
		edges := e.store.PairEdgeCount(a, x)
		e.rebuildPair(a, x, e.model.UseSuperedge(edges, cost.PairCapacity(e.store, a, x)))
		neu += e.pairCost(a, x)
	}

	e.totalCost += neu - old - e.model.SupernodeWeight
	e.log.Debug("merged supernodes", "into", a, "from", b, "size", e.store.SupernodeSize(a))
}

// applySplit moves node n out of its supernode into a fresh singleton,
// re-deriving affected encodings and accounting the exact cost change.
func (e *Engine) applySplit(n graph.NodeID) {
	a, ok := e.store.SupernodeOf(n)
	if !ok || e.store.SupernodeSize(a) <= 1 {
		return
	}

	oldPairs := make([]graph.SupernodeID, 0, len(e.store.SupernodePairs(a)))
	hadSuperedge := make(map[graph.SupernodeID]bool)
	old := 0.0
	for x := range e.store.SupernodePairs(a) {
		oldPairs = append(oldPairs, x)
		hadSuperedge[x] = e.store.HasSuperedge(a, x)
		old += e.pairCost(a, x)
	}

	s := e.store.NewSupernode()
	e.store.MoveNode(n, s)

	neu := 0.0
	for _, x := range oldPairs {
		if x == a {
			// Internal pairs of the remainder keep their meaning unless the
			// cheaper side flipped; the pairs n used to form inside a are
			// now governed by (a, s).
			e.reencodePair(a, a)
			neu += e.pairCost(a, a)
			if hadSuperedge[a] || e.store.PairEdgeCount(a, s) > 0 {
				edges := e.store.PairEdgeCount(a, s)
				e.rebuildPair(a, s, e.model.UseSuperedge(edges, cost.PairCapacity(e.store, a, s)))
			}
			neu += e.pairCost(a, s)
			continue
		}
		e.reencodePair(a, x)
		neu += e.pairCost(a, x)
		// The node pairs (n, members of x) moved under (s, x). When the old
		// pair had no superedge and n has no edges into x there is nothing
		// to rewrite.
		if hadSuperedge[x] || e.store.PairEdgeCount(s, x) > 0 {
			edges := e.store.PairEdgeCount(s, x)
			e.rebuildPair(s, x, e.model.UseSuperedge(edges, cost.PairCapacity(e.store, s, x)))
		}
		neu += e.pairCost(s, x)
	}

	e.totalCost += neu - old + e.model.SupernodeWeight
	e.log.Debug("split node into singleton", "node", n, "from", a, "singleton", s)
}

func (e *Engine) publishMetrics(op stream.Op) {
	if !e.opts.EnableMetrics {
		return
	}
	metrics.EventsTotal.WithLabelValues(op.String()).Inc()
	metrics.EncodedCost.Set(e.totalCost)
	metrics.Supernodes.Set(float64(e.store.SupernodeCount()))
	metrics.Superedges.Set(float64(e.store.SuperedgeCount()))
	metrics.Corrections.Set(float64(e.store.CorrectionCount()))
}

package search

import (
	"github.com/skeindb/skein/internal/cost"
	"github.com/skeindb/skein/internal/graph"
)

// Kind is the action a Decision proposes.
type Kind uint8

const (
	// KindNone means no candidate improved the encoded size.
	KindNone Kind = iota
	// KindMerge proposes merging Source into Target.
	KindMerge
	// KindSplit proposes moving Node out of Source into a fresh singleton.
	KindSplit
)

// Decision is the pure result of one search invocation. The maintainer may
// apply or discard it; the searcher holds no reference to it afterwards.
type Decision struct {
	Kind   Kind
	Node   graph.NodeID
	Source graph.SupernodeID
	Target graph.SupernodeID
	Delta  float64
}

// Searcher combines a shortlist strategy with exact cost scoring.
type Searcher struct {
	Strategy Strategy
	Model    cost.Model
	Budget   int
}

// Evaluate proposes the single best restructuring around node n: the merge
// candidate with the most negative exact delta, or a split of n out of its
// supernode if that is cheaper. Returns KindNone when nothing improves cost.
func (s *Searcher) Evaluate(v cost.View, n graph.NodeID) Decision {
	best := Decision{Kind: KindNone, Node: n}
	a, ok := v.SupernodeOf(n)
	if !ok {
		return best
	}
	best.Source = a

	for _, c := range s.Strategy.Propose(v, n, s.Budget) {
		if d := s.Model.MergeDelta(v, a, c); d < 0 && (best.Kind == KindNone || d < best.Delta) {
			best = Decision{Kind: KindMerge, Node: n, Source: a, Target: c, Delta: d}
		}
	}
	if v.SupernodeSize(a) > 1 {
		if d := s.Model.SplitDelta(v, n); d < 0 && (best.Kind == KindNone || d < best.Delta) {
			best = Decision{Kind: KindSplit, Node: n, Source: a, Delta: d}
		}
	}
	return best
}

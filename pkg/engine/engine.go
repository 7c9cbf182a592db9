// Package engine implements the incremental graph summarization engine.
//
// The engine consumes a stream of edge insertions and deletions and maintains
// a lossless compressed summary: a partition of the seen nodes into
// supernodes, a set of superedges ("most member pairs are edges") and a set
// of signed per-pair corrections. After every committed event the summary
// reconstructs the exact current edge set, and the running encoded-size total
// matches a from-scratch recomputation.
//
// Basic usage:
//
//	eng, err := engine.New(engine.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	n, err := stream.Drive(src, eng, nil)
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/skeindb/skein/internal/cost"
	"github.com/skeindb/skein/internal/graph"
	"github.com/skeindb/skein/internal/search"
)

// Engine is the summary maintainer. It exclusively owns the graph store and
// the summary structures; the cost model and the candidate searcher are
// stateless services queried per event.
type Engine struct {
	// mu serializes Process, export and telemetry. Events are strictly
	// one-at-a-time; there is no background restructuring.
	mu sync.Mutex

	opts     Options
	store    *graph.Store
	model    cost.Model
	searcher *search.Searcher

	// totalCost is maintained by deltas only, never recomputed mid-stream.
	totalCost float64

	events   uint64
	inserts  uint64
	deletes  uint64
	rejected uint64
	merges   uint64
	splits   uint64

	log *slog.Logger
}

// New builds an engine with the given options.
func New(opts Options) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("engine options: %w", err)
	}

	model := cost.Model{
		SupernodeWeight:  opts.SupernodeWeight,
		SuperedgeWeight:  opts.SuperedgeWeight,
		CorrectionWeight: opts.CorrectionWeight,
	}

	var strat search.Strategy
	switch opts.Strategy {
	case "", StrategyMinHash:
		strat = search.NewMinHash(opts.SketchSize, opts.Seed)
	case StrategyJaccard:
		strat = search.Jaccard{}
	}

	return &Engine{
		opts:  opts,
		store: graph.NewStore(),
		model: model,
		searcher: &search.Searcher{
			Strategy: strat,
			Model:    model,
			Budget:   opts.CandidateBudget,
		},
		log: slog.Default().With("component", "engine"),
	}, nil
}

// pairCost returns the encoded cost of a supernode pair under its current
// encoding. Valid only while the pair's corrections are consistent, which
// every commit restores.
func (e *Engine) pairCost(a, b graph.SupernodeID) float64 {
	edges := e.store.PairEdgeCount(a, b)
	if e.store.HasSuperedge(a, b) {
		capacity := cost.PairCapacity(e.store, a, b)
		return e.model.SuperedgeWeight + float64(capacity-edges)*e.model.CorrectionWeight
	}
	return float64(edges) * e.model.CorrectionWeight
}

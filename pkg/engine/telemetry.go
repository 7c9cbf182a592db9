package engine

// Report is a point-in-time snapshot of the engine's counters and structure
// sizes, consumed by the external benchmarking harness.
type Report struct {
	Events   uint64 `json:"events"`
	Inserts  uint64 `json:"inserts"`
	Deletes  uint64 `json:"deletes"`
	Rejected uint64 `json:"rejected"`
	Merges   uint64 `json:"merges"`
	Splits   uint64 `json:"splits"`

	Nodes       int `json:"nodes"`
	Edges       int `json:"edges"`
	Supernodes  int `json:"supernodes"`
	Superedges  int `json:"superedges"`
	Corrections int `json:"corrections"`

	// TotalCost is the delta-maintained encoded size of the summary.
	TotalCost float64 `json:"total_cost"`
}

// Report returns the current telemetry snapshot.
func (e *Engine) Report() Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Report{
		Events:      e.events,
		Inserts:     e.inserts,
		Deletes:     e.deletes,
		Rejected:    e.rejected,
		Merges:      e.merges,
		Splits:      e.splits,
		Nodes:       e.store.NodeCount(),
		Edges:       e.store.EdgeCount(),
		Supernodes:  e.store.SupernodeCount(),
		Superedges:  e.store.SuperedgeCount(),
		Corrections: e.store.CorrectionCount(),
		TotalCost:   e.totalCost,
	}
}

// RecomputeCost runs the cost model over the full committed state. Exists for
// cross-checking the delta-maintained total; the engine never calls it while
// streaming.
func (e *Engine) RecomputeCost() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Total(e.store)
}

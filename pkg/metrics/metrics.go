package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are process global and registered via promauto; the engine only
// touches them when EnableMetrics is set.
var (
	// EventsTotal counts committed stream events, labeled by operation.
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skein_events_total",
			Help: "Total number of committed stream events",
		},
		[]string{"op"},
	)

	// RejectedEventsTotal counts events refused before any mutation
	// (duplicate inserts, missing deletes).
	RejectedEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skein_rejected_events_total",
			Help: "Total number of rejected malformed stream events",
		},
	)

	// MergesTotal counts applied supernode merges.
	MergesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skein_merges_total",
			Help: "Total number of supernode merges applied",
		},
	)

	// SplitsTotal counts applied supernode splits.
	SplitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skein_splits_total",
			Help: "Total number of supernode splits applied",
		},
	)

	// EncodedCost tracks the running total encoded size of the summary.
	EncodedCost = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skein_encoded_cost",
			Help: "Current total encoded size of the summary",
		},
	)

	// Supernodes tracks the live supernode count.
	Supernodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skein_supernodes",
			Help: "Current number of supernodes",
		},
	)

	// Superedges tracks the live superedge count.
	Superedges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skein_superedges",
			Help: "Current number of superedges",
		},
	)

	// Corrections tracks the live correction count.
	Corrections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skein_corrections",
			Help: "Current number of correction entries",
		},
	)
)

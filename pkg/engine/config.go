package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Strategy names accepted by Options.Strategy.
const (
	StrategyMinHash = "minhash"
	StrategyJaccard = "jaccard"
)

// Options configures an Engine. It is immutable after New: every instance
// carries its own copy, so engines with different settings (e.g., baseline vs
// tuned, in the same test process) never interfere.
type Options struct {
	// CandidateBudget is the maximum number of merge candidates evaluated
	// per touched node (the search budget k).
	CandidateBudget int `yaml:"candidate_budget"`

	// SearchRounds bounds how many accepted restructurings may chain off a
	// single touched node within one event.
	SearchRounds int `yaml:"search_rounds"`

	// SketchSize is the bottom-k sketch size used by the minhash strategy.
	SketchSize int `yaml:"sketch_size"`

	// Encoding weights: the per-structure contributions to the total
	// encoded size.
	SupernodeWeight  float64 `yaml:"supernode_weight"`
	SuperedgeWeight  float64 `yaml:"superedge_weight"`
	CorrectionWeight float64 `yaml:"correction_weight"`

	// Strategy selects the candidate similarity heuristic: "minhash"
	// (default) or "jaccard".
	Strategy string `yaml:"strategy"`

	// Seed perturbs the minhash hashing. Fixed default for reproducible runs.
	Seed uint64 `yaml:"seed"`

	// MaxNodes, when positive, caps the number of admitted nodes; events
	// that would exceed it fail with ErrCapacityExceeded. Zero disables.
	MaxNodes int `yaml:"max_nodes"`

	// EnableMetrics publishes prometheus metrics on every commit. Off by
	// default so parallel engine instances do not fight over the globals.
	EnableMetrics bool `yaml:"enable_metrics"`
}

// DefaultOptions returns the standard configuration.
//
// Defaults:
//   - candidate budget 8, search rounds 2, sketch size 16
//   - all three cost weights 1.0
//   - minhash candidate strategy with a fixed seed
func DefaultOptions() Options {
	return Options{
		CandidateBudget:  8,
		SearchRounds:     2,
		SketchSize:       16,
		SupernodeWeight:  1.0,
		SuperedgeWeight:  1.0,
		CorrectionWeight: 1.0,
		Strategy:         StrategyMinHash,
		Seed:             0x5eed,
	}
}

// LoadOptions reads a yaml config file over the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse config: %w", err)
	}
	return opts, nil
}

func (o Options) validate() error {
	if o.CandidateBudget <= 0 {
		return fmt.Errorf("candidate budget must be positive, got %d", o.CandidateBudget)
	}
	if o.SearchRounds < 0 {
		return fmt.Errorf("search rounds must not be negative, got %d", o.SearchRounds)
	}
	if o.SupernodeWeight < 0 || o.SuperedgeWeight < 0 || o.CorrectionWeight < 0 {
		return fmt.Errorf("cost weights must not be negative")
	}
	switch o.Strategy {
	case "", StrategyMinHash, StrategyJaccard:
		return nil
	default:
		return fmt.Errorf("unknown strategy %q", o.Strategy)
	}
}

package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skein.yaml")
	content := "candidate_budget: 4\n" +
		"search_rounds: 1\n" +
		"strategy: jaccard\n" +
		"correction_weight: 0.5\n" +
		"max_nodes: 1000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if opts.CandidateBudget != 4 || opts.SearchRounds != 1 || opts.MaxNodes != 1000 {
		t.Errorf("overrides not applied: %+v", opts)
	}
	if opts.Strategy != StrategyJaccard {
		t.Errorf("strategy = %q, want jaccard", opts.Strategy)
	}
	if opts.CorrectionWeight != 0.5 {
		t.Errorf("correction weight = %v, want 0.5", opts.CorrectionWeight)
	}
	// Untouched fields keep their defaults.
	if opts.SketchSize != DefaultOptions().SketchSize {
		t.Errorf("sketch size = %d, want default", opts.SketchSize)
	}
	if opts.Seed != DefaultOptions().Seed {
		t.Errorf("seed = %d, want default", opts.Seed)
	}
}

func TestLoadOptionsMissingFile(t *testing.T) {
	if _, err := LoadOptions(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero budget", func(o *Options) { o.CandidateBudget = 0 }},
		{"negative rounds", func(o *Options) { o.SearchRounds = -1 }},
		{"negative weight", func(o *Options) { o.SuperedgeWeight = -1 }},
		{"unknown strategy", func(o *Options) { o.Strategy = "oracle" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)
			if _, err := New(opts); err == nil {
				t.Fatal("expected New to reject the options")
			}
		})
	}
}

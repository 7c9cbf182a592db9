package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gonum.org/v1/gonum/stat"

	"github.com/skeindb/skein/internal/stream"
	"github.com/skeindb/skein/pkg/engine"
	"github.com/skeindb/skein/pkg/persistence"
)

// runReport is the benchmark output consumed by the comparison harness.
type runReport struct {
	RunID        string        `json:"run_id"`
	Dataset      string        `json:"dataset"`
	Elapsed      time.Duration `json:"elapsed_ns"`
	EventsPerSec float64       `json:"events_per_sec"`
	LatencyMean  float64       `json:"latency_mean_us"`
	LatencyP50   float64       `json:"latency_p50_us"`
	LatencyP99   float64       `json:"latency_p99_us"`
	Engine       engine.Report `json:"engine"`
}

func main() {
	configPath := flag.String("config", "", "Path to a yaml config file (optional)")
	dataset := flag.String("dataset", "", "Path to the edge event file (required)")
	exportPath := flag.String("export", "", "Write the summary snapshot to this path after the run")
	metricsAddr := flag.String("metrics-addr", "", "Serve prometheus metrics on this address (e.g. :9092)")
	budget := flag.Int("k", 0, "Candidate budget override")
	rounds := flag.Int("rounds", -1, "Local search round limit override")
	strategy := flag.String("strategy", "", "Candidate strategy override (minhash or jaccard)")

	flag.Parse()

	if *dataset == "" {
		fmt.Fprintln(os.Stderr, "usage: skein -dataset <events file> [-config skein.yaml]")
		os.Exit(2)
	}

	opts := engine.DefaultOptions()
	if *configPath != "" {
		var err error
		opts, err = engine.LoadOptions(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	if *budget > 0 {
		opts.CandidateBudget = *budget
	}
	if *rounds >= 0 {
		opts.SearchRounds = *rounds
	}
	if *strategy != "" {
		opts.Strategy = *strategy
	}
	if *metricsAddr != "" {
		opts.EnableMetrics = true
	}

	eng, err := engine.New(opts)
	if err != nil {
		slog.Error("failed to create engine", "error", err)
		os.Exit(1)
	}

	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	src, err := stream.OpenFile(*dataset)
	if err != nil {
		slog.Error("failed to open dataset", "path", *dataset, "error", err)
		os.Exit(1)
	}
	defer src.Close()

	runID := uuid.New().String()
	slog.Info("starting run", "run_id", runID, "dataset", *dataset,
		"k", opts.CandidateBudget, "rounds", opts.SearchRounds, "strategy", opts.Strategy)

	var latencies []float64 // microseconds
	start := time.Now()
	committed, err := stream.Drive(src, eng, func(_ stream.Event, d time.Duration, _ error) {
		latencies = append(latencies, float64(d.Nanoseconds())/1e3)
	})
	elapsed := time.Since(start)
	if err != nil {
		slog.Error("run aborted", "run_id", runID, "committed", committed, "error", err)
		os.Exit(1)
	}

	sort.Float64s(latencies)
	report := runReport{
		RunID:   runID,
		Dataset: *dataset,
		Elapsed: elapsed,
		Engine:  eng.Report(),
	}
	if elapsed > 0 {
		report.EventsPerSec = float64(committed) / elapsed.Seconds()
	}
	if len(latencies) > 0 {
		report.LatencyMean = stat.Mean(latencies, nil)
		report.LatencyP50 = stat.Quantile(0.50, stat.Empirical, latencies, nil)
		report.LatencyP99 = stat.Quantile(0.99, stat.Empirical, latencies, nil)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		slog.Error("failed to encode report", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if *exportPath != "" {
		if err := writeSnapshot(eng, *exportPath); err != nil {
			slog.Error("failed to export snapshot", "path", *exportPath, "error", err)
			os.Exit(1)
		}
		slog.Info("snapshot exported", "path", *exportPath)
	}
}

func writeSnapshot(eng *engine.Engine, path string) error {
	f, err := persistence.CreateSnapshotFile(path)
	if err != nil {
		return err
	}
	if err := eng.WriteSnapshot(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

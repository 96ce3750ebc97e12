// Command benchmark measures scan throughput on synthetic tables across a
// sweep of worker counts and block sizes.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ajitpratap0/pairscan/internal/pipeline"
	"github.com/ajitpratap0/pairscan/pkg/frame"
	"github.com/ajitpratap0/pairscan/pkg/scanner"
	"github.com/ajitpratap0/pairscan/pkg/stats"
)

var (
	rows       = flag.Int("rows", 200, "Samples per synthetic table")
	cols       = flag.Int("cols", 400, "Features per synthetic table")
	workerList = flag.String("workers", "", "Comma separated worker counts (default 1,2,4,...,NumCPU)")
	blockList  = flag.String("block-sizes", "8,32,128", "Comma separated block sizes")
	method     = flag.String("method", "pearson", "Correlation method (pearson, spearman, kendall)")
	iterations = flag.Int("count", 3, "Runs per configuration; the fastest is reported")
	outputDir  = flag.String("output", "benchmark-results", "Output directory for results")
	cpuProfile = flag.String("cpuprofile", "", "Write a CPU profile of the whole sweep to file")
	seed       = flag.Int64("seed", 1, "Seed for the synthetic tables")
)

// Result is one row of the benchmark report.
type Result struct {
	Scanner     string        `json:"scanner"`
	Workers     int           `json:"workers"`
	BlockSize   int           `json:"block_size"`
	Pairs       int64         `json:"pairs"`
	Matches     int           `json:"matches"`
	Duration    time.Duration `json:"duration_ns"`
	PairsPerSec float64       `json:"pairs_per_sec"`
	RSSBytes    uint64        `json:"rss_bytes"`
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "benchmark: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	workers, err := parseInts(*workerList, defaultWorkers())
	if err != nil {
		return fmt.Errorf("invalid -workers: %w", err)
	}
	blocks, err := parseInts(*blockList, []int{pipeline.DefaultBlockSize})
	if err != nil {
		return fmt.Errorf("invalid -block-sizes: %w", err)
	}
	m, err := stats.ParseMethod(*method)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	source, err := synthetic(*seed, *rows, *cols)
	if err != nil {
		return err
	}

	fmt.Println("=== pairscan benchmark ===")
	fmt.Printf("Table: %d samples x %d features, method %s\n\n", *rows, *cols, m)

	ctx := context.Background()
	logger := zap.NewNop()
	var results []Result

	for _, w := range workers {
		for _, bs := range blocks {
			corr, err := best(func() (Result, error) {
				s, err := scanner.NewCorrScanner(scanner.CorrConfig{
					Mode:      scanner.ModeWithin,
					Method:    m,
					Threshold: 0.5,
					Workers:   w,
					BlockSize: bs,
				}, logger, scanner.WithFrames(source, nil))
				if err != nil {
					return Result{}, err
				}
				start := time.Now()
				if err := s.Scan(ctx); err != nil {
					return Result{}, err
				}
				return Result{Scanner: "corr", Pairs: s.PairsExamined(), Matches: len(s.Matches()), Duration: time.Since(start)}, nil
			})
			if err != nil {
				return err
			}

			stable, err := best(func() (Result, error) {
				s, err := scanner.NewStableScanner(scanner.StableConfig{
					Ratio:     0.9,
					Workers:   w,
					BlockSize: bs,
				}, logger, scanner.WithFrames(source, nil))
				if err != nil {
					return Result{}, err
				}
				start := time.Now()
				if err := s.Scan(ctx); err != nil {
					return Result{}, err
				}
				return Result{Scanner: "stable", Pairs: s.PairsExamined(), Matches: len(s.Matches()), Duration: time.Since(start)}, nil
			})
			if err != nil {
				return err
			}

			for _, r := range []Result{corr, stable} {
				r.Workers, r.BlockSize = w, bs
				if secs := r.Duration.Seconds(); secs > 0 {
					r.PairsPerSec = float64(r.Pairs) / secs
				}
				r.RSSBytes = pipeline.Usage().MemoryRSS
				results = append(results, r)
			}
		}
	}

	printTable(results)

	reportFile := filepath.Join(*outputDir, fmt.Sprintf("pairscan_%s.json", time.Now().Format("20060102-150405")))
	data, err := gojson.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(reportFile, data, 0o644); err != nil { //nolint:gosec // report is not sensitive
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Printf("\nBenchmark results saved to: %s\n", reportFile)
	return nil
}

// best runs fn -count times and keeps the fastest run.
func best(fn func() (Result, error)) (Result, error) {
	var fastest Result
	for i := 0; i < *iterations; i++ {
		r, err := fn()
		if err != nil {
			return Result{}, err
		}
		if i == 0 || r.Duration < fastest.Duration {
			fastest = r
		}
	}
	return fastest, nil
}

func synthetic(seed int64, rows, cols int) (*frame.Frame, error) {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic benchmark data
	data := make([][]float64, rows)
	columns := make([]string, cols)
	for j := range columns {
		columns[j] = "f" + strconv.Itoa(j)
	}
	for i := range data {
		data[i] = make([]float64, cols)
		for j := range data[i] {
			data[i][j] = rng.NormFloat64()
		}
	}
	return frame.New(data, nil, columns)
}

func printTable(results []Result) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCANNER\tWORKERS\tBLOCK\tPAIRS\tMATCHES\tDURATION\tPAIRS/SEC")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%v\t%.0f\n",
			r.Scanner, r.Workers, r.BlockSize, r.Pairs, r.Matches, r.Duration.Round(time.Microsecond), r.PairsPerSec)
	}
	tw.Flush()
}

func defaultWorkers() []int {
	var ws []int
	for w := 1; w < runtime.NumCPU(); w *= 2 {
		ws = append(ws, w)
	}
	return append(ws, runtime.NumCPU())
}

func parseInts(list string, fallback []int) ([]int, error) {
	if strings.TrimSpace(list) == "" {
		return fallback, nil
	}
	var out []int
	for _, part := range strings.Split(list, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, fmt.Errorf("value %d must be at least 1", n)
		}
		out = append(out, n)
	}
	return out, nil
}

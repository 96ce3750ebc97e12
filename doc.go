// Package pairscan finds related feature pairs in numeric tables.
//
// A table is a samples × features matrix loaded from a delimited or workbook
// file. Two scans run over it:
//
//   - corr reports pairs whose absolute correlation (pearson, spearman or
//     kendall) exceeds a cutoff, either within one table, across two tables,
//     or between arithmetic combinations of source features and each target
//     feature.
//   - stable reports pairs where one feature is greater than the other in
//     more than a given fraction of samples, optionally requiring the
//     opposite ordering in a second table.
//
// Thresholds are compared in fixed point: a correlation c is reported when
// |round(c*1000)| > round(cutoff*1000).
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/ajitpratap0/pairscan/pkg/config"
//	    "github.com/ajitpratap0/pairscan/pkg/scanner"
//	    "github.com/ajitpratap0/pairscan/pkg/writer"
//	)
//
//	cfg := config.Default()
//	cfg.Input.Source = "expr.csv"
//	cfg.Correlation.Cutoff = 0.8
//
//	cc, _ := scanner.NewCorrConfig(cfg)
//	s, _ := scanner.NewCorrScanner(cc, logger)
//	if err := s.Scan(context.Background()); err != nil {
//	    return err
//	}
//	err := writer.Write(ctx, "pairs.tsv", s, writer.Options{})
//
// Or from the command line:
//
//	pairscan corr -i expr.csv -c 0.8 -o pairs.tsv
//	pairscan stable -i normal.csv -t tumor.csv -r 0.95 -o flips.csv.gz
//
// # Key Packages
//
//	pkg/frame        - Labeled matrix, table loading, elementwise arithmetic
//	pkg/stats        - Correlation measures and method dispatch
//	pkg/scanner      - Correlation and stable-order scanners
//	pkg/writer       - Delimited and JSON lines result output
//	pkg/compression  - Transparent gzip, zstd, snappy, s2 and lz4 streams
//	pkg/config       - YAML, flag and environment configuration
//	pkg/errors       - Structured error handling
//	pkg/logger       - Structured logging
//	pkg/metrics      - Per-scan Prometheus metrics
//	internal/pipeline - Block partitioning and the static worker pool
//
// # Concurrency
//
// Scans split the outer loop into contiguous blocks and hand them to a fixed
// number of workers round-robin. Each worker collects matches into its own
// slice; the slices are concatenated after every worker has finished, so the
// order of results is unspecified. Loaded tables are never mutated during a
// scan.
//
// # Configuration
//
// Settings resolve in this order: built-in defaults, the --config YAML file
// (with ${VAR_NAME} substitution), PAIRSCAN_* environment variables and
// finally explicit flags.
package pairscan

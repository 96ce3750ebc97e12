package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/pairscan/pkg/compression"
	"github.com/ajitpratap0/pairscan/pkg/config"
	"github.com/ajitpratap0/pairscan/pkg/errors"
	"github.com/ajitpratap0/pairscan/pkg/logger"
	"github.com/ajitpratap0/pairscan/pkg/metrics"
	"github.com/ajitpratap0/pairscan/pkg/observability"
	"github.com/ajitpratap0/pairscan/pkg/scanner"
	"github.com/ajitpratap0/pairscan/pkg/writer"
)

// initLogger installs the global logger from the resolved config.
var initLogger = logger.Init

// scanFunc runs one scan and returns what should be written.
type scanFunc func(ctx context.Context, cfg *config.ScanConfig, log *zap.Logger, m *metrics.ScanMetrics) (writer.Result, error)

func newRootCmd() *cobra.Command {
	defaults := config.Default()

	root := &cobra.Command{
		Use:   "pairscan",
		Short: "pairscan - pairwise feature scans over numeric tables",
		Long: `pairscan reads samples x features tables and reports feature pairs that are
strongly correlated (corr) or consistently ordered (stable).

Inputs may be csv, tsv, txt or xlsx, optionally compressed (.gz, .zst, .lz4, .sz, .s2).
The output format follows the output extension; .json and .jsonl write JSON lines.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringP("input", "i", "", "Source table (required)")
	pf.StringP("target", "t", "", "Target table; enables cross, combination or reverse scans")
	pf.StringP("output", "o", defaults.Output.Path, "Result file; the extension picks the format")
	pf.String("config", "", "YAML configuration file")
	pf.Bool("no-header", false, "First row is data, not column names")
	pf.Bool("no-index", false, "First column is data, not sample ids")
	pf.String("sheet", "", "Workbook sheet for xlsx inputs (default first sheet)")
	pf.String("compression-level", defaults.Output.CompressionLevel, "Output compression level (fastest, default, better, best)")
	pf.Int("workers", defaults.Performance.Workers, "Number of scan workers")
	pf.Int("block-size", defaults.Performance.BlockSize, "Outer indices per work block")
	pf.Bool("memory-check", defaults.Performance.MemoryCheck, "Warn when the loaded tables approach available memory")
	pf.String("log-level", defaults.Observability.LogLevel, "Log level (debug, info, warn, error)")
	pf.String("log-encoding", defaults.Observability.LogEncoding, "Log encoding (console, json)")
	pf.String("metrics-file", "", "Write Prometheus textfile metrics to this path")
	pf.Bool("trace", false, "Export OpenTelemetry spans to stderr")

	root.AddCommand(newCorrCmd(defaults), newStableCmd(defaults), newVersionCmd())
	return root
}

func newCorrCmd(defaults *config.ScanConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corr",
		Short: "Report feature pairs whose correlation exceeds the cutoff",
		Long: `Report feature pairs whose absolute correlation exceeds the cutoff.

Modes:
  within       every pair of source features (default without --target)
  cross        every source feature against every target feature
  combination  source[i] op source[j] against every target feature (default with --target)

Example:
  pairscan corr -i expr.csv -t pheno.csv -m spearman -a divide -c 0.5 -o pairs.tsv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, "corr", runCorr)
		},
	}

	f := cmd.Flags()
	f.StringP("method", "m", defaults.Correlation.Method, "Correlation method (pearson, spearman, kendall)")
	f.StringP("operation", "a", defaults.Correlation.Operation, "Combination operator (add, subtract, multiply, divide)")
	f.Float64P("cutoff", "c", defaults.Correlation.Cutoff, "Report pairs with |corr| above this value")
	f.String("mode", "", "Scan mode (within, cross, combination)")
	f.Bool("skip-nan", false, "Pearson over samples where both values are present")
	return cmd
}

func newStableCmd(defaults *config.ScanConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stable",
		Short: "Report feature pairs where one feature is consistently greater",
		Long: `Report feature pairs (a, b) where a > b in more than --ratio of the samples.

With --target the same pair must also satisfy target[b] > target[a] in more than
--reverse-ratio of the target samples.

Example:
  pairscan stable -i normal.csv -t tumor.csv -r 0.95 --reverse-ratio 0.9 -o flips.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, "stable", runStable)
		},
	}

	f := cmd.Flags()
	f.Float64P("ratio", "r", defaults.Stable.Ratio, "Fraction of source samples that must agree")
	f.Float64("reverse-ratio", defaults.Stable.ReverseRatio, "Fraction of target samples that must disagree")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pairscan v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadConfig applies defaults, then the --config file, then explicitly set
// flags and PAIRSCAN_* variables, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.ScanConfig, error) {
	v := config.NewViper()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "could not bind flags")
	}

	cfg := config.Default()
	if path := v.GetString("config"); path != "" {
		if err := config.Load(path, cfg); err != nil {
			return nil, err
		}
	}
	config.FromViper(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func execute(cmd *cobra.Command, name string, run scanFunc) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := writer.CheckPath(cfg.Output.Path); err != nil {
		return err
	}
	level, err := compression.ParseLevel(cfg.Output.CompressionLevel)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid compression level")
	}

	if err := initLogger(logger.Config{
		Level:    cfg.Observability.LogLevel,
		Encoding: cfg.Observability.LogEncoding,
	}); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "could not initialize logger")
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, logger.ScanIDKey, uuid.NewString())
	ctx = context.WithValue(ctx, logger.ModeKey, name)
	ctx = context.WithValue(ctx, logger.InputKey, cfg.Input.Source)
	log := logger.WithContext(ctx)

	if cfg.Observability.EnableTracing {
		tc := observability.DefaultTracingConfig(version)
		tc.SamplingRate = cfg.Observability.TracingSampleRate
		tc.Writer = cmd.ErrOrStderr()
		if err := observability.InitTracing(tc); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "could not initialize tracing")
		}
		defer func() {
			if err := observability.Shutdown(context.Background()); err != nil {
				log.Warn("failed to flush traces", zap.Error(err))
			}
		}()
	}

	m := metrics.NewScanMetrics("pairscan")
	result, err := run(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	if err := writer.Write(ctx, cfg.Output.Path, result, writer.Options{Level: level, Logger: log}); err != nil {
		return err
	}

	if path := cfg.Observability.MetricsFile; path != "" {
		if err := m.WriteTextfile(path); err != nil {
			return err
		}
		log.Debug("metrics written", zap.String("path", path))
	}
	return nil
}

func runCorr(ctx context.Context, cfg *config.ScanConfig, log *zap.Logger, m *metrics.ScanMetrics) (writer.Result, error) {
	cc, err := scanner.NewCorrConfig(cfg)
	if err != nil {
		return nil, err
	}
	s, err := scanner.NewCorrScanner(cc, log, scanner.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	if err := s.Scan(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func runStable(ctx context.Context, cfg *config.ScanConfig, log *zap.Logger, m *metrics.ScanMetrics) (writer.Result, error) {
	s, err := scanner.NewStableScanner(scanner.NewStableConfig(cfg), log, scanner.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	if err := s.Scan(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

package scanner

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/ajitpratap0/pairscan/internal/pipeline"
	"github.com/ajitpratap0/pairscan/pkg/config"
	"github.com/ajitpratap0/pairscan/pkg/errors"
	"github.com/ajitpratap0/pairscan/pkg/frame"
	"github.com/ajitpratap0/pairscan/pkg/metrics"
	"github.com/ajitpratap0/pairscan/pkg/observability"
)

// StableConfig is the immutable configuration of a stable-order scan. A
// non-empty Target (or a target frame) enables reverse validation.
type StableConfig struct {
	Source       string
	Target       string
	Load         frame.LoadOptions
	Ratio        float64
	ReverseRatio float64
	Workers      int
	BlockSize    int
	MemoryCheck  bool
}

// NewStableConfig copies the stable settings out of cfg.
func NewStableConfig(cfg *config.ScanConfig) StableConfig {
	return StableConfig{
		Source: cfg.Input.Source,
		Target: cfg.Input.Target,
		Load: frame.LoadOptions{
			NoHeader: cfg.Input.NoHeader,
			NoIndex:  cfg.Input.NoIndex,
			Sheet:    cfg.Input.Sheet,
		},
		Ratio:        cfg.Stable.Ratio,
		ReverseRatio: cfg.Stable.ReverseRatio,
		Workers:      cfg.Performance.GetWorkers(),
		BlockSize:    cfg.Performance.BlockSize,
		MemoryCheck:  cfg.Performance.MemoryCheck,
	}
}

// StableScanner finds pairs (i, j) where one feature is greater than the
// other in more than Ratio of the samples.
type StableScanner struct {
	cfg     StableConfig
	logger  *zap.Logger
	source  *frame.Frame
	target  *frame.Frame
	reverse bool
	metrics *metrics.ScanMetrics
	tracer  *observability.ScanTracer

	matches []StableMatch
	pairs   int64
}

// NewStableScanner validates cfg and returns a scanner ready to Scan.
func NewStableScanner(cfg StableConfig, logger *zap.Logger, opts ...Option) (*StableScanner, error) {
	o := applyOptions(opts)
	if logger == nil {
		logger = zap.NewNop()
	}

	if math.IsNaN(cfg.Ratio) || math.IsNaN(cfg.ReverseRatio) {
		return nil, errors.New(errors.ErrorTypeInvalidArgument, "ratio thresholds must be numbers")
	}
	if err := validateParallelism(cfg.Workers, cfg.BlockSize); err != nil {
		return nil, err
	}
	if o.source == nil && cfg.Source == "" {
		return nil, errors.New(errors.ErrorTypeInvalidArgument, "source table is required")
	}

	reverse := o.target != nil || cfg.Target != ""
	direction := "forward"
	if reverse {
		direction = "reverse"
	}

	return &StableScanner{
		cfg:     cfg,
		logger:  logger.With(zap.String("scanner", "stable"), zap.String("mode", direction)),
		source:  o.source,
		target:  o.target,
		reverse: reverse,
		metrics: o.metrics,
		tracer:  observability.NewScanTracer("stable"),
	}, nil
}

// Scan loads the tables and evaluates every source pair i<j. In reverse
// mode the target must have the source's shape.
func (s *StableScanner) Scan(ctx context.Context) error {
	s.matches, s.pairs = nil, 0

	if err := loadFrame(ctx, s.tracer, s.logger, "source", s.cfg.Source, s.cfg.Load, &s.source); err != nil {
		return err
	}
	if s.reverse {
		if err := loadFrame(ctx, s.tracer, s.logger, "target", s.cfg.Target, s.cfg.Load, &s.target); err != nil {
			return err
		}
		if err := checkRows(s.source, s.target); err != nil {
			s.logger.Error("shape mismatch", zap.Error(err))
			return err
		}
		if s.source.Cols() != s.target.Cols() {
			err := errors.Newf(errors.ErrorTypeShapeMismatch,
				"source has %d columns but target has %d", s.source.Cols(), s.target.Cols()).
				WithDetail("source_cols", s.source.Cols()).
				WithDetail("target_cols", s.target.Cols())
			s.logger.Error("shape mismatch", zap.Error(err))
			return err
		}
	}
	prepare(s.logger, s.metrics, s.cfg.MemoryCheck, s.source, s.target)

	timer := metrics.NewTimer("stable")
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = pipeline.DefaultWorkers()
	}

	var matches []StableMatch
	err := s.tracer.Trace(ctx, "enumerate", func(ctx context.Context) error {
		var err error
		matches, _, err = pipeline.Run(ctx,
			pipeline.ParallelConfig{Name: "stable", NumWorkers: workers},
			s.logger,
			pipeline.Partition(s.source.Cols(), s.cfg.BlockSize),
			s.block)
		return err
	})
	if err != nil {
		return err
	}
	duration := timer.Stop()

	n := int64(s.source.Cols())
	s.matches = matches
	s.pairs = n * (n - 1) / 2

	s.logger.Info("scan complete",
		zap.Float64("ratio", s.cfg.Ratio),
		zap.Int64("pairs_examined", s.pairs),
		zap.Int("matches", len(matches)),
		zap.Duration("duration", duration))

	if s.metrics != nil {
		mode := "forward"
		if s.reverse {
			mode = "reverse"
		}
		s.metrics.ObserveScan("stable", mode, s.pairs, int64(len(matches)), duration)
		s.metrics.Workers.Set(float64(workers))
	}
	return nil
}

func (s *StableScanner) block(b pipeline.Block, out *[]StableMatch) error {
	n := s.source.Cols()
	rows := s.source.Rows()

	for i := b.Lo; i < b.Hi; i++ {
		xi := s.source.ColumnView(i)
		for j := i + 1; j < n; j++ {
			xj := s.source.ColumnView(j)
			count := countGreater(xi, xj)

			if !s.reverse {
				switch {
				case aboveRatio(count, rows, s.cfg.Ratio):
					*out = append(*out, StableMatch{Greater: i, Lesser: j, Count: count})
				case aboveRatio(rows-count, rows, s.cfg.Ratio):
					*out = append(*out, StableMatch{Greater: j, Lesser: i, Count: rows - count})
				}
				continue
			}

			// samples where the target orders i below j
			revCount := countGreater(s.target.ColumnView(j), s.target.ColumnView(i))
			switch {
			case aboveRatio(count, rows, s.cfg.Ratio) && aboveRatio(revCount, rows, s.cfg.ReverseRatio):
				*out = append(*out, StableMatch{Greater: i, Lesser: j, Count: count, RevCount: revCount})
			case aboveRatio(rows-count, rows, s.cfg.Ratio) && aboveRatio(rows-revCount, rows, s.cfg.ReverseRatio):
				*out = append(*out, StableMatch{Greater: j, Lesser: i, Count: rows - count, RevCount: rows - revCount})
			}
		}
	}
	return nil
}

// countGreater returns the number of positions where a[s] > b[s]. NaN
// comparisons are false.
func countGreater(a, b []float64) int {
	count := 0
	for k := range a {
		if a[k] > b[k] {
			count++
		}
	}
	return count
}

func aboveRatio(count, rows int, threshold float64) bool {
	return float64(count)/float64(rows) > threshold
}

// Matches returns the accepted pairs of the last successful Scan in
// unspecified order.
func (s *StableScanner) Matches() []StableMatch {
	return append([]StableMatch(nil), s.matches...)
}

// PairsExamined returns the number of candidate pairs of the last Scan.
func (s *StableScanner) PairsExamined() int64 {
	return s.pairs
}

// Reverse reports whether the scan validates against a target table.
func (s *StableScanner) Reverse() bool {
	return s.reverse
}

// Header returns the column names of the result table.
func (s *StableScanner) Header() []string {
	return []string{"source", "target", "ratio(source>target)", "reverse(source<target)"}
}

// Rows renders the matches as ratios of the sample count. The reverse
// column is 0 without a target table.
func (s *StableScanner) Rows() [][]string {
	rows := make([][]string, 0, len(s.matches))
	if len(s.matches) == 0 {
		return rows
	}
	n := s.source.Rows()
	for _, m := range s.matches {
		reverse := "0"
		if s.reverse {
			reverse = formatRatio(m.RevCount, n)
		}
		rows = append(rows, []string{
			s.source.ColumnName(m.Greater),
			s.source.ColumnName(m.Lesser),
			formatRatio(m.Count, n),
			reverse,
		})
	}
	return rows
}

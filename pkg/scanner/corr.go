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
	"github.com/ajitpratap0/pairscan/pkg/pool"
	"github.com/ajitpratap0/pairscan/pkg/stats"
)

// CorrConfig is the immutable configuration of a correlation scan.
type CorrConfig struct {
	Source    string
	Target    string
	Load      frame.LoadOptions
	Mode      Mode
	Method    stats.Method
	Operator  frame.Operator
	Threshold float64
	// SkipNaN makes pearson use only samples where both values are present
	SkipNaN     bool
	Workers     int
	BlockSize   int
	MemoryCheck bool
}

// NewCorrConfig resolves the string settings of cfg. With no explicit mode,
// a configured target selects ModeCombination and its absence ModeWithin.
func NewCorrConfig(cfg *config.ScanConfig) (CorrConfig, error) {
	method, err := stats.ParseMethod(cfg.Correlation.Method)
	if err != nil {
		return CorrConfig{}, err
	}
	op, err := frame.ParseOperator(cfg.Correlation.Operation)
	if err != nil {
		return CorrConfig{}, err
	}

	mode := ModeWithin
	if cfg.Input.HasTarget() {
		mode = ModeCombination
	}
	if cfg.Correlation.Mode != "" {
		if mode, err = ParseMode(cfg.Correlation.Mode); err != nil {
			return CorrConfig{}, err
		}
	}

	return CorrConfig{
		Source: cfg.Input.Source,
		Target: cfg.Input.Target,
		Load: frame.LoadOptions{
			NoHeader: cfg.Input.NoHeader,
			NoIndex:  cfg.Input.NoIndex,
			Sheet:    cfg.Input.Sheet,
		},
		Mode:        mode,
		Method:      method,
		Operator:    op,
		Threshold:   cfg.Correlation.Cutoff,
		SkipNaN:     cfg.Correlation.SkipNaN,
		Workers:     cfg.Performance.GetWorkers(),
		BlockSize:   cfg.Performance.BlockSize,
		MemoryCheck: cfg.Performance.MemoryCheck,
	}, nil
}

// CorrScanner finds feature pairs whose correlation magnitude exceeds the
// configured threshold.
type CorrScanner struct {
	cfg        CorrConfig
	logger     *zap.Logger
	correlator stats.Correlator
	threshold  int64
	source     *frame.Frame
	target     *frame.Frame
	metrics    *metrics.ScanMetrics
	tracer     *observability.ScanTracer
	// scratch vectors for combined features, one per busy worker
	buffers *pool.Pool[*[]float64]

	matches []Match
	pairs   int64
}

// NewCorrScanner validates cfg and returns a scanner ready to Scan. Every
// configuration problem is reported here as ErrorTypeInvalidArgument,
// before any file is read.
func NewCorrScanner(cfg CorrConfig, logger *zap.Logger, opts ...Option) (*CorrScanner, error) {
	o := applyOptions(opts)
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.Mode.Valid() {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "unknown mode %d", int(cfg.Mode))
	}
	if !cfg.Operator.Valid() {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "unknown operator %d", int(cfg.Operator))
	}
	if math.IsNaN(cfg.Threshold) {
		return nil, errors.New(errors.ErrorTypeInvalidArgument, "threshold is NaN")
	}
	if err := validateParallelism(cfg.Workers, cfg.BlockSize); err != nil {
		return nil, err
	}
	if o.source == nil && cfg.Source == "" {
		return nil, errors.New(errors.ErrorTypeInvalidArgument, "source table is required")
	}
	if cfg.Mode.NeedsTarget() && o.target == nil && cfg.Target == "" {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "%s mode requires a target table", cfg.Mode)
	}

	correlator, err := stats.NewCorrelator(cfg.Method, cfg.SkipNaN)
	if err != nil {
		return nil, err
	}

	return &CorrScanner{
		cfg:        cfg,
		logger:     logger.With(zap.String("scanner", "corr"), zap.String("mode", cfg.Mode.String())),
		correlator: correlator,
		threshold:  ScaleThreshold(cfg.Threshold),
		source:     o.source,
		target:     o.target,
		metrics:    o.metrics,
		tracer:     observability.NewScanTracer("corr"),
	}, nil
}

// Scan loads the tables, checks their shapes and enumerates every pair of
// the configured topology. It blocks until the enumeration finishes. On
// error no matches are stored.
func (s *CorrScanner) Scan(ctx context.Context) error {
	s.matches, s.pairs = nil, 0

	if err := loadFrame(ctx, s.tracer, s.logger, "source", s.cfg.Source, s.cfg.Load, &s.source); err != nil {
		return err
	}
	if s.cfg.Mode.NeedsTarget() {
		if err := loadFrame(ctx, s.tracer, s.logger, "target", s.cfg.Target, s.cfg.Load, &s.target); err != nil {
			return err
		}
		if err := checkRows(s.source, s.target); err != nil {
			s.logger.Error("shape mismatch", zap.Error(err))
			return err
		}
	}

	var target *frame.Frame
	if s.cfg.Mode.NeedsTarget() {
		target = s.target
	}
	prepare(s.logger, s.metrics, s.cfg.MemoryCheck, s.source, target)
	s.buffers = pool.NewVectors(s.source.Rows())

	timer := metrics.NewTimer("corr")
	var matches []Match
	err := s.tracer.Trace(ctx, "enumerate", func(ctx context.Context) error {
		var err error
		matches, err = s.enumerate(ctx)
		return err
	})
	if err != nil {
		return err
	}
	duration := timer.Stop()

	s.matches = matches
	s.pairs = s.pairCount()

	s.logger.Info("scan complete",
		zap.String("method", s.cfg.Method.String()),
		zap.Int64("pairs_examined", s.pairs),
		zap.Int("matches", len(matches)),
		zap.Duration("duration", duration))
	if s.cfg.Mode == ModeCombination {
		allocated, _, reused := s.buffers.Stats()
		s.logger.Debug("scratch buffers", zap.Int64("allocated", allocated), zap.Int64("reused", reused))
	}

	if s.metrics != nil {
		s.metrics.ObserveScan("corr", s.cfg.Mode.String(), s.pairs, int64(len(matches)), duration)
		s.metrics.Workers.Set(float64(s.workers()))
	}
	return nil
}

func (s *CorrScanner) enumerate(ctx context.Context) ([]Match, error) {
	cfg := pipeline.ParallelConfig{Name: "corr." + s.cfg.Mode.String(), NumWorkers: s.workers()}
	ns := s.source.Cols()

	switch s.cfg.Mode {
	case ModeCross:
		blocks := pipeline.Partition(ns, s.cfg.BlockSize)
		matches, _, err := pipeline.Run(ctx, cfg, s.logger, blocks, s.crossBlock)
		return matches, err
	case ModeCombination:
		blocks := pipeline.Partition(s.target.Cols()*ns, s.cfg.BlockSize)
		matches, _, err := pipeline.Run(ctx, cfg, s.logger, blocks, s.combinationBlock)
		return matches, err
	default:
		blocks := pipeline.Partition(ns, s.cfg.BlockSize)
		matches, _, err := pipeline.Run(ctx, cfg, s.logger, blocks, s.withinBlock)
		return matches, err
	}
}

func (s *CorrScanner) withinBlock(b pipeline.Block, out *[]Match) error {
	n := s.source.Cols()
	for i := b.Lo; i < b.Hi; i++ {
		x := s.source.ColumnView(i)
		for j := i + 1; j < n; j++ {
			if scaled, ok := s.accept(x, s.source.ColumnView(j)); ok {
				*out = append(*out, Match{I: i, J: j, Scaled: scaled})
			}
		}
	}
	return nil
}

func (s *CorrScanner) crossBlock(b pipeline.Block, out *[]Match) error {
	n := s.target.Cols()
	for i := b.Lo; i < b.Hi; i++ {
		x := s.source.ColumnView(i)
		for j := 0; j < n; j++ {
			if scaled, ok := s.accept(x, s.target.ColumnView(j)); ok {
				*out = append(*out, Match{I: i, J: j, Scaled: scaled})
			}
		}
	}
	return nil
}

// combinationBlock walks the flattened (k, i) space: k = idx / ns selects
// the target column and i = idx % ns the first source column.
func (s *CorrScanner) combinationBlock(b pipeline.Block, out *[]Match) error {
	ns := s.source.Cols()
	buf := s.buffers.Get()
	defer s.buffers.Put(buf)
	combined := *buf

	for idx := b.Lo; idx < b.Hi; idx++ {
		k, i := idx/ns, idx%ns
		if i == 0 {
			s.logger.Debug("calculating feature", zap.String("feature", s.target.ColumnName(k)))
		}
		y := s.target.ColumnView(k)
		xi := s.source.ColumnView(i)
		for j := i + 1; j < ns; j++ {
			if err := frame.ArithmeticTo(combined, xi, s.source.ColumnView(j), s.cfg.Operator); err != nil {
				return err
			}
			if scaled, ok := s.accept(combined, y); ok {
				*out = append(*out, Match{K: k, I: i, J: j, Scaled: scaled})
			}
		}
	}
	return nil
}

func (s *CorrScanner) accept(x, y []float64) (int64, bool) {
	scaled, ok := Scale(s.correlator.Compute(x, y))
	if !ok || !Exceeds(scaled, s.threshold) {
		return 0, false
	}
	return scaled, true
}

func (s *CorrScanner) workers() int {
	if s.cfg.Workers > 0 {
		return s.cfg.Workers
	}
	return pipeline.DefaultWorkers()
}

func (s *CorrScanner) pairCount() int64 {
	ns := int64(s.source.Cols())
	within := ns * (ns - 1) / 2
	switch s.cfg.Mode {
	case ModeCross:
		return ns * int64(s.target.Cols())
	case ModeCombination:
		return within * int64(s.target.Cols())
	default:
		return within
	}
}

// Matches returns the accepted pairs of the last successful Scan in
// unspecified order.
func (s *CorrScanner) Matches() []Match {
	return append([]Match(nil), s.matches...)
}

// PairsExamined returns the number of candidate pairs of the last Scan.
func (s *CorrScanner) PairsExamined() int64 {
	return s.pairs
}

// Header returns the column names of the result table.
func (s *CorrScanner) Header() []string {
	if s.cfg.Mode == ModeCombination {
		return []string{"feature", "source", "target", "corr(source" + s.cfg.Operator.Symbol() + "target)"}
	}
	return []string{"source", "target", "corr"}
}

// Rows renders the matches with column labels resolved.
func (s *CorrScanner) Rows() [][]string {
	rows := make([][]string, 0, len(s.matches))
	for _, m := range s.matches {
		switch s.cfg.Mode {
		case ModeCombination:
			rows = append(rows, []string{
				s.target.ColumnName(m.K),
				s.source.ColumnName(m.I),
				s.source.ColumnName(m.J),
				formatCorr(m.Scaled),
			})
		case ModeCross:
			rows = append(rows, []string{s.source.ColumnName(m.I), s.target.ColumnName(m.J), formatCorr(m.Scaled)})
		default:
			rows = append(rows, []string{s.source.ColumnName(m.I), s.source.ColumnName(m.J), formatCorr(m.Scaled)})
		}
	}
	return rows
}

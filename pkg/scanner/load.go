package scanner

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/pairscan/internal/pipeline"
	"github.com/ajitpratap0/pairscan/pkg/errors"
	"github.com/ajitpratap0/pairscan/pkg/frame"
	"github.com/ajitpratap0/pairscan/pkg/metrics"
	"github.com/ajitpratap0/pairscan/pkg/observability"
)

// loadFrame reads path inside a "load" span unless f is already set.
func loadFrame(ctx context.Context, tracer *observability.ScanTracer, logger *zap.Logger,
	role, path string, opts frame.LoadOptions, f **frame.Frame) error {
	if *f != nil {
		return nil
	}
	return tracer.Trace(ctx, "load", func(context.Context) error {
		loaded, err := frame.Load(path, opts)
		if err != nil {
			return err
		}
		rows, cols := loaded.Shape()
		logger.Info("loaded table",
			zap.String("role", role),
			zap.String("path", path),
			zap.Int("rows", rows),
			zap.Int("cols", cols))
		*f = loaded
		return nil
	})
}

func checkRows(source, target *frame.Frame) error {
	if source.Rows() != target.Rows() {
		return errors.Newf(errors.ErrorTypeShapeMismatch,
			"source has %d rows but target has %d", source.Rows(), target.Rows()).
			WithDetail("source_rows", source.Rows()).
			WithDetail("target_rows", target.Rows())
	}
	return nil
}

func validateParallelism(workers, blockSize int) error {
	if workers < 0 {
		return errors.Newf(errors.ErrorTypeInvalidArgument, "workers must be >= 0, got %d", workers)
	}
	if blockSize < 0 {
		return errors.Newf(errors.ErrorTypeInvalidArgument, "block size must be >= 0, got %d", blockSize)
	}
	return nil
}

// prepare records table sizes and runs the optional memory check.
func prepare(logger *zap.Logger, m *metrics.ScanMetrics, memoryCheck bool, source, target *frame.Frame) {
	footprint := source.SizeBytes()
	if m != nil {
		m.SetMatrix("source", source.Rows(), source.Cols())
	}
	if target != nil {
		footprint += target.SizeBytes()
		if m != nil {
			m.SetMatrix("target", target.Rows(), target.Cols())
		}
	}
	if memoryCheck {
		pipeline.CheckMemory(logger, footprint)
	}
}

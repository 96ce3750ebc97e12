package pipeline

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ParallelConfig configures a fixed worker pool
type ParallelConfig struct {
	Name       string
	NumWorkers int // 0 = auto (NumCPU)
}

// DefaultWorkers is the pool size used when none is configured
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// ProcessFunc handles one block and appends its results to out. out is
// private to the calling worker, so no synchronization is needed.
type ProcessFunc[T any] func(b Block, out *[]T) error

// Stats describes a completed run
type Stats struct {
	Workers         int
	Blocks          int
	BlocksProcessed int64
	Results         int
	Duration        time.Duration
}

// Run processes blocks on exactly cfg.NumWorkers goroutines. Worker w owns
// blocks w, w+W, w+2W, ... and never takes work from another worker. Each
// worker collects into its own slice; the slices are concatenated once all
// workers have returned, so the order of the result is unspecified.
//
// The first error returned by fn is returned and no results are exposed.
// ctx is used for log fields only; a run is never cancelled part way.
func Run[T any](ctx context.Context, cfg ParallelConfig, logger *zap.Logger, blocks []Block, fn ProcessFunc[T]) ([]T, Stats, error) {
	workers := cfg.NumWorkers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	start := time.Now()
	stats := Stats{Workers: workers, Blocks: len(blocks)}
	local := make([][]T, workers)

	logger.Debug("starting worker pool",
		zap.String("name", cfg.Name),
		zap.Int("workers", workers),
		zap.Int("blocks", len(blocks)))

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			var out []T
			for b := w; b < len(blocks); b += workers {
				if err := fn(blocks[b], &out); err != nil {
					return err
				}
				atomic.AddInt64(&stats.BlocksProcessed, 1)
			}
			local[w] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("worker pool failed",
			zap.String("name", cfg.Name),
			zap.Error(err))
		return nil, stats, err
	}

	total := 0
	for _, out := range local {
		total += len(out)
	}
	merged := make([]T, 0, total)
	for _, out := range local {
		merged = append(merged, out...)
	}

	stats.Results = total
	stats.Duration = time.Since(start)

	logger.Debug("worker pool finished",
		zap.String("name", cfg.Name),
		zap.Int64("blocks_processed", stats.BlocksProcessed),
		zap.Int("results", total),
		zap.Duration("duration", stats.Duration),
		zap.Bool("ctx_done", ctx.Err() != nil))

	return merged, stats, nil
}

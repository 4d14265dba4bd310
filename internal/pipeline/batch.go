package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/meshpix/internal/model"
)

// DefaultConcurrency is the number of images encoded at once when no
// concurrency is configured.
const DefaultConcurrency = 4

// BatchProcessor handles concurrent processing of multiple images.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each image.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of images processed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed frames.
	// Access is synchronized via mutex.
	results []*model.Frame
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of images processed at once.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// The pipelineFactory is called once per image so no step state is shared
// between frames.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
		results:         make([]*model.Frame, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch encodes the images at sources concurrently.
// Frames are returned in the order of sources, including the ones that
// failed; a failed image does not stop the others. The error is non-nil
// only when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []string) ([]*model.Frame, error) {
	bp.logger.Info("starting batch processing",
		"total_images", len(sources),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	bp.results = make([]*model.Frame, len(sources))

	err := bp.run(ctx, sources, func(frame *model.Frame, index int) {
		bp.mu.Lock()
		bp.results[index] = frame
		bp.mu.Unlock()
	})

	bp.logger.Info("batch processing complete",
		"total_images", len(sources),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback encodes the images at sources and calls callback
// for each finished frame with its index in sources. The callback runs on
// the worker goroutine and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []string,
	callback func(frame *model.Frame, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_images", len(sources),
		"concurrency", bp.concurrency,
	)
	return bp.run(ctx, sources, callback)
}

func (bp *BatchProcessor) run(ctx context.Context, sources []string, done func(*model.Frame, int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Debug("encoding image",
				"source", source,
				"index", i+1,
				"total", len(sources),
			)

			frame := model.NewFrame(source)
			if err := bp.pipelineFactory().Execute(ctx, frame); err != nil {
				bp.logger.Warn("image failed",
					"source", source,
					"error", err,
				)
			}
			done(frame, i)

			// Per-image errors live in the frame; only cancellation stops the batch.
			return nil
		})
	}

	return g.Wait()
}

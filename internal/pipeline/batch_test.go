package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/meshpix/internal/model"
)

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(5))
		if bp.concurrency != 5 {
			t.Errorf("expected concurrency 5, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(0), WithBatchLogger(nil))
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("processes all images in order", func(t *testing.T) {
		t.Parallel()

		var processed atomic.Int32
		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "counter", doFunc: func(_ context.Context, _ *model.Frame) error {
				processed.Add(1)
				return nil
			}})
			return p
		})

		sources := []string{"a.png", "b.jpg", "c.gif"}
		results, err := bp.ProcessBatch(context.Background(), sources)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if processed.Load() != 3 {
			t.Errorf("expected 3 processed, got %d", processed.Load())
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		for i, frame := range results {
			if frame.Source != sources[i] {
				t.Errorf("result[%d]: got %q, expected %q", i, frame.Source, sources[i])
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		var mu sync.Mutex

		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "slow", doFunc: func(_ context.Context, _ *model.Frame) error {
				n := current.Add(1)
				mu.Lock()
				if n > peak.Load() {
					peak.Store(n)
				}
				mu.Unlock()
				time.Sleep(20 * time.Millisecond)
				current.Add(-1)
				return nil
			}})
			return p
		}, WithConcurrency(2))

		sources := make([]string, 8)
		for i := range sources {
			sources[i] = "frame.png"
		}
		if _, err := bp.ProcessBatch(context.Background(), sources); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("max concurrent was %d, expected <= 2", peak.Load())
		}
	})

	t.Run("continues after individual image failure", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "sometimes-fails", doFunc: func(_ context.Context, frame *model.Frame) error {
				if frame.Source == "broken.png" {
					return errors.New("cannot load image")
				}
				return nil
			}})
			return p
		})

		results, err := bp.ProcessBatch(context.Background(), []string{"a.png", "broken.png", "c.png"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Failed() || !results[1].Failed() || results[2].Failed() {
			t.Errorf("expected only the second frame to fail: %v %v %v",
				results[0].Error, results[1].Error, results[2].Error)
		}
	})

	t.Run("handles context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var started atomic.Int32

		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "blocking", doFunc: func(ctx context.Context, _ *model.Frame) error {
				started.Add(1)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Second):
					return nil
				}
			}})
			return p
		}, WithConcurrency(2))

		sources := make([]string, 10)
		for i := range sources {
			sources[i] = "frame.png"
		}

		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		if _, err := bp.ProcessBatch(ctx, sources); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		//nolint:gosec // len(sources) is small
		if started.Load() >= int32(len(sources)) {
			t.Error("expected some images to not start due to cancellation")
		}
	})
}

// TestBatchProcessorProcessBatchWithCallback tests callback-based processing.
func TestBatchProcessorProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	received := make(map[int]string)

	bp := NewBatchProcessor(func() *Pipeline {
		p := New()
		p.AddStep(&mockStep{name: "noop"})
		return p
	})

	sources := []string{"first.png", "second.png", "third.png"}
	err := bp.ProcessBatchWithCallback(context.Background(), sources, func(frame *model.Frame, index int) {
		mu.Lock()
		received[index] = frame.Source
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(received) != 3 {
		t.Fatalf("expected 3 callbacks, got %d", len(received))
	}
	for i, source := range sources {
		if received[i] != source {
			t.Errorf("callback %d: got %q, expected %q", i, received[i], source)
		}
	}
}

package common

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// ProcessFunc handles a single item of a batch.
type ProcessFunc[T, R any] func(ctx context.Context, item T) (R, error)

// ItemResult pairs an input index with its output or error.
type ItemResult[R any] struct {
	Index  int
	Result R
	Err    error
}

// BatchResult summarises one batch run. Results is ordered by input index.
type BatchResult[R any] struct {
	Results   []ItemResult[R]
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

type batchConfig struct {
	maxConcurrency int
	itemTimeout    time.Duration
	maxRetries     int
	retryBackoff   time.Duration
}

// BatchOption tunes a BatchProcessor.
type BatchOption func(*batchConfig)

// WithMaxConcurrency bounds the number of items processed in parallel.
func WithMaxConcurrency(n int) BatchOption {
	return func(c *batchConfig) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

// WithItemTimeout bounds each item's processing time.
func WithItemTimeout(d time.Duration) BatchOption {
	return func(c *batchConfig) {
		if d > 0 {
			c.itemTimeout = d
		}
	}
}

// WithRetry retries failed items up to maxRetries times with a fixed backoff.
func WithRetry(maxRetries int, backoff time.Duration) BatchOption {
	return func(c *batchConfig) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if backoff > 0 {
			c.retryBackoff = backoff
		}
	}
}

// BatchProcessor runs a ProcessFunc over a slice of items with bounded
// concurrency, per-item timeouts, and optional retries. Item failures never
// abort the batch; each failure is reported in its ItemResult.
type BatchProcessor[T, R any] struct {
	cfg batchConfig
}

// NewBatchProcessor builds a processor with sane defaults: concurrency 4,
// 30s per item, no retries.
func NewBatchProcessor[T, R any](opts ...BatchOption) *BatchProcessor[T, R] {
	cfg := batchConfig{
		maxConcurrency: 4,
		itemTimeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &BatchProcessor[T, R]{cfg: cfg}
}

// Process runs fn over items. It returns early only when ctx is cancelled.
func (p *BatchProcessor[T, R]) Process(ctx context.Context, items []T, fn ProcessFunc[T, R]) *BatchResult[R] {
	start := time.Now()
	out := &BatchResult[R]{Results: make([]ItemResult[R], len(items))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.maxConcurrency)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			res, err := p.processOne(gctx, item, fn)
			out.Results[i] = ItemResult[R]{Index: i, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range out.Results {
		if r.Err != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	out.Elapsed = time.Since(start)
	return out
}

func (p *BatchProcessor[T, R]) processOne(ctx context.Context, item T, fn ProcessFunc[T, R]) (R, error) {
	var (
		res R
		err error
	)
	for attempt := 0; attempt <= p.cfg.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(p.cfg.retryBackoff):
			}
		}
		itemCtx, cancel := context.WithTimeout(ctx, p.cfg.itemTimeout)
		res, err = fn(itemCtx, item)
		cancel()
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
	}
	return res, err
}

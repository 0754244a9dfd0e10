// Package batch runs a function over a slice of items with bounded
// concurrency. Item failures are recorded per item and never abort the batch;
// only cancellation of the caller's context stops scheduling.
package batch

import (
	"context"
	stdliberrors "errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/positivity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/positivity/pkg/errors"
)

// ItemStatus represents the outcome status of a single batch item.
type ItemStatus int

const (
	ItemStatusSuccess   ItemStatus = iota // processing completed successfully
	ItemStatusFailed                      // processing failed with an error
	ItemStatusTimeout                     // processing exceeded its timeout
	ItemStatusCancelled                   // processing was cancelled or never scheduled
)

// String returns the human-readable representation of an ItemStatus.
func (s ItemStatus) String() string {
	switch s {
	case ItemStatusSuccess:
		return "SUCCESS"
	case ItemStatusFailed:
		return "FAILED"
	case ItemStatusTimeout:
		return "TIMEOUT"
	case ItemStatusCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// ProcessFunc is the signature for a function that processes a single item.
type ProcessFunc[T, R any] func(ctx context.Context, item T) (R, error)

// ItemResult holds the outcome of processing a single item within a batch.
type ItemResult[R any] struct {
	Index      int        `json:"index"`
	Result     R          `json:"result"`
	Error      error      `json:"error,omitempty"`
	DurationMs float64    `json:"duration_ms"`
	Status     ItemStatus `json:"status"`
}

// BatchResult aggregates the outcomes of an entire batch processing run.
// Results is indexed like the input slice.
type BatchResult[R any] struct {
	Results           []*ItemResult[R] `json:"results"`
	TotalCount        int              `json:"total_count"`
	SuccessCount      int              `json:"success_count"`
	FailureCount      int              `json:"failure_count"`
	TotalDurationMs   float64          `json:"total_duration_ms"`
	AvgItemDurationMs float64          `json:"avg_item_duration_ms"`
}

type config struct {
	maxConcurrency int
	itemTimeout    time.Duration
	logger         logging.Logger
}

// Option configures a Processor.
type Option func(*config)

// WithMaxConcurrency sets the maximum number of items processed concurrently.
func WithMaxConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

// WithItemTimeout bounds each item's processing time. Zero disables it.
func WithItemTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.itemTimeout = d
		}
	}
}

// WithLogger injects a logger.
func WithLogger(l logging.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Processor fans items out to at most maxConcurrency goroutines.
type Processor[T, R any] struct {
	cfg config
}

// New creates a Processor. Concurrency defaults to GOMAXPROCS.
func New[T, R any](opts ...Option) *Processor[T, R] {
	cfg := config{maxConcurrency: runtime.GOMAXPROCS(0), logger: logging.NewNopLogger()}
	for _, o := range opts {
		o(&cfg)
	}
	return &Processor[T, R]{cfg: cfg}
}

// MaxConcurrency returns the configured limit.
func (p *Processor[T, R]) MaxConcurrency() int { return p.cfg.maxConcurrency }

// Process executes fn for every item. Each result is written to its own
// slot, so the only synchronization is the final Wait. If ctx is cancelled
// the remaining items are marked cancelled and the partial result is
// returned with an ErrCodeCanceled error.
func (p *Processor[T, R]) Process(ctx context.Context, items []T, fn ProcessFunc[T, R]) (*BatchResult[R], error) {
	if fn == nil {
		return nil, errors.InvalidParam("process function must not be nil")
	}
	n := len(items)
	if n == 0 {
		return &BatchResult[R]{Results: []*ItemResult[R]{}}, nil
	}

	start := time.Now()
	results := make([]*ItemResult[R], n)

	g := new(errgroup.Group)
	g.SetLimit(p.cfg.maxConcurrency)
	for i := range items {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			results[i] = p.processOne(ctx, i, items[i], fn)
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range results {
		if r == nil {
			results[i] = &ItemResult[R]{Index: i, Error: ctx.Err(), Status: ItemStatusCancelled}
		}
	}
	br := buildBatchResult(results, time.Since(start))
	p.cfg.logger.Debug("batch processed",
		logging.Int("total", br.TotalCount),
		logging.Int("success", br.SuccessCount),
		logging.Int("failed", br.FailureCount),
		logging.Float64("duration_ms", br.TotalDurationMs),
	)
	if err := ctx.Err(); err != nil {
		return br, errors.Wrap(err, errors.ErrCodeCanceled, "batch cancelled")
	}
	return br, nil
}

func (p *Processor[T, R]) processOne(ctx context.Context, idx int, item T, fn ProcessFunc[T, R]) *ItemResult[R] {
	itemStart := time.Now()
	if err := ctx.Err(); err != nil {
		return &ItemResult[R]{Index: idx, Error: err, Status: classifyError(err)}
	}
	itemCtx := ctx
	if p.cfg.itemTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, p.cfg.itemTimeout)
		defer cancel()
	}
	result, err := fn(itemCtx, item)
	if err != nil {
		return &ItemResult[R]{Index: idx, Result: result, Error: err, Status: classifyError(err), DurationMs: msSince(itemStart)}
	}
	return &ItemResult[R]{Index: idx, Result: result, Status: ItemStatusSuccess, DurationMs: msSince(itemStart)}
}

func buildBatchResult[R any](results []*ItemResult[R], total time.Duration) *BatchResult[R] {
	br := &BatchResult[R]{
		Results:         results,
		TotalCount:      len(results),
		TotalDurationMs: float64(total.Microseconds()) / 1000.0,
	}
	var sumItemMs float64
	for _, r := range results {
		if r.Status == ItemStatusSuccess {
			br.SuccessCount++
		} else {
			br.FailureCount++
		}
		sumItemMs += r.DurationMs
	}
	if br.TotalCount > 0 {
		br.AvgItemDurationMs = sumItemMs / float64(br.TotalCount)
	}
	return br
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}

func classifyError(err error) ItemStatus {
	switch {
	case err == nil:
		return ItemStatusSuccess
	case stdliberrors.Is(err, context.DeadlineExceeded):
		return ItemStatusTimeout
	case stdliberrors.Is(err, context.Canceled):
		return ItemStatusCancelled
	default:
		return ItemStatusFailed
	}
}

//Personal.AI order the ending

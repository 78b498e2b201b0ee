package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Batch size limits.
const (
	DefaultBatchSize = 10
	MinBatchSize     = 1
	MaxBatchSize     = 500
)

// Processing errors.
var (
	ErrInvalidBatchSize = fmt.Errorf("batch size must be between %d and %d", MinBatchSize, MaxBatchSize)
	ErrNilCallback      = errors.New("batch callback cannot be nil")
)

// Callback handles one batch. index is zero-based.
type Callback[T any] func(ctx context.Context, items []T, index int) error

// ProgressFunc is called after every completed batch. ProcessConcurrent may
// call it from several goroutines at once.
type ProgressFunc func(Snapshot)

// Processor runs callbacks over fixed-size batches of items.
type Processor[T any] struct {
	size       int
	onProgress ProgressFunc
}

// NewProcessor returns a processor with the given batch size.
func NewProcessor[T any](size int) (*Processor[T], error) {
	if size < MinBatchSize || size > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, size)
	}
	return &Processor[T]{size: size}, nil
}

// WithProgress sets the progress callback.
func (p *Processor[T]) WithProgress(fn ProgressFunc) *Processor[T] {
	p.onProgress = fn
	return p
}

// Size returns the batch size.
func (p *Processor[T]) Size() int { return p.size }

// Bounds returns the [start, end) index pairs of each batch over n items.
func (p *Processor[T]) Bounds(n int) [][2]int {
	count := (n + p.size - 1) / p.size
	bounds := make([][2]int, count)
	for i := range count {
		start := i * p.size
		bounds[i] = [2]int{start, min(start+p.size, n)}
	}
	return bounds
}

// Process runs batches in order and stops at the first error. No items is
// not an error.
func (p *Processor[T]) Process(ctx context.Context, items []T, fn Callback[T]) error {
	if fn == nil {
		return ErrNilCallback
	}
	bounds := p.Bounds(len(items))
	progress := newProgress(len(items), len(bounds))

	for i, b := range bounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, items[b[0]:b[1]], i); err != nil {
			return fmt.Errorf("batch %d: %w", i, err)
		}
		p.report(progress.add(b[1] - b[0]))
	}
	return nil
}

// ProcessConcurrent runs up to limit batches at once. Every batch runs even
// when others fail; all failures are joined into the returned error.
func (p *Processor[T]) ProcessConcurrent(ctx context.Context, items []T, fn Callback[T], limit int) error {
	if fn == nil {
		return ErrNilCallback
	}
	bounds := p.Bounds(len(items))
	progress := newProgress(len(items), len(bounds))

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(max(limit, 1))

	for i, b := range bounds {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		g.Go(func() error {
			if err := fn(ctx, items[b[0]:b[1]], i); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("batch %d: %w", i, err))
				mu.Unlock()
				return nil
			}
			p.report(progress.add(b[1] - b[0]))
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (p *Processor[T]) report(s Snapshot) {
	if p.onProgress != nil {
		p.onProgress(s)
	}
}

package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Committer durably stores one batch of items as a single unit.
type Committer[T any] interface {
	Commit(ctx context.Context, items []T) error
}

// CommitFunc adapts a function to the Committer interface.
type CommitFunc[T any] func(ctx context.Context, items []T) error

// Commit calls f(ctx, items).
func (f CommitFunc[T]) Commit(ctx context.Context, items []T) error {
	return f(ctx, items)
}

// FlushStats describes a successful flush.
type FlushStats struct {
	// Batch is the 1-based sequence number of the flush.
	Batch int
	// Size is the number of items committed by this flush.
	Size int
	// Committed is the running total of items committed by all flushes.
	Committed int
	// Final is true for the flush issued by Close.
	Final bool
}

// FlushError is returned when a commit fails.
type FlushError struct {
	Batch int
	Size  int
	Err   error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("flush of batch %d (%d items) failed: %v", e.Batch, e.Size, e.Err)
}

func (e *FlushError) Unwrap() error { return e.Err }

// ErrInvalidSize is returned by New for a non-positive batch size.
var ErrInvalidSize = errors.New("batch size must be positive")

// Option configures a Persister.
type Option[T any] func(*Persister[T])

// WithBarrier registers a function that must return before each commit.
// It runs without the staging lock held, so it may wait on goroutines that read the accessors.
func WithBarrier[T any](fn func(ctx context.Context) error) Option[T] {
	return func(p *Persister[T]) {
		p.barrier = fn
	}
}

// WithFlushHook registers a function called after every successful flush.
func WithFlushHook[T any](fn func(FlushStats)) Option[T] {
	return func(p *Persister[T]) {
		p.hooks = append(p.hooks, fn)
	}
}

// Persister stages items and commits them in batches of a fixed size.
// Stage, Flush and Close are meant to be driven by one goroutine; the accessors may be
// called from any goroutine.
type Persister[T any] struct {
	mu        sync.Mutex
	size      int
	committer Committer[T]
	staged    []T
	flushes   int
	committed int

	barrier func(ctx context.Context) error
	hooks   []func(FlushStats)
}

// New creates a Persister committing batches of size items through committer.
func New[T any](size int, committer Committer[T], opts ...Option[T]) (*Persister[T], error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	if committer == nil {
		return nil, errors.New("batch committer is nil")
	}
	p := &Persister[T]{
		size:      size,
		committer: committer,
		staged:    make([]T, 0, size),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Stage adds an item. When the staging set reaches the batch size it is flushed
// and flushed is true.
func (p *Persister[T]) Stage(ctx context.Context, item T) (flushed bool, err error) {
	p.mu.Lock()
	p.staged = append(p.staged, item)
	full := len(p.staged) >= p.size
	p.mu.Unlock()

	if !full {
		return false, nil
	}
	if err := p.flush(ctx, false); err != nil {
		return false, err
	}
	return true, nil
}

// Flush commits everything currently staged. It is a no-op when nothing is staged.
func (p *Persister[T]) Flush(ctx context.Context) error {
	return p.flush(ctx, false)
}

// Close performs the final flush when items remain staged.
func (p *Persister[T]) Close(ctx context.Context) error {
	return p.flush(ctx, true)
}

func (p *Persister[T]) flush(ctx context.Context, final bool) error {
	if p.barrier != nil {
		if err := p.barrier(ctx); err != nil {
			return &FlushError{Batch: p.Flushes() + 1, Size: p.Staged(), Err: err}
		}
	}

	p.mu.Lock()
	if len(p.staged) == 0 {
		p.mu.Unlock()
		return nil
	}

	items := p.staged
	batchNo := p.flushes + 1
	if err := p.committer.Commit(ctx, items); err != nil {
		p.mu.Unlock()
		return &FlushError{Batch: batchNo, Size: len(items), Err: err}
	}

	p.flushes = batchNo
	p.committed += len(items)
	p.staged = make([]T, 0, p.size)
	stats := FlushStats{
		Batch:     batchNo,
		Size:      len(items),
		Committed: p.committed,
		Final:     final,
	}
	p.mu.Unlock()

	for _, hook := range p.hooks {
		hook(stats)
	}
	return nil
}

// Staged returns the number of items waiting for the next flush.
func (p *Persister[T]) Staged() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.staged)
}

// Flushes returns the number of successful flushes.
func (p *Persister[T]) Flushes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushes
}

// Committed returns the number of items committed so far.
func (p *Persister[T]) Committed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.committed
}

// Size returns the configured batch size.
func (p *Persister[T]) Size() int {
	return p.size
}

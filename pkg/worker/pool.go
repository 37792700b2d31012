// Package worker runs blocking work off the caller's goroutine with bounded concurrency.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/abgdnv/stocksync/pkg/result"
	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is returned for work submitted after Close.
var ErrPoolClosed = errors.New("worker pool is closed")

// Pool bounds the number of tasks running at once.
// Closing the pool cancels the context of every running or waiting task.
type Pool struct {
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool creates a pool running at most size tasks concurrently. A size below 1 is treated as 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:    semaphore.NewWeighted(int64(size)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Submit schedules fn on p and returns a future for its outcome.
// fn receives a context that ends when either ctx or the pool is done.
func Submit[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) *result.Future[T] {
	if !p.track() {
		return result.Resolved(result.Fail[T](ErrPoolClosed))
	}

	future, resolve := result.NewFuture[T]()
	go func() {
		defer p.wg.Done()

		taskCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(p.ctx, cancel)
		defer stop()

		if err := p.sem.Acquire(taskCtx, 1); err != nil {
			if p.ctx.Err() != nil {
				err = ErrPoolClosed
			}
			resolve(result.Fail[T](err))
			return
		}
		defer p.sem.Release(1)

		resolve(result.Of(fn(taskCtx)))
	}()
	return future
}

// Run is Submit for work that has no value to return.
func Run(ctx context.Context, p *Pool, fn func(ctx context.Context) error) *result.Future[struct{}] {
	return Submit(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
}

// Close cancels all tasks and waits for them to return.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

// track registers a new task unless the pool is closed.
func (p *Pool) track() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.wg.Add(1)
	return true
}

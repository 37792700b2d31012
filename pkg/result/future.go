package result

import (
	"context"
	"sync"
)

// Future is a Result that becomes available later. It is resolved exactly once.
type Future[T any] struct {
	done chan struct{}
	res  Result[T]
}

// NewFuture returns an unresolved future and the function that resolves it.
// Only the first call to resolve has an effect.
func NewFuture[T any]() (*Future[T], func(Result[T])) {
	f := &Future[T]{done: make(chan struct{})}
	var once sync.Once
	return f, func(r Result[T]) {
		once.Do(func() {
			f.res = r
			close(f.done)
		})
	}
}

// Go runs fn on a new goroutine and returns a future for its outcome.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f, resolve := NewFuture[T]()
	go func() {
		resolve(Of(fn(ctx)))
	}()
	return f
}

// Resolved returns a future that already holds r.
func Resolved[T any](r Result[T]) *Future[T] {
	f, resolve := NewFuture[T]()
	resolve(r)
	return f
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future is resolved or ctx is done.
// When ctx ends first, the returned Result carries ctx.Err(); the future itself stays pending.
func (f *Future[T]) Await(ctx context.Context) Result[T] {
	select {
	case <-f.done:
		return f.res
	case <-ctx.Done():
		return Fail[T](ctx.Err())
	}
}

// Then sequences fn after f: fn runs with f's value once f succeeds,
// while a failure of f is passed through without calling fn.
func Then[T, U any](ctx context.Context, f *Future[T], fn func(ctx context.Context, v T) (U, error)) *Future[U] {
	return Go(ctx, func(ctx context.Context) (U, error) {
		v, err := f.Await(ctx).Unwrap()
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(ctx, v)
	})
}

// ThenFuture is Then for steps that already return a future, such as work submitted to a pool.
func ThenFuture[T, U any](ctx context.Context, f *Future[T], fn func(ctx context.Context, v T) *Future[U]) *Future[U] {
	return Go(ctx, func(ctx context.Context) (U, error) {
		v, err := f.Await(ctx).Unwrap()
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(ctx, v).Await(ctx).Unwrap()
	})
}

// Forward delivers every Result received from ch to cb, in order, until ch is closed or ctx ends.
func Forward[T any](ctx context.Context, ch <-chan Result[T], cb Callback[T]) {
	for {
		select {
		case r, ok := <-ch:
			if !ok {
				return
			}
			cb.Deliver(r)
		case <-ctx.Done():
			return
		}
	}
}

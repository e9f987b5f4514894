package async

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimeout is returned when AwaitWithTimeout exceeds its duration.
	ErrTimeout = errors.New("async: await timed out")
)

// Future represents the result of an asynchronous computation carrying a
// typed value. A Future completes exactly once.
type Future[T any] struct {
	val  T
	err  error
	done chan struct{}
}

// Go runs fn on its own goroutine and returns a Future for its result.
// A context canceled before fn starts resolves the Future with ctx.Err()
// without invoking fn; cancellation during execution is fn's own
// responsibility, which keeps it cooperative.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.val, f.err = fn(ctx)
	}()

	return f
}

// Resolved returns an already-completed Future. Useful when a value is
// computed inline but consumers expect the Future shape.
func Resolved[T any](val T, err error) *Future[T] {
	f := &Future[T]{val: val, err: err, done: make(chan struct{})}
	close(f.done)
	return f
}

// Await blocks until the computation completes or ctx is canceled,
// whichever comes first.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitWithTimeout is Await with a deadline instead of a context.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

// IsComplete reports completion without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

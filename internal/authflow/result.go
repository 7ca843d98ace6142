package authflow

import (
	"context"
	"sync"
)

// Result is a single-resolution asynchronous value. The first completion wins;
// later completions are ignored.
type Result[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func newResult[T any]() *Result[T] {
	return &Result[T]{done: make(chan struct{})}
}

func (r *Result[T]) complete(value T, err error) {
	r.once.Do(func() {
		r.value = value
		r.err = err
		close(r.done)
	})
}

func (r *Result[T]) resolve(value T) {
	r.complete(value, nil)
}

func (r *Result[T]) reject(err error) {
	var zero T
	r.complete(zero, err)
}

// Done is closed once the result has been completed.
func (r *Result[T]) Done() <-chan struct{} {
	return r.done
}

// Await blocks until the result completes or ctx ends. A ctx error is returned
// as is and leaves the result pending.
func (r *Result[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

package gojacallback

import (
	"context"
	"sync"
)

// Deferred is the producer half of a one-shot result hand-off. Exactly one
// of Resolve or Reject takes effect; later settlements are ignored. A
// Deferred may be settled from any goroutine.
type Deferred[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// NewDeferred creates an unsettled Deferred.
func NewDeferred[T any]() *Deferred[T] {
	return &Deferred[T]{done: make(chan struct{})}
}

// Resolve settles the deferred with a value.
func (d *Deferred[T]) Resolve(v T) {
	d.once.Do(func() {
		d.val = v
		close(d.done)
	})
}

// Reject settles the deferred with an error.
func (d *Deferred[T]) Reject(err error) {
	d.once.Do(func() {
		d.err = err
		close(d.done)
	})
}

// Future returns the consumer half.
func (d *Deferred[T]) Future() *Future[T] {
	return &Future[T]{d: d}
}

// Future is the consumer half of a one-shot result hand-off. Get may be
// called any number of times, from any goroutine.
type Future[T any] struct {
	d *Deferred[T]
}

// Get blocks until the future is settled or the context is done.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.d.done:
		return f.d.val, f.d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel closed when the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.d.done
}

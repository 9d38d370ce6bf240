// Package actionqueue implements the bounded FIFO action channel shared by
// all producers (dispatch / Put) and consumers (Take) of a saga runtime.
package actionqueue

import (
	"context"
)

// Queue is a bounded FIFO built on a buffered channel. Enqueue blocks while
// the queue is full and Dequeue blocks while it is empty; neither ever drops.
// Each enqueued value is delivered to exactly one successful Dequeue, and
// delivery order equals enqueue order.
type Queue[T any] struct {
	ch chan T
}

// DefaultCapacity bounds a queue constructed with a non-positive capacity.
const DefaultCapacity = 100

// New returns a queue bounded at capacity, or DefaultCapacity if capacity
// is not positive.
func New[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Enqueue appends v, suspending the caller while the queue is full.
// It fails only when ctx is done before space becomes available.
func (q *Queue[T]) Enqueue(ctx context.Context, v T) error {
	select {
	case q.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue removes the oldest value, suspending the caller while the queue
// is empty. It fails only when ctx is done before a value arrives.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, error) {
	select {
	case v := <-q.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Len reports the number of queued values.
func (q *Queue[T]) Len() int { return len(q.ch) }

// Cap reports the configured capacity bound.
func (q *Queue[T]) Cap() int { return cap(q.ch) }

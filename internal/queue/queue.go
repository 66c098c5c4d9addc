// Package queue provides the ordered hand-off between the checker and the notifier.
package queue

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by Pop once the producer closed the queue and every item was drained.
	ErrClosed = errors.New("queue closed")
	// ErrReceiverGone is returned by Push after the consumer detached.
	ErrReceiverGone = errors.New("queue receiver gone")
)

// Queue is an unbounded FIFO for one producer and one consumer.
// Push never blocks; items are delivered in push order without coalescing.
type Queue[T any] struct {
	mu       sync.Mutex
	items    []T
	closed   bool
	detached bool
	ready    chan struct{}
}

func New[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{}, 1)}
}

func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	switch {
	case q.detached:
		q.mu.Unlock()
		return ErrReceiverGone
	case q.closed:
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	q.notify()
	return nil
}

// Pop blocks until an item is available, the queue is closed and drained, or ctx is done.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			if len(q.items) == 0 {
				q.items = nil
			}
			q.mu.Unlock()
			return v, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return zero, ErrClosed
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.ready:
		}
	}
}

// Close is called by the producer. Items already pushed are still delivered.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.notify()
}

// Detach is called by the consumer when it stops receiving. Pending items are dropped
// and every later Push fails with ErrReceiverGone.
func (q *Queue[T]) Detach() {
	q.mu.Lock()
	q.detached = true
	q.items = nil
	q.mu.Unlock()
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue[T]) notify() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

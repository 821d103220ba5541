package csync

import "sync"

// Queue is a thread-safe FIFO.
type Queue[T any] struct {
	data []T
	mu   sync.RWMutex
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{
		data: make([]T, 0),
	}
}

// PushBack appends v and returns the queue length before the push.
func (q *Queue[T]) PushBack(v T) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	before := len(q.data)
	q.data = append(q.data, v)
	return before
}

// Front returns the head without removing it.
func (q *Queue[T]) Front() (T, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var zero T
	if len(q.data) == 0 {
		return zero, false
	}
	return q.data[0], true
}

// PopFront removes the head and returns it with the remaining length.
func (q *Queue[T]) PopFront() (T, int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.data) == 0 {
		return zero, 0, false
	}
	head := q.data[0]
	q.data[0] = zero
	q.data = q.data[1:]
	return head, len(q.data), true
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.data)
}

// Any reports whether some element satisfies predicate.
func (q *Queue[T]) Any(predicate func(T) bool) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for _, v := range q.data {
		if predicate(v) {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the queue in FIFO order.
func (q *Queue[T]) Snapshot() []T {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]T, len(q.data))
	copy(out, q.data)
	return out
}

package agent

import (
	"context"
	"errors"
	"sync"
)

var ErrQueueClosed = errors.New("request queue closed")

// RequestQueue is an unbounded FIFO of user turns feeding one live session.
// Close is idempotent; Put after Close returns ErrQueueClosed.
type RequestQueue struct {
	mu     sync.Mutex
	items  []string
	closed bool

	pending chan struct{}
	done    chan struct{}
}

func NewRequestQueue() *RequestQueue {
	return &RequestQueue{
		pending: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (q *RequestQueue) Put(text string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, text)
	select {
	case q.pending <- struct{}{}:
	default:
	}
	return nil
}

// Get blocks until an item is available, the queue is closed or ctx is done.
// Items put before Close are still returned.
func (q *RequestQueue) Get(ctx context.Context) (string, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items[0] = ""
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return "", ErrQueueClosed
		}

		select {
		case <-q.pending:
		case <-q.done:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Pending fires after a Put. It may fire spuriously; check Len.
func (q *RequestQueue) Pending() <-chan struct{} {
	return q.pending
}

func (q *RequestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close reports whether this call closed the queue.
func (q *RequestQueue) Close() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.closed = true
	close(q.done)
	return true
}

func (q *RequestQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

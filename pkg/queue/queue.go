// Package queue implements the bounded queues the lane engine wires between
// its concurrent pipelines: a channel-backed MPMC/MPSC digest queue, and a
// RequestingQueue promise/future abstraction for outstanding RPCs that must
// never be awaited synchronously.
package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fetchai/txlane/pkg/laneerrors"
)

// Digest is a bounded, channel-backed queue of digests. A buffered Go
// channel already gives MPMC/MPSC semantics (multiple goroutines may send
// and receive concurrently); the wrapper adds a non-blocking TryPush and a
// bounded-wait Push, both of which report QueueFull instead of blocking
// forever, and a timed Pop.
type Digest[T any] struct {
	ch chan T
}

// NewDigest creates a queue with the given capacity.
func NewDigest[T any](capacity int) *Digest[T] {
	return &Digest[T]{ch: make(chan T, capacity)}
}

// TryPush attempts a non-blocking push; returns laneerrors.ErrQueueFull if
// the queue is at capacity.
func (q *Digest[T]) TryPush(v T) error {
	select {
	case q.ch <- v:
		return nil
	default:
		return laneerrors.ErrQueueFull
	}
}

// Push blocks briefly (per spec.md §7, QueueFull callers "block briefly then
// retry") up to timeout, then reports ErrQueueFull.
func (q *Digest[T]) Push(timeout time.Duration) func(T) error {
	return func(v T) error {
		select {
		case q.ch <- v:
			return nil
		case <-time.After(timeout):
			return laneerrors.ErrQueueFull
		}
	}
}

// TryPop attempts a non-blocking pop.
func (q *Digest[T]) TryPop() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Pop waits up to timeout for an item.
func (q *Digest[T]) Pop(timeout time.Duration) (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	case <-time.After(timeout):
		var zero T
		return zero, false
	}
}

// Len reports the number of items currently buffered.
func (q *Digest[T]) Len() int {
	return len(q.ch)
}

// DrainUpTo pops up to n items without blocking, returning however many
// were available.
func (q *Digest[T]) DrainUpTo(n int) []T {
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, ok := q.TryPop()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// ResolveState is the outcome of polling a Promise.
type ResolveState int

const (
	Pending ResolveState = iota
	Completed
	Failed
)

// Promise is a single outstanding request's future value. The sync FSM
// polls it via Resolve; it never blocks waiting for the result.
type Promise[T any] struct {
	id       string
	done     chan struct{}
	value    T
	err      error
	deadline time.Time
}

// NewPromise creates a promise that expires at deadline. Each promise gets
// a unique ID so logs can correlate a staged request with its eventual
// completion or expiry across goroutines.
func NewPromise[T any](deadline time.Time) *Promise[T] {
	return &Promise[T]{id: uuid.New().String(), done: make(chan struct{}), deadline: deadline}
}

// ID returns the promise's correlation id.
func (p *Promise[T]) ID() string {
	return p.id
}

// Fulfill completes the promise successfully. Safe to call once; later calls
// are no-ops.
func (p *Promise[T]) Fulfill(v T) {
	select {
	case <-p.done:
		return
	default:
	}
	p.value = v
	close(p.done)
}

// Reject completes the promise with an error.
func (p *Promise[T]) Reject(err error) {
	select {
	case <-p.done:
		return
	default:
	}
	p.err = err
	close(p.done)
}

// Resolve polls the promise once without blocking. If the deadline has
// passed and the promise is still pending, it resolves to Failed.
func (p *Promise[T]) Resolve() (ResolveState, T, error) {
	select {
	case <-p.done:
		if p.err != nil {
			return Failed, p.value, p.err
		}
		return Completed, p.value, nil
	default:
	}
	if time.Now().After(p.deadline) {
		return Failed, p.value, laneerrors.ErrRPCFailure
	}
	return Pending, p.value, nil
}

// RequestingQueue tracks a batch of outstanding promises keyed by an
// arbitrary request key (e.g. a root index, a peer id). Callers Stage
// promises as requests go out, then repeatedly Drain to pull completed or
// expired ones without ever blocking — the defining trait of the reactor
// model in spec.md §5.
type RequestingQueue[K comparable, V any] struct {
	pending map[K]*Promise[V]
}

// NewRequestingQueue creates an empty RequestingQueue.
func NewRequestingQueue[K comparable, V any]() *RequestingQueue[K, V] {
	return &RequestingQueue[K, V]{pending: make(map[K]*Promise[V])}
}

// Stage registers a new outstanding promise under key.
func (r *RequestingQueue[K, V]) Stage(key K, p *Promise[V]) {
	r.pending[key] = p
}

// Len reports how many promises are still outstanding.
func (r *RequestingQueue[K, V]) Len() int {
	return len(r.pending)
}

// DrainResult is one resolved (or expired) entry returned by Drain.
type DrainResult[K comparable, V any] struct {
	Key   K
	Value V
	Err   error
}

// Drain pulls up to max completed-or-failed promises out of the pending
// set, leaving ones still Pending in place. It returns the resolved
// entries split by outcome plus the count still pending.
func (r *RequestingQueue[K, V]) Drain(max int) (completed []DrainResult[K, V], failed []DrainResult[K, V], stillPending int) {
	taken := 0
	for key, p := range r.pending {
		if taken >= max {
			break
		}
		state, v, err := p.Resolve()
		switch state {
		case Completed:
			completed = append(completed, DrainResult[K, V]{Key: key, Value: v})
			delete(r.pending, key)
			taken++
		case Failed:
			failed = append(failed, DrainResult[K, V]{Key: key, Value: v, Err: err})
			delete(r.pending, key)
			taken++
		case Pending:
			// left in place
		}
	}
	return completed, failed, len(r.pending)
}

// Context is a small helper that derives a child context expiring after
// timeout. Nothing in this module calls it; promises carry their own
// deadline.
func Context(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

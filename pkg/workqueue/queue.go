// Package workqueue runs fetch operations with bounded concurrency.
package workqueue

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

type Task interface {
	Run(ctx context.Context)
}

type TaskFunc func(ctx context.Context)

func (f TaskFunc) Run(ctx context.Context) {
	f(ctx)
}

type Queue interface {
	Submit(ctx context.Context, task Task)
}

// BoundedQueue runs at most limit tasks at once. A task whose context ends
// while waiting for a slot still runs, so it can observe the cancellation
// and report it.
type BoundedQueue struct {
	sem     *semaphore.Weighted
	wg      sync.WaitGroup
	running atomic.Int64
	waiting atomic.Int64
}

var _ Queue = (*BoundedQueue)(nil)

// NewBoundedQueue creates a queue, a non-positive limit means unbounded.
func NewBoundedQueue(limit int64) *BoundedQueue {
	q := &BoundedQueue{}
	if limit > 0 {
		q.sem = semaphore.NewWeighted(limit)
	}

	return q
}

func (q *BoundedQueue) Submit(ctx context.Context, task Task) {
	q.wg.Add(1)
	q.waiting.Add(1)

	go func() {
		defer q.wg.Done()

		acquired := q.acquire(ctx)
		q.waiting.Add(-1)
		if acquired {
			defer q.sem.Release(1)
		}

		q.running.Add(1)
		defer q.running.Add(-1)

		task.Run(ctx)
	}()
}

// Wait blocks until every submitted task returned.
func (q *BoundedQueue) Wait() {
	q.wg.Wait()
}

func (q *BoundedQueue) Running() int64 {
	return q.running.Load()
}

func (q *BoundedQueue) Waiting() int64 {
	return q.waiting.Load()
}

func (q *BoundedQueue) acquire(ctx context.Context) bool {
	if q.sem == nil {
		return false
	}

	return q.sem.Acquire(ctx, 1) == nil
}

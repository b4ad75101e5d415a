package workqueue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBoundedQueue_ShouldNotExceedLimit(t *testing.T) {
	queue := NewBoundedQueue(2)
	var current, peak atomic.Int64
	release := make(chan struct{})

	for i := 0; i < 6; i++ {
		queue.Submit(context.Background(), TaskFunc(func(ctx context.Context) {
			now := current.Add(1)
			for {
				old := peak.Load()
				if now <= old || peak.CompareAndSwap(old, now) {
					break
				}
			}
			<-release
			current.Add(-1)
		}))
	}

	assert.Eventually(t, func() bool { return queue.Running() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(4), queue.Waiting())

	close(release)
	queue.Wait()

	assert.Equal(t, int64(2), peak.Load())
	assert.Equal(t, int64(0), queue.Running())
}

func TestBoundedQueue_ShouldRunCancelledTaskSoItCanReport(t *testing.T) {
	queue := NewBoundedQueue(1)
	block := make(chan struct{})
	queue.Submit(context.Background(), TaskFunc(func(ctx context.Context) { <-block }))

	ctx, cancel := context.WithCancel(context.Background())
	var observed error
	var wg sync.WaitGroup
	wg.Add(1)
	queue.Submit(ctx, TaskFunc(func(ctx context.Context) {
		observed = ctx.Err()
		wg.Done()
	}))

	cancel()
	wg.Wait()
	close(block)
	queue.Wait()

	assert.Equal(t, context.Canceled, observed)
}

func TestBoundedQueue_UnboundedShouldRunEverythingAtOnce(t *testing.T) {
	queue := NewBoundedQueue(0)
	var wg sync.WaitGroup
	wg.Add(10)

	for i := 0; i < 10; i++ {
		queue.Submit(context.Background(), TaskFunc(func(ctx context.Context) {
			wg.Done()
			wg.Wait()
		}))
	}

	queue.Wait()
}

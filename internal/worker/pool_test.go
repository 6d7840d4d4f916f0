package worker

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_RunsAllTasks(t *testing.T) {
	pool := NewPool(4)

	var count int64
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&count, 1)
		})
	}
	pool.Wait()

	assert.Equal(t, int64(100), count)
}

func TestPool_BoundsConcurrency(t *testing.T) {
	pool := NewPool(2)

	var mu sync.Mutex
	running, peak := 0, 0

	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			mu.Lock()
			running--
			mu.Unlock()
		})
	}
	pool.Wait()

	assert.LessOrEqual(t, peak, 2)
}

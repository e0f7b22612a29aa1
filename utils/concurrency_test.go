package utils

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestKeySetNoDuplicates(t *testing.T) {
	s := NewKeySet()

	assert.True(t, s.Add("a|b"), "first Add should return true")
	assert.False(t, s.Add("a|b"), "second Add of same key should return false")
	assert.True(t, s.Add("a|c"))
	assert.Len(t, s, 2)
}

func TestWorkerPoolSize(t *testing.T) {
	tests := []struct {
		workers int
		want    int
	}{
		{0, 1},
		{-3, 1},
		{1, 1},
		{8, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewWorkerPool(tt.workers).Size(), "NewWorkerPool(%d)", tt.workers)
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(3)
	var running, peak int64

	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			n := atomic.AddInt64(&running, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&running, -1)
		})
	}
	pool.Wait()

	assert.LessOrEqual(t, peak, int64(3))
}

func TestWorkerPoolForEachVisitsEveryIndex(t *testing.T) {
	for _, workers := range []int{1, 2, 7} {
		for _, n := range []int{0, 1, 5, 100} {
			pool := NewWorkerPool(workers)
			visits := make([]int64, n)
			pool.ForEach(n, func(i int) {
				atomic.AddInt64(&visits[i], 1)
			})
			for i, v := range visits {
				assert.EqualValues(t, 1, v, "workers=%d n=%d index %d", workers, n, i)
			}
		}
	}
}

func TestMultiLimiterStrictestFirst(t *testing.T) {
	hourly := rate.NewLimiter(Per(10, time.Hour), 10)
	fast := MinInterval(10 * time.Millisecond)

	m := Multi(fast, hourly)
	assert.Equal(t, hourly.Limit(), m.Limit())
}

func TestMinIntervalSpacing(t *testing.T) {
	interval := 30 * time.Millisecond
	l := MinInterval(interval)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	assert.GreaterOrEqual(t, time.Since(start), 2*interval-5*time.Millisecond)
}

func TestMinIntervalDisabled(t *testing.T) {
	assert.Equal(t, rate.Inf, MinInterval(0).Limit())
}

func TestMultiLimiterCancelled(t *testing.T) {
	l := Multi(MinInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, l.Wait(ctx))

	cancel()
	assert.Error(t, l.Wait(ctx))
}

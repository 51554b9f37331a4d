package workerpool_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afandal/storeadmin/pkg/workerpool"
)

func TestSubmitRunsJobs(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown(context.Background())

	const n = 6
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		require.Eventually(t, func() bool {
			return pool.Submit(func() { defer wg.Done(); count.Add(1) }) == nil
		}, time.Second, time.Millisecond)
	}
	wg.Wait()
	assert.EqualValues(t, n, count.Load())
}

func TestSubmitFullQueue(t *testing.T) {
	pool := workerpool.New(1)
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, pool.Submit(func() { close(started); <-release }))
	<-started

	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))
	assert.Equal(t, 2, pool.Queued())
	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolFull)

	close(release)
	require.NoError(t, pool.Shutdown(context.Background()))
	assert.Zero(t, pool.Queued())
}

func TestShutdownDrainsAndCloses(t *testing.T) {
	pool := workerpool.New(1)
	var count atomic.Int64
	for i := 0; i < 2; i++ {
		require.NoError(t, pool.Submit(func() {
			time.Sleep(time.Millisecond)
			count.Add(1)
		}))
	}
	require.NoError(t, pool.Shutdown(context.Background()))
	assert.EqualValues(t, 2, count.Load())

	require.NoError(t, pool.Shutdown(context.Background()))
	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
}

func TestShutdownHonoursDeadline(t *testing.T) {
	pool := workerpool.New(1)
	release := make(chan struct{})
	defer close(release)
	require.NoError(t, pool.Submit(func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.Shutdown(ctx), context.DeadlineExceeded)
}

func TestPanickingJobDoesNotKillWorker(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown(context.Background())

	require.NoError(t, pool.Submit(func() { panic("boom") }))
	done := make(chan struct{})
	require.Eventually(t, func() bool { return pool.Submit(func() { close(done) }) == nil }, time.Second, time.Millisecond)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died")
	}
}

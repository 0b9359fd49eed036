package queue

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryEnqueueAfterClose(t *testing.T) {
	q := NewJobQueue(1)
	q.Close()
	q.Close()

	assert.ErrorIs(t, q.TryEnqueue(&TokenCheckJob{ConnectionID: "c1"}), ErrQueueClosed)
}

func TestTryEnqueueFull(t *testing.T) {
	q := NewJobQueue(1)
	require.NoError(t, q.TryEnqueue(&TokenCheckJob{ConnectionID: "c1"}))
	assert.ErrorIs(t, q.TryEnqueue(&TokenCheckJob{ConnectionID: "c2"}), ErrQueueFull)

	job := <-q.Jobs()
	assert.Equal(t, "c1", job.ConnectionID)
	require.NoError(t, q.TryEnqueue(&TokenCheckJob{ConnectionID: "c2"}))
}

func TestCloseKeepsBufferedJobs(t *testing.T) {
	q := NewJobQueue(2)
	require.NoError(t, q.TryEnqueue(&TokenCheckJob{ConnectionID: "c1"}))
	q.Close()

	job, ok := <-q.Jobs()
	require.True(t, ok)
	assert.Equal(t, "c1", job.ConnectionID)

	_, ok = <-q.Jobs()
	assert.False(t, ok)
}

func TestWorkerPoolDrainsQueueOnClose(t *testing.T) {
	q := NewJobQueue(10)
	pool := NewWorkerPool(q, 3)

	var (
		mu   sync.Mutex
		seen []string
	)
	pool.Start(func(job *TokenCheckJob) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.ConnectionID)
		if job.ConnectionID == "c3" {
			return fmt.Errorf("boom")
		}
		return nil
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, q.TryEnqueue(&TokenCheckJob{ConnectionID: fmt.Sprintf("c%d", i), UserID: "u1"}))
	}
	q.Close()
	pool.Wait()

	sort.Strings(seen)
	assert.Equal(t, []string{"c0", "c1", "c2", "c3", "c4"}, seen)
}

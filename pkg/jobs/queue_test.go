package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForState(t *testing.T, q *Queue, id string, want State) Status {
	t.Helper()
	var status Status
	require.Eventually(t, func() bool {
		var ok bool
		status, ok = q.Status(id)
		return ok && status.State == want
	}, 2*time.Second, 5*time.Millisecond)
	return status
}

func TestQueueRecordsResult(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) (any, error) {
		return job.Payload, nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "echo", Payload: "done"}))
	status := waitForState(t, q, "j1", StateSucceeded)
	assert.Equal(t, "done", status.Result)
	assert.NotNil(t, status.FinishedAt)
}

func TestQueueRetriesThenFails(t *testing.T) {
	var calls int32
	q := NewQueue("test", func(ctx context.Context, job Job) (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("boom")
	}, QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "fail"}))
	status := waitForState(t, q, "j1", StateFailed)
	assert.Equal(t, "boom", status.LastError)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueRejectsDuplicateKey(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) (any, error) {
		<-release
		return nil, nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Key: "2024-03"}))
	assert.ErrorIs(t, q.Enqueue(Job{ID: "j2", Key: "2024-03"}), ErrDuplicate)
	require.NoError(t, q.Enqueue(Job{ID: "j3", Key: "2024-04"}))

	close(release)
	waitForState(t, q, "j1", StateSucceeded)
	require.NoError(t, q.Enqueue(Job{ID: "j4", Key: "2024-03"}))
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) (any, error) { return nil, nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "j1"}))
	_, ok := q.Status("j1")
	assert.False(t, ok)
}

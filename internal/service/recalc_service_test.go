package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/okr-performance-api/internal/models"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
	"github.com/noah-isme/okr-performance-api/pkg/jobs"
)

type monthCalculatorStub struct {
	mu      sync.Mutex
	months  []time.Time
	release chan struct{}
}

func (s *monthCalculatorStub) CalculateMonth(ctx context.Context, month time.Time) (*BatchResult, error) {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.months = append(s.months, month)
	return &BatchResult{Month: models.FormatMonth(month), Total: 1, Succeeded: 1}, nil
}

func startRecalcQueue(t *testing.T, calc *monthCalculatorStub) *jobs.Queue {
	t.Helper()
	worker := NewRecalcWorker(calc, zap.NewNop())
	queue := jobs.NewQueue("recalc-test", worker.Handle, jobs.QueueConfig{Workers: 1, RetryDelay: time.Millisecond})
	queue.Start(context.Background())
	t.Cleanup(queue.Stop)
	return queue
}

func TestRecalcServiceRunsQueuedMonth(t *testing.T) {
	calc := &monthCalculatorStub{}
	svc := NewRecalcService(startRecalcQueue(t, calc), zap.NewNop())

	status, err := svc.EnqueueMonth(context.Background(), time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024-03", status.Key)
	assert.Equal(t, JobTypeCalculateMonth, status.Type)

	require.Eventually(t, func() bool {
		current, err := svc.JobStatus(context.Background(), status.ID)
		return err == nil && current.State == jobs.StateSucceeded
	}, 2*time.Second, 5*time.Millisecond)

	current, err := svc.JobStatus(context.Background(), status.ID)
	require.NoError(t, err)
	result, ok := current.Result.(*BatchResult)
	require.True(t, ok)
	assert.Equal(t, "2024-03", result.Month)
}

func TestRecalcServiceRejectsPendingMonth(t *testing.T) {
	calc := &monthCalculatorStub{release: make(chan struct{})}
	svc := NewRecalcService(startRecalcQueue(t, calc), zap.NewNop())
	defer close(calc.release)

	_, err := svc.EnqueueMonth(context.Background(), march())
	require.NoError(t, err)
	_, err = svc.EnqueueMonth(context.Background(), march())
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestRecalcServicePreviousMonth(t *testing.T) {
	calc := &monthCalculatorStub{}
	svc := NewRecalcService(startRecalcQueue(t, calc), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, time.January, 1, 2, 0, 0, 0, time.UTC) }

	status, err := svc.EnqueuePreviousMonth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2023-12", status.Key)
}

func TestRecalcServiceUnknownJob(t *testing.T) {
	svc := NewRecalcService(startRecalcQueue(t, &monthCalculatorStub{}), zap.NewNop())

	_, err := svc.JobStatus(context.Background(), "nope")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestRecalcWorkerRejectsForeignJobs(t *testing.T) {
	worker := NewRecalcWorker(&monthCalculatorStub{}, nil)

	_, err := worker.Handle(context.Background(), jobs.Job{ID: "j1", Type: "report.export"})
	assert.Error(t, err)

	_, err = worker.Handle(context.Background(), jobs.Job{ID: "j2", Type: JobTypeCalculateMonth, Payload: "2024-03"})
	assert.Error(t, err)
}

func TestRecalcServiceStartScheduleRejectsBadSpec(t *testing.T) {
	svc := NewRecalcService(startRecalcQueue(t, &monthCalculatorStub{}), zap.NewNop())

	_, err := svc.StartSchedule("not a schedule")
	assert.Error(t, err)

	c, err := svc.StartSchedule("0 2 1 * *")
	require.NoError(t, err)
	c.Stop()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/okr-performance-api/internal/models"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
	"github.com/noah-isme/okr-performance-api/pkg/jobs"
)

// JobTypeCalculateMonth is the queue job type of a monthly batch.
const JobTypeCalculateMonth = "performance.calculate_month"

type monthCalculator interface {
	CalculateMonth(ctx context.Context, month time.Time) (*BatchResult, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
	Status(id string) (jobs.Status, bool)
}

// RecalcWorker bridges queue jobs to the monthly batch.
type RecalcWorker struct {
	calculator monthCalculator
	logger     *zap.Logger
}

// NewRecalcWorker constructs a worker.
func NewRecalcWorker(calculator monthCalculator, logger *zap.Logger) *RecalcWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecalcWorker{calculator: calculator, logger: logger}
}

// Handle processes a queue job.
func (w *RecalcWorker) Handle(ctx context.Context, job jobs.Job) (any, error) {
	if job.Type != JobTypeCalculateMonth {
		return nil, fmt.Errorf("unsupported job type %q", job.Type)
	}
	month, ok := job.Payload.(time.Time)
	if !ok {
		return nil, fmt.Errorf("job %s: payload is not a month", job.ID)
	}
	w.logger.Info("monthly recalculation started",
		zap.String("job_id", job.ID),
		zap.String("month", models.FormatMonth(month)),
		zap.Int("attempt", job.Attempt),
	)
	return w.calculator.CalculateMonth(ctx, month)
}

// RecalcService schedules asynchronous monthly recalculations.
type RecalcService struct {
	queue  jobDispatcher
	logger *zap.Logger
	now    func() time.Time
}

// NewRecalcService constructs a RecalcService.
func NewRecalcService(queue jobDispatcher, logger *zap.Logger) *RecalcService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecalcService{queue: queue, logger: logger, now: time.Now}
}

// EnqueueMonth queues a batch for month. Only one batch per month may be
// pending at a time.
func (s *RecalcService) EnqueueMonth(ctx context.Context, month time.Time) (*jobs.Status, error) {
	month = models.MonthStart(month)
	key := models.FormatMonth(month)
	job := jobs.Job{ID: uuid.NewString(), Type: JobTypeCalculateMonth, Key: key, Payload: month}
	if err := s.queue.Enqueue(job); err != nil {
		if errors.Is(err, jobs.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a recalculation for this month is already pending")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue recalculation")
	}
	s.logger.Info("monthly recalculation queued", zap.String("job_id", job.ID), zap.String("month", key))

	status, ok := s.queue.Status(job.ID)
	if !ok {
		status = jobs.Status{ID: job.ID, Type: job.Type, Key: key, State: jobs.StateQueued, EnqueuedAt: s.now().UTC()}
	}
	return &status, nil
}

// JobStatus reports the progress of a queued recalculation.
func (s *RecalcService) JobStatus(ctx context.Context, id string) (*jobs.Status, error) {
	status, ok := s.queue.Status(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
	}
	return &status, nil
}

// EnqueuePreviousMonth queues the month before the current one. Used by the
// scheduler so a closed month is settled once it ends.
func (s *RecalcService) EnqueuePreviousMonth(ctx context.Context) (*jobs.Status, error) {
	previous := models.MonthStart(s.now()).AddDate(0, -1, 0)
	return s.EnqueueMonth(ctx, previous)
}

// StartSchedule registers the periodic batch on a new cron runner and starts
// it. The caller stops the returned runner on shutdown.
func (s *RecalcService) StartSchedule(schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() {
		status, err := s.EnqueuePreviousMonth(context.Background())
		if err != nil {
			s.logger.Warn("scheduled recalculation not queued", zap.Error(err))
			return
		}
		s.logger.Info("scheduled recalculation queued", zap.String("job_id", status.ID), zap.String("month", status.Key))
	}); err != nil {
		return nil, fmt.Errorf("register recalculation schedule %q: %w", schedule, err)
	}
	c.Start()
	s.logger.Info("recalculation schedule started", zap.String("schedule", schedule))
	return c, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/scoring"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
)

type taskReader interface {
	FindByID(ctx context.Context, id string) (*models.Task, error)
}

type scoreStore interface {
	ReplaceForTask(ctx context.Context, dist *models.ScoreDistribution) error
	FindByTask(ctx context.Context, taskID string) (*models.ScoreDistribution, error)
	UserMonthlyScore(ctx context.Context, userID string, start, end time.Time) (*models.UserMonthlyScore, error)
}

// TaskScoreService splits completed task scores between participants.
type TaskScoreService struct {
	tasks  taskReader
	scores scoreStore
	cache  *CacheService
	logger *zap.Logger
}

// NewTaskScoreService constructs a TaskScoreService.
func NewTaskScoreService(tasks taskReader, scores scoreStore, cache *CacheService, logger *zap.Logger) *TaskScoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskScoreService{tasks: tasks, scores: scores, cache: cache, logger: logger}
}

// CalculateDistribution recomputes and stores the distribution of a completed
// task, replacing any previous one.
func (s *TaskScoreService) CalculateDistribution(ctx context.Context, taskID string) (*models.ScoreDistribution, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}

	result, err := scoring.Distribute(scoring.DistributionInput{
		Status:          task.Status,
		DifficultyScore: task.DifficultyScore,
		EverPostponed:   task.WasEverPostponed(),
		OwnerID:         task.OwnerID,
		CollaboratorIDs: task.CollaboratorIDs,
	})
	if err != nil {
		if errors.Is(err, scoring.ErrInvalidState) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "task must be completed before scoring")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to distribute task score")
	}

	dist := &models.ScoreDistribution{
		TaskID:             task.ID,
		TotalScore:         result.TotalScore,
		PenaltyCoefficient: result.PenaltyCoefficient,
		CalculatedAt:       time.Now().UTC(),
		Allocations:        make([]models.ScoreAllocation, 0, len(result.Shares)),
	}
	for _, share := range result.Shares {
		dist.Allocations = append(dist.Allocations, models.ScoreAllocation{
			UserID:        share.UserID,
			IsOwner:       share.IsOwner,
			BaseScore:     share.BaseScore,
			AdjustedScore: share.AdjustedScore,
			Percentage:    share.Percentage,
		})
	}

	if err := s.scores.ReplaceForTask(ctx, dist); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store score distribution")
	}

	s.logger.Info("task score distributed",
		zap.String("task_id", task.ID),
		zap.String("total_score", dist.TotalScore.String()),
		zap.Int("participants", len(dist.Allocations)),
	)
	if task.CompletedAt != nil {
		s.cache.InvalidateMonth(ctx, *task.CompletedAt)
	}
	return dist, nil
}

// GetDistribution returns the stored distribution of a task.
func (s *TaskScoreService) GetDistribution(ctx context.Context, taskID string) (*models.ScoreDistribution, error) {
	dist, err := s.scores.FindByTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "score distribution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load score distribution")
	}
	return dist, nil
}

// UserMonthlyScore sums the adjusted scores a user earned on tasks completed
// in month.
func (s *TaskScoreService) UserMonthlyScore(ctx context.Context, userID string, month time.Time) (*models.UserMonthlyScore, error) {
	start, end := models.MonthRange(month)
	score, err := s.scores.UserMonthlyScore(ctx, userID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute monthly score")
	}
	score.UserID = userID
	score.Month = models.FormatMonth(start)
	return score, nil
}

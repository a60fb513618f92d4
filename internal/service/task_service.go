package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/okr-performance-api/internal/models"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
)

type taskStatusStore interface {
	FindByID(ctx context.Context, id string) (*models.Task, error)
	UpdateStatus(ctx context.Context, task *models.Task) error
}

type distributionCalculator interface {
	CalculateDistribution(ctx context.Context, taskID string) (*models.ScoreDistribution, error)
}

// UpdateTaskStatusRequest moves a task through its lifecycle.
type UpdateTaskStatusRequest struct {
	Status         models.TaskStatus `json:"status" validate:"required,oneof=todo in_progress completed postponed"`
	PostponeReason string            `json:"postpone_reason" validate:"max=1000"`
}

// TaskService owns the task status transitions scoring depends on.
type TaskService struct {
	tasks     taskStatusStore
	scores    distributionCalculator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTaskService constructs a TaskService.
func NewTaskService(tasks taskStatusStore, scores distributionCalculator, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{tasks: tasks, scores: scores, validator: validate, logger: logger, now: time.Now}
}

// UpdateStatus applies a status change requested by a task participant.
// Completing a task distributes its score; a distribution failure is logged
// and does not undo the transition.
func (s *TaskService) UpdateStatus(ctx context.Context, taskID, actorID string, req UpdateTaskStatusRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	if !task.IsParticipant(actorID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only task participants can change its status")
	}
	if task.Status == req.Status {
		return task, nil
	}

	now := s.now().UTC()
	previous := task.Status
	task.Status = req.Status
	switch req.Status {
	case models.TaskStatusInProgress:
		if task.StartedAt == nil {
			task.StartedAt = &now
		}
	case models.TaskStatusCompleted:
		task.CompletedAt = &now
	case models.TaskStatusPostponed:
		if task.PostponedAt == nil {
			task.PostponedAt = &now
		}
		task.PostponeReason = req.PostponeReason
	}
	if previous == models.TaskStatusPostponed && req.Status != models.TaskStatusPostponed {
		task.PostponeReason = ""
	}

	if err := s.tasks.UpdateStatus(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task status")
	}
	s.logger.Info("task status changed",
		zap.String("task_id", task.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(task.Status)),
		zap.String("actor_id", actorID),
	)

	if task.Status == models.TaskStatusCompleted && s.scores != nil {
		if _, err := s.scores.CalculateDistribution(ctx, task.ID); err != nil {
			s.logger.Warn("score distribution after completion failed", zap.String("task_id", task.ID), zap.Error(err))
		}
	}
	return task, nil
}

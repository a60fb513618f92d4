package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/repository"
	"github.com/noah-isme/okr-performance-api/internal/scoring"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
)

type reviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	CreateTaskReview(ctx context.Context, review *models.Review, distributionID string, adjust repository.ReviewAdjuster) error
	ExistsForTask(ctx context.Context, taskID, reviewerID string) (bool, error)
	ExistsMonthly(ctx context.Context, reviewerID, revieweeID string, month time.Time) (bool, error)
	ListByTask(ctx context.Context, taskID string) ([]models.Review, error)
	ListMonthly(ctx context.Context, revieweeID string, month time.Time) ([]models.Review, error)
	ListReviewableTasks(ctx context.Context, reviewerID string) ([]models.Task, error)
	ListReviewableUsers(ctx context.Context, reviewerID string, month time.Time) ([]models.User, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// TaskReviewRequest rates a completed task.
type TaskReviewRequest struct {
	TaskID      string `json:"task_id" validate:"required"`
	Rating      int    `json:"rating" validate:"min=1,max=10"`
	Comment     string `json:"comment" validate:"max=2000"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// MonthlyReviewRequest rates a colleague for a month.
type MonthlyReviewRequest struct {
	RevieweeID  string `json:"reviewee_id" validate:"required"`
	Month       string `json:"month" validate:"required"`
	Rating      int    `json:"rating" validate:"min=1,max=10"`
	Comment     string `json:"comment" validate:"max=2000"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// ReviewServiceConfig toggles review side effects.
type ReviewServiceConfig struct {
	RedistributeOnReview bool
}

// ReviewService records reviews and rescales task scores from them.
type ReviewService struct {
	reviews   reviewStore
	tasks     taskReader
	users     userReader
	scores    scoreStore
	weights   scoring.RoleWeights
	cache     *CacheService
	cfg       ReviewServiceConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService constructs a ReviewService.
func NewReviewService(reviews reviewStore, tasks taskReader, users userReader, scores scoreStore, cache *CacheService, cfg ReviewServiceConfig, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{
		reviews:   reviews,
		tasks:     tasks,
		users:     users,
		scores:    scores,
		weights:   scoring.DefaultRoleWeights,
		cache:     cache,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
	}
}

// SubmitTaskReview stores a review of a completed task by a non-participant
// and, when enabled, rescales the task's allocations by the new review
// adjustment factor. The review and the rescale are stored together or not
// at all.
func (s *ReviewService) SubmitTaskReview(ctx context.Context, reviewerID string, req TaskReviewRequest) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	task, err := s.tasks.FindByID(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	if task.Status != models.TaskStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "only completed tasks can be reviewed")
	}
	if task.IsParticipant(reviewerID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "task participants cannot review their own task")
	}

	exists, err := s.reviews.ExistsForTask(ctx, task.ID, reviewerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing review")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "task already reviewed by this reviewer")
	}

	taskID := task.ID
	review := &models.Review{
		Type:        models.ReviewTypeTask,
		TaskID:      &taskID,
		ReviewerID:  reviewerID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		IsAnonymous: req.IsAnonymous,
	}

	var (
		distributionID string
		adjust         repository.ReviewAdjuster
		applied        repository.ReviewAdjustment
	)
	if s.cfg.RedistributeOnReview {
		dist, err := s.scores.FindByTask(ctx, task.ID)
		switch {
		case err == nil:
			distributionID = dist.ID
			adjust = func(reviews []models.Review) repository.ReviewAdjustment {
				avg, count := scoring.WeightedAverage(ratedReviews(reviews), s.weights)
				factor := scoring.AdjustmentFactor(avg, count)
				total, allocations := scoring.Redistribute(task.DifficultyScore, dist.PenaltyCoefficient, factor, dist.Allocations)
				applied = repository.ReviewAdjustment{Factor: factor, AdjustedTotal: total, Allocations: allocations}
				return applied
			}
		case !errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load score distribution")
		}
	}

	if err := s.reviews.CreateTaskReview(ctx, review, distributionID, adjust); err != nil {
		return nil, storeError(err, "task already reviewed by this reviewer", "failed to store review")
	}

	if adjust != nil {
		s.logger.Info("task score adjusted by reviews",
			zap.String("task_id", task.ID),
			zap.String("factor", applied.Factor.String()),
			zap.String("adjusted_total", applied.AdjustedTotal.String()),
		)
		if task.CompletedAt != nil {
			s.cache.InvalidateMonth(ctx, *task.CompletedAt)
		}
	}
	return review, nil
}

// SubmitMonthlyReview stores a person review for a month.
func (s *ReviewService) SubmitMonthlyReview(ctx context.Context, reviewerID string, req MonthlyReviewRequest) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	month, err := models.ParseMonth(req.Month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if req.RevieweeID == reviewerID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot review yourself")
	}

	if _, err := s.users.FindByID(ctx, req.RevieweeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reviewee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reviewee")
	}

	exists, err := s.reviews.ExistsMonthly(ctx, reviewerID, req.RevieweeID, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing review")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "monthly review already submitted")
	}

	revieweeID := req.RevieweeID
	review := &models.Review{
		Type:        models.ReviewTypeMonthly,
		RevieweeID:  &revieweeID,
		ReviewerID:  reviewerID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		IsAnonymous: req.IsAnonymous,
		Month:       &month,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, storeError(err, "monthly review already submitted", "failed to store review")
	}
	return review, nil
}

// TaskSummary aggregates the reviews of a task.
func (s *ReviewService) TaskSummary(ctx context.Context, taskID string) (*scoring.ReviewSummary, error) {
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	reviews, err := s.reviews.ListByTask(ctx, taskID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list task reviews")
	}
	summary := scoring.Summarize(ratedReviews(reviews), s.weights)
	return &summary, nil
}

// ListTaskReviews returns a task's reviews with anonymous reviewers hidden.
func (s *ReviewService) ListTaskReviews(ctx context.Context, taskID string) ([]models.Review, error) {
	reviews, err := s.reviews.ListByTask(ctx, taskID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list task reviews")
	}
	return maskReviews(reviews), nil
}

// ListMonthlyReviews returns a reviewee's monthly reviews with anonymous
// reviewers hidden.
func (s *ReviewService) ListMonthlyReviews(ctx context.Context, revieweeID string, month time.Time) ([]models.Review, error) {
	reviews, err := s.reviews.ListMonthly(ctx, revieweeID, models.MonthStart(month))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list monthly reviews")
	}
	return maskReviews(reviews), nil
}

// ListReviewableTasks returns the completed tasks reviewerID may still review.
func (s *ReviewService) ListReviewableTasks(ctx context.Context, reviewerID string) ([]models.Task, error) {
	tasks, err := s.reviews.ListReviewableTasks(ctx, reviewerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviewable tasks")
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// ListReviewableUsers returns the colleagues reviewerID has not reviewed for month.
func (s *ReviewService) ListReviewableUsers(ctx context.Context, reviewerID string, month time.Time) ([]models.User, error) {
	users, err := s.reviews.ListReviewableUsers(ctx, reviewerID, models.MonthStart(month))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviewable users")
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func maskReviews(reviews []models.Review) []models.Review {
	out := make([]models.Review, len(reviews))
	for i, review := range reviews {
		out[i] = review.Masked()
	}
	return out
}

func ratedReviews(reviews []models.Review) []scoring.RatedReview {
	out := make([]scoring.RatedReview, len(reviews))
	for i, review := range reviews {
		out[i] = scoring.RatedReview{Rating: review.Rating, Role: review.ReviewerRole}
	}
	return out
}

// storeError reports a failed insert as a conflict when a unique constraint
// rejected it.
func storeError(err error, conflict, internal string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return appErrors.Clone(appErrors.ErrConflict, conflict)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}

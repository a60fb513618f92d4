package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/okr-performance-api/internal/models"
)

const reviewSelect = `SELECT r.id, r.type, r.task_id, r.reviewee_id, r.reviewer_id, u.role AS reviewer_role,
r.rating, r.comment, r.is_anonymous, r.month, r.created_at
FROM reviews r JOIN users u ON u.id = r.reviewer_id`

// ReviewRepository stores task and monthly reviews. The reviewer role is read
// from the roster at query time.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs a ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const insertReview = `INSERT INTO reviews (id, type, task_id, reviewee_id, reviewer_id, rating, comment, is_anonymous, month, created_at)
VALUES (:id, :type, :task_id, :reviewee_id, :reviewer_id, :rating, :comment, :is_anonymous, :month, :created_at)`

// ReviewAdjustment is the rescale of a task distribution derived from its reviews.
type ReviewAdjustment struct {
	Factor        decimal.Decimal
	AdjustedTotal decimal.Decimal
	Allocations   []models.ScoreAllocation
}

// ReviewAdjuster derives an adjustment from every review of a task, the new
// one included.
type ReviewAdjuster func(reviews []models.Review) ReviewAdjustment

func prepareReview(review *models.Review) {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
}

// Create inserts a review. A second review for the same key fails with
// ErrDuplicate.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	prepareReview(review)
	if _, err := r.db.NamedExecContext(ctx, insertReview, review); err != nil {
		return writeError("create review", err)
	}
	return nil
}

// CreateTaskReview inserts a task review and, when adjust is set, applies the
// adjustment it derives to distributionID in the same transaction. The
// distribution row is locked first so concurrent reviews of one task are
// applied one after another.
func (r *ReviewRepository) CreateTaskReview(ctx context.Context, review *models.Review, distributionID string, adjust ReviewAdjuster) error {
	if review.TaskID == nil {
		return fmt.Errorf("create task review: missing task id")
	}
	prepareReview(review)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	withAdjustment := adjust != nil && distributionID != ""
	if withAdjustment {
		var locked string
		const lockDist = `SELECT id FROM score_distributions WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &locked, lockDist, distributionID); err != nil {
			return fmt.Errorf("lock score distribution: %w", err)
		}
	}

	if _, err := tx.NamedExecContext(ctx, insertReview, review); err != nil {
		return writeError("create review", err)
	}

	if withAdjustment {
		query := reviewSelect + ` WHERE r.type = 'task' AND r.task_id = $1 ORDER BY r.created_at ASC`
		var reviews []models.Review
		if err := tx.SelectContext(ctx, &reviews, query, *review.TaskID); err != nil {
			return fmt.Errorf("list task reviews: %w", err)
		}
		if err := applyAdjustment(ctx, tx, distributionID, adjust(reviews)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review tx: %w", err)
	}
	return nil
}

// ExistsForTask reports whether reviewerID already reviewed taskID.
func (r *ReviewRepository) ExistsForTask(ctx context.Context, taskID, reviewerID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM reviews WHERE type = 'task' AND task_id = $1 AND reviewer_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, taskID, reviewerID); err != nil {
		return false, fmt.Errorf("check task review: %w", err)
	}
	return exists, nil
}

// ExistsMonthly reports whether reviewerID already reviewed revieweeID for month.
func (r *ReviewRepository) ExistsMonthly(ctx context.Context, reviewerID, revieweeID string, month time.Time) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM reviews WHERE type = 'monthly' AND reviewer_id = $1 AND reviewee_id = $2 AND month = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, reviewerID, revieweeID, month); err != nil {
		return false, fmt.Errorf("check monthly review: %w", err)
	}
	return exists, nil
}

// ListByTask returns every review of a task, oldest first.
func (r *ReviewRepository) ListByTask(ctx context.Context, taskID string) ([]models.Review, error) {
	query := reviewSelect + ` WHERE r.type = 'task' AND r.task_id = $1 ORDER BY r.created_at ASC`
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, taskID); err != nil {
		return nil, fmt.Errorf("list task reviews: %w", err)
	}
	return reviews, nil
}

// ListMonthly returns the monthly reviews of a reviewee.
func (r *ReviewRepository) ListMonthly(ctx context.Context, revieweeID string, month time.Time) ([]models.Review, error) {
	query := reviewSelect + ` WHERE r.type = 'monthly' AND r.reviewee_id = $1 AND r.month = $2 ORDER BY r.created_at ASC`
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, revieweeID, month); err != nil {
		return nil, fmt.Errorf("list monthly reviews: %w", err)
	}
	return reviews, nil
}

// ListForCompletedTasks returns the reviews of every task userID took part in
// that was completed inside [start, end).
func (r *ReviewRepository) ListForCompletedTasks(ctx context.Context, userID string, start, end time.Time) ([]models.Review, error) {
	query := reviewSelect + `
JOIN tasks t ON t.id = r.task_id
WHERE r.type = 'task' AND t.status = 'completed' AND t.completed_at >= $2 AND t.completed_at < $3
  AND (t.owner_id = $1 OR EXISTS (SELECT 1 FROM task_collaborators c WHERE c.task_id = t.id AND c.user_id = $1))
ORDER BY r.created_at ASC`
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, userID, start, end); err != nil {
		return nil, fmt.Errorf("list reviews for completed tasks: %w", err)
	}
	return reviews, nil
}

// ListReviewableTasks returns the completed tasks reviewerID neither took part
// in nor reviewed yet, newest completion first.
func (r *ReviewRepository) ListReviewableTasks(ctx context.Context, reviewerID string) ([]models.Task, error) {
	query := taskSelect + `
WHERE t.status = 'completed' AND t.owner_id <> $1
  AND NOT EXISTS (SELECT 1 FROM task_collaborators c WHERE c.task_id = t.id AND c.user_id = $1)
  AND NOT EXISTS (SELECT 1 FROM reviews rv WHERE rv.type = 'task' AND rv.task_id = t.id AND rv.reviewer_id = $1)
ORDER BY t.completed_at DESC, t.id ASC`
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, reviewerID); err != nil {
		return nil, fmt.Errorf("list reviewable tasks: %w", err)
	}
	return tasks, nil
}

// ListReviewableUsers returns the active users other than reviewerID that
// reviewerID has not reviewed for month.
func (r *ReviewRepository) ListReviewableUsers(ctx context.Context, reviewerID string, month time.Time) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u
WHERE u.active = TRUE AND u.id <> $1
  AND NOT EXISTS (SELECT 1 FROM reviews rv WHERE rv.type = 'monthly' AND rv.reviewer_id = $1 AND rv.reviewee_id = u.id AND rv.month = $2)
ORDER BY u.name ASC, u.id ASC`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, reviewerID, month); err != nil {
		return nil, fmt.Errorf("list reviewable users: %w", err)
	}
	return users, nil
}

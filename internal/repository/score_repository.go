package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/okr-performance-api/internal/models"
)

// ScoreRepository persists task score distributions and their allocations.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository constructs a ScoreRepository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// ReplaceForTask deletes any previous distribution of the task and inserts
// dist with its allocations in a single transaction.
func (r *ScoreRepository) ReplaceForTask(ctx context.Context, dist *models.ScoreDistribution) error {
	if dist.ID == "" {
		dist.ID = uuid.NewString()
	}
	if dist.CalculatedAt.IsZero() {
		dist.CalculatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace distribution tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM score_distributions WHERE task_id = $1`, dist.TaskID); err != nil {
		return fmt.Errorf("delete distribution: %w", err)
	}

	const insertDist = `INSERT INTO score_distributions (id, task_id, total_score, penalty_coefficient, adjustment_factor, adjusted_total, calculated_at)
VALUES (:id, :task_id, :total_score, :penalty_coefficient, :adjustment_factor, :adjusted_total, :calculated_at)`
	if _, err := tx.NamedExecContext(ctx, insertDist, dist); err != nil {
		return fmt.Errorf("insert distribution: %w", err)
	}

	const insertAlloc = `INSERT INTO score_allocations (id, distribution_id, user_id, is_owner, base_score, adjusted_score, percentage)
VALUES (:id, :distribution_id, :user_id, :is_owner, :base_score, :adjusted_score, :percentage)`
	for i := range dist.Allocations {
		alloc := &dist.Allocations[i]
		if alloc.ID == "" {
			alloc.ID = uuid.NewString()
		}
		alloc.DistributionID = dist.ID
		if _, err := tx.NamedExecContext(ctx, insertAlloc, alloc); err != nil {
			return fmt.Errorf("insert allocation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace distribution tx: %w", err)
	}
	return nil
}

// FindByTask returns the distribution of a task with its allocations.
func (r *ScoreRepository) FindByTask(ctx context.Context, taskID string) (*models.ScoreDistribution, error) {
	const query = `SELECT id, task_id, total_score, penalty_coefficient, adjustment_factor, adjusted_total, calculated_at
FROM score_distributions WHERE task_id = $1`
	var dist models.ScoreDistribution
	if err := r.db.GetContext(ctx, &dist, query, taskID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find distribution: %w", err)
	}

	const allocQuery = `SELECT id, distribution_id, user_id, is_owner, base_score, adjusted_score, percentage
FROM score_allocations WHERE distribution_id = $1 ORDER BY is_owner DESC, user_id ASC`
	if err := r.db.SelectContext(ctx, &dist.Allocations, allocQuery, dist.ID); err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return &dist, nil
}

// applyAdjustment writes a review-driven rescale of a distribution: the factor
// and adjusted total on the distribution and the new adjusted_score of every
// allocation.
func applyAdjustment(ctx context.Context, tx *sqlx.Tx, distributionID string, adj ReviewAdjustment) error {
	const updateDist = `UPDATE score_distributions SET adjustment_factor = $2, adjusted_total = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateDist, distributionID, adj.Factor, adj.AdjustedTotal); err != nil {
		return fmt.Errorf("update distribution adjustment: %w", err)
	}

	const updateAlloc = `UPDATE score_allocations SET adjusted_score = $2 WHERE id = $1 AND distribution_id = $3`
	for _, alloc := range adj.Allocations {
		if _, err := tx.ExecContext(ctx, updateAlloc, alloc.ID, alloc.AdjustedScore, distributionID); err != nil {
			return fmt.Errorf("update allocation adjustment: %w", err)
		}
	}
	return nil
}

// UserMonthlyScore sums the adjusted scores a user earned on tasks completed
// inside [start, end).
func (r *ScoreRepository) UserMonthlyScore(ctx context.Context, userID string, start, end time.Time) (*models.UserMonthlyScore, error) {
	const query = `SELECT $1::text AS user_id, COALESCE(SUM(a.adjusted_score), 0) AS total_score, COUNT(a.id) AS task_count
FROM score_allocations a
JOIN score_distributions d ON d.id = a.distribution_id
JOIN tasks t ON t.id = d.task_id
WHERE a.user_id = $1 AND t.completed_at >= $2 AND t.completed_at < $3`
	var score models.UserMonthlyScore
	if err := r.db.GetContext(ctx, &score, query, userID, start, end); err != nil {
		return nil, fmt.Errorf("user monthly score: %w", err)
	}
	return &score, nil
}

// AllocationsForUsers lists every allocation held by userIDs on tasks
// completed inside [start, end).
func (r *ScoreRepository) AllocationsForUsers(ctx context.Context, userIDs []string, start, end time.Time) ([]models.AllocationRecord, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT t.id AS task_id, a.user_id, a.adjusted_score, t.difficulty_score
FROM score_allocations a
JOIN score_distributions d ON d.id = a.distribution_id
JOIN tasks t ON t.id = d.task_id
WHERE a.user_id = ANY($1) AND t.completed_at >= $2 AND t.completed_at < $3
ORDER BY t.id, a.user_id`
	var records []models.AllocationRecord
	if err := r.db.SelectContext(ctx, &records, query, pq.Array(userIDs), start, end); err != nil {
		return nil, fmt.Errorf("list allocations for users: %w", err)
	}
	return records, nil
}

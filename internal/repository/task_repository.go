package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/okr-performance-api/internal/models"
)

const taskSelect = `SELECT t.id, t.title, t.difficulty_score, t.revenue_amount, t.status, t.owner_id,
COALESCE(ARRAY(SELECT tc.user_id FROM task_collaborators tc WHERE tc.task_id = t.id ORDER BY tc.user_id), '{}') AS collaborator_ids,
t.started_at, t.completed_at, t.postponed_at, t.postpone_reason, t.created_at, t.updated_at
FROM tasks t`

// TaskRepository reads tasks and persists status transitions.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs a TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// FindByID returns a task with its collaborator IDs.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	query := taskSelect + ` WHERE t.id = $1`
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

// UpdateStatus persists the lifecycle columns of a task.
func (r *TaskRepository) UpdateStatus(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tasks SET status = :status, started_at = :started_at, completed_at = :completed_at,
postponed_at = :postponed_at, postpone_reason = :postpone_reason, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return nil
}

// ListForParticipantInMonth returns the tasks a user owns or collaborates on
// that were created or completed inside [start, end).
func (r *TaskRepository) ListForParticipantInMonth(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	query := taskSelect + `
WHERE (t.owner_id = $1 OR EXISTS (SELECT 1 FROM task_collaborators c WHERE c.task_id = t.id AND c.user_id = $1))
  AND ((t.created_at >= $2 AND t.created_at < $3) OR (t.completed_at >= $2 AND t.completed_at < $3))
ORDER BY t.created_at ASC`
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, userID, start, end); err != nil {
		return nil, fmt.Errorf("list participant tasks: %w", err)
	}
	return tasks, nil
}

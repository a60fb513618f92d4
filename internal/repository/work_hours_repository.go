package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/okr-performance-api/internal/models"
)

// WorkHoursRepository stores monthly hour records.
type WorkHoursRepository struct {
	db *sqlx.DB
}

// NewWorkHoursRepository constructs a WorkHoursRepository.
func NewWorkHoursRepository(db *sqlx.DB) *WorkHoursRepository {
	return &WorkHoursRepository{db: db}
}

// Upsert records hours for (user, month), replacing any previous value.
func (r *WorkHoursRepository) Upsert(ctx context.Context, wh *models.WorkHours) error {
	if wh.ID == "" {
		wh.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if wh.CreatedAt.IsZero() {
		wh.CreatedAt = now
	}
	wh.UpdatedAt = now

	const query = `INSERT INTO work_hours (id, user_id, month, hours, recorded_by, created_at, updated_at)
VALUES (:id, :user_id, :month, :hours, :recorded_by, :created_at, :updated_at)
ON CONFLICT (user_id, month) DO UPDATE
SET hours = EXCLUDED.hours,
    recorded_by = EXCLUDED.recorded_by,
    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, wh); err != nil {
		return fmt.Errorf("upsert work hours: %w", err)
	}
	return nil
}

// FindByUserMonth returns the record for (user, month).
func (r *WorkHoursRepository) FindByUserMonth(ctx context.Context, userID string, month time.Time) (*models.WorkHours, error) {
	const query = `SELECT id, user_id, month, hours, recorded_by, created_at, updated_at FROM work_hours WHERE user_id = $1 AND month = $2`
	var wh models.WorkHours
	if err := r.db.GetContext(ctx, &wh, query, userID, month); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find work hours: %w", err)
	}
	return &wh, nil
}

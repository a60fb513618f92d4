package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/scoring"
)

const performanceColumns = `p.id, p.user_id, p.month,
p.work_hours, p.work_hours_score, p.completion_rate, p.completion_rate_score,
p.avg_difficulty, p.avg_difficulty_score, p.total_revenue, p.revenue_score,
p.department_avg, p.department_avg_score, p.task_rating, p.task_rating_score,
p.culture_understanding, p.culture_understanding_score, p.team_fit, p.team_fit_score,
p.monthly_growth, p.monthly_growth_score, p.biggest_contribution, p.biggest_contribution_score,
p.peer_evaluation, p.peer_evaluation_score, p.admin_final, p.admin_final_score,
p.final_score, p.rank, p.calculated_at, u.name AS user_name, u.department`

// Ranker orders a month's entries and assigns their ranks.
type Ranker func([]scoring.RankEntry) []scoring.RankEntry

// PerformanceRepository persists monthly performance scores.
type PerformanceRepository struct {
	db *sqlx.DB
}

// NewPerformanceRepository constructs a PerformanceRepository.
func NewPerformanceRepository(db *sqlx.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// ReplaceForUser swaps the stored score of (user, month) for score. The rank
// is reset to 0 until the month is ranked again.
func (r *PerformanceRepository) ReplaceForUser(ctx context.Context, score *models.PerformanceScore) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	if score.CalculatedAt.IsZero() {
		score.CalculatedAt = time.Now().UTC()
	}
	score.Rank = 0

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace performance tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM performance_scores WHERE user_id = $1 AND month = $2`, score.UserID, score.Month); err != nil {
		return fmt.Errorf("delete performance score: %w", err)
	}

	const insert = `INSERT INTO performance_scores (id, user_id, month,
work_hours, work_hours_score, completion_rate, completion_rate_score,
avg_difficulty, avg_difficulty_score, total_revenue, revenue_score,
department_avg, department_avg_score, task_rating, task_rating_score,
culture_understanding, culture_understanding_score, team_fit, team_fit_score,
monthly_growth, monthly_growth_score, biggest_contribution, biggest_contribution_score,
peer_evaluation, peer_evaluation_score, admin_final, admin_final_score,
final_score, rank, calculated_at)
VALUES (:id, :user_id, :month,
:work_hours, :work_hours_score, :completion_rate, :completion_rate_score,
:avg_difficulty, :avg_difficulty_score, :total_revenue, :revenue_score,
:department_avg, :department_avg_score, :task_rating, :task_rating_score,
:culture_understanding, :culture_understanding_score, :team_fit, :team_fit_score,
:monthly_growth, :monthly_growth_score, :biggest_contribution, :biggest_contribution_score,
:peer_evaluation, :peer_evaluation_score, :admin_final, :admin_final_score,
:final_score, :rank, :calculated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, score); err != nil {
		return fmt.Errorf("insert performance score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace performance tx: %w", err)
	}
	return nil
}

// FindByUserMonth returns the stored score of (user, month).
func (r *PerformanceRepository) FindByUserMonth(ctx context.Context, userID string, month time.Time) (*models.PerformanceScore, error) {
	query := `SELECT ` + performanceColumns + `
FROM performance_scores p JOIN users u ON u.id = p.user_id
WHERE p.user_id = $1 AND p.month = $2`
	var score models.PerformanceScore
	if err := r.db.GetContext(ctx, &score, query, userID, month); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find performance score: %w", err)
	}
	return &score, nil
}

// Rerank locks every score of the month, orders them with ranker and writes
// the resulting ranks back in one transaction.
func (r *PerformanceRepository) Rerank(ctx context.Context, month time.Time, ranker Ranker) ([]scoring.RankEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin rerank tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const lockQuery = `SELECT p.user_id, u.name, p.final_score
FROM performance_scores p JOIN users u ON u.id = p.user_id
WHERE p.month = $1 FOR UPDATE OF p`
	var rows []struct {
		UserID     string          `db:"user_id"`
		Name       string          `db:"name"`
		FinalScore decimal.Decimal `db:"final_score"`
	}
	if err := tx.SelectContext(ctx, &rows, lockQuery, month); err != nil {
		return nil, fmt.Errorf("lock month scores: %w", err)
	}

	entries := make([]scoring.RankEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, scoring.RankEntry{UserID: row.UserID, Name: row.Name, FinalScore: row.FinalScore})
	}
	ranked := ranker(entries)

	const update = `UPDATE performance_scores SET rank = $1 WHERE month = $2 AND user_id = $3`
	for _, entry := range ranked {
		if _, err := tx.ExecContext(ctx, update, entry.Rank, month, entry.UserID); err != nil {
			return nil, fmt.Errorf("update rank: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit rerank tx: %w", err)
	}
	return ranked, nil
}

// Ranking lists the month's ranked scores, best first.
func (r *PerformanceRepository) Ranking(ctx context.Context, month time.Time) ([]models.RankingRow, error) {
	const query = `SELECT p.rank, p.user_id, u.name AS user_name, u.department, p.final_score, p.calculated_at
FROM performance_scores p JOIN users u ON u.id = p.user_id
WHERE p.month = $1 ORDER BY p.rank ASC, u.name ASC`
	var rows []models.RankingRow
	if err := r.db.SelectContext(ctx, &rows, query, month); err != nil {
		return nil, fmt.Errorf("list ranking: %w", err)
	}
	return rows, nil
}

// TopByDepartment returns the best ranked member of a department for month.
func (r *PerformanceRepository) TopByDepartment(ctx context.Context, dept models.Department, month time.Time) (*models.RankingRow, error) {
	const query = `SELECT p.rank, p.user_id, u.name AS user_name, u.department, p.final_score, p.calculated_at
FROM performance_scores p JOIN users u ON u.id = p.user_id
WHERE p.month = $1 AND u.department = $2
ORDER BY p.final_score DESC, u.name ASC, p.user_id ASC LIMIT 1`
	var row models.RankingRow
	if err := r.db.GetContext(ctx, &row, query, month, dept); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find department top performer: %w", err)
	}
	return &row, nil
}

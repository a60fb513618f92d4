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

// ReportRepository persists monthly department rollups.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ReplaceForMonth upserts the monthly report row and replaces its department
// rows with report.Departments in a single transaction.
func (r *ReportRepository) ReplaceForMonth(ctx context.Context, report *models.MonthlyReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace report tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const upsert = `INSERT INTO monthly_reports (id, month, generated_at) VALUES ($1, $2, $3)
ON CONFLICT (month) DO UPDATE SET generated_at = EXCLUDED.generated_at
RETURNING id`
	var id string
	if err := tx.GetContext(ctx, &id, upsert, report.ID, report.Month, report.GeneratedAt); err != nil {
		return fmt.Errorf("upsert monthly report: %w", err)
	}
	report.ID = id

	if _, err := tx.ExecContext(ctx, `DELETE FROM department_reports WHERE monthly_report_id = $1`, id); err != nil {
		return fmt.Errorf("delete department reports: %w", err)
	}

	const insert = `INSERT INTO department_reports (id, monthly_report_id, department, total_okr_score, member_count, avg_score, completed_tasks, avg_difficulty)
VALUES (:id, :monthly_report_id, :department, :total_okr_score, :member_count, :avg_score, :completed_tasks, :avg_difficulty)`
	for i := range report.Departments {
		dept := &report.Departments[i]
		if dept.ID == "" {
			dept.ID = uuid.NewString()
		}
		dept.MonthlyReportID = id
		if _, err := tx.NamedExecContext(ctx, insert, dept); err != nil {
			return fmt.Errorf("insert department report: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace report tx: %w", err)
	}
	return nil
}

// FindByMonth returns the month's report with every department row.
func (r *ReportRepository) FindByMonth(ctx context.Context, month time.Time) (*models.MonthlyReport, error) {
	var report models.MonthlyReport
	if err := r.db.GetContext(ctx, &report, `SELECT id, month, generated_at FROM monthly_reports WHERE month = $1`, month); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find monthly report: %w", err)
	}

	const query = `SELECT id, monthly_report_id, department, total_okr_score, member_count, avg_score, completed_tasks, avg_difficulty
FROM department_reports WHERE monthly_report_id = $1 ORDER BY department ASC`
	if err := r.db.SelectContext(ctx, &report.Departments, query, report.ID); err != nil {
		return nil, fmt.Errorf("list department reports: %w", err)
	}
	return &report, nil
}

// FindDepartment returns one department's rollup for month.
func (r *ReportRepository) FindDepartment(ctx context.Context, dept models.Department, month time.Time) (*models.DepartmentReport, error) {
	const query = `SELECT d.id, d.monthly_report_id, d.department, d.total_okr_score, d.member_count, d.avg_score, d.completed_tasks, d.avg_difficulty
FROM department_reports d JOIN monthly_reports m ON m.id = d.monthly_report_id
WHERE m.month = $1 AND d.department = $2`
	var report models.DepartmentReport
	if err := r.db.GetContext(ctx, &report, query, month, dept); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find department report: %w", err)
	}
	return &report, nil
}

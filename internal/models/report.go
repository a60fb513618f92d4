package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyReport is the parent record of a month's department rollups.
type MonthlyReport struct {
	ID          string             `db:"id" json:"id"`
	Month       time.Time          `db:"month" json:"month"`
	GeneratedAt time.Time          `db:"generated_at" json:"generated_at"`
	Departments []DepartmentReport `db:"-" json:"departments,omitempty"`
}

// DepartmentReport is the derived rollup of one department for a month.
type DepartmentReport struct {
	ID              string          `db:"id" json:"id"`
	MonthlyReportID string          `db:"monthly_report_id" json:"monthly_report_id"`
	Department      Department      `db:"department" json:"department"`
	TotalOKRScore   decimal.Decimal `db:"total_okr_score" json:"total_okr_score"`
	MemberCount     int             `db:"member_count" json:"member_count"`
	AvgScore        decimal.Decimal `db:"avg_score" json:"avg_score"`
	CompletedTasks  int             `db:"completed_tasks" json:"completed_tasks"`
	AvgDifficulty   decimal.Decimal `db:"avg_difficulty" json:"avg_difficulty"`
}

// DepartmentSummary augments a rollup with the department's top performer.
type DepartmentSummary struct {
	Month        string           `json:"month"`
	Report       DepartmentReport `json:"report"`
	TopPerformer *RankingRow      `json:"top_performer,omitempty"`
}

// ReportFormat enumerates export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PerformanceScore is the computed monthly snapshot for one user. Rank is 0
// until the month has been ranked.
type PerformanceScore struct {
	ID     string    `db:"id" json:"id"`
	UserID string    `db:"user_id" json:"user_id"`
	Month  time.Time `db:"month" json:"month"`

	WorkHours                 decimal.Decimal `db:"work_hours" json:"work_hours"`
	WorkHoursScore            decimal.Decimal `db:"work_hours_score" json:"work_hours_score"`
	CompletionRate            decimal.Decimal `db:"completion_rate" json:"completion_rate"`
	CompletionRateScore       decimal.Decimal `db:"completion_rate_score" json:"completion_rate_score"`
	AvgDifficulty             decimal.Decimal `db:"avg_difficulty" json:"avg_difficulty"`
	AvgDifficultyScore        decimal.Decimal `db:"avg_difficulty_score" json:"avg_difficulty_score"`
	TotalRevenue              decimal.Decimal `db:"total_revenue" json:"total_revenue"`
	RevenueScore              decimal.Decimal `db:"revenue_score" json:"revenue_score"`
	DepartmentAvg             decimal.Decimal `db:"department_avg" json:"department_avg"`
	DepartmentAvgScore        decimal.Decimal `db:"department_avg_score" json:"department_avg_score"`
	TaskRating                decimal.Decimal `db:"task_rating" json:"task_rating"`
	TaskRatingScore           decimal.Decimal `db:"task_rating_score" json:"task_rating_score"`
	CultureUnderstanding      decimal.Decimal `db:"culture_understanding" json:"culture_understanding"`
	CultureUnderstandingScore decimal.Decimal `db:"culture_understanding_score" json:"culture_understanding_score"`
	TeamFit                   decimal.Decimal `db:"team_fit" json:"team_fit"`
	TeamFitScore              decimal.Decimal `db:"team_fit_score" json:"team_fit_score"`
	MonthlyGrowth             decimal.Decimal `db:"monthly_growth" json:"monthly_growth"`
	MonthlyGrowthScore        decimal.Decimal `db:"monthly_growth_score" json:"monthly_growth_score"`
	BiggestContribution       decimal.Decimal `db:"biggest_contribution" json:"biggest_contribution"`
	BiggestContributionScore  decimal.Decimal `db:"biggest_contribution_score" json:"biggest_contribution_score"`
	PeerEvaluation            decimal.Decimal `db:"peer_evaluation" json:"peer_evaluation"`
	PeerEvaluationScore       decimal.Decimal `db:"peer_evaluation_score" json:"peer_evaluation_score"`
	AdminFinal                decimal.Decimal `db:"admin_final" json:"admin_final"`
	AdminFinalScore           decimal.Decimal `db:"admin_final_score" json:"admin_final_score"`

	FinalScore   decimal.Decimal `db:"final_score" json:"final_score"`
	Rank         int             `db:"rank" json:"rank"`
	CalculatedAt time.Time       `db:"calculated_at" json:"calculated_at"`

	UserName   string     `db:"user_name" json:"user_name,omitempty"`
	Department Department `db:"department" json:"department,omitempty"`
}

// DimensionRow describes one weighted dimension of a stored score.
type DimensionRow struct {
	Dimension string          `json:"dimension"`
	RawValue  decimal.Decimal `json:"raw_value"`
	Score     decimal.Decimal `json:"score"`
	Weight    decimal.Decimal `json:"weight"`
}

// PerformanceSummary presents a stored score dimension by dimension.
type PerformanceSummary struct {
	UserID       string          `json:"user_id"`
	UserName     string          `json:"user_name"`
	Month        string          `json:"month"`
	Dimensions   []DimensionRow  `json:"dimensions"`
	FinalScore   decimal.Decimal `json:"final_score"`
	Rank         int             `json:"rank"`
	CalculatedAt time.Time       `json:"calculated_at"`
}

// RankingRow is one entry of a month's ranking.
type RankingRow struct {
	Rank         int             `db:"rank" json:"rank"`
	UserID       string          `db:"user_id" json:"user_id"`
	UserName     string          `db:"user_name" json:"user_name"`
	Department   Department      `db:"department" json:"department"`
	FinalScore   decimal.Decimal `db:"final_score" json:"final_score"`
	CalculatedAt time.Time       `db:"calculated_at" json:"calculated_at"`
}

package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// WorkHours is the recorded hour count for a user in a month.
type WorkHours struct {
	ID         string          `db:"id" json:"id"`
	UserID     string          `db:"user_id" json:"user_id"`
	Month      time.Time       `db:"month" json:"month"`
	Hours      decimal.Decimal `db:"hours" json:"hours"`
	RecordedBy *string         `db:"recorded_by" json:"recorded_by,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// MonthlyEvaluation is a user's self evaluation plus the optional admin override.
type MonthlyEvaluation struct {
	ID     string    `db:"id" json:"id"`
	UserID string    `db:"user_id" json:"user_id"`
	Month  time.Time `db:"month" json:"month"`

	CultureUnderstandingScore  int    `db:"culture_understanding_score" json:"culture_understanding_score"`
	CultureUnderstandingText   string `db:"culture_understanding_text" json:"culture_understanding_text"`
	CultureUnderstandingOption string `db:"culture_understanding_option" json:"culture_understanding_option"`

	TeamFitOption  string         `db:"team_fit_option" json:"team_fit_option"`
	TeamFitText    string         `db:"team_fit_text" json:"team_fit_text"`
	TeamFitRanking pq.StringArray `db:"team_fit_ranking" json:"team_fit_ranking"`

	MonthlyGrowthScore  int    `db:"monthly_growth_score" json:"monthly_growth_score"`
	MonthlyGrowthText   string `db:"monthly_growth_text" json:"monthly_growth_text"`
	MonthlyGrowthOption string `db:"monthly_growth_option" json:"monthly_growth_option"`

	BiggestContributionScore  int    `db:"biggest_contribution_score" json:"biggest_contribution_score"`
	BiggestContributionText   string `db:"biggest_contribution_text" json:"biggest_contribution_text"`
	BiggestContributionOption string `db:"biggest_contribution_option" json:"biggest_contribution_option"`

	AdminFinalScore   *int       `db:"admin_final_score" json:"admin_final_score,omitempty"`
	AdminFinalComment string     `db:"admin_final_comment" json:"admin_final_comment"`
	AdminEvaluatedBy  *string    `db:"admin_evaluated_by" json:"admin_evaluated_by,omitempty"`
	AdminEvaluatedAt  *time.Time `db:"admin_evaluated_at" json:"admin_evaluated_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PeerEvaluation is one colleague's score and ranking of an evaluated user.
type PeerEvaluation struct {
	ID           string    `db:"id" json:"id"`
	EvaluationID string    `db:"evaluation_id" json:"evaluation_id"`
	EvaluatorID  string    `db:"evaluator_id" json:"evaluator_id,omitempty"`
	Score        int       `db:"score" json:"score"`
	Ranking      int       `db:"ranking" json:"ranking"`
	Comment      string    `db:"comment" json:"comment"`
	IsAnonymous  bool      `db:"is_anonymous" json:"is_anonymous"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AdminAction tags an admin override history entry.
type AdminAction string

const (
	AdminActionCreate AdminAction = "create"
	AdminActionUpdate AdminAction = "update"
)

// AdminEvaluationHistory records one change of an admin override.
type AdminEvaluationHistory struct {
	ID              string      `db:"id" json:"id"`
	EvaluationID    string      `db:"evaluation_id" json:"evaluation_id"`
	AdminID         string      `db:"admin_id" json:"admin_id"`
	PreviousScore   *int        `db:"previous_score" json:"previous_score,omitempty"`
	NewScore        *int        `db:"new_score" json:"new_score,omitempty"`
	PreviousComment string      `db:"previous_comment" json:"previous_comment"`
	NewComment      string      `db:"new_comment" json:"new_comment"`
	Action          AdminAction `db:"action_type" json:"action_type"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// TaskStatus enumerates the task lifecycle.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusPostponed  TaskStatus = "postponed"
)

// Task is a unit of work scored on completion. PostponedAt is set the first
// time the task is postponed and never cleared.
type Task struct {
	ID              string          `db:"id" json:"id"`
	Title           string          `db:"title" json:"title"`
	DifficultyScore int             `db:"difficulty_score" json:"difficulty_score"`
	RevenueAmount   decimal.Decimal `db:"revenue_amount" json:"revenue_amount"`
	Status          TaskStatus      `db:"status" json:"status"`
	OwnerID         string          `db:"owner_id" json:"owner_id"`
	CollaboratorIDs pq.StringArray  `db:"collaborator_ids" json:"collaborator_ids"`
	StartedAt       *time.Time      `db:"started_at" json:"started_at,omitempty"`
	CompletedAt     *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	PostponedAt     *time.Time      `db:"postponed_at" json:"postponed_at,omitempty"`
	PostponeReason  string          `db:"postpone_reason" json:"postpone_reason,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// WasEverPostponed reports whether the permanent postponement marker is set.
func (t *Task) WasEverPostponed() bool {
	return t.PostponedAt != nil
}

// IsParticipant reports whether userID owns or collaborates on the task.
func (t *Task) IsParticipant(userID string) bool {
	if t.OwnerID == userID {
		return true
	}
	for _, id := range t.CollaboratorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ScoreDistribution records how a completed task's score was computed.
// AdjustmentFactor and AdjustedTotal are populated once reviews have
// rescaled the allocations.
type ScoreDistribution struct {
	ID                 string              `db:"id" json:"id"`
	TaskID             string              `db:"task_id" json:"task_id"`
	TotalScore         decimal.Decimal     `db:"total_score" json:"total_score"`
	PenaltyCoefficient decimal.Decimal     `db:"penalty_coefficient" json:"penalty_coefficient"`
	AdjustmentFactor   decimal.NullDecimal `db:"adjustment_factor" json:"adjustment_factor"`
	AdjustedTotal      decimal.NullDecimal `db:"adjusted_total" json:"adjusted_total"`
	CalculatedAt       time.Time           `db:"calculated_at" json:"calculated_at"`
	Allocations        []ScoreAllocation   `db:"-" json:"allocations"`
}

// ScoreAllocation is one participant's share of a distribution.
type ScoreAllocation struct {
	ID             string          `db:"id" json:"id"`
	DistributionID string          `db:"distribution_id" json:"distribution_id"`
	UserID         string          `db:"user_id" json:"user_id"`
	IsOwner        bool            `db:"is_owner" json:"is_owner"`
	BaseScore      decimal.Decimal `db:"base_score" json:"base_score"`
	AdjustedScore  decimal.Decimal `db:"adjusted_score" json:"adjusted_score"`
	Percentage     decimal.Decimal `db:"percentage" json:"percentage"`
}

// UserMonthlyScore is the cumulative task score a user earned in a month.
type UserMonthlyScore struct {
	UserID     string          `db:"user_id" json:"user_id"`
	Month      string          `db:"-" json:"month"`
	TotalScore decimal.Decimal `db:"total_score" json:"total_score"`
	TaskCount  int             `db:"task_count" json:"task_count"`
}

// AllocationRecord joins an allocation with the owning task's completion data.
type AllocationRecord struct {
	TaskID          string          `db:"task_id"`
	UserID          string          `db:"user_id"`
	AdjustedScore   decimal.Decimal `db:"adjusted_score"`
	DifficultyScore int             `db:"difficulty_score"`
}

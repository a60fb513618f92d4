package models

import "time"

// ReviewType distinguishes task reviews from monthly person reviews.
type ReviewType string

const (
	ReviewTypeTask    ReviewType = "task"
	ReviewTypeMonthly ReviewType = "monthly"
)

// Review is one reviewer's rating of a task or of a person for a month.
type Review struct {
	ID           string     `db:"id" json:"id"`
	Type         ReviewType `db:"type" json:"type"`
	TaskID       *string    `db:"task_id" json:"task_id,omitempty"`
	RevieweeID   *string    `db:"reviewee_id" json:"reviewee_id,omitempty"`
	ReviewerID   string     `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewerRole UserRole   `db:"reviewer_role" json:"reviewer_role"`
	Rating       int        `db:"rating" json:"rating"`
	Comment      string     `db:"comment" json:"comment"`
	IsAnonymous  bool       `db:"is_anonymous" json:"is_anonymous"`
	Month        *time.Time `db:"month" json:"month,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Masked returns a copy safe to serve to readers: anonymous reviews hide the
// reviewer.
func (r Review) Masked() Review {
	if r.IsAnonymous {
		r.ReviewerID = ""
	}
	return r
}

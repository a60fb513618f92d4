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

const evaluationColumns = `id, user_id, month,
culture_understanding_score, culture_understanding_text, culture_understanding_option,
team_fit_option, team_fit_text, team_fit_ranking,
monthly_growth_score, monthly_growth_text, monthly_growth_option,
biggest_contribution_score, biggest_contribution_text, biggest_contribution_option,
admin_final_score, admin_final_comment, admin_evaluated_by, admin_evaluated_at,
created_at, updated_at`

// AdminOverride is an admin's final score for a monthly evaluation.
type AdminOverride struct {
	EvaluationID string
	AdminID      string
	Score        int
	Comment      string
	At           time.Time
}

// EvaluationRepository stores monthly self evaluations, peer evaluations and
// the admin override history.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository constructs an EvaluationRepository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create inserts a self evaluation. A second evaluation for the same user and
// month fails with ErrDuplicate.
func (r *EvaluationRepository) Create(ctx context.Context, ev *models.MonthlyEvaluation) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ev.CreatedAt = now
	ev.UpdatedAt = now
	const query = `INSERT INTO monthly_evaluations (id, user_id, month,
culture_understanding_score, culture_understanding_text, culture_understanding_option,
team_fit_option, team_fit_text, team_fit_ranking,
monthly_growth_score, monthly_growth_text, monthly_growth_option,
biggest_contribution_score, biggest_contribution_text, biggest_contribution_option,
admin_final_comment, created_at, updated_at)
VALUES (:id, :user_id, :month,
:culture_understanding_score, :culture_understanding_text, :culture_understanding_option,
:team_fit_option, :team_fit_text, :team_fit_ranking,
:monthly_growth_score, :monthly_growth_text, :monthly_growth_option,
:biggest_contribution_score, :biggest_contribution_text, :biggest_contribution_option,
:admin_final_comment, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ev); err != nil {
		return writeError("create evaluation", err)
	}
	return nil
}

// FindByID returns an evaluation by identifier.
func (r *EvaluationRepository) FindByID(ctx context.Context, id string) (*models.MonthlyEvaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM monthly_evaluations WHERE id = $1`
	var ev models.MonthlyEvaluation
	if err := r.db.GetContext(ctx, &ev, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find evaluation: %w", err)
	}
	return &ev, nil
}

// FindByUserMonth returns the evaluation of (user, month).
func (r *EvaluationRepository) FindByUserMonth(ctx context.Context, userID string, month time.Time) (*models.MonthlyEvaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM monthly_evaluations WHERE user_id = $1 AND month = $2`
	var ev models.MonthlyEvaluation
	if err := r.db.GetContext(ctx, &ev, query, userID, month); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find evaluation by month: %w", err)
	}
	return &ev, nil
}

// CreatePeer inserts a peer evaluation. It fails with ErrDuplicate when the
// evaluator already evaluated this evaluation.
func (r *EvaluationRepository) CreatePeer(ctx context.Context, peer *models.PeerEvaluation) error {
	if peer.ID == "" {
		peer.ID = uuid.NewString()
	}
	if peer.CreatedAt.IsZero() {
		peer.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO peer_evaluations (id, evaluation_id, evaluator_id, score, ranking, comment, is_anonymous, created_at)
VALUES (:id, :evaluation_id, :evaluator_id, :score, :ranking, :comment, :is_anonymous, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, peer); err != nil {
		return writeError("create peer evaluation", err)
	}
	return nil
}

// PeerExists reports whether evaluatorID already evaluated evaluationID.
func (r *EvaluationRepository) PeerExists(ctx context.Context, evaluationID, evaluatorID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM peer_evaluations WHERE evaluation_id = $1 AND evaluator_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, evaluationID, evaluatorID); err != nil {
		return false, fmt.Errorf("check peer evaluation: %w", err)
	}
	return exists, nil
}

// ListPeers returns the peer evaluations attached to an evaluation.
func (r *EvaluationRepository) ListPeers(ctx context.Context, evaluationID string) ([]models.PeerEvaluation, error) {
	const query = `SELECT id, evaluation_id, evaluator_id, score, ranking, comment, is_anonymous, created_at
FROM peer_evaluations WHERE evaluation_id = $1 ORDER BY created_at ASC`
	var peers []models.PeerEvaluation
	if err := r.db.SelectContext(ctx, &peers, query, evaluationID); err != nil {
		return nil, fmt.Errorf("list peer evaluations: %w", err)
	}
	return peers, nil
}

// SetAdminOverride locks the evaluation, stores the override and appends the
// matching history entry in one transaction. The action is create when no
// score was set before, update otherwise.
func (r *EvaluationRepository) SetAdminOverride(ctx context.Context, override AdminOverride) (*models.AdminEvaluationHistory, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin admin override tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var previous struct {
		Score   *int   `db:"admin_final_score"`
		Comment string `db:"admin_final_comment"`
	}
	const lockQuery = `SELECT admin_final_score, admin_final_comment FROM monthly_evaluations WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &previous, lockQuery, override.EvaluationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock evaluation: %w", err)
	}

	const updateQuery = `UPDATE monthly_evaluations SET admin_final_score = $2, admin_final_comment = $3,
admin_evaluated_by = $4, admin_evaluated_at = $5, updated_at = $5 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateQuery, override.EvaluationID, override.Score, override.Comment, override.AdminID, override.At); err != nil {
		return nil, fmt.Errorf("update admin override: %w", err)
	}

	action := models.AdminActionUpdate
	if previous.Score == nil {
		action = models.AdminActionCreate
	}
	newScore := override.Score
	entry := &models.AdminEvaluationHistory{
		ID:              uuid.NewString(),
		EvaluationID:    override.EvaluationID,
		AdminID:         override.AdminID,
		PreviousScore:   previous.Score,
		NewScore:        &newScore,
		PreviousComment: previous.Comment,
		NewComment:      override.Comment,
		Action:          action,
		CreatedAt:       override.At,
	}
	const historyQuery = `INSERT INTO admin_evaluation_history (id, evaluation_id, admin_id, previous_score, new_score, previous_comment, new_comment, action_type, created_at)
VALUES (:id, :evaluation_id, :admin_id, :previous_score, :new_score, :previous_comment, :new_comment, :action_type, :created_at)`
	if _, err := tx.NamedExecContext(ctx, historyQuery, entry); err != nil {
		return nil, fmt.Errorf("insert admin history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit admin override tx: %w", err)
	}
	return entry, nil
}

// AdminHistory returns the override history of an evaluation, newest first.
func (r *EvaluationRepository) AdminHistory(ctx context.Context, evaluationID string) ([]models.AdminEvaluationHistory, error) {
	const query = `SELECT id, evaluation_id, admin_id, previous_score, new_score, previous_comment, new_comment, action_type, created_at
FROM admin_evaluation_history WHERE evaluation_id = $1 ORDER BY created_at DESC`
	var history []models.AdminEvaluationHistory
	if err := r.db.SelectContext(ctx, &history, query, evaluationID); err != nil {
		return nil, fmt.Errorf("list admin history: %w", err)
	}
	return history, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/repository"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
	"github.com/noah-isme/okr-performance-api/pkg/rounding"
)

type workHoursStore interface {
	Upsert(ctx context.Context, wh *models.WorkHours) error
}

type evaluationStore interface {
	Create(ctx context.Context, ev *models.MonthlyEvaluation) error
	FindByID(ctx context.Context, id string) (*models.MonthlyEvaluation, error)
	FindByUserMonth(ctx context.Context, userID string, month time.Time) (*models.MonthlyEvaluation, error)
	CreatePeer(ctx context.Context, peer *models.PeerEvaluation) error
	PeerExists(ctx context.Context, evaluationID, evaluatorID string) (bool, error)
	SetAdminOverride(ctx context.Context, override repository.AdminOverride) (*models.AdminEvaluationHistory, error)
	AdminHistory(ctx context.Context, evaluationID string) ([]models.AdminEvaluationHistory, error)
}

type userRecalculator interface {
	CalculateUser(ctx context.Context, userID string, month time.Time) (*models.PerformanceScore, error)
}

// WorkHoursRequest records a user's hours for a month. 744 is a 31 day month.
type WorkHoursRequest struct {
	UserID string  `json:"user_id" validate:"required"`
	Month  string  `json:"month" validate:"required"`
	Hours  float64 `json:"hours" validate:"gte=0,lte=744"`
}

// SelfEvaluationRequest is a user's self assessment of a month.
type SelfEvaluationRequest struct {
	Month string `json:"month" validate:"required"`

	CultureUnderstandingScore  int    `json:"culture_understanding_score" validate:"min=1,max=10"`
	CultureUnderstandingText   string `json:"culture_understanding_text" validate:"max=2000"`
	CultureUnderstandingOption string `json:"culture_understanding_option" validate:"max=100"`

	TeamFitOption  string   `json:"team_fit_option" validate:"max=100"`
	TeamFitText    string   `json:"team_fit_text" validate:"max=2000"`
	TeamFitRanking []string `json:"team_fit_ranking" validate:"dive,required"`

	MonthlyGrowthScore  int    `json:"monthly_growth_score" validate:"min=1,max=10"`
	MonthlyGrowthText   string `json:"monthly_growth_text" validate:"max=2000"`
	MonthlyGrowthOption string `json:"monthly_growth_option" validate:"max=100"`

	BiggestContributionScore  int    `json:"biggest_contribution_score" validate:"min=1,max=10"`
	BiggestContributionText   string `json:"biggest_contribution_text" validate:"max=2000"`
	BiggestContributionOption string `json:"biggest_contribution_option" validate:"max=100"`
}

// PeerEvaluationRequest scores and ranks a colleague's evaluation.
type PeerEvaluationRequest struct {
	EvaluationID string `json:"evaluation_id" validate:"required"`
	Score        int    `json:"score" validate:"min=1,max=10"`
	Ranking      int    `json:"ranking" validate:"min=1"`
	Comment      string `json:"comment" validate:"max=2000"`
	IsAnonymous  bool   `json:"is_anonymous"`
}

// AdminOverrideRequest sets the admin final score of an evaluation.
type AdminOverrideRequest struct {
	Score   int    `json:"score" validate:"min=1,max=10"`
	Comment string `json:"comment" validate:"max=2000"`
}

// EvaluationService manages the hand-entered inputs of the monthly score.
type EvaluationService struct {
	workHours   workHoursStore
	evaluations evaluationStore
	users       userReader
	recalc      userRecalculator
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewEvaluationService constructs an EvaluationService.
func NewEvaluationService(workHours workHoursStore, evaluations evaluationStore, users userReader, recalc userRecalculator, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{
		workHours:   workHours,
		evaluations: evaluations,
		users:       users,
		recalc:      recalc,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// RecordWorkHours stores a user's hours for a month. Admin only.
func (s *EvaluationService) RecordWorkHours(ctx context.Context, actor *models.JWTClaims, req WorkHoursRequest) (*models.WorkHours, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can record work hours")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid work hours payload")
	}
	month, err := models.ParseMonth(req.Month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := s.ensureUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	recordedBy := actor.UserID
	wh := &models.WorkHours{
		UserID:     req.UserID,
		Month:      month,
		Hours:      rounding.Float2(req.Hours),
		RecordedBy: &recordedBy,
	}
	if err := s.workHours.Upsert(ctx, wh); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record work hours")
	}
	return wh, nil
}

// SubmitSelfEvaluation stores the caller's evaluation of a month. A user has
// at most one evaluation per month.
func (s *EvaluationService) SubmitSelfEvaluation(ctx context.Context, userID string, req SelfEvaluationRequest) (*models.MonthlyEvaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	month, err := models.ParseMonth(req.Month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	if _, err := s.evaluations.FindByUserMonth(ctx, userID, month); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "evaluation already submitted for this month")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing evaluation")
	}

	ev := &models.MonthlyEvaluation{
		UserID:                     userID,
		Month:                      month,
		CultureUnderstandingScore:  req.CultureUnderstandingScore,
		CultureUnderstandingText:   req.CultureUnderstandingText,
		CultureUnderstandingOption: req.CultureUnderstandingOption,
		TeamFitOption:              req.TeamFitOption,
		TeamFitText:                req.TeamFitText,
		TeamFitRanking:             append([]string{}, req.TeamFitRanking...),
		MonthlyGrowthScore:         req.MonthlyGrowthScore,
		MonthlyGrowthText:          req.MonthlyGrowthText,
		MonthlyGrowthOption:        req.MonthlyGrowthOption,
		BiggestContributionScore:   req.BiggestContributionScore,
		BiggestContributionText:    req.BiggestContributionText,
		BiggestContributionOption:  req.BiggestContributionOption,
	}
	if err := s.evaluations.Create(ctx, ev); err != nil {
		return nil, storeError(err, "evaluation already submitted for this month", "failed to store evaluation")
	}
	return ev, nil
}

// SubmitPeerEvaluation stores a colleague's score and ranking of an
// evaluation. Each evaluator may evaluate an evaluation once.
func (s *EvaluationService) SubmitPeerEvaluation(ctx context.Context, evaluatorID string, req PeerEvaluationRequest) (*models.PeerEvaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid peer evaluation payload")
	}
	ev, err := s.loadEvaluation(ctx, req.EvaluationID)
	if err != nil {
		return nil, err
	}
	if ev.UserID == evaluatorID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot evaluate yourself")
	}

	exists, err := s.evaluations.PeerExists(ctx, ev.ID, evaluatorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing peer evaluation")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "peer evaluation already submitted")
	}

	peer := &models.PeerEvaluation{
		EvaluationID: ev.ID,
		EvaluatorID:  evaluatorID,
		Score:        req.Score,
		Ranking:      req.Ranking,
		Comment:      req.Comment,
		IsAnonymous:  req.IsAnonymous,
	}
	if err := s.evaluations.CreatePeer(ctx, peer); err != nil {
		return nil, storeError(err, "peer evaluation already submitted", "failed to store peer evaluation")
	}
	if peer.IsAnonymous {
		peer.EvaluatorID = ""
	}
	return peer, nil
}

// SetAdminOverride stores the admin final score of an evaluation with its
// history entry, then recomputes the evaluated user and re-ranks the month.
// Recalculation failures are logged and not returned.
func (s *EvaluationService) SetAdminOverride(ctx context.Context, actor *models.JWTClaims, evaluationID string, req AdminOverrideRequest) (*models.AdminEvaluationHistory, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can set the final score")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override payload")
	}
	ev, err := s.loadEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}

	entry, err := s.evaluations.SetAdminOverride(ctx, repository.AdminOverride{
		EvaluationID: ev.ID,
		AdminID:      actor.UserID,
		Score:        req.Score,
		Comment:      req.Comment,
		At:           s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store admin override")
	}

	if s.recalc != nil {
		if _, err := s.recalc.CalculateUser(ctx, ev.UserID, ev.Month); err != nil {
			s.logger.Warn("recalculation after admin override failed",
				zap.String("user_id", ev.UserID),
				zap.String("month", models.FormatMonth(ev.Month)),
				zap.Error(err),
			)
		}
	}
	return entry, nil
}

// AdminHistory lists the override history of an evaluation, newest first.
func (s *EvaluationService) AdminHistory(ctx context.Context, evaluationID string) ([]models.AdminEvaluationHistory, error) {
	if _, err := s.loadEvaluation(ctx, evaluationID); err != nil {
		return nil, err
	}
	history, err := s.evaluations.AdminHistory(ctx, evaluationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admin history")
	}
	if history == nil {
		history = []models.AdminEvaluationHistory{}
	}
	return history, nil
}

func (s *EvaluationService) loadEvaluation(ctx context.Context, id string) (*models.MonthlyEvaluation, error) {
	ev, err := s.evaluations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	return ev, nil
}

func (s *EvaluationService) ensureUser(ctx context.Context, id string) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return nil
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/service"
	"github.com/noah-isme/okr-performance-api/pkg/response"
)

type evaluationService interface {
	RecordWorkHours(ctx context.Context, actor *models.JWTClaims, req service.WorkHoursRequest) (*models.WorkHours, error)
	SubmitSelfEvaluation(ctx context.Context, userID string, req service.SelfEvaluationRequest) (*models.MonthlyEvaluation, error)
	SubmitPeerEvaluation(ctx context.Context, evaluatorID string, req service.PeerEvaluationRequest) (*models.PeerEvaluation, error)
	SetAdminOverride(ctx context.Context, actor *models.JWTClaims, evaluationID string, req service.AdminOverrideRequest) (*models.AdminEvaluationHistory, error)
	AdminHistory(ctx context.Context, evaluationID string) ([]models.AdminEvaluationHistory, error)
}

// EvaluationHandler manages work hours and monthly evaluations.
type EvaluationHandler struct {
	evaluations evaluationService
}

// NewEvaluationHandler constructs an evaluation handler.
func NewEvaluationHandler(evaluations evaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// RecordWorkHours godoc
// @Summary Record a user's work hours for a month
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body service.WorkHoursRequest true "Work hours"
// @Success 200 {object} response.Envelope
// @Router /work-hours [put]
func (h *EvaluationHandler) RecordWorkHours(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.WorkHoursRequest
	if !bindJSON(c, &req) {
		return
	}
	hours, err := h.evaluations.RecordWorkHours(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hours, nil)
}

// SubmitSelf godoc
// @Summary Submit the caller's self evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body service.SelfEvaluationRequest true "Self evaluation"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /evaluations/self [post]
func (h *EvaluationHandler) SubmitSelf(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.SelfEvaluationRequest
	if !bindJSON(c, &req) {
		return
	}
	evaluation, err := h.evaluations.SubmitSelfEvaluation(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, evaluation)
}

// SubmitPeer godoc
// @Summary Score and rank a colleague's evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body service.PeerEvaluationRequest true "Peer evaluation"
// @Success 201 {object} response.Envelope
// @Router /evaluations/peer [post]
func (h *EvaluationHandler) SubmitPeer(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.PeerEvaluationRequest
	if !bindJSON(c, &req) {
		return
	}
	peer, err := h.evaluations.SubmitPeerEvaluation(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, peer)
}

// SetAdminOverride godoc
// @Summary Set the admin final score of an evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param id path string true "Evaluation ID"
// @Param payload body service.AdminOverrideRequest true "Override"
// @Success 200 {object} response.Envelope
// @Router /evaluations/{id}/admin [patch]
func (h *EvaluationHandler) SetAdminOverride(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.AdminOverrideRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.evaluations.SetAdminOverride(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// AdminHistory godoc
// @Summary Admin score history of an evaluation
// @Tags Evaluations
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Router /evaluations/{id}/admin-history [get]
func (h *EvaluationHandler) AdminHistory(c *gin.Context) {
	history, err := h.evaluations.AdminHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/scoring"
	"github.com/noah-isme/okr-performance-api/pkg/jobs"
	"github.com/noah-isme/okr-performance-api/pkg/response"
)

type performanceService interface {
	CalculateUser(ctx context.Context, userID string, month time.Time) (*models.PerformanceScore, error)
	Rerank(ctx context.Context, month time.Time) ([]scoring.RankEntry, error)
	UserSummary(ctx context.Context, userID string, month time.Time) (*models.PerformanceSummary, error)
	MonthRanking(ctx context.Context, month time.Time) ([]models.RankingRow, error)
}

type recalcScheduler interface {
	EnqueueMonth(ctx context.Context, month time.Time) (*jobs.Status, error)
	JobStatus(ctx context.Context, id string) (*jobs.Status, error)
}

// PerformanceHandler exposes monthly performance scoring and ranking.
type PerformanceHandler struct {
	performance performanceService
	recalc      recalcScheduler
}

// NewPerformanceHandler constructs a performance handler.
func NewPerformanceHandler(performance performanceService, recalc recalcScheduler) *PerformanceHandler {
	return &PerformanceHandler{performance: performance, recalc: recalc}
}

// CalculateUser godoc
// @Summary Recompute one user's monthly score
// @Tags Performance
// @Produce json
// @Param month path string true "Month (YYYY-MM)"
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /performance/{month}/users/{id}/calculate [post]
func (h *PerformanceHandler) CalculateUser(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	score, err := h.performance.CalculateUser(c.Request.Context(), c.Param("id"), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, score, nil)
}

// CalculateMonth godoc
// @Summary Queue a recalculation of every active user for a month
// @Tags Performance
// @Produce json
// @Param month path string true "Month (YYYY-MM)"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /performance/{month}/calculate [post]
func (h *PerformanceHandler) CalculateMonth(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	status, err := h.recalc.EnqueueMonth(c.Request.Context(), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, status)
}

// JobStatus godoc
// @Summary Status of a queued month recalculation
// @Tags Performance
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /performance/jobs/{id} [get]
func (h *PerformanceHandler) JobStatus(c *gin.Context) {
	status, err := h.recalc.JobStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Rerank godoc
// @Summary Recompute the ranks of a month
// @Tags Performance
// @Produce json
// @Param month path string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /performance/{month}/rerank [post]
func (h *PerformanceHandler) Rerank(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	entries, err := h.performance.Rerank(c.Request.Context(), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, response.Meta{"month": models.FormatMonth(month)})
}

// Ranking godoc
// @Summary Ranked scores of a month
// @Tags Performance
// @Produce json
// @Param month path string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /performance/{month}/ranking [get]
func (h *PerformanceHandler) Ranking(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	rows, err := h.performance.MonthRanking(c.Request.Context(), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, response.Meta{"month": models.FormatMonth(month)})
}

// UserSummary godoc
// @Summary Dimension breakdown of a user's monthly score
// @Tags Performance
// @Produce json
// @Param month path string true "Month (YYYY-MM)"
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /performance/{month}/users/{id} [get]
func (h *PerformanceHandler) UserSummary(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	summary, err := h.performance.UserSummary(c.Request.Context(), c.Param("id"), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

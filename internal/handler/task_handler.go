package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/service"
	"github.com/noah-isme/okr-performance-api/pkg/response"
)

type taskStatusService interface {
	UpdateStatus(ctx context.Context, taskID, actorID string, req service.UpdateTaskStatusRequest) (*models.Task, error)
}

type taskScoreService interface {
	CalculateDistribution(ctx context.Context, taskID string) (*models.ScoreDistribution, error)
	GetDistribution(ctx context.Context, taskID string) (*models.ScoreDistribution, error)
	UserMonthlyScore(ctx context.Context, userID string, month time.Time) (*models.UserMonthlyScore, error)
}

// TaskHandler exposes task status and score distribution endpoints.
type TaskHandler struct {
	tasks  taskStatusService
	scores taskScoreService
}

// NewTaskHandler constructs a task handler.
func NewTaskHandler(tasks taskStatusService, scores taskScoreService) *TaskHandler {
	return &TaskHandler{tasks: tasks, scores: scores}
}

// UpdateStatus godoc
// @Summary Change a task's status
// @Description Completing a task distributes its score; postponing it marks the task permanently.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body service.UpdateTaskStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.UpdateTaskStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.tasks.UpdateStatus(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// RecalculateScore godoc
// @Summary Recompute a completed task's score distribution
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tasks/{id}/score [post]
func (h *TaskHandler) RecalculateScore(c *gin.Context) {
	dist, err := h.scores.CalculateDistribution(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dist, nil)
}

// GetScore godoc
// @Summary Task score distribution
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tasks/{id}/score [get]
func (h *TaskHandler) GetScore(c *gin.Context) {
	dist, err := h.scores.GetDistribution(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dist, nil)
}

// UserMonthlyScore godoc
// @Summary Sum of a user's task allocations for a month
// @Tags Tasks
// @Produce json
// @Param id path string true "User ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/monthly-score [get]
func (h *TaskHandler) UserMonthlyScore(c *gin.Context) {
	month, ok := monthQuery(c)
	if !ok {
		return
	}
	score, err := h.scores.UserMonthlyScore(c.Request.Context(), c.Param("id"), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, score, nil)
}

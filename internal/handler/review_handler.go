package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/scoring"
	"github.com/noah-isme/okr-performance-api/internal/service"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
	"github.com/noah-isme/okr-performance-api/pkg/response"
)

type reviewService interface {
	SubmitTaskReview(ctx context.Context, reviewerID string, req service.TaskReviewRequest) (*models.Review, error)
	SubmitMonthlyReview(ctx context.Context, reviewerID string, req service.MonthlyReviewRequest) (*models.Review, error)
	TaskSummary(ctx context.Context, taskID string) (*scoring.ReviewSummary, error)
	ListTaskReviews(ctx context.Context, taskID string) ([]models.Review, error)
	ListMonthlyReviews(ctx context.Context, revieweeID string, month time.Time) ([]models.Review, error)
	ListReviewableTasks(ctx context.Context, reviewerID string) ([]models.Task, error)
	ListReviewableUsers(ctx context.Context, reviewerID string, month time.Time) ([]models.User, error)
}

// ReviewHandler exposes task and monthly review endpoints.
type ReviewHandler struct {
	reviews reviewService
}

// NewReviewHandler constructs a review handler.
func NewReviewHandler(reviews reviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// SubmitTaskReview godoc
// @Summary Review a completed task
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body service.TaskReviewRequest true "Review"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reviews/tasks [post]
func (h *ReviewHandler) SubmitTaskReview(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.TaskReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviews.SubmitTaskReview(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// SubmitMonthlyReview godoc
// @Summary Review a colleague for a month
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body service.MonthlyReviewRequest true "Review"
// @Success 201 {object} response.Envelope
// @Router /reviews/monthly [post]
func (h *ReviewHandler) SubmitMonthlyReview(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.MonthlyReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviews.SubmitMonthlyReview(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// ListTaskReviews godoc
// @Summary Reviews of a task
// @Tags Reviews
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /reviews/tasks/{id} [get]
func (h *ReviewHandler) ListTaskReviews(c *gin.Context) {
	reviews, err := h.reviews.ListTaskReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reviews, nil)
}

// TaskSummary godoc
// @Summary Weighted review summary of a task
// @Tags Reviews
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /reviews/tasks/{id}/summary [get]
func (h *ReviewHandler) TaskSummary(c *gin.Context) {
	summary, err := h.reviews.TaskSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ListMonthlyReviews godoc
// @Summary Monthly reviews received by a user
// @Tags Reviews
// @Produce json
// @Param reviewee query string true "Reviewee user ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /reviews/monthly [get]
func (h *ReviewHandler) ListMonthlyReviews(c *gin.Context) {
	reviewee := c.Query("reviewee")
	if reviewee == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "reviewee required"))
		return
	}
	month, ok := monthQuery(c)
	if !ok {
		return
	}
	reviews, err := h.reviews.ListMonthlyReviews(c.Request.Context(), reviewee, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reviews, nil)
}

// ReviewableTasks godoc
// @Summary Completed tasks the caller can still review
// @Tags Reviews
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reviews/reviewable/tasks [get]
func (h *ReviewHandler) ReviewableTasks(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	tasks, err := h.reviews.ListReviewableTasks(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, nil)
}

// ReviewableUsers godoc
// @Summary Colleagues the caller has not reviewed for a month
// @Tags Reviews
// @Produce json
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /reviews/reviewable/users [get]
func (h *ReviewHandler) ReviewableUsers(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	month, ok := monthQuery(c)
	if !ok {
		return
	}
	users, err := h.reviews.ListReviewableUsers(c.Request.Context(), claims.UserID, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil)
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/okr-performance-api/internal/middleware"
	"github.com/noah-isme/okr-performance-api/internal/models"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
	"github.com/noah-isme/okr-performance-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// requireClaims writes 401 and returns nil when the request carries no actor.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return claims
}

// monthParam parses the :month path value.
func monthParam(c *gin.Context) (time.Time, bool) {
	return parseMonthValue(c, c.Param("month"), "month")
}

// monthQuery parses ?month=, which is required.
func monthQuery(c *gin.Context) (time.Time, bool) {
	return parseMonthValue(c, c.Query("month"), "month")
}

func parseMonthValue(c *gin.Context, raw, field string) (time.Time, bool) {
	if raw == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, field+" required"))
		return time.Time{}, false
	}
	month, err := models.ParseMonth(raw)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
		return time.Time{}, false
	}
	return month, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

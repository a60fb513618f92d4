package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/service"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
)

type staticValidator map[string]*models.JWTClaims

func (v staticValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Wrap(errors.New("bad token"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
}

func newProtectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator := staticValidator{
		"admin":  {UserID: "a1", Role: models.RoleAdmin},
		"member": {UserID: "u1", Role: models.RoleMember},
	}
	router := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(validator)}, extra...)
	handlers = append(handlers, func(c *gin.Context) { c.String(http.StatusOK, Claims(c).UserID) })
	router.GET("/users/:id", handlers...)
	return router
}

func call(router *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWT(t *testing.T) {
	router := newProtectedRouter()

	assert.Equal(t, http.StatusUnauthorized, call(router, "/users/u1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(router, "/users/u1", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, call(router, "/users/u1", "Bearer nope").Code)

	rec := call(router, "/users/u1", "bearer member")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestRBACAdminOrSelf(t *testing.T) {
	router := newProtectedRouter(AdminOrSelf())

	assert.Equal(t, http.StatusOK, call(router, "/users/u1", "Bearer member").Code)
	assert.Equal(t, http.StatusForbidden, call(router, "/users/u2", "Bearer member").Code)
	assert.Equal(t, http.StatusOK, call(router, "/users/u2", "Bearer admin").Code)
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, call(router, "/admin", "").Code)
}

func TestMetricsSkipsProbes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/performance/:month/ranking", func(c *gin.Context) { c.Status(http.StatusOK) })

	call(router, "/health", "")
	call(router, "/api/v1/performance/2024-03/ranking", "")
	call(router, "/nowhere", "")

	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
}

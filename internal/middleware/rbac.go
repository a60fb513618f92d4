package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/okr-performance-api/internal/models"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
	"github.com/noah-isme/okr-performance-api/pkg/response"
)

// Self lets a caller through when the :id route parameter is their own user ID.
const Self = "SELF"

// RBAC enforces role-based access control for routes. Self may be listed
// alongside roles.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowSelf := false
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed))
	for _, a := range allowed {
		if a == Self {
			allowSelf = true
			continue
		}
		allowedRoles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}

// AdminOrSelf allows admins and the user named by :id.
func AdminOrSelf() gin.HandlerFunc {
	return RBAC(string(models.RoleAdmin), Self)
}

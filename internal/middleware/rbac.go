package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/edutrack-app/edutrack-bff/pkg/errors"
	"github.com/edutrack-app/edutrack-bff/pkg/response"
)

// RBAC enforces role-based access control for mutation routes. An empty
// allow list disables the check, so deployments without role claims keep
// working on token verification alone.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowedRoles := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		if role != "" {
			allowedRoles[role] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if len(allowedRoles) == 0 {
			c.Next()
			return
		}

		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowedRoles[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

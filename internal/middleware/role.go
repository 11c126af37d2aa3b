package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paintmarket/internal/domain"
	"paintmarket/internal/pkg/response"
)

// RequireRole aborts the request unless the authenticated user has one
// of the given roles. Must run after Auth.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString("role")] {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}

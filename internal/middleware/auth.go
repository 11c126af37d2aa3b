package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"paintmarket/internal/pkg/jwt"
	"paintmarket/internal/pkg/response"
)

// Auth validates the bearer token and stores user_id and role on the
// context for downstream handlers.
func Auth(jwts *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
			c.Abort()
			return
		}

		claims, err := jwts.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

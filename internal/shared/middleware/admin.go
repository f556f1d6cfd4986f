package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wavehouse-backend/internal/shared/response"
)

// AdminMiddleware checks the role set by AuthMiddleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get("role")
		if !ok || role != "admin" {
			response.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", "Access denied: admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}

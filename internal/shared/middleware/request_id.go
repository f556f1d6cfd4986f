package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wavehouse-backend/internal/shared"
)

const headerRequestID = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or mints one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(shared.ContextKeyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

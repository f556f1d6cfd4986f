package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"wavehouse-backend/internal/shared"
	"wavehouse-backend/internal/shared/utils"
)

type clientIPKey struct{}

// ClientIPMiddleware resolves the client address once and stores it on both
// the gin context and the request context.
//
// Usage:
//
//	router.Use(middleware.ClientIPMiddleware())
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := utils.ExtractClientIP(c)

		c.Set(shared.ContextKeyClientIP, clientIP)
		ctx := context.WithValue(c.Request.Context(), clientIPKey{}, clientIP)
		c.Request = c.Request.WithContext(ctx)

		log.Debug().
			Str("ip", clientIP).
			Bool("is_private", utils.IsPrivateIP(clientIP)).
			Str("path", c.Request.URL.Path).
			Msg("Client IP extracted")

		c.Next()
	}
}

// GetClientIP returns the address set by ClientIPMiddleware, resolving it
// on the spot when the middleware did not run.
func GetClientIP(c *gin.Context) string {
	if ip := c.GetString(shared.ContextKeyClientIP); ip != "" {
		return ip
	}
	return utils.ExtractClientIP(c)
}

// GetClientIPFromContext retrieves the client IP from a request context.
// Returns empty string if not found.
func GetClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"wavehouse-backend/internal/shared"
	"wavehouse-backend/internal/shared/response"
	"wavehouse-backend/pkg/jwt"
)

// SessionCookie carries the admin token for the HTML dashboard.
const SessionCookie = "wh_admin_session"

// SessionValidator accepts a token only while its server-side session lives.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*jwt.Claims, error)
}

// AuthMiddleware resolves the admin session from "Authorization: Bearer" or
// the session cookie and stores the claims on the context.
func AuthMiddleware(validator SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := ExtractToken(c)
		if !ok {
			response.Unauthorized(c, "Missing admin session token")
			c.Abort()
			return
		}

		claims, err := validator.ValidateSession(c.Request.Context(), token)
		if err != nil {
			log.Warn().
				Err(err).
				Str("request_id", c.GetString(shared.ContextKeyRequestID)).
				Str("ip", GetClientIP(c)).
				Msg("Admin session rejected")
			response.Unauthorized(c, "Admin session is invalid or expired")
			c.Abort()
			return
		}

		c.Set(shared.ContextKeyAdminSession, claims)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// ExtractToken reads "Bearer <token>" and falls back to the session cookie.
func ExtractToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

// GetAdminClaims returns the claims set by AuthMiddleware.
func GetAdminClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, ok := c.Get(shared.ContextKeyAdminSession)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows any origin. Admin auth travels in a SameSite cookie or a
// bearer header, so credentials are not shared cross-origin.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type", headerRequestID},
		ExposeHeaders:   []string{"Content-Length", "Content-Disposition", headerRequestID},
		MaxAge:          12 * time.Hour,
	})
}

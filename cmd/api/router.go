package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wavehouse-backend/internal/shared/middleware"
	"wavehouse-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	if proxies := c.Config.App.TrustedProxies; len(proxies) > 0 {
		if err := router.SetTrustedProxies(proxies); err != nil {
			log.Printf("⚠️  Invalid TRUSTED_PROXIES, trusting no proxy: %v", err)
			_ = router.SetTrustedProxies(nil)
		}
	}

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.ClientIPMiddleware(),
	)

	submitLimiter := middleware.NewRateLimiter(
		c.Config.Booking.SubmitRatePerMinute,
		c.Config.Booking.SubmitBurst,
	)

	api := router.Group("/api")
	setupLegacyRoutes(api, c, submitLimiter)

	v1 := api.Group("/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupBookingRoutes(v1, c, submitLimiter)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// BOOKING ROUTES
// ========================================
func setupBookingRoutes(v1 *gin.RouterGroup, c *container.Container, limiter *middleware.RateLimiter) {
	v1.POST("/bookings", middleware.RateLimitMiddleware(limiter), c.PublicBookingHandler.SubmitBooking)
	v1.GET("/availability", c.PublicBookingHandler.GetAvailability)
}

// ========================================
// LEGACY ROUTES
// ========================================
// Paths served to the existing booking page.
func setupLegacyRoutes(api *gin.RouterGroup, c *container.Container, limiter *middleware.RateLimiter) {
	api.POST("/submit-booking", middleware.RateLimitMiddleware(limiter), c.PublicBookingHandler.LegacySubmitBooking)
	api.GET("/availability", c.PublicBookingHandler.LegacyGetAvailability)
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.POST("/login", c.AdminHandler.Login)

	protected := admin.Group("")
	protected.Use(
		middleware.AuthMiddleware(c.AdminService),
		middleware.AdminMiddleware(),
	)
	{
		protected.POST("/logout", c.AdminHandler.Logout)
		protected.GET("/dashboard", c.AdminHandler.Dashboard)
		protected.GET("/stats", c.AdminHandler.GetStats)
		protected.GET("/bookings/recent", c.AdminHandler.ListRecent)
		protected.GET("/bookings/export", c.AdminHandler.ExportBookings)
		protected.PATCH("/bookings/:id/status", c.AdminBookingHandler.ChangeStatus)
		protected.POST("/blocked-slots", c.AdminBookingHandler.BlockSlot)
		protected.DELETE("/blocked-slots/:id", c.AdminBookingHandler.UnblockSlot)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   getEnv("APP_VERSION", "1.0.0"),
		}

		// Check database
		dbStatus := "memory"
		if appCtx.DB != nil {
			dbStatus = "ok"
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = "error: " + err.Error()
				health["status"] = "degraded"
			}
		}

		// Check cache
		cacheStatus := "memory"
		if appCtx.Redis != nil {
			cacheStatus = "ok"
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				cacheStatus = "error: " + err.Error()
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    cacheStatus,
		}

		statusCode := http.StatusOK
		if health["status"] != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}

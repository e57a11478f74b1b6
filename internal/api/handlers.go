package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/vinoteca/backend/internal/database"
	"github.com/pageza/vinoteca/backend/internal/logger"
	"github.com/pageza/vinoteca/backend/internal/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthCheck reports whether the database answers.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			logger.FromContext(c.Request.Context()).Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unreachable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "ok",
		})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", HealthCheck(deps.DB))

	v1 := router.Group("/api/v1")

	limited := deps.AIRateLimiter.RateLimitMiddleware()
	NewRecommendationHandler(deps.Recommender).RegisterRoutes(v1, limited)
	NewWineInfoHandler(deps.WineInfo).RegisterRoutes(v1, limited)
	NewCatalogHandler(deps.Catalog).RegisterRoutes(v1)
	NewCellarHandler(deps.Cellar).RegisterRoutes(v1)

	if deps.AIRateLimiter != nil {
		RegisterRateLimitRoutes(v1, deps.AIRateLimiter)
	}
}

// RegisterRateLimitRoutes registers endpoints for checking rate limit status
func RegisterRateLimitRoutes(router *gin.RouterGroup, limiter *middleware.RateLimiter) {
	router.GET("/rate-limits/ai", func(c *gin.Context) {
		identity := "ip:" + c.ClientIP()
		if username := strings.TrimSpace(c.Query("username")); username != "" {
			identity = "user:" + username
		}

		remaining, resetTime, err := limiter.GetRemainingRequests(c.Request.Context(), identity)
		if err != nil {
			logger.FromContext(c.Request.Context()).Error("failed to check rate limit", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check rate limit"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"limit":      limiter.Limit(),
			"remaining":  remaining,
			"reset_time": resetTime.Unix(),
		})
	})
}

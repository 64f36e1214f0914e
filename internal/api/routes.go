package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonesrussell/linktrack/internal/config"
	"github.com/jonesrussell/linktrack/internal/handler"
	"github.com/jonesrussell/linktrack/internal/middleware"
)

// setupRoutes configures the redirect and stats routes. Health routes are
// registered by the server itself.
func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	redirectHandler *handler.RedirectHandler,
	statsHandler *handler.StatsHandler,
	done <-chan struct{},
) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rateLimitWindow := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second

	// Short-link resolution with rate limiting.
	short := router.Group("")
	short.Use(middleware.RateLimiter(cfg.RateLimit.MaxClicksPerMinute, rateLimitWindow, done))
	short.GET("/go/:source/:site/:articleId", redirectHandler.HandleGo)

	// Stats API behind token auth.
	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.TokenAuth(cfg.Service.StatsToken))
	apiGroup.GET("/stats", statsHandler.HandleStats)
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ckousik/rootwalk/internal/api/handlers"
	"github.com/ckousik/rootwalk/internal/api/middleware"
	"github.com/ckousik/rootwalk/internal/config"
)

// RegisterRoutes mounts the v1 API on the given engine.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, cfg *config.Config) {
	api := r.Group("/api/v1")

	// Health stays unauthenticated for probes.
	api.GET("/health", h.Health)

	// Optional API key protection for everything else.
	if cfg != nil && cfg.API.APIKey != "" {
		api = api.Group("", middleware.RequireAPIKey(cfg.API.APIKey))
	}

	api.GET("/stats", h.Stats)
	api.GET("/history", h.History)

	// One /resolve request fans out into several outbound DNS queries, so it
	// gets per-client admission control on top of the API key.
	var rate float64
	var burst int
	if cfg != nil {
		rate, burst = cfg.API.RateQPS, cfg.API.RateBurst
	}
	api.GET("/resolve", middleware.RateLimit(rate, burst), h.Resolve)
}

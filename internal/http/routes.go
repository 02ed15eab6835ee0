package http

import (
	"time"

	"clipit_tycoon/internal/http/handlers"
	"clipit_tycoon/internal/http/middleware"
	"clipit_tycoon/internal/ws"

	"github.com/gin-gonic/gin"
)

// Limits are requests per Window
type Limits struct {
	API    int
	Auth   int
	Game   int
	Window time.Duration
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub, limits Limits) {
	// Health checks (no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(limits.API, limits.Window))
	registerAPIRoutes(v1, h, limits)

	// WebSocket for the mini-game marker
	r.GET("/ws/minigame", h.WS(hub))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, limits Limits) {
	// Auth
	api.POST("/auth", middleware.RedisRateLimit(limits.Auth, limits.Window), h.Auth)

	// Catalogs
	api.GET("/streamers", h.Streamers)
	api.GET("/hashtags", h.Hashtags)

	authed := api.Group("")
	authed.Use(middleware.JWT())

	authed.GET("/state", h.State)
	authed.GET("/campaigns", h.Campaigns)
	authed.GET("/posts", h.Posts)

	// Game rate limiter middleware (per player, not per IP)
	gameRL := middleware.GameRateLimit(limits.Game, limits.Window)

	// Mini-game
	authed.POST("/streamers/:id/select", gameRL, h.SelectStreamer)
	authed.GET("/minigame", h.Minigame)
	authed.POST("/minigame/start", gameRL, h.StartRound)
	authed.POST("/minigame/commit", gameRL, h.CommitRound)
	authed.POST("/minigame/leave", h.LeaveRound)

	// Progression
	authed.POST("/clip/edit", gameRL, h.EditClip)
	authed.POST("/account", h.CreateAccount)
	authed.POST("/posts", gameRL, h.CreatePost)
	authed.POST("/bonus/claim", h.ClaimBonus)
	authed.POST("/campaigns/:id/join", h.JoinCampaign)
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"clipit_tycoon/internal/economy"
	"clipit_tycoon/internal/game"
	"clipit_tycoon/internal/http/middleware"
	"clipit_tycoon/internal/logger"
	"clipit_tycoon/internal/metrics"
	"clipit_tycoon/internal/service"
	"clipit_tycoon/internal/store"

	"github.com/gin-gonic/gin"
)

// HandlerConfig holds configuration for handler
type HandlerConfig struct {
	BotToken       string
	InitDataMaxAge time.Duration
	GuestLogin     bool
	AllowedOrigin  string
}

type Handler struct {
	Games *service.GameService
	cfg   HandlerConfig
}

func NewHandler(games *service.GameService, cfg HandlerConfig) *Handler {
	if cfg.InitDataMaxAge <= 0 {
		cfg.InitDataMaxAge = 24 * time.Hour
	}
	return &Handler{Games: games, cfg: cfg}
}

// session returns the caller's game session, player ID comes from JWT
func (h *Handler) session(c *gin.Context) (*service.Session, bool) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	sess, err := h.Games.Session(c.Request.Context(), playerID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "game state unavailable"})
		return nil, false
	}
	return sess, true
}

// refusals are rule violations of the current state; the request itself was fine
var refusals = []error{
	game.ErrOnCooldown,
	game.ErrNotIdle,
	game.ErrNotRunning,
	game.ErrRoundClosed,
	service.ErrNoStreamer,
	store.ErrNoCurrentClip,
	store.ErrClipAlreadyEdited,
	store.ErrNoAccount,
	store.ErrAccountExists,
	economy.ErrMarketplaceLocked,
	economy.ErrCampaignLocked,
	economy.ErrInsufficientFunds,
	economy.ErrAlreadyJoined,
	economy.ErrBonusClaimed,
}

var invalid = []error{
	store.ErrInvalidAccount,
	store.ErrInvalidTitle,
	store.ErrInvalidHashtags,
}

func matches(err error, list []error) bool {
	for _, target := range list {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps command errors: refusal 409, bad input 400, unknown catalog id 404
func respondError(c *gin.Context, action string, err error) {
	switch {
	case matches(err, refusals):
		metrics.RefusalsTotal.WithLabelValues(action).Inc()
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "refused": true})
	case matches(err, invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrUnknownStreamer), errors.Is(err, store.ErrUnknownCampaign):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		playerID, _ := middleware.PlayerID(c)
		logger.ForPlayer(playerID).Error("command failed", "action", action, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

package handlers

import (
	"net/http"
	"time"

	"clipit_tycoon/internal/logger"
	"clipit_tycoon/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthRequest struct {
	InitData string `json:"init_data"`
}

// Auth issues a JWT. With init_data the Telegram user becomes the player,
// without it a guest player is created when guest login is enabled.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
	}

	var playerID, username string
	switch {
	case req.InitData != "":
		if len(req.InitData) > 4096 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "init_data too long"})
			return
		}
		if h.cfg.BotToken == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "telegram login is not configured"})
			return
		}
		user, err := service.ValidateTelegramInitData(req.InitData, h.cfg.BotToken, h.cfg.InitDataMaxAge, time.Now())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale telegram data"})
			return
		}
		playerID, username = user.PlayerID(), user.Username
	case h.cfg.GuestLogin:
		playerID = "guest-" + uuid.NewString()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "init_data required"})
		return
	}

	token, err := service.GenerateJWT(playerID)
	if err != nil {
		logger.ForPlayer(playerID).Error("token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	sess, err := h.Games.Session(c.Request.Context(), playerID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "game state unavailable"})
		return
	}
	logger.ForPlayer(playerID).Info("player authenticated", "username", username)

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"player_id": playerID,
		"state":     sess.View(),
	})
}

package handlers

import (
	"clipit_tycoon/internal/ws"

	"github.com/gin-gonic/gin"
)

// WS streams the caller's mini-game over a websocket (?token=<jwt>)
func (h *Handler) WS(hub *ws.Hub) gin.HandlerFunc {
	return ws.HandleWS(hub, h.Games, h.cfg.AllowedOrigin)
}

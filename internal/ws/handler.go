package ws

import (
	"net/http"

	"clipit_tycoon/internal/logger"
	"clipit_tycoon/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades /ws/minigame?token=<jwt> and attaches the player's session
func HandleWS(hub *Hub, games *service.GameService, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		playerID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		sess, err := games.Session(c.Request.Context(), playerID)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "game state unavailable"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ForPlayer(playerID).Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(conn, hub, sess)
		go client.Run()
	}
}

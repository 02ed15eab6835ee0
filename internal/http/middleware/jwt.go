package middleware

import (
	"net/http"
	"strings"

	"clipit_tycoon/internal/service"

	"github.com/gin-gonic/gin"
)

const playerIDKey = "player_id"

// JWT checks the bearer token and puts the player ID into the context
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			AuthFailures.WithLabelValues("missing").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		playerID, err := service.ParseJWT(token)
		if err != nil {
			AuthFailures.WithLabelValues("invalid").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(playerIDKey, playerID)
		c.Next()
	}
}

// PlayerID returns the player ID set by JWT
func PlayerID(c *gin.Context) (string, bool) {
	v, ok := c.Get(playerIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

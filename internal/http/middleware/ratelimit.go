package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	start time.Time
	count int64
}

// memoryWindow is the fixed-window counter used when Redis is not configured
type memoryWindow struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	now     func() time.Time
}

func newMemoryWindow() *memoryWindow {
	return &memoryWindow{clients: make(map[string]*clientInfo), now: time.Now}
}

var localWindow = newMemoryWindow()

// incr counts a hit for key and returns the count inside the current window
func (m *memoryWindow) incr(key string, window time.Duration) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	ci, ok := m.clients[key]
	if !ok || now.Sub(ci.start) >= window {
		// drop stale windows so the map does not grow with every ip ever seen
		if len(m.clients) > 10000 {
			for k, v := range m.clients {
				if now.Sub(v.start) >= window {
					delete(m.clients, k)
				}
			}
		}
		m.clients[key] = &clientInfo{start: now, count: 1}
		return 1
	}
	ci.count++
	return ci.count
}

// SimpleRateLimit blocks clients that send more than maxRequests per window (per process)
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if localWindow.incr("ip:"+c.ClientIP(), window) > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

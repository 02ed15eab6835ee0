package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Check pings one dependency (database, redis)
type Check func(ctx context.Context) error

// HealthHandler handles health check endpoints
type HealthHandler struct {
	checks    map[string]Check
	sessions  func() int
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler. sessions may be nil.
func NewHealthHandler(version string, sessions func() int) *HealthHandler {
	return &HealthHandler{
		checks:    make(map[string]Check),
		sessions:  sessions,
		startTime: time.Now(),
		version:   version,
	}
}

// AddCheck registers a dependency probed by Health and Readiness
func (h *HealthHandler) AddCheck(name string, check Check) {
	h.checks[name] = check
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Liveness returns simple alive status (for k8s liveness probe)
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// run probes every dependency, names of the failed ones are returned sorted
func (h *HealthHandler) run(ctx context.Context, checks map[string]string) []string {
	var failed []string
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			if checks != nil {
				checks[name] = "unhealthy: " + err.Error()
			}
			failed = append(failed, name)
			continue
		}
		if checks != nil {
			checks[name] = "healthy"
		}
	}
	sort.Strings(failed)
	return failed
}

// Readiness returns detailed health status (for k8s readiness probe)
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	failed := h.run(ctx, checks)

	// Memory check
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	checks["memory_alloc_mb"] = formatMB(m.Alloc)
	if h.sessions != nil {
		checks["active_sessions"] = fmt.Sprint(h.sessions())
	}

	status := "healthy"
	statusCode := http.StatusOK
	if len(failed) > 0 {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// Health is a combined endpoint for basic health checks
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if failed := h.run(ctx, nil); len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  failed[0] + " unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

func formatMB(bytes uint64) string {
	mb := float64(bytes) / 1024 / 1024
	return fmt.Sprintf("%.2f", mb)
}

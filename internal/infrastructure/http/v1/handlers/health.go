package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quintastock/internal/infrastructure/storage/postgres"
)

// HealthHandler serves the liveness, readiness and info probes.
type HealthHandler struct {
	pool *postgres.Pool
}

func NewHealthHandler(pool *postgres.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Live answers GET /health/live. The process responding is the check.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready answers GET /health/ready with a database ping.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.pool.Unwrap().Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{"database": "unhealthy: " + err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{"database": "healthy"},
	})
}

// Info answers GET /health/info with version and pool statistics.
func (h *HealthHandler) Info(c *gin.Context) {
	stat := h.pool.Unwrap().Stat()
	c.JSON(http.StatusOK, gin.H{
		"app":     "quintastock",
		"version": "0.1.0",
		"database": map[string]any{
			"total_conns":    stat.TotalConns(),
			"acquired_conns": stat.AcquiredConns(),
			"idle_conns":     stat.IdleConns(),
			"max_conns":      stat.MaxConns(),
		},
	})
}

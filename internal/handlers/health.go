package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthub/agenthub/internal/services"
)

// HealthHandler exposes liveness and readiness checks.
type HealthHandler struct {
	health *services.Health
}

// NewHealthHandler creates the handler.
func NewHealthHandler(health *services.Health) *HealthHandler {
	return &HealthHandler{health: health}
}

// Check handles GET /health.
func (h *HealthHandler) Check(c *gin.Context) {
	report := h.health.Check(c.Request.Context())
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// Ready handles GET /health/ready.
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.health.Ready(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

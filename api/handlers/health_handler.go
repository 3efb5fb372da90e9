package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/freedl-go/internal/app"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthHandler handles health check requests
type HealthHandler struct {
	runner *app.TaskRunner
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(runner *app.TaskRunner) *HealthHandler {
	return &HealthHandler{
		runner: runner,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Runner  struct {
		Running bool `json:"running"`
	} `json:"runner"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	response.Runner.Running = h.runner.IsRunning()

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.runner.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "task runner not running",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

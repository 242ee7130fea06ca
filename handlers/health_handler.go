package handlers

import (
	"context"
	"net/http"

	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
)

// HealthChecker is implemented by services.HealthService.
type HealthChecker interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}

type HealthHandler struct {
	healthService HealthChecker
}

func NewHealthHandler(healthService HealthChecker) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// LivenessCheck handles kubernetes liveness probe
// @Summary Liveness probe
// @Tags health
// @Success 200 "Alive"
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ReadinessCheck handles kubernetes readiness probe
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} types.HealthCheck "Ready"
// @Failure 503 {object} types.HealthCheck "A dependency is down"
// @Router /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())

	if health.Status == types.HealthStatusDown {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

// DetailedHealth provides detailed health information
// @Summary Detailed health
// @Tags health
// @Produce json
// @Success 200 {object} types.HealthCheck "Component status"
// @Router /health [get]
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())
	c.JSON(http.StatusOK, health)
}

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"inkchain/internal/jobs"
)

// ChainStatusProvider reports the last chain health probe.
type ChainStatusProvider interface {
	Status() jobs.ChainStatus
}

// HealthHandler handles health check requests
type HealthHandler struct {
	chainHealth ChainStatusProvider
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(chainHealth ChainStatusProvider) *HealthHandler {
	return &HealthHandler{chainHealth: chainHealth}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	chain := h.chainHealth.Status()

	status := "healthy"
	if !chain.Reachable {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":    status,
		"chain":     chain,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/fabrica/internal/config"
	"github.com/localnerve/fabrica/internal/schema"
	"github.com/localnerve/fabrica/internal/services"
	"gorm.io/gorm"
)

// HealthHandler serves the /health endpoint.
type HealthHandler struct {
	Config   *config.Config
	DB       *gorm.DB
	Registry *schema.Registry
}

// Health handles GET /health
// @Summary Service health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Config, h.DB, h.Registry)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carmart/internal/cache"
	"github.com/localnerve/carmart/internal/config"
	"github.com/localnerve/carmart/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler reports dependency health
type HealthHandler struct {
	Cfg   *config.Config
	DB    *gorm.DB
	Cache *cache.Cache
	Log   *zap.Logger
}

// Health handles GET /health
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Cfg, h.DB, h.Cache, h.Log)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}

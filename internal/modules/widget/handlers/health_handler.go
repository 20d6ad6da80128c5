package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wetechforu/marketingby-chat-be/internal/shared/database"
)

type HealthHandler struct {
	db *database.DB
}

func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health godoc
// @Summary Service health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	if err := h.db.Ping(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"error":  "database unreachable",
		})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/services"
)

type SweepHandler struct {
	inactivity *services.InactivityService
}

func NewSweepHandler(inactivity *services.InactivityService) *SweepHandler {
	return &SweepHandler{inactivity: inactivity}
}

// RunSweep godoc
// @Summary Run the inactivity sweep
// @Description Scans non-closed conversations, sends extension reminders, and closes expired sessions. Also driven in-process by cron.
// @Tags Internal
// @Produce json
// @Success 200 {object} services.SweepResult
// @Router /api/internal/sweep [post]
func (h *SweepHandler) RunSweep(c *fiber.Ctx) error {
	result, err := h.inactivity.RunSweep(c.Context())
	if err != nil {
		log.Printf("❌ Sweep failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "sweep failed"})
	}

	return c.JSON(result)
}

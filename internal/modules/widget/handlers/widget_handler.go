package handlers

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/wetechforu/marketingby-chat-be/internal/core/whatsapp"
	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/repositories"
)

type WidgetHandler struct {
	widgetRepo repositories.WidgetRepo
}

func NewWidgetHandler(widgetRepo repositories.WidgetRepo) *WidgetHandler {
	return &WidgetHandler{widgetRepo: widgetRepo}
}

// HandoverQR godoc
// @Summary WhatsApp continuation QR code
// @Description Renders a QR code pointing at the widget's handover WhatsApp number so visitors can continue on their phone
// @Tags Widgets
// @Produce png
// @Param widgetKey path string true "Widget key"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]interface{}
// @Router /api/public/widget/{widgetKey}/handover/qr [get]
func (h *WidgetHandler) HandoverQR(c *fiber.Ctx) error {
	widget, err := h.widgetRepo.GetByKey(c.Params("widgetKey"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "widget not found"})
	}

	if widget.HandoverWhatsAppNumber == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "widget has no WhatsApp handover number"})
	}

	number := whatsapp.NormalizeWhatsAppNumber(widget.HandoverWhatsAppNumber)
	link := fmt.Sprintf("https://wa.me/%s", strings.TrimPrefix(number, "whatsapp:+"))

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		log.Printf("❌ Failed to render handover QR for widget %s: %v", widget.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to render QR"})
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}

// InvalidateCache godoc
// @Summary Invalidate the widget config cache
// @Description Consumed by the admin side after a config update so subsequent reads see fresh settings
// @Tags Widgets
// @Produce json
// @Param id path string true "Widget ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/widgets/{id}/cache/invalidate [post]
func (h *WidgetHandler) InvalidateCache(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid widget id"})
	}

	h.widgetRepo.Invalidate(id)
	return c.JSON(fiber.Map{"status": "invalidated"})
}

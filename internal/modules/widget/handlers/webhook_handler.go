package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/services"
)

type WebhookHandler struct {
	engine *services.Engine
}

func NewWebhookHandler(engine *services.Engine) *WebhookHandler {
	return &WebhookHandler{engine: engine}
}

// ReceiveWhatsApp godoc
// @Summary Twilio WhatsApp webhook receiver
// @Description Receives inbound WhatsApp replies from Twilio and maps them to conversations via the stored MessageSid correlation
// @Tags Webhook
// @Accept x-www-form-urlencoded
// @Produce json
// @Param MessageSid formData string true "Twilio message SID"
// @Param Body formData string true "Message text"
// @Param From formData string true "Sender number"
// @Param OriginalRepliedMessageSid formData string false "SID of the message being replied to"
// @Success 200 {object} map[string]interface{}
// @Router /api/webhook/whatsapp [post]
func (h *WebhookHandler) ReceiveWhatsApp(c *fiber.Ctx) error {
	messageSID := c.FormValue("MessageSid")
	body := c.FormValue("Body")
	from := c.FormValue("From")
	repliedSID := c.FormValue("OriginalRepliedMessageSid")

	log.Printf("📨 WhatsApp webhook - Sid: %s, From: %s, RepliedSid: %s", messageSID, from, repliedSID)

	if messageSID == "" || body == "" {
		log.Println("⏭️ Skipping webhook without MessageSid or Body")
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	_, _, err := h.engine.ReceiveWhatsAppInbound(c.Context(), messageSID, repliedSID, from, body)
	if err != nil {
		// Twilio retries on non-2xx; unknown correlations are logged and
		// acknowledged so the retry loop does not hammer us
		var notFoundErr *services.NotFoundError
		if errors.As(err, &notFoundErr) {
			log.Printf("⚠️ %v, dropping webhook", notFoundErr)
			return c.JSON(fiber.Map{"status": "dropped"})
		}

		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			log.Printf("⚠️ %v, ignoring webhook", validationErr)
			return c.JSON(fiber.Map{"status": "ignored"})
		}

		log.Printf("❌ WhatsApp webhook processing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{"status": "received"})
}

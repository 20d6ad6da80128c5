package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/repositories"
	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/services"
)

type ConversationHandler struct {
	engine  *services.Engine
	msgRepo repositories.MessageRepo
}

func NewConversationHandler(engine *services.Engine, msgRepo repositories.MessageRepo) *ConversationHandler {
	return &ConversationHandler{
		engine:  engine,
		msgRepo: msgRepo,
	}
}

// VisitorMessageRequest is the public widget message payload
type VisitorMessageRequest struct {
	ConversationID   string `json:"conversation_id,omitempty"`
	VisitorSessionID string `json:"visitor_session_id,omitempty"`
	Message          string `json:"message"`
	DedupeKey        string `json:"dedupe_key,omitempty"`
}

// AgentMessageRequest is the portal agent reply payload
type AgentMessageRequest struct {
	Message string `json:"message"`
}

// PostVisitorMessage godoc
// @Summary Post a visitor message
// @Description Accepts a visitor message from the embedded widget, creating the conversation on first contact
// @Tags Conversations
// @Accept json
// @Produce json
// @Param widgetKey path string true "Widget key"
// @Param payload body VisitorMessageRequest true "Visitor message"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/public/widget/{widgetKey}/message [post]
func (h *ConversationHandler) PostVisitorMessage(c *fiber.Ctx) error {
	widgetKey := c.Params("widgetKey")

	var req VisitorMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	var conversationID *uuid.UUID
	if req.ConversationID != "" {
		id, err := uuid.Parse(req.ConversationID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid conversation_id"})
		}
		conversationID = &id
	}

	conv, outbound, err := h.engine.PostVisitorMessage(c.Context(), widgetKey, conversationID, req.VisitorSessionID, req.Message, req.DedupeKey)
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(fiber.Map{
		"conversation_id":   conv.ID,
		"status":            conv.Status,
		"outbound_messages": outbound,
	})
}

// PostAgentMessage godoc
// @Summary Post an agent message
// @Description Appends a portal agent's reply; an agent replying during bot handling takes the conversation over
// @Tags Conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param payload body AgentMessageRequest true "Agent message"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/conversations/{id}/agent-message [post]
func (h *ConversationHandler) PostAgentMessage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid conversation id"})
	}

	var req AgentMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	conv, outbound, err := h.engine.PostAgentMessage(c.Context(), id, req.Message)
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(fiber.Map{
		"conversation_id":   conv.ID,
		"status":            conv.Status,
		"outbound_messages": outbound,
	})
}

// GetMessages godoc
// @Summary Get conversation transcript
// @Description Returns the append-only message log of a conversation for the agent dashboard
// @Tags Conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/conversations/{id}/messages [get]
func (h *ConversationHandler) GetMessages(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid conversation id"})
	}

	msgs, err := h.msgRepo.ListByConversation(id, 500)
	if err != nil {
		log.Printf("❌ Failed to load messages for %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load messages"})
	}

	return c.JSON(fiber.Map{"messages": msgs})
}

// respondEngineError maps the engine's error taxonomy onto HTTP statuses
func respondEngineError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Error()})
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFoundErr.Error()})
	}

	log.Printf("❌ Unhandled engine error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/repositories"
)

// WhatsAppSender is the outbound WhatsApp surface the orchestrator needs
type WhatsAppSender interface {
	SendMessage(phoneNumber, message string) (string, error)
	SendTemplate(phoneNumber, contentSID string, variables map[string]string) (string, error)
}

// WhatsAppIntent is a template send that must run outside the conversation
// lock. The engine executes it and applies the outcome under a fresh lock.
type WhatsAppIntent struct {
	RequestID  uuid.UUID
	To         string
	ContentSID string
	Variables  map[string]string
}

// HandoverService moves conversations from bot handling to a human channel
type HandoverService struct {
	handoverRepo repositories.HandoverRepo
	whatsapp     WhatsAppSender
}

func NewHandoverService(handoverRepo repositories.HandoverRepo, sender WhatsAppSender) *HandoverService {
	return &HandoverService{
		handoverRepo: handoverRepo,
		whatsapp:     sender,
	}
}

// Begin reacts to a handover trigger. When both methods are enabled and the
// widget allows choosing, the conversation waits in handover_requested with a
// choice prompt; otherwise it activates the default method directly.
func (h *HandoverService) Begin(conv *models.Conversation, widget *models.WidgetConfig, reason string) ([]models.Message, *WhatsAppIntent, error) {
	opts, err := widget.ParsedHandoverOptions()
	if err != nil {
		log.Printf("⚠️ Malformed handover options for widget %s, defaulting to agent: %v", widget.ID, err)
		opts = models.HandoverOptions{Agent: true}
	}

	if !opts.Agent && !opts.WhatsApp {
		// Nothing enabled; queue for the portal anyway so the request is visible
		opts.Agent = true
	}

	if opts.Agent && opts.WhatsApp && widget.EnableHandoverChoice {
		conv.Status = models.StatusHandoverRequested
		conv.HandoverChoicePending = true
		return []models.Message{{
			ConversationID: conv.ID,
			Type:           models.MessageTypeBot,
			Body:           "I'll connect you with our team. Would you like to (1) chat with an agent here, or (2) continue on WhatsApp? Reply 1 or 2.",
		}}, nil, nil
	}

	method := widget.DefaultHandoverMethod
	if !opts.WhatsApp {
		method = models.HandoverMethodAgent
	} else if !opts.Agent {
		method = models.HandoverMethodWhatsApp
	}
	if method == "" || method == models.HandoverMethodNone {
		method = models.HandoverMethodAgent
	}

	return h.Activate(conv, widget, method, reason)
}

// Activate transitions the conversation to its human channel. The agent
// method completes immediately; the WhatsApp method returns an intent so the
// template send runs without holding the conversation lock, and the
// conversation waits in handover_requested until the outcome is applied.
func (h *HandoverService) Activate(conv *models.Conversation, widget *models.WidgetConfig, method, reason string) ([]models.Message, *WhatsAppIntent, error) {
	conv.HandoverChoicePending = false
	conv.HandoverMethod = method

	request := &models.HandoverRequest{
		ConversationID:  conv.ID,
		RequestedMethod: method,
		Reason:          reason,
		Status:          models.HandoverStatusPending,
	}
	if err := h.handoverRepo.Create(request); err != nil {
		log.Printf("⚠️ Failed to record handover request for %s: %v", conv.ID, err)
	}

	switch method {
	case models.HandoverMethodWhatsApp:
		return h.prepareWhatsApp(conv, widget, request)

	default:
		conv.Status = models.StatusHandoverActive
		if err := h.handoverRepo.UpdateStatus(request.ID, models.HandoverStatusNotified, "", ""); err != nil {
			log.Printf("⚠️ Failed to update handover request %s: %v", request.ID, err)
		}
		return []models.Message{{
			ConversationID: conv.ID,
			Type:           models.MessageTypeSystem,
			Body:           "You're in the queue. A member of our team will be with you shortly.",
		}}, nil, nil
	}
}

func (h *HandoverService) prepareWhatsApp(conv *models.Conversation, widget *models.WidgetConfig, request *models.HandoverRequest) ([]models.Message, *WhatsAppIntent, error) {
	target := widget.HandoverWhatsAppNumber
	if target == "" {
		err := &ProviderError{Op: "whatsapp handover", Err: fmt.Errorf("widget %s has no handover WhatsApp number", widget.ID)}
		return h.FailWhatsApp(conv, request.ID, err), nil, nil
	}

	visitorName := conv.VisitorName
	if visitorName == "" {
		visitorName = "A website visitor"
	}

	conv.Status = models.StatusHandoverRequested

	return nil, &WhatsAppIntent{
		RequestID:  request.ID,
		To:         target,
		ContentSID: widget.WhatsAppHandoverContentSID,
		Variables: map[string]string{
			"1": visitorName,
			"2": conv.ID.String(),
		},
	}, nil
}

// CompleteWhatsApp applies a successful template delivery: the conversation
// goes active on the WhatsApp channel and the returned SID becomes the
// inbound-webhook correlation key.
func (h *HandoverService) CompleteWhatsApp(conv *models.Conversation, requestID uuid.UUID, sid string) []models.Message {
	conv.Status = models.StatusHandoverActive
	conv.LastWhatsAppMessageSID = sid
	if err := h.handoverRepo.UpdateStatus(requestID, models.HandoverStatusNotified, "", sid); err != nil {
		log.Printf("⚠️ Failed to update handover request %s: %v", requestID, err)
	}

	log.Printf("📱 WhatsApp handover notified for conversation %s (sid: %s)", conv.ID, sid)

	return []models.Message{{
		ConversationID:     conv.ID,
		Type:               models.MessageTypeSystem,
		Body:               "We've notified our team on WhatsApp. They'll continue this conversation with you here.",
		ExternalMessageSID: sid,
	}}
}

// FailWhatsApp keeps the conversation waiting for the portal after a
// delivery failure and surfaces the failure as a system message.
func (h *HandoverService) FailWhatsApp(conv *models.Conversation, requestID uuid.UUID, cause error) []models.Message {
	log.Printf("❌ %v", cause)

	conv.Status = models.StatusHandoverRequested
	if err := h.handoverRepo.UpdateStatus(requestID, models.HandoverStatusFailed, cause.Error(), ""); err != nil {
		log.Printf("⚠️ Failed to update handover request %s: %v", requestID, err)
	}

	return []models.Message{{
		ConversationID: conv.ID,
		Type:           models.MessageTypeSystem,
		Body:           "We couldn't reach our team on WhatsApp right now, but your request is in the queue and an agent will pick it up here.",
	}}
}

// MarkNotified records a delivery whose conversation can no longer change
// state (it closed while the send was in flight); the portal still sees it.
func (h *HandoverService) MarkNotified(requestID uuid.UUID, sid string) {
	if err := h.handoverRepo.UpdateStatus(requestID, models.HandoverStatusNotified, "", sid); err != nil {
		log.Printf("⚠️ Failed to update handover request %s: %v", requestID, err)
	}
}

// AcceptByAgent handles an agent replying before (or instead of) a formal
// handover: the first human message takes the conversation over directly.
func (h *HandoverService) AcceptByAgent(conv *models.Conversation) []models.Message {
	conv.Status = models.StatusHandoverActive
	conv.HandoverMethod = models.HandoverMethodAgent
	conv.HandoverChoicePending = false

	request := &models.HandoverRequest{
		ConversationID:  conv.ID,
		RequestedMethod: models.HandoverMethodAgent,
		Reason:          HandoverReasonImplicit,
		Status:          models.HandoverStatusCompleted,
	}
	if err := h.handoverRepo.Create(request); err != nil {
		log.Printf("⚠️ Failed to record handover request for %s: %v", conv.ID, err)
	}

	log.Printf("🙋 Agent took over conversation %s", conv.ID)

	return []models.Message{{
		ConversationID: conv.ID,
		Type:           models.MessageTypeSystem,
		Body:           "An agent has joined the conversation.",
	}}
}

// ConsumeChoice interprets the visitor's reply to the method choice prompt.
// Unrecognized replies re-prompt without leaving handover_requested.
func (h *HandoverService) ConsumeChoice(conv *models.Conversation, widget *models.WidgetConfig, text string) ([]models.Message, *WhatsAppIntent, error) {
	lowered := strings.ToLower(strings.TrimSpace(text))

	switch {
	case lowered == "1" || strings.Contains(lowered, "agent") || strings.Contains(lowered, "here"):
		return h.Activate(conv, widget, models.HandoverMethodAgent, HandoverReasonChoice)

	case lowered == "2" || strings.Contains(lowered, "whatsapp"):
		return h.Activate(conv, widget, models.HandoverMethodWhatsApp, HandoverReasonChoice)

	default:
		return []models.Message{{
			ConversationID: conv.ID,
			Type:           models.MessageTypeBot,
			Body:           "Sorry, I didn't catch that. Reply 1 to chat with an agent here, or 2 to continue on WhatsApp.",
		}}, nil, nil
	}
}

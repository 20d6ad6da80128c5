package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wetechforu/marketingby-chat-be/internal/core/kb"
	"github.com/wetechforu/marketingby-chat-be/internal/core/llm"
	"github.com/wetechforu/marketingby-chat-be/internal/core/whatsapp"
	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/repositories"
)

const (
	maxMessageLength = 4000
	llmCallTimeout   = 10 * time.Second

	// extensionOfferStage is the reminder count at which a party has an
	// outstanding "reply yes [minutes]" offer
	extensionOfferStage = 2

	minExtensionMinutes = 1
	maxExtensionMinutes = 60
)

// ReplyGenerator is the black-box LLM surface the engine consumes
type ReplyGenerator interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string, opts llm.Options) (string, error)
}

// Engine owns the conversation state machine. It is the single authority
// that mutates conversation state; all mutations run under the
// per-conversation lock.
type Engine struct {
	convRepo   repositories.ConversationRepo
	msgRepo    repositories.MessageRepo
	widgetRepo repositories.WidgetRepo

	router   *RouterService
	handover *HandoverService
	llm      ReplyGenerator
	kb       kb.Searcher
	whatsapp WhatsAppSender
	locks    *ConversationLocks

	extensionDuration time.Duration
	now               func() time.Time
}

func NewEngine(
	convRepo repositories.ConversationRepo,
	msgRepo repositories.MessageRepo,
	widgetRepo repositories.WidgetRepo,
	router *RouterService,
	handover *HandoverService,
	replyGen ReplyGenerator,
	searcher kb.Searcher,
	sender WhatsAppSender,
	locks *ConversationLocks,
	extensionDuration time.Duration,
) *Engine {
	return &Engine{
		convRepo:          convRepo,
		msgRepo:           msgRepo,
		widgetRepo:        widgetRepo,
		router:            router,
		handover:          handover,
		llm:               replyGen,
		kb:                searcher,
		whatsapp:          sender,
		locks:             locks,
		extensionDuration: extensionDuration,
		now:               time.Now,
	}
}

// pendingLLM carries the deferred generation work of the two-phase LLM call
type pendingLLM struct {
	userText string
}

// pendingForward is a visitor-to-handover relay deferred past the lock
type pendingForward struct {
	to   string
	body string
}

// followUp is external I/O planned under the lock and executed after release.
// At most one branch is set per event.
type followUp struct {
	llm      *pendingLLM
	handover *WhatsAppIntent
	forward  *pendingForward
}

// PostVisitorMessage handles one visitor message, creating the conversation
// on first contact. Returns the conversation and the outbound messages
// produced by this event.
func (e *Engine) PostVisitorMessage(ctx context.Context, widgetKey string, conversationID *uuid.UUID, visitorSessionID, text, dedupeKey string) (*models.Conversation, []models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, &ValidationError{Field: "message", Reason: "message must not be empty"}
	}
	if len(text) > maxMessageLength {
		return nil, nil, &ValidationError{Field: "message", Reason: "message exceeds maximum length"}
	}

	widget, err := e.widgetRepo.GetByKey(widgetKey)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, nil, &NotFoundError{Resource: "widget", ID: widgetKey}
		}
		return nil, nil, err
	}
	if !widget.IsActive {
		return nil, nil, &ValidationError{Field: "widget_key", Reason: "widget is not active"}
	}

	conv, created, err := e.resolveConversation(widget, conversationID, visitorSessionID)
	if err != nil {
		return nil, nil, err
	}

	e.locks.Lock(conv.ID)
	conv, msgs, fu, err := e.visitorPhaseLocked(conv.ID, widget, text, dedupeKey, created)
	e.locks.Unlock(conv.ID)
	if err != nil || fu == nil {
		return conv, msgs, err
	}

	// Suspension point: all external calls run outside the lock, then the
	// outcome is applied against a re-validated conversation
	id := conv.ID

	switch {
	case fu.llm != nil:
		reply, llmErr := e.generateReply(ctx, widget, fu.llm.userText)

		e.locks.Lock(id)
		conv, more, err := e.applyLLMReplyLocked(id, reply, llmErr)
		e.locks.Unlock(id)
		return conv, append(msgs, more...), err

	case fu.handover != nil:
		sid, sendErr := e.whatsapp.SendTemplate(fu.handover.To, fu.handover.ContentSID, fu.handover.Variables)

		e.locks.Lock(id)
		conv, more, err := e.applyHandoverDeliveryLocked(id, fu.handover, sid, sendErr)
		e.locks.Unlock(id)
		return conv, append(msgs, more...), err

	case fu.forward != nil:
		sid, sendErr := e.whatsapp.SendMessage(fu.forward.to, fu.forward.body)
		if sendErr != nil {
			// Failed relays are absorbed; the transcript already has the message
			log.Printf("❌ %v", &ProviderError{Op: "whatsapp forward", Err: sendErr})
			return conv, msgs, nil
		}

		e.locks.Lock(id)
		conv, err := e.recordForwardLocked(id, sid)
		e.locks.Unlock(id)
		return conv, msgs, err
	}

	return conv, msgs, nil
}

func (e *Engine) resolveConversation(widget *models.WidgetConfig, conversationID *uuid.UUID, visitorSessionID string) (*models.Conversation, bool, error) {
	if conversationID != nil {
		conv, err := e.convRepo.GetByID(*conversationID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return nil, false, &NotFoundError{Resource: "conversation", ID: conversationID.String()}
			}
			return nil, false, err
		}
		// A conversation is only addressable through the widget it belongs
		// to; anything else reads as not found
		if conv.WidgetID != widget.ID {
			return nil, false, &NotFoundError{Resource: "conversation", ID: conversationID.String()}
		}
		return conv, false, nil
	}

	if strings.TrimSpace(visitorSessionID) == "" {
		return nil, false, &ValidationError{Field: "visitor_session_id", Reason: "required when conversation_id is absent"}
	}

	conv, err := e.convRepo.GetActiveByVisitorSession(widget.ID, visitorSessionID)
	if err == nil {
		return conv, false, nil
	}
	if err != repositories.ErrNotFound {
		return nil, false, err
	}

	firstQuestion, err := FirstIntroQuestion(widget)
	if err != nil {
		return nil, false, err
	}

	conv = &models.Conversation{
		WidgetID:         widget.ID,
		VisitorSessionID: visitorSessionID,
		HandoverMethod:   models.HandoverMethodNone,
	}
	if firstQuestion != nil {
		conv.Status = models.StatusIntroPending
	} else {
		conv.Status = models.StatusActiveBot
		conv.IntroCompleted = true
	}

	if err := e.convRepo.Create(conv); err != nil {
		return nil, false, err
	}
	log.Printf("💬 New conversation %s for widget %s (status: %s)", conv.ID, widget.WidgetKey, conv.Status)

	return conv, true, nil
}

func (e *Engine) visitorPhaseLocked(conversationID uuid.UUID, widget *models.WidgetConfig, text, dedupeKey string, created bool) (*models.Conversation, []models.Message, *followUp, error) {
	conv, err := e.convRepo.GetByID(conversationID)
	if err != nil {
		return nil, nil, nil, err
	}

	if dedupeKey != "" {
		exists, err := e.msgRepo.ExistsDedupeKey(conv.ID, dedupeKey)
		if err != nil {
			return conv, nil, nil, err
		}
		if exists {
			log.Printf("🔁 Duplicate visitor message dropped (conversation %s, key %s)", conv.ID, dedupeKey)
			return conv, nil, nil, nil
		}
	}

	if conv.IsClosed() {
		log.Printf("🗄️ %s on closed conversation %s logged for audit, no state change", EventVisitorMessage, conv.ID)
		return conv, nil, nil, nil
	}

	now := e.now()
	conv.LastVisitorActivityAt = &now

	var outbound []models.Message

	visitorMsg := models.Message{
		ConversationID: conv.ID,
		Type:           models.MessageTypeVisitor,
		Body:           text,
	}
	if dedupeKey != "" {
		visitorMsg.DedupeKey = &dedupeKey
	}
	if err := e.appendMessage(conv, &visitorMsg); err != nil {
		return conv, nil, nil, err
	}

	// An outstanding extension offer intercepts "yes [minutes]" replies
	// before any routing
	if minutes, ok := parseExtensionReply(text); ok && conv.VisitorExtensionRemindersCount >= extensionOfferStage {
		confirm := e.grantExtension(conv, minutes, now, false)
		if err := e.appendMessage(conv, &confirm); err != nil {
			return conv, nil, nil, err
		}
		outbound = append(outbound, confirm)
		return conv, outbound, nil, e.convRepo.Save(conv)
	}

	var fu *followUp

	switch conv.Status {
	case models.StatusIntroPending:
		msgs, err := e.handleIntro(conv, widget, text, created)
		if err != nil {
			return conv, outbound, nil, err
		}
		outbound = append(outbound, msgs...)

	case models.StatusActiveBot:
		msgs, f, err := e.handleActiveBot(conv, widget, text, now)
		if err != nil {
			return conv, outbound, nil, err
		}
		outbound = append(outbound, msgs...)
		fu = f

	case models.StatusHandoverRequested:
		if conv.HandoverChoicePending {
			msgs, intent, err := e.handover.ConsumeChoice(conv, widget, text)
			if err != nil {
				return conv, outbound, nil, err
			}
			for i := range msgs {
				if err := e.appendMessage(conv, &msgs[i]); err != nil {
					return conv, outbound, nil, err
				}
			}
			outbound = append(outbound, msgs...)
			if intent != nil {
				fu = &followUp{handover: intent}
			}
		}
		// Otherwise the message is logged and the bot stays silent

	case models.StatusHandoverActive:
		if fwd := e.prepareForward(conv, widget, text); fwd != nil {
			fu = &followUp{forward: fwd}
		}
	}

	return conv, outbound, fu, e.convRepo.Save(conv)
}

func (e *Engine) handleIntro(conv *models.Conversation, widget *models.WidgetConfig, text string, created bool) ([]models.Message, error) {
	if created {
		// First contact opens the flow; the message itself is not an answer
		first, err := FirstIntroQuestion(widget)
		if err != nil {
			return nil, err
		}
		if first == nil {
			return e.completeIntro(conv)
		}
		ask := models.Message{
			ConversationID: conv.ID,
			Type:           models.MessageTypeBot,
			Body:           first.Question,
		}
		if err := e.appendMessage(conv, &ask); err != nil {
			return nil, err
		}
		return []models.Message{ask}, nil
	}

	result, err := AdvanceIntro(conv, widget, text)
	if err != nil {
		return nil, err
	}

	if result.Done {
		return e.completeIntro(conv)
	}

	ask := models.Message{
		ConversationID: conv.ID,
		Type:           models.MessageTypeBot,
		Body:           result.NextQuestion.Question,
	}
	if err := e.appendMessage(conv, &ask); err != nil {
		return nil, err
	}
	return []models.Message{ask}, nil
}

// completeIntro transitions to free chat; the welcome fires exactly once,
// guarded by intro_completed.
func (e *Engine) completeIntro(conv *models.Conversation) ([]models.Message, error) {
	if conv.IntroCompleted {
		conv.Status = models.StatusActiveBot
		return nil, nil
	}

	conv.IntroCompleted = true
	conv.Status = models.StatusActiveBot

	welcome := models.Message{
		ConversationID: conv.ID,
		Type:           models.MessageTypeBot,
		Body:           "Thanks! How can we help you today?",
	}
	if err := e.appendMessage(conv, &welcome); err != nil {
		return nil, err
	}
	return []models.Message{welcome}, nil
}

func (e *Engine) handleActiveBot(conv *models.Conversation, widget *models.WidgetConfig, text string, now time.Time) ([]models.Message, *followUp, error) {
	_, windowSeconds := e.router.RateLimit(widget)
	windowStart := now.Add(-time.Duration(windowSeconds) * time.Second)

	recentCount, err := e.msgRepo.CountVisitorSince(conv.ID, windowStart)
	if err != nil {
		log.Printf("⚠️ Rate limit count failed for %s: %v", conv.ID, err)
		recentCount = 0
	}

	decision := e.router.Route(conv, widget, text, recentCount)

	switch decision.Kind {
	case DecisionSilence:
		if !decision.ThrottleNotice {
			return nil, nil, nil
		}
		// One throttle notice per window
		if conv.ThrottleNotifiedAt != nil && conv.ThrottleNotifiedAt.After(windowStart) {
			return nil, nil, nil
		}
		conv.ThrottleNotifiedAt = &now
		notice := models.Message{
			ConversationID: conv.ID,
			Type:           models.MessageTypeSystem,
			Body:           "You're sending messages a little fast. Give us a moment to catch up.",
		}
		if err := e.appendMessage(conv, &notice); err != nil {
			return nil, nil, err
		}
		return []models.Message{notice}, nil, nil

	case DecisionHandover:
		msgs, intent, err := e.handover.Begin(conv, widget, decision.Reason)
		if err != nil {
			return nil, nil, err
		}
		for i := range msgs {
			if err := e.appendMessage(conv, &msgs[i]); err != nil {
				return nil, nil, err
			}
		}
		var fu *followUp
		if intent != nil {
			fu = &followUp{handover: intent}
		}
		return msgs, fu, nil

	default:
		if decision.NeedsLLM {
			return nil, &followUp{llm: &pendingLLM{userText: text}}, nil
		}
		reply := models.Message{
			ConversationID:  conv.ID,
			Type:            models.MessageTypeBot,
			Body:            decision.Text,
			ConfidenceScore: decision.Confidence,
		}
		if err := e.appendMessage(conv, &reply); err != nil {
			return nil, nil, err
		}
		return []models.Message{reply}, nil, nil
	}
}

// generateReply builds the widget's system prompt from its KB entries and
// calls the LLM with a bounded timeout, honoring the widget's model tuning.
func (e *Engine) generateReply(ctx context.Context, widget *models.WidgetConfig, userText string) (string, error) {
	wc := &llm.WidgetContext{PracticeName: widget.Name}

	entries, err := e.kb.Entries(widget.ID, 20)
	if err != nil {
		log.Printf("⚠️ KB load for prompt failed (widget %s): %v", widget.ID, err)
	} else {
		for _, entry := range entries {
			wc.FAQs = append(wc.FAQs, llm.FAQ{Question: entry.Question, Answer: entry.Answer})
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	opts := llm.Options{
		Model:       widget.LLMModel,
		Temperature: widget.LLMTemperature,
		MaxTokens:   widget.LLMMaxTokens,
	}

	return e.llm.GenerateResponse(callCtx, llm.BuildSystemPrompt(wc), userText, opts)
}

// applyLLMReplyLocked re-validates the conversation after the external call.
// A conversation that closed or moved to a human while the LLM was thinking
// must never receive the late bot reply; it is discarded.
func (e *Engine) applyLLMReplyLocked(conversationID uuid.UUID, reply string, llmErr error) (*models.Conversation, []models.Message, error) {
	conv, err := e.convRepo.GetByID(conversationID)
	if err != nil {
		return nil, nil, err
	}

	if conv.Status != models.StatusActiveBot {
		log.Printf("🗑️ Discarding late LLM reply for conversation %s (status: %s)", conv.ID, conv.Status)
		return conv, nil, nil
	}

	var msg models.Message
	if llmErr != nil {
		log.Printf("❌ %v", &ProviderError{Op: "llm generation", Err: llmErr})
		msg = models.Message{
			ConversationID: conv.ID,
			Type:           models.MessageTypeSystem,
			Body:           "We're having trouble answering right now. Please try again, or ask to talk to a human.",
		}
	} else {
		msg = models.Message{
			ConversationID: conv.ID,
			Type:           models.MessageTypeBot,
			Body:           reply,
		}
	}

	if err := e.appendMessage(conv, &msg); err != nil {
		return conv, nil, err
	}
	return conv, []models.Message{msg}, e.convRepo.Save(conv)
}

// applyHandoverDeliveryLocked settles a WhatsApp handover template send.
// The conversation waited in handover_requested during the send; a failure
// keeps it queued for the portal, and a conversation that closed mid-send
// records the delivery without reviving the handover.
func (e *Engine) applyHandoverDeliveryLocked(conversationID uuid.UUID, intent *WhatsAppIntent, sid string, sendErr error) (*models.Conversation, []models.Message, error) {
	conv, err := e.convRepo.GetByID(conversationID)
	if err != nil {
		return nil, nil, err
	}

	if sendErr != nil {
		msgs := e.handover.FailWhatsApp(conv, intent.RequestID, &ProviderError{Op: "whatsapp handover", Err: sendErr})
		for i := range msgs {
			if err := e.appendMessage(conv, &msgs[i]); err != nil {
				return conv, nil, err
			}
		}
		return conv, msgs, e.convRepo.Save(conv)
	}

	if conv.IsClosed() {
		log.Printf("🗑️ Discarding handover activation for closed conversation %s", conv.ID)
		e.handover.MarkNotified(intent.RequestID, sid)
		return conv, nil, nil
	}

	msgs := e.handover.CompleteWhatsApp(conv, intent.RequestID, sid)
	for i := range msgs {
		if err := e.appendMessage(conv, &msgs[i]); err != nil {
			return conv, nil, err
		}
	}
	return conv, msgs, e.convRepo.Save(conv)
}

// PostAgentMessage handles a portal agent's reply. An agent message during
// active_bot is an implicit handover acceptance.
func (e *Engine) PostAgentMessage(ctx context.Context, conversationID uuid.UUID, text string) (*models.Conversation, []models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, &ValidationError{Field: "message", Reason: "message must not be empty"}
	}
	if len(text) > maxMessageLength {
		return nil, nil, &ValidationError{Field: "message", Reason: "message exceeds maximum length"}
	}

	e.locks.Lock(conversationID)
	defer e.locks.Unlock(conversationID)

	conv, err := e.convRepo.GetByID(conversationID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, nil, &NotFoundError{Resource: "conversation", ID: conversationID.String()}
		}
		return nil, nil, err
	}

	if conv.IsClosed() {
		log.Printf("🗄️ %s on closed conversation %s logged for audit, no state change", EventAgentMessage, conv.ID)
		return conv, nil, nil
	}

	now := e.now()
	conv.LastAgentActivityAt = &now

	agentMsg := models.Message{
		ConversationID: conv.ID,
		Type:           models.MessageTypeAgent,
		Body:           text,
	}
	if err := e.appendMessage(conv, &agentMsg); err != nil {
		return conv, nil, err
	}

	var outbound []models.Message

	if minutes, ok := parseExtensionReply(text); ok && conv.ExtensionRemindersCount >= extensionOfferStage {
		confirm := e.grantExtension(conv, minutes, now, true)
		if err := e.appendMessage(conv, &confirm); err != nil {
			return conv, nil, err
		}
		outbound = append(outbound, confirm)
		return conv, outbound, e.convRepo.Save(conv)
	}

	switch conv.Status {
	case models.StatusActiveBot, models.StatusHandoverRequested:
		msgs := e.handover.AcceptByAgent(conv)
		for i := range msgs {
			if err := e.appendMessage(conv, &msgs[i]); err != nil {
				return conv, nil, err
			}
		}
		outbound = append(outbound, msgs...)
	}

	return conv, outbound, e.convRepo.Save(conv)
}

// ReceiveWhatsAppInbound maps an inbound WhatsApp reply to its conversation
// via the stored message SID correlation, falling back to the sender number.
func (e *Engine) ReceiveWhatsAppInbound(ctx context.Context, messageSID, repliedSID, from, text string) (*models.Conversation, []models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, &ValidationError{Field: "Body", Reason: "message must not be empty"}
	}

	conv, err := e.lookupByWhatsApp(repliedSID, from)
	if err != nil {
		return nil, nil, err
	}

	e.locks.Lock(conv.ID)
	defer e.locks.Unlock(conv.ID)

	conv, err = e.convRepo.GetByID(conv.ID)
	if err != nil {
		return nil, nil, err
	}

	if conv.IsClosed() {
		log.Printf("🗄️ %s on closed conversation %s logged for audit, no state change", EventWhatsAppInbound, conv.ID)
		return conv, nil, nil
	}

	if conv.Status != models.StatusHandoverRequested && conv.Status != models.StatusHandoverActive {
		conflict := &StateConflictError{Status: conv.Status, Event: string(EventWhatsAppInbound)}
		log.Printf("⚠️ %v, dropping event", conflict)
		return conv, nil, nil
	}

	now := e.now()

	msg := models.Message{
		ConversationID:     conv.ID,
		Type:               models.MessageTypeVisitor,
		Body:               text,
		ExternalMessageSID: messageSID,
	}
	if err := e.appendMessage(conv, &msg); err != nil {
		return conv, nil, err
	}

	var outbound []models.Message

	// Extension offers to the handover side are delivered over WhatsApp,
	// so "yes [minutes]" replies arriving here settle the agent counter
	if minutes, ok := parseExtensionReply(text); ok && conv.ExtensionRemindersCount >= extensionOfferStage {
		confirm := e.grantExtension(conv, minutes, now, true)
		if err := e.appendMessage(conv, &confirm); err != nil {
			return conv, nil, err
		}
		outbound = append(outbound, confirm)
	} else {
		conv.LastVisitorActivityAt = &now
	}

	return conv, outbound, e.convRepo.Save(conv)
}

// lookupByWhatsApp resolves the inbound sender to a conversation. Twilio
// only sets OriginalRepliedMessageSid when the agent quotes a message, so a
// plain reply falls back to matching the sender number against the widgets'
// handover numbers, newest active WhatsApp handover first.
func (e *Engine) lookupByWhatsApp(repliedSID, from string) (*models.Conversation, error) {
	if repliedSID != "" {
		conv, err := e.convRepo.GetByWhatsAppSID(repliedSID)
		if err == nil {
			return conv, nil
		}
		if err != repositories.ErrNotFound {
			return nil, err
		}
	}

	if digits := whatsAppDigits(from); digits != "" {
		convs, err := e.convRepo.ListActiveWhatsAppHandovers()
		if err != nil {
			return nil, err
		}
		for i := range convs {
			widget, err := e.widgetRepo.GetByID(convs[i].WidgetID)
			if err != nil {
				continue
			}
			if whatsAppDigits(widget.HandoverWhatsAppNumber) == digits {
				return &convs[i], nil
			}
		}
	}

	return nil, &NotFoundError{Resource: "conversation", ID: "whatsapp sender " + from}
}

func whatsAppDigits(number string) string {
	return strings.TrimPrefix(whatsapp.NormalizeWhatsAppNumber(number), "whatsapp:+")
}

// prepareForward plans the relay of a visitor message to the handover number
// while the conversation is on the WhatsApp channel. The send itself runs
// after the lock is released.
func (e *Engine) prepareForward(conv *models.Conversation, widget *models.WidgetConfig, text string) *pendingForward {
	if conv.HandoverMethod != models.HandoverMethodWhatsApp || widget.HandoverWhatsAppNumber == "" {
		return nil
	}

	sender := conv.VisitorName
	if sender == "" {
		sender = "Visitor"
	}

	return &pendingForward{
		to:   widget.HandoverWhatsAppNumber,
		body: fmt.Sprintf("%s: %s", sender, text),
	}
}

// recordForwardLocked stores the relayed message's SID so the next inbound
// reply can correlate by quoted message.
func (e *Engine) recordForwardLocked(conversationID uuid.UUID, sid string) (*models.Conversation, error) {
	conv, err := e.convRepo.GetByID(conversationID)
	if err != nil {
		return nil, err
	}
	conv.LastWhatsAppMessageSID = sid
	return conv, e.convRepo.Save(conv)
}

func (e *Engine) grantExtension(conv *models.Conversation, minutes int, now time.Time, agentSide bool) models.Message {
	duration := e.extensionDuration
	if minutes > 0 {
		duration = time.Duration(minutes) * time.Minute
	}

	until := now.Add(duration)
	conv.ExtensionGrantedUntil = &until
	if agentSide {
		conv.ExtensionRemindersCount = 0
	} else {
		conv.VisitorExtensionRemindersCount = 0
	}

	log.Printf("⏳ Extension granted for conversation %s until %s", conv.ID, until.Format(time.RFC3339))

	return models.Message{
		ConversationID: conv.ID,
		Type:           models.MessageTypeSystem,
		Body:           fmt.Sprintf("No problem, we'll keep this chat open for another %d minutes.", int(duration.Minutes())),
	}
}

// appendMessage persists a transcript entry and keeps the derived count
func (e *Engine) appendMessage(conv *models.Conversation, msg *models.Message) error {
	if err := e.msgRepo.Append(msg); err != nil {
		return err
	}
	conv.MessageCount++
	return nil
}

// parseExtensionReply recognizes "yes" or "yes <minutes>" extension grants.
// Minutes are clamped to a sane range; zero means "use the default".
func parseExtensionReply(text string) (int, bool) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(fields) == 0 || fields[0] != "yes" {
		return 0, false
	}

	switch len(fields) {
	case 1:
		return 0, true
	case 2:
		minutes, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, false
		}
		if minutes < minExtensionMinutes {
			minutes = minExtensionMinutes
		}
		if minutes > maxExtensionMinutes {
			minutes = maxExtensionMinutes
		}
		return minutes, true
	default:
		return 0, false
	}
}

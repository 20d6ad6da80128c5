package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/wetechforu/marketingby-chat-be/internal/core/kb"
	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
)

// DecisionKind classifies what the engine should do with a visitor message
type DecisionKind int

const (
	DecisionBotReply DecisionKind = iota
	DecisionHandover
	DecisionSilence
)

// Handover trigger reasons
const (
	HandoverReasonEmergency = "emergency"
	HandoverReasonExplicit  = "explicit"
	HandoverReasonImplicit  = "implicit_agent"
	HandoverReasonChoice    = "visitor_choice"
)

// Decision is the router's verdict. The router never mutates conversation
// state; the engine applies the resulting transition.
type Decision struct {
	Kind           DecisionKind
	Text           string
	Reason         string
	NeedsLLM       bool
	Confidence     *float64
	ThrottleNotice bool
}

// humanIntentPhrases trigger an explicit handover when found in a message
var humanIntentPhrases = []string{
	"talk to a human",
	"speak to a human",
	"talk to a person",
	"speak to a person",
	"talk to someone",
	"speak to someone",
	"real person",
	"human agent",
	"live agent",
	"speak to an agent",
	"talk to an agent",
	"customer service rep",
}

// RouterService decides how to answer a visitor message in active_bot
type RouterService struct {
	kb kb.Searcher

	// Fallback limits when the widget config leaves rate limiting unset
	defaultRateLimitMessages int
	defaultRateLimitWindow   int
}

func NewRouterService(searcher kb.Searcher, defaultRateLimitMessages, defaultRateLimitWindowSeconds int) *RouterService {
	return &RouterService{
		kb:                       searcher,
		defaultRateLimitMessages: defaultRateLimitMessages,
		defaultRateLimitWindow:   defaultRateLimitWindowSeconds,
	}
}

// RateLimit returns the effective per-conversation limit for a widget
func (s *RouterService) RateLimit(widget *models.WidgetConfig) (maxMessages, windowSeconds int) {
	maxMessages = widget.RateLimitMessages
	windowSeconds = widget.RateLimitWindowSeconds
	if maxMessages <= 0 {
		maxMessages = s.defaultRateLimitMessages
	}
	if windowSeconds <= 0 {
		windowSeconds = s.defaultRateLimitWindow
	}
	return maxMessages, windowSeconds
}

// Route decides the bot's reaction to a visitor message. recentVisitorCount
// is the number of visitor messages inside the current rate-limit window,
// including this one.
func (s *RouterService) Route(conv *models.Conversation, widget *models.WidgetConfig, text string, recentVisitorCount int64) Decision {
	lowered := strings.ToLower(text)

	// Emergency keywords escalate before anything else
	if widget.AutoDetectEmergency {
		for _, keyword := range widget.EmergencyKeywords {
			kw := strings.ToLower(strings.TrimSpace(keyword))
			if kw != "" && strings.Contains(lowered, kw) {
				return Decision{Kind: DecisionHandover, Reason: HandoverReasonEmergency}
			}
		}
	}

	for _, phrase := range humanIntentPhrases {
		if strings.Contains(lowered, phrase) {
			return Decision{Kind: DecisionHandover, Reason: HandoverReasonExplicit}
		}
	}

	// Reply generation is throttled; handover escalation never is
	maxMessages, _ := s.RateLimit(widget)
	if recentVisitorCount > int64(maxMessages) {
		return Decision{Kind: DecisionSilence, ThrottleNotice: true}
	}

	matches, err := s.kb.Search(widget.ID, text)
	if err != nil {
		log.Printf("⚠️ KB search failed for widget %s: %v", widget.ID, err)
		matches = nil
	}

	if len(matches) > 0 && matches[0].Score >= kb.DirectAnswerThreshold {
		score := matches[0].Score
		return Decision{
			Kind:       DecisionBotReply,
			Text:       matches[0].Entry.Answer,
			Confidence: &score,
		}
	}

	if widget.LLMEnabled {
		return Decision{Kind: DecisionBotReply, NeedsLLM: true}
	}

	if len(matches) > 0 {
		return Decision{Kind: DecisionBotReply, Text: buildSuggestionReply(matches)}
	}

	fallback := widget.FallbackMessage
	if fallback == "" {
		fallback = "I'm not sure about that one. Would you like to talk to a member of our team?"
	}
	return Decision{Kind: DecisionBotReply, Text: fallback}
}

// buildSuggestionReply renders the "did you mean" tier of KB matches
func buildSuggestionReply(matches []kb.Match) string {
	var sb strings.Builder
	sb.WriteString("I might have an answer for you. Did you mean one of these?\n")

	limit := 3
	if len(matches) < limit {
		limit = len(matches)
	}
	for i := 0; i < limit; i++ {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, matches[i].Entry.Question))
	}
	sb.WriteString("Reply with the full question, or ask to talk to a human.")

	return sb.String()
}

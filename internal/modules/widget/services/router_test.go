package services

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wetechforu/marketingby-chat-be/internal/core/kb"
	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
)

func TestRouteEmergencyKeywordEscalates(t *testing.T) {
	widget := testWidget(t, nil)
	widget.EmergencyKeywords = pq.StringArray{"severe bleeding", "chest pain"}
	widget.AutoDetectEmergency = true

	router := NewRouterService(&fakeKB{}, 10, 60)
	conv := &models.Conversation{Status: models.StatusActiveBot}

	decision := router.Route(conv, widget, "I have CHEST PAIN right now", 1)

	assert.Equal(t, DecisionHandover, decision.Kind)
	assert.Equal(t, HandoverReasonEmergency, decision.Reason)
}

func TestRouteEmergencyDetectionCanBeDisabled(t *testing.T) {
	widget := testWidget(t, nil)
	widget.EmergencyKeywords = pq.StringArray{"chest pain"}
	widget.AutoDetectEmergency = false

	router := NewRouterService(&fakeKB{}, 10, 60)
	conv := &models.Conversation{Status: models.StatusActiveBot}

	decision := router.Route(conv, widget, "chest pain", 1)

	assert.Equal(t, DecisionBotReply, decision.Kind)
}

func TestRouteHumanIntentEscalates(t *testing.T) {
	router := NewRouterService(&fakeKB{}, 10, 60)
	conv := &models.Conversation{Status: models.StatusActiveBot}

	decision := router.Route(conv, testWidget(t, nil), "Can I talk to a human please?", 1)

	assert.Equal(t, DecisionHandover, decision.Kind)
	assert.Equal(t, HandoverReasonExplicit, decision.Reason)
}

func TestRouteEscalationIsNeverThrottled(t *testing.T) {
	router := NewRouterService(&fakeKB{}, 2, 60)
	conv := &models.Conversation{Status: models.StatusActiveBot}

	decision := router.Route(conv, testWidget(t, nil), "talk to a human", 50)

	assert.Equal(t, DecisionHandover, decision.Kind)
}

func TestRouteRateLimitSilences(t *testing.T) {
	router := NewRouterService(&fakeKB{}, 2, 60)
	conv := &models.Conversation{Status: models.StatusActiveBot}

	decision := router.Route(conv, testWidget(t, nil), "hello again", 3)

	assert.Equal(t, DecisionSilence, decision.Kind)
	assert.True(t, decision.ThrottleNotice)
}

func TestRouteHighConfidenceKBAnswersDirectly(t *testing.T) {
	searcher := &fakeKB{matches: []kb.Match{
		{Entry: models.KnowledgeBaseEntry{Question: "What are your hours?", Answer: "We're open 9-5 weekdays."}, Score: 0.92},
	}}
	router := NewRouterService(searcher, 10, 60)
	conv := &models.Conversation{Status: models.StatusActiveBot}

	decision := router.Route(conv, testWidget(t, nil), "what are your hours", 1)

	assert.Equal(t, DecisionBotReply, decision.Kind)
	assert.Equal(t, "We're open 9-5 weekdays.", decision.Text)
	require.NotNil(t, decision.Confidence)
	assert.InDelta(t, 0.92, *decision.Confidence, 0.001)
}

func TestRouteDefersToLLMWhenEnabled(t *testing.T) {
	searcher := &fakeKB{matches: []kb.Match{
		{Entry: models.KnowledgeBaseEntry{Question: "Parking?", Answer: "Behind the building."}, Score: 0.6},
	}}
	router := NewRouterService(searcher, 10, 60)
	widget := testWidget(t, nil)
	widget.LLMEnabled = true
	conv := &models.Conversation{Status: models.StatusActiveBot}

	decision := router.Route(conv, widget, "where can I park", 1)

	assert.Equal(t, DecisionBotReply, decision.Kind)
	assert.True(t, decision.NeedsLLM)
	assert.Empty(t, decision.Text)
}

func TestRouteMidConfidenceSuggests(t *testing.T) {
	searcher := &fakeKB{matches: []kb.Match{
		{Entry: models.KnowledgeBaseEntry{Question: "Do you offer teeth whitening?"}, Score: 0.7},
		{Entry: models.KnowledgeBaseEntry{Question: "Do you offer veneers?"}, Score: 0.6},
	}}
	router := NewRouterService(searcher, 10, 60)
	conv := &models.Conversation{Status: models.StatusActiveBot}

	decision := router.Route(conv, testWidget(t, nil), "whitening stuff", 1)

	assert.Equal(t, DecisionBotReply, decision.Kind)
	assert.Contains(t, decision.Text, "Did you mean")
	assert.Contains(t, decision.Text, "Do you offer teeth whitening?")
	assert.Contains(t, decision.Text, "Do you offer veneers?")
}

func TestRouteFallbackWhenNothingMatches(t *testing.T) {
	router := NewRouterService(&fakeKB{}, 10, 60)
	widget := testWidget(t, nil)
	conv := &models.Conversation{Status: models.StatusActiveBot}

	decision := router.Route(conv, widget, "something unrelated", 1)

	assert.Equal(t, DecisionBotReply, decision.Kind)
	assert.Equal(t, widget.FallbackMessage, decision.Text)
}

func TestRateLimitUsesWidgetOverrides(t *testing.T) {
	router := NewRouterService(&fakeKB{}, 10, 60)

	widget := testWidget(t, nil)
	widget.RateLimitMessages = 5
	widget.RateLimitWindowSeconds = 30

	maxMessages, windowSeconds := router.RateLimit(widget)
	assert.Equal(t, 5, maxMessages)
	assert.Equal(t, 30, windowSeconds)

	maxMessages, windowSeconds = router.RateLimit(testWidget(t, nil))
	assert.Equal(t, 10, maxMessages)
	assert.Equal(t, 60, windowSeconds)
}

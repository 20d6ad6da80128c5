package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
)

func TestHandoverChoicePromptWhenBothMethodsEnabled(t *testing.T) {
	widget := testWidget(t, nil)
	widget.EnableHandoverChoice = true
	widget.HandoverWhatsAppNumber = "+15551234567"
	setHandoverOptions(t, widget, true, true)
	env := newTestEnv(t, widget)

	conv, outbound, err := env.engine.PostVisitorMessage(context.Background(), "wk-test", nil, "sess-1", "I want to talk to a human", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusHandoverRequested, conv.Status)
	assert.True(t, conv.HandoverChoicePending)
	require.Len(t, outbound, 1)
	assert.Contains(t, outbound[0].Body, "Reply 1 or 2")
	assert.Zero(t, env.whatsapp.sentCount())
}

func TestHandoverChoiceWhatsAppSendsTemplate(t *testing.T) {
	widget := testWidget(t, nil)
	widget.EnableHandoverChoice = true
	widget.HandoverWhatsAppNumber = "+15551234567"
	widget.WhatsAppHandoverContentSID = "HX123"
	setHandoverOptions(t, widget, true, true)
	env := newTestEnv(t, widget)
	ctx := context.Background()

	conv, _, err := env.engine.PostVisitorMessage(ctx, "wk-test", nil, "sess-1", "talk to a human", "")
	require.NoError(t, err)

	conv, outbound, err := env.engine.PostVisitorMessage(ctx, "wk-test", &conv.ID, "sess-1", "2", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusHandoverActive, conv.Status)
	assert.Equal(t, models.HandoverMethodWhatsApp, conv.HandoverMethod)
	assert.False(t, conv.HandoverChoicePending)
	assert.NotEmpty(t, conv.LastWhatsAppMessageSID)

	require.Equal(t, 1, env.whatsapp.sentCount())
	sent := env.whatsapp.sent[0]
	assert.Equal(t, "+15551234567", sent.To)
	assert.Equal(t, "HX123", sent.ContentSID)
	assert.Equal(t, conv.ID.String(), sent.Variables["2"])

	require.Len(t, outbound, 1)
	assert.Equal(t, conv.LastWhatsAppMessageSID, outbound[0].ExternalMessageSID)

	requests, _ := env.handovers.ListByConversation(conv.ID)
	require.Len(t, requests, 1)
	assert.Equal(t, models.HandoverStatusNotified, env.handovers.statuses[requests[0].ID])
}

func TestHandoverChoiceUnrecognizedReplyReprompts(t *testing.T) {
	widget := testWidget(t, nil)
	widget.EnableHandoverChoice = true
	widget.HandoverWhatsAppNumber = "+15551234567"
	setHandoverOptions(t, widget, true, true)
	env := newTestEnv(t, widget)
	ctx := context.Background()

	conv, _, err := env.engine.PostVisitorMessage(ctx, "wk-test", nil, "sess-1", "talk to a human", "")
	require.NoError(t, err)

	conv, outbound, err := env.engine.PostVisitorMessage(ctx, "wk-test", &conv.ID, "sess-1", "maybe", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusHandoverRequested, conv.Status)
	assert.True(t, conv.HandoverChoicePending)
	require.Len(t, outbound, 1)
	assert.Contains(t, outbound[0].Body, "didn't catch that")
}

func TestHandoverDefaultsToAgentQueue(t *testing.T) {
	env := newTestEnv(t, testWidget(t, nil)) // agent-only options

	conv, outbound, err := env.engine.PostVisitorMessage(context.Background(), "wk-test", nil, "sess-1", "speak to a person", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusHandoverActive, conv.Status)
	assert.Equal(t, models.HandoverMethodAgent, conv.HandoverMethod)
	require.Len(t, outbound, 1)
	assert.Contains(t, outbound[0].Body, "queue")

	requests, _ := env.handovers.ListByConversation(conv.ID)
	require.Len(t, requests, 1)
	assert.Equal(t, HandoverReasonExplicit, requests[0].Reason)
}

func TestHandoverWhatsAppOnlySkipsChoice(t *testing.T) {
	widget := testWidget(t, nil)
	widget.HandoverWhatsAppNumber = "+15551234567"
	setHandoverOptions(t, widget, false, true)
	env := newTestEnv(t, widget)

	conv, _, err := env.engine.PostVisitorMessage(context.Background(), "wk-test", nil, "sess-1", "talk to a human", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusHandoverActive, conv.Status)
	assert.Equal(t, models.HandoverMethodWhatsApp, conv.HandoverMethod)
	assert.Equal(t, 1, env.whatsapp.sentCount())
}

func TestHandoverWhatsAppDeliveryFailureStaysQueued(t *testing.T) {
	widget := testWidget(t, nil)
	widget.HandoverWhatsAppNumber = "+15551234567"
	setHandoverOptions(t, widget, false, true)
	env := newTestEnv(t, widget)
	env.whatsapp.fail = true

	conv, outbound, err := env.engine.PostVisitorMessage(context.Background(), "wk-test", nil, "sess-1", "talk to a human", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusHandoverRequested, conv.Status)
	assert.Empty(t, conv.LastWhatsAppMessageSID)
	require.Len(t, outbound, 1)
	assert.Contains(t, outbound[0].Body, "couldn't reach our team")

	requests, _ := env.handovers.ListByConversation(conv.ID)
	require.Len(t, requests, 1)
	assert.Equal(t, models.HandoverStatusFailed, env.handovers.statuses[requests[0].ID])
	assert.NotEmpty(t, env.handovers.errors[requests[0].ID])
}

func TestHandoverWhatsAppWithoutNumberFails(t *testing.T) {
	widget := testWidget(t, nil)
	setHandoverOptions(t, widget, false, true) // whatsapp enabled but no number configured
	env := newTestEnv(t, widget)

	conv, _, err := env.engine.PostVisitorMessage(context.Background(), "wk-test", nil, "sess-1", "talk to a human", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusHandoverRequested, conv.Status)
	assert.Zero(t, env.whatsapp.sentCount())
}

func TestAcceptByAgentRecordsImplicitHandover(t *testing.T) {
	handovers := newFakeHandoverRepo()
	service := NewHandoverService(handovers, &fakeWhatsApp{})

	conv := &models.Conversation{Status: models.StatusActiveBot}
	msgs := service.AcceptByAgent(conv)

	assert.Equal(t, models.StatusHandoverActive, conv.Status)
	assert.Equal(t, models.HandoverMethodAgent, conv.HandoverMethod)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.MessageTypeSystem, msgs[0].Type)

	require.Len(t, handovers.requests, 1)
	assert.Equal(t, HandoverReasonImplicit, handovers.requests[0].Reason)
	assert.Equal(t, models.HandoverStatusCompleted, handovers.requests[0].Status)
}

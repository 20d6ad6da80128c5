package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
)

func introConv(t *testing.T) *models.Conversation {
	t.Helper()
	return &models.Conversation{Status: models.StatusIntroPending}
}

func TestAdvanceIntroRecordsAnswerAndAsksNext(t *testing.T) {
	widget := testWidget(t, []models.IntroQuestion{
		{ID: "q1", Question: "Your name?", Kind: models.QuestionKindName, Required: true},
		{ID: "q2", Question: "Your email?", Kind: models.QuestionKindEmail, Required: false},
	})
	conv := introConv(t)

	result, err := AdvanceIntro(conv, widget, "Dana")
	require.NoError(t, err)

	assert.False(t, result.Done)
	require.NotNil(t, result.NextQuestion)
	assert.Equal(t, "q2", result.NextQuestion.ID)
	assert.Equal(t, "Dana", conv.VisitorName)
}

func TestAdvanceIntroIdentityKinds(t *testing.T) {
	widget := testWidget(t, []models.IntroQuestion{
		{ID: "q1", Question: "Name?", Kind: models.QuestionKindName, Required: true},
		{ID: "q2", Question: "Email?", Kind: models.QuestionKindEmail, Required: true},
		{ID: "q3", Question: "Phone?", Kind: models.QuestionKindPhone, Required: true},
	})
	conv := introConv(t)

	_, err := AdvanceIntro(conv, widget, "Dana")
	require.NoError(t, err)
	_, err = AdvanceIntro(conv, widget, "dana@example.com")
	require.NoError(t, err)
	result, err := AdvanceIntro(conv, widget, "+1 555 123 4567")
	require.NoError(t, err)

	assert.True(t, result.Done)
	assert.Equal(t, "Dana", conv.VisitorName)
	assert.Equal(t, "dana@example.com", conv.VisitorEmail)
	assert.Equal(t, "+1 555 123 4567", conv.VisitorPhone)
}

func TestAdvanceIntroRequiredQuestionReasked(t *testing.T) {
	widget := testWidget(t, []models.IntroQuestion{
		{ID: "q1", Question: "Your name?", Kind: models.QuestionKindName, Required: true},
	})
	conv := introConv(t)

	result, err := AdvanceIntro(conv, widget, "skip")
	require.NoError(t, err)

	assert.False(t, result.Done)
	require.NotNil(t, result.NextQuestion)
	assert.Equal(t, "q1", result.NextQuestion.ID)

	answers, err := conv.ParsedIntroAnswers()
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestAdvanceIntroOptionalQuestionSkipped(t *testing.T) {
	widget := testWidget(t, []models.IntroQuestion{
		{ID: "q1", Question: "Your email?", Kind: models.QuestionKindEmail, Required: false},
	})
	conv := introConv(t)

	result, err := AdvanceIntro(conv, widget, "SKIP")
	require.NoError(t, err)

	assert.True(t, result.Done)
	assert.Empty(t, conv.VisitorEmail)

	answers, err := conv.ParsedIntroAnswers()
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.True(t, answers[0].Skipped)
}

func TestAdvanceIntroShrunkConfigResolvesToDone(t *testing.T) {
	// Two answers already stored, but the config now has a single question
	widget := testWidget(t, []models.IntroQuestion{
		{ID: "q1", Question: "Your name?", Kind: models.QuestionKindName, Required: true},
	})
	conv := introConv(t)
	require.NoError(t, conv.SetIntroAnswers([]models.IntroAnswer{
		{QuestionID: "q1", Answer: "Dana"},
		{QuestionID: "q2", Answer: "dana@example.com"},
	}))

	result, err := AdvanceIntro(conv, widget, "anything")
	require.NoError(t, err)
	assert.True(t, result.Done)
}

func TestFirstIntroQuestionDisabledFlow(t *testing.T) {
	widget := testWidget(t, []models.IntroQuestion{
		{ID: "q1", Question: "Your name?", Kind: models.QuestionKindName, Required: true},
	})
	widget.IntroFlowEnabled = false

	q, err := FirstIntroQuestion(widget)
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestFirstIntroQuestionEmptyList(t *testing.T) {
	widget := testWidget(t, nil)
	widget.IntroFlowEnabled = true

	q, err := FirstIntroQuestion(widget)
	require.NoError(t, err)
	assert.Nil(t, q)
}

package services

import (
	"strings"

	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
)

// IntroResult is the outcome of advancing the intro flow by one answer
type IntroResult struct {
	NextQuestion *models.IntroQuestion
	Done         bool
}

// AdvanceIntro records one visitor answer against the widget's configured
// intro questions. Questions are asked strictly in order; required questions
// are re-asked on an empty answer, optional ones accept the literal "skip".
// Progress is the stored answer count against the current config list, so a
// shrunk list mid-conversation resolves to Done instead of going out of range.
func AdvanceIntro(conv *models.Conversation, widget *models.WidgetConfig, answerText string) (*IntroResult, error) {
	questions, err := widget.ParsedIntroQuestions()
	if err != nil {
		return nil, &ValidationError{Field: "intro_questions", Reason: "widget intro questions are malformed"}
	}

	answers, err := conv.ParsedIntroAnswers()
	if err != nil {
		return nil, &ValidationError{Field: "intro_answers", Reason: "stored intro answers are malformed"}
	}

	idx := len(answers)
	if idx >= len(questions) {
		return &IntroResult{Done: true}, nil
	}

	current := questions[idx]
	trimmed := strings.TrimSpace(answerText)
	skipped := false

	if trimmed == "" || strings.EqualFold(trimmed, "skip") {
		if current.Required {
			// Re-ask the same question, do not skip
			return &IntroResult{NextQuestion: &current}, nil
		}
		skipped = true
		trimmed = ""
	}

	answers = append(answers, models.IntroAnswer{
		QuestionID: current.ID,
		Question:   current.Question,
		Answer:     trimmed,
		Skipped:    skipped,
	})
	if err := conv.SetIntroAnswers(answers); err != nil {
		return nil, err
	}

	if !skipped {
		applyIdentityAnswer(conv, current.Kind, trimmed)
	}

	if len(answers) >= len(questions) {
		return &IntroResult{Done: true}, nil
	}

	next := questions[len(answers)]
	return &IntroResult{NextQuestion: &next}, nil
}

// FirstIntroQuestion returns the opening question of the widget's intro flow,
// or nil when the flow is disabled or empty.
func FirstIntroQuestion(widget *models.WidgetConfig) (*models.IntroQuestion, error) {
	if !widget.IntroFlowEnabled {
		return nil, nil
	}
	questions, err := widget.ParsedIntroQuestions()
	if err != nil {
		return nil, &ValidationError{Field: "intro_questions", Reason: "widget intro questions are malformed"}
	}
	if len(questions) == 0 {
		return nil, nil
	}
	q := questions[0]
	return &q, nil
}

func applyIdentityAnswer(conv *models.Conversation, kind, answer string) {
	switch kind {
	case models.QuestionKindName:
		conv.VisitorName = answer
	case models.QuestionKindEmail:
		conv.VisitorEmail = answer
	case models.QuestionKindPhone:
		conv.VisitorPhone = answer
	}
}

package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreExactQuestionMatch(t *testing.T) {
	score := Score("what are your opening hours", "What are your opening hours?", nil)
	assert.Equal(t, 1.0, score)
}

func TestScorePartialOverlap(t *testing.T) {
	// 2 of 4 question words present in the message
	score := Score("tell me your hours", "what are your hours", nil)
	assert.InDelta(t, 0.5, score, 0.001)
}

func TestScoreNoOverlap(t *testing.T) {
	score := Score("do you sell bicycles", "what are your opening hours", nil)
	assert.Zero(t, score)
}

func TestScoreEmptyMessage(t *testing.T) {
	score := Score("   ", "what are your opening hours", []string{"hours"})
	assert.Zero(t, score)
}

func TestScoreKeywordBoost(t *testing.T) {
	base := Score("when do you open", "what are your opening hours", nil)
	boosted := Score("when do you open", "what are your opening hours", []string{"open"})
	assert.InDelta(t, base+keywordBoost, boosted, 0.001)
}

func TestScoreKeywordMatchIsSubstring(t *testing.T) {
	score := Score("I need an appointment today", "how do I book", []string{"appointment"})
	assert.InDelta(t, keywordBoost, score, 0.001)
}

func TestScoreClampedToOne(t *testing.T) {
	score := Score("what are your opening hours", "what are your opening hours",
		[]string{"opening", "hours", "what"})
	assert.Equal(t, 1.0, score)
}

func TestScoreIgnoresPunctuationAndCase(t *testing.T) {
	score := Score("WHAT ARE YOUR HOURS?!", "what, are... your hours", nil)
	assert.Equal(t, 1.0, score)
}

func TestDirectTierAboveSuggestionTier(t *testing.T) {
	assert.Greater(t, DirectAnswerThreshold, SuggestionThreshold)
}

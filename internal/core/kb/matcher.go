package kb

import (
	"strings"
	"unicode"
)

// Confidence tiers for knowledge base matches. Scores at or above
// DirectAnswerThreshold answer directly; scores at or above
// SuggestionThreshold are offered as "did you mean" suggestions.
const (
	DirectAnswerThreshold = 0.85
	SuggestionThreshold   = 0.5
	keywordBoost          = 0.1
)

// Score rates how well a visitor message matches a KB question. The base
// score is word overlap against the question; each matched keyword adds a
// boost. Result is clamped to [0, 1].
func Score(message, question string, keywords []string) float64 {
	msgWords := tokenize(message)
	if len(msgWords) == 0 {
		return 0
	}

	msgSet := make(map[string]bool, len(msgWords))
	for _, w := range msgWords {
		msgSet[w] = true
	}

	qWords := tokenize(question)
	score := 0.0
	if len(qWords) > 0 {
		matched := 0
		for _, w := range qWords {
			if msgSet[w] {
				matched++
			}
		}
		score = float64(matched) / float64(len(qWords))
	}

	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(strings.ToLower(message), kw) {
			score += keywordBoost
		}
	}

	if score > 1 {
		score = 1
	}
	return score
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

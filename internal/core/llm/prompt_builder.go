package llm

import (
	"fmt"
	"strings"
)

// WidgetContext carries the widget-side knowledge fed into the system prompt
type WidgetContext struct {
	PracticeName string
	FAQs         []FAQ
}

type FAQ struct {
	Question string
	Answer   string
}

// BuildSystemPrompt builds the assistant system prompt from the widget's
// knowledge base entries.
func BuildSystemPrompt(wc *WidgetContext) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are a virtual assistant for %s, a healthcare practice.\n\n", wc.PracticeName))

	if len(wc.FAQs) > 0 {
		sb.WriteString("=== FREQUENTLY ASKED QUESTIONS ===\n")
		for _, faq := range wc.FAQs {
			sb.WriteString(fmt.Sprintf("Q: %s\nA: %s\n\n", faq.Question, faq.Answer))
		}
	}

	sb.WriteString("Instructions:\n")
	sb.WriteString("- Answer in a warm, professional tone\n")
	sb.WriteString("- Use the information above to answer questions\n")
	sb.WriteString("- If you do not know, say so honestly and offer to connect the visitor with the team\n")
	sb.WriteString("- Never give medical advice or a diagnosis; suggest booking an appointment instead\n")
	sb.WriteString("- Never invent pricing, availability, or clinical information\n")

	return sb.String()
}

package app

import (
	"fmt"
	"strings"

	"github.com/jsamuelsen/tarot-service/internal/domain"
)

const pastReadingsHeader = "\n\nHere are some examples of past readings that resonated well:\n"

// PromptBuilder renders interpretation contexts into prompt text. It holds
// no state and identical inputs always produce identical prompts.
type PromptBuilder struct{}

// BuildInterpretation renders the main reading prompt.
func (PromptBuilder) BuildInterpretation(ic *domain.InterpretationContext, question string, tone domain.Tone) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an experienced tarot reader. Provide a thoughtful, insightful interpretation for this %s reading.\n\n",
		ic.Spread.Name)

	if question != "" {
		fmt.Fprintf(&b, "Question: %s\n", question)
	}

	fmt.Fprintf(&b, "Spread: %s\n", ic.Spread.Name)

	if ic.Spread.Description != "" {
		fmt.Fprintf(&b, "Spread Description: %s\n", ic.Spread.Description)
	}

	b.WriteString("\nCards drawn:\n")

	for i, c := range ic.Cards {
		if i > 0 {
			b.WriteString("\n")
		}

		writeCard(&b, c)
	}

	b.WriteString(ic.PastReadingsContext)

	fmt.Fprintf(&b, `

Structure the interpretation as follows:
1. Key themes: the threads that connect the cards
2. Position by position: what each card means in its position, with a confidence rating (high, medium, or low)
3. Overall guidance: a cohesive narrative that addresses the question if one was asked
4. Practical steps: concrete actions the querent can take

Keep the interpretation between 3-5 paragraphs. Tone: %s.`, tone.Descriptor())

	return b.String()
}

// BuildRefineQuestion asks for a clearer, open-ended version of a question.
func (PromptBuilder) BuildRefineQuestion(question string) string {
	return fmt.Sprintf(`You help people phrase questions for a tarot reading.
Rewrite the question below so it is open-ended, focused on what the querent can understand or influence, and free of yes/no framing.
Reply with the rewritten question only, without quotes or commentary.

Question: %s`, question)
}

// BuildFollowUp asks a follow-up question about an existing reading.
func (PromptBuilder) BuildFollowUp(spreadName, interpretation string, cards []domain.CardContext, followUp string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an experienced tarot reader continuing a %s reading.\n\nCards drawn:\n", spreadName)

	for i, c := range cards {
		if i > 0 {
			b.WriteString("\n")
		}

		writeCard(&b, c)
	}

	fmt.Fprintf(&b, "\nOriginal interpretation:\n%s\n\nFollow-up question: %s\n\n", interpretation, followUp)
	b.WriteString("Answer the follow-up in 1-2 paragraphs, grounded in the cards above and consistent with the original interpretation.")

	return b.String()
}

// BuildExplainCard asks for a deeper look at one card of a reading.
func (PromptBuilder) BuildExplainCard(spreadName, question string, card domain.CardContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an experienced tarot reader. Explain one card from a %s reading in depth.\n\n", spreadName)

	if question != "" {
		fmt.Fprintf(&b, "Question: %s\n\n", question)
	}

	writeCard(&b, card)
	b.WriteString("\nExplain why this card matters in this position, how its orientation shapes the message, and one reflection prompt for the querent. Keep it to 2 paragraphs.")

	return b.String()
}

func writeCard(b *strings.Builder, c domain.CardContext) {
	fmt.Fprintf(b, "Position %d: %s (%s)\n", c.Position, c.PositionName, c.PositionMeaning)

	b.WriteString("Card: ")
	b.WriteString(c.CardName)

	if c.Reversed {
		b.WriteString(" (Reversed)")
	}

	fmt.Fprintf(b, "\nMeaning: %s\nKeywords: %s\n", c.Meaning, strings.Join(c.Keywords, ", "))
}

// formatPastExamples renders few-shot examples, or "" when there are none.
func formatPastExamples(examples []domain.PastExample) string {
	if len(examples) == 0 {
		return ""
	}

	blocks := make([]string, len(examples))
	for i, ex := range examples {
		blocks[i] = fmt.Sprintf("Q: %s\nInterpretation: %s", ex.Question, ex.Interpretation)
	}

	return pastReadingsHeader + strings.Join(blocks, "\n\n")
}

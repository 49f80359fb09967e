package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsamuelsen/tarot-service/internal/domain"
)

func promptContext() *domain.InterpretationContext {
	return &domain.InterpretationContext{
		Spread: *threeCardSpread(),
		Cards: []domain.CardContext{
			{
				Position: 1, PositionName: "Past", PositionMeaning: "What led here",
				CardID: 1, CardName: "The Fool", Reversed: true,
				Meaning: "Recklessness", Keywords: []string{"recklessness", "folly"},
			},
			{
				Position: 2, PositionName: "Present", PositionMeaning: "Where you stand",
				CardID: 2, CardName: "The Magician",
				Meaning: "Manifestation", Keywords: []string{},
			},
		},
	}
}

func TestPromptBuilder_BuildInterpretation(t *testing.T) {
	var pb PromptBuilder

	prompt := pb.BuildInterpretation(promptContext(), "What should I focus on?", domain.ToneDirect)

	for _, want := range []string{
		"interpretation for this Past, Present, Future reading.\n\n",
		"Question: What should I focus on?\n",
		"Spread: Past, Present, Future\n",
		"Spread Description: A simple three card spread\n",
		"Position 1: Past (What led here)\nCard: The Fool (Reversed)\nMeaning: Recklessness\nKeywords: recklessness, folly\n",
		"Position 2: Present (Where you stand)\nCard: The Magician\nMeaning: Manifestation\nKeywords: \n",
		"confidence rating (high, medium, or low)",
		"Tone: Direct & Practical.",
	} {
		assert.Contains(t, prompt, want)
	}

	assert.Less(t, strings.Index(prompt, "Position 1:"), strings.Index(prompt, "Position 2:"))
}

func TestPromptBuilder_BuildInterpretation_OmitsEmptySections(t *testing.T) {
	var pb PromptBuilder

	ic := promptContext()
	ic.Spread.Description = ""

	prompt := pb.BuildInterpretation(ic, "", domain.ToneWarm)

	assert.NotContains(t, prompt, "Question:")
	assert.NotContains(t, prompt, "Spread Description:")
	assert.NotContains(t, prompt, "examples of past readings")
	assert.Contains(t, prompt, "Tone: Warm & Empowering.")
}

func TestPromptBuilder_BuildInterpretation_IncludesPastReadings(t *testing.T) {
	var pb PromptBuilder

	ic := promptContext()
	ic.PastReadingsContext = formatPastExamples([]domain.PastExample{
		{Question: "Is change coming?", Interpretation: "Yes, slowly."},
	})

	prompt := pb.BuildInterpretation(ic, "", domain.ToneMystical)

	assert.Contains(t, prompt, "examples of past readings that resonated well:\nQ: Is change coming?\nInterpretation: Yes, slowly.")
}

func TestPromptBuilder_Deterministic(t *testing.T) {
	var pb PromptBuilder

	for _, tone := range []domain.Tone{domain.ToneWarm, domain.ToneDirect, domain.ToneMystical, domain.ToneAnalytical} {
		t.Run(string(tone), func(t *testing.T) {
			assert.Equal(t,
				pb.BuildInterpretation(promptContext(), "q", tone),
				pb.BuildInterpretation(promptContext(), "q", tone))
		})
	}
}

func TestPromptBuilder_FollowUpAndExplain(t *testing.T) {
	var pb PromptBuilder

	ic := promptContext()

	followUp := pb.BuildFollowUp(ic.Spread.Name, "The past weighs on you.", ic.Cards, "What about work?")
	assert.Contains(t, followUp, "continuing a Past, Present, Future reading")
	assert.Contains(t, followUp, "Original interpretation:\nThe past weighs on you.")
	assert.Contains(t, followUp, "Follow-up question: What about work?")

	explain := pb.BuildExplainCard(ic.Spread.Name, "", ic.Cards[0])
	assert.Contains(t, explain, "Card: The Fool (Reversed)")
	assert.NotContains(t, explain, "Question:")

	refine := pb.BuildRefineQuestion("will I get the job")
	assert.True(t, strings.HasSuffix(refine, "Question: will I get the job"))
}

func TestFormatPastExamples_Empty(t *testing.T) {
	assert.Empty(t, formatPastExamples(nil))
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	reqctx "github.com/jsamuelsen/tarot-service/internal/app/context"
	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// InterpretationService turns draws into generated interpretations.
type InterpretationService struct {
	assembler *ContextAssembler
	prompts   PromptBuilder
	generator ports.Generator
	readings  *ReadingService
	executor  *Executor
	logger    *slog.Logger
}

// InterpretationServiceConfig contains the dependencies of InterpretationService.
type InterpretationServiceConfig struct {
	Assembler *ContextAssembler
	Generator ports.Generator
	Readings  *ReadingService
	Logger    *slog.Logger
}

// NewInterpretationService creates an interpretation service.
func NewInterpretationService(cfg InterpretationServiceConfig) *InterpretationService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &InterpretationService{
		assembler: cfg.Assembler,
		generator: cfg.Generator,
		readings:  cfg.Readings,
		executor:  NewExecutor(logger),
		logger:    logger.With(slog.String("component", "app.InterpretationService")),
	}
}

// InterpretationResult is the outcome of a blocking interpretation.
type InterpretationResult struct {
	Reading        *domain.Reading
	Interpretation string
}

// ValidateRequest checks the shape of a request without touching storage.
func ValidateRequest(req *domain.InterpretationRequest) error {
	if req.SpreadTypeID <= 0 || req.DeckID <= 0 || len(req.CardsDrawn) == 0 {
		return domain.NewValidationError("", "Missing required fields")
	}

	for i, dc := range req.CardsDrawn {
		if dc.CardID <= 0 {
			return domain.NewValidationErrorWithValue(fmt.Sprintf("cardsDrawn[%d].cardId", i), "must be positive", dc.CardID)
		}
	}

	tone, err := domain.ParseTone(string(req.Tone))
	if err != nil {
		return err
	}

	req.Tone = tone
	req.Question = strings.TrimSpace(req.Question)

	return nil
}

// Preview assembles the context that would be sent for a draw.
func (s *InterpretationService) Preview(ctx context.Context, req domain.InterpretationRequest) (*domain.InterpretationContext, error) {
	if err := ValidateRequest(&req); err != nil {
		return nil, err
	}

	return s.assembler.Assemble(ctx, req.SpreadTypeID, req.DeckID, req.CardsDrawn)
}

type generated struct {
	text string
}

type verifiedReading struct {
	reading domain.Reading
	saved   *domain.Reading
}

// Interpret generates a full interpretation, records the reading, and
// returns both. Nothing is recorded if generation fails.
func (s *InterpretationService) Interpret(ctx context.Context, req domain.InterpretationRequest) (*InterpretationResult, error) {
	invalid := ValidateRequest(&req)

	return Execute(ctx, s.executor, Operation[domain.InterpretationRequest, generated, *verifiedReading, *InterpretationResult]{
		Name: "interpret",
		Validate: func(context.Context, domain.InterpretationRequest) error {
			return invalid
		},
		Perform: func(ctx context.Context, in domain.InterpretationRequest) (generated, error) {
			prompt, err := s.buildPrompt(ctx, in)
			if err != nil {
				return generated{}, err
			}

			text, err := s.generator.Generate(ctx, prompt)
			if err != nil {
				return generated{}, err
			}

			return generated{text: text}, nil
		},
		Verify: func(_ context.Context, in domain.InterpretationRequest, g generated) (*verifiedReading, error) {
			if strings.TrimSpace(g.text) == "" {
				return nil, domain.NewUpstreamError("generator", 0, "empty interpretation")
			}

			return &verifiedReading{reading: readingFrom(in, g.text)}, nil
		},
		Archive: func(ctx context.Context, _ domain.InterpretationRequest, v *verifiedReading) error {
			saved, err := s.readings.Record(ctx, v.reading)
			if err != nil {
				return err
			}

			v.saved = saved

			return nil
		},
		Respond: func(_ context.Context, _ domain.InterpretationRequest, v *verifiedReading) (*InterpretationResult, error) {
			return &InterpretationResult{Reading: v.saved, Interpretation: v.saved.Interpretation}, nil
		},
	}, req)
}

func (s *InterpretationService) buildPrompt(ctx context.Context, req domain.InterpretationRequest) (string, error) {
	ic, err := s.assembler.Assemble(ctx, req.SpreadTypeID, req.DeckID, req.CardsDrawn)
	if err != nil {
		return "", err
	}

	logging.FromContext(ctx).DebugContext(ctx, "interpretation context assembled",
		slog.String("spread", ic.Spread.Name),
		slog.Int("cards", len(ic.Cards)),
		slog.Int("past_readings", ic.PastReadingsCount),
	)

	return s.prompts.BuildInterpretation(ic, req.Question, req.Tone), nil
}

func readingFrom(req domain.InterpretationRequest, text string) domain.Reading {
	return domain.Reading{
		UserID:         req.UserID,
		SpreadTypeID:   req.SpreadTypeID,
		DeckID:         req.DeckID,
		Question:       req.Question,
		CardsDrawn:     req.CardsDrawn,
		Interpretation: text,
	}
}

// RefineQuestion asks the generator for a clearer phrasing of question.
func (s *InterpretationService) RefineQuestion(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.NewValidationError("question", "Question is required")
	}

	refined, err := s.generator.Generate(ctx, s.prompts.BuildRefineQuestion(question))
	if err != nil {
		return "", fmt.Errorf("refining question: %w", err)
	}

	return strings.Trim(strings.TrimSpace(refined), `"`), nil
}

// FollowUp answers a further question about a recorded reading.
func (s *InterpretationService) FollowUp(ctx context.Context, readingID int64, question string) (string, error) {
	question = strings.TrimSpace(question)
	if readingID <= 0 || question == "" {
		return "", domain.NewValidationError("", "Reading ID and follow-up question are required")
	}

	reading, ic, err := s.readingContext(ctx, readingID)
	if err != nil {
		return "", err
	}

	answer, err := s.generator.Generate(ctx,
		s.prompts.BuildFollowUp(ic.Spread.Name, reading.Interpretation, ic.Cards, question))
	if err != nil {
		return "", fmt.Errorf("answering follow-up: %w", err)
	}

	return answer, nil
}

// ExplainCard explains the card at position of a recorded reading.
func (s *InterpretationService) ExplainCard(
	ctx context.Context,
	readingID int64,
	position int,
) (string, *domain.CardContext, error) {
	if readingID <= 0 {
		return "", nil, domain.NewValidationError("", "Reading ID and card position are required")
	}

	reading, ic, err := s.readingContext(ctx, readingID)
	if err != nil {
		return "", nil, err
	}

	var card *domain.CardContext

	for i := range ic.Cards {
		if ic.Cards[i].Position == position {
			card = &ic.Cards[i]

			break
		}
	}

	if card == nil {
		return "", nil, domain.NewNotFoundError("card at position", fmt.Sprintf("%d", position))
	}

	explanation, err := s.generator.Generate(ctx, s.prompts.BuildExplainCard(ic.Spread.Name, reading.Question, *card))
	if err != nil {
		return "", nil, fmt.Errorf("explaining card: %w", err)
	}

	return explanation, card, nil
}

func (s *InterpretationService) readingContext(
	ctx context.Context,
	readingID int64,
) (*domain.Reading, *domain.InterpretationContext, error) {
	ctx = logging.With(ctx, slog.Int64("reading_id", readingID))

	reading, err := reqctx.Fetch(ctx, fmt.Sprintf("reading:%d", readingID),
		func(ctx context.Context) (*domain.Reading, error) {
			return s.readings.Get(ctx, readingID)
		})
	if err != nil {
		return nil, nil, err
	}

	ic, err := s.assembler.Assemble(ctx, reading.SpreadTypeID, reading.DeckID, reading.CardsDrawn)
	if err != nil {
		return nil, nil, err
	}

	return reading, ic, nil
}

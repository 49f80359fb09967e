package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	reqctx "github.com/jsamuelsen/tarot-service/internal/app/context"
	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// Few-shot defaults, overridable through feature flags.
const (
	DefaultFewShotLimit     = 3
	DefaultFewShotMinRating = 4
)

// ContextAssembler resolves a draw into the per-position context a prompt needs.
type ContextAssembler struct {
	cards    ports.CardRepository
	spreads  ports.SpreadRepository
	decks    ports.DeckRepository
	examples ports.PastExampleProvider
	flags    ports.FeatureFlags
	logger   *slog.Logger
}

// ContextAssemblerConfig contains the dependencies of ContextAssembler.
// Examples and Flags are optional.
type ContextAssemblerConfig struct {
	Cards    ports.CardRepository
	Spreads  ports.SpreadRepository
	Decks    ports.DeckRepository
	Examples ports.PastExampleProvider
	Flags    ports.FeatureFlags
	Logger   *slog.Logger
}

// NewContextAssembler creates a context assembler.
func NewContextAssembler(cfg ContextAssemblerConfig) *ContextAssembler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ContextAssembler{
		cards:    cfg.Cards,
		spreads:  cfg.Spreads,
		decks:    cfg.Decks,
		examples: cfg.Examples,
		flags:    cfg.Flags,
		logger:   logger.With(slog.String("component", "app.ContextAssembler")),
	}
}

// Spread returns the spread, reusing a lookup already made in this request.
func (a *ContextAssembler) Spread(ctx context.Context, id int64) (*domain.SpreadType, error) {
	return reqctx.Fetch(ctx, fmt.Sprintf("spread:%d", id), func(ctx context.Context) (*domain.SpreadType, error) {
		return a.spreads.Get(ctx, id)
	})
}

// Deck returns the deck, reusing a lookup already made in this request.
func (a *ContextAssembler) Deck(ctx context.Context, id int64) (*domain.Deck, error) {
	return reqctx.Fetch(ctx, fmt.Sprintf("deck:%d", id), func(ctx context.Context) (*domain.Deck, error) {
		return a.decks.Get(ctx, id)
	})
}

// Assemble loads the spread, the deck, the drawn cards, and few-shot
// examples concurrently, then resolves one CardContext per drawn card in
// draw order. Several cards may share a position; each gets its own entry.
//
// It fails with domain.ErrNotFound when the spread, the deck or a card is
// unknown and with domain.ErrInvalidPosition when a position is outside the
// spread.
func (a *ContextAssembler) Assemble(
	ctx context.Context,
	spreadTypeID, deckID int64,
	drawn []domain.DrawnCard,
) (*domain.InterpretationContext, error) {
	ids := make([]int64, len(drawn))
	for i, dc := range drawn {
		ids[i] = dc.CardID
	}

	var (
		spread   *domain.SpreadType
		cards    map[int64]domain.CardDetail
		examples []domain.PastExample
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		spread, err = a.Spread(gctx, spreadTypeID)
		return err
	})
	g.Go(func() error {
		_, err := a.Deck(gctx, deckID)
		return err
	})
	g.Go(func() (err error) {
		cards, err = a.cards.GetMany(gctx, ids, deckID)
		return err
	})
	// Sampling never fails the draw; see sampleExamples.
	g.Go(func() error {
		examples = a.sampleExamples(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assembling context: %w", err)
	}

	entries := make([]domain.CardContext, 0, len(drawn))

	for _, dc := range drawn {
		card, ok := cards[dc.CardID]
		if !ok {
			return nil, domain.NewNotFoundError("card", fmt.Sprintf("%d", dc.CardID))
		}

		pos, err := spread.Position(dc.Position)
		if err != nil {
			return nil, err
		}

		entry := domain.CardContext{
			Position:        dc.Position,
			PositionName:    pos.Name,
			PositionMeaning: pos.Meaning,
			CardID:          card.ID,
			CardName:        card.Name,
			Reversed:        dc.Reversed,
			Keywords:        []string{},
		}

		if card.Meaning != nil {
			meaning, keywords := card.Meaning.ForOrientation(dc.Reversed)
			entry.Meaning = meaning

			if keywords != nil {
				entry.Keywords = keywords
			}
		}

		entries = append(entries, entry)
	}

	return &domain.InterpretationContext{
		Spread:              *spread,
		Cards:               entries,
		PastReadingsContext: formatPastExamples(examples),
		PastReadingsCount:   len(examples),
	}, nil
}

// sampleExamples is best effort: a failing provider yields no examples.
func (a *ContextAssembler) sampleExamples(ctx context.Context) []domain.PastExample {
	if a.examples == nil {
		return nil
	}

	limit, minRating := DefaultFewShotLimit, DefaultFewShotMinRating

	if a.flags != nil {
		if !a.flags.IsEnabled(ctx, ports.FlagFewShotExamples, true) {
			return nil
		}

		limit = a.flags.GetInt(ctx, ports.FlagFewShotLimit, limit)
		minRating = a.flags.GetInt(ctx, ports.FlagFewShotMinRating, minRating)
	}

	examples, err := a.examples.Sample(ctx, limit, minRating)
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "past reading sample failed; continuing without examples",
			slog.Any("error", err))

		return nil
	}

	return examples
}

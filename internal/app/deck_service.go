package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// DeckService manages decks and their card meanings.
type DeckService struct {
	decks  ports.DeckRepository
	logger *slog.Logger
}

// DeckServiceConfig contains the dependencies of DeckService.
type DeckServiceConfig struct {
	Decks  ports.DeckRepository
	Logger *slog.Logger
}

// NewDeckService creates a deck service.
func NewDeckService(cfg DeckServiceConfig) *DeckService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckService{
		decks:  cfg.Decks,
		logger: logger.With(slog.String("component", "app.DeckService")),
	}
}

// List returns every deck.
func (s *DeckService) List(ctx context.Context) ([]domain.Deck, error) {
	decks, err := s.decks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}

	return decks, nil
}

// Get returns one deck.
func (s *DeckService) Get(ctx context.Context, id int64) (*domain.Deck, error) {
	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting deck: %w", err)
	}

	return deck, nil
}

// Create validates and stores a new deck.
func (s *DeckService) Create(ctx context.Context, deck domain.Deck) (*domain.Deck, error) {
	deck.Name = strings.TrimSpace(deck.Name)
	if err := deck.Validate(); err != nil {
		return nil, err
	}

	created, err := s.decks.Create(ctx, deck)
	if err != nil {
		return nil, fmt.Errorf("creating deck: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "deck created",
		slog.Int64("deck_id", created.ID),
		slog.String("deck_name", created.Name),
	)

	return created, nil
}

// Update validates and replaces a deck's fields.
func (s *DeckService) Update(ctx context.Context, deck domain.Deck) (*domain.Deck, error) {
	deck.Name = strings.TrimSpace(deck.Name)
	if err := deck.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.decks.Update(ctx, deck)
	if err != nil {
		return nil, fmt.Errorf("updating deck: %w", err)
	}

	return updated, nil
}

// Delete removes a deck and its meanings, returning the deleted deck.
func (s *DeckService) Delete(ctx context.Context, id int64) (*domain.Deck, error) {
	deleted, err := s.decks.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("deleting deck: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "deck deleted", slog.Int64("deck_id", id))

	return deleted, nil
}

// ListCardMeanings returns the meanings stored for a deck.
func (s *DeckService) ListCardMeanings(ctx context.Context, deckID int64) ([]domain.DeckCardMeaning, error) {
	meanings, err := s.decks.ListCardMeanings(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("listing card meanings: %w", err)
	}

	return meanings, nil
}

// BulkUpsertCardMeanings validates every element before touching storage,
// then writes the batch in one transaction. One bad element rejects the batch.
func (s *DeckService) BulkUpsertCardMeanings(
	ctx context.Context,
	deckID int64,
	meanings []domain.CardMeaning,
) ([]domain.CardMeaning, error) {
	if len(meanings) == 0 {
		return nil, domain.NewValidationError("cardMeanings", "must be a non-empty array")
	}

	seen := make(map[int64]struct{}, len(meanings))

	for i, m := range meanings {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("cardMeanings[%d]: %w", i, err)
		}

		if _, dup := seen[m.CardID]; dup {
			return nil, domain.NewValidationErrorWithValue(
				fmt.Sprintf("cardMeanings[%d].cardId", i), "appears more than once", m.CardID)
		}

		seen[m.CardID] = struct{}{}
	}

	saved, err := s.decks.BulkUpsertCardMeanings(ctx, deckID, meanings)
	if err != nil {
		return nil, fmt.Errorf("upserting card meanings: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "card meanings upserted",
		slog.Int64("deck_id", deckID),
		slog.Int("count", len(saved)),
	)

	return saved, nil
}

// UpdateCardMeaning replaces one existing meaning.
func (s *DeckService) UpdateCardMeaning(ctx context.Context, m domain.CardMeaning) (*domain.CardMeaning, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.decks.UpdateCardMeaning(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("updating card meaning: %w", err)
	}

	return updated, nil
}

// DeleteCardMeaning removes one meaning.
func (s *DeckService) DeleteCardMeaning(ctx context.Context, deckID, cardID int64) error {
	if err := s.decks.DeleteCardMeaning(ctx, deckID, cardID); err != nil {
		return fmt.Errorf("deleting card meaning: %w", err)
	}

	return nil
}

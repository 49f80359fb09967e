// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never rows or provider DTOs
//   - Error returns use domain error types (ErrNotFound, ErrConflict, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/jsamuelsen/tarot-service/internal/domain"
)

// CardRepository reads the immutable card catalog.
type CardRepository interface {
	// List returns all cards ordered by card type, suit, and number.
	// When deckID is non-zero each card is joined with that deck's meaning.
	List(ctx context.Context, deckID int64) ([]domain.CardDetail, error)

	// Get returns one card. Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id, deckID int64) (*domain.CardDetail, error)

	// GetMany returns the requested cards keyed by id, joined with their
	// meaning in deckID. Missing ids are simply absent from the map.
	GetMany(ctx context.Context, ids []int64, deckID int64) (map[int64]domain.CardDetail, error)
}

// DeckRepository persists decks and their card meanings.
type DeckRepository interface {
	List(ctx context.Context) ([]domain.Deck, error)

	// Get returns domain.ErrNotFound if the deck does not exist.
	Get(ctx context.Context, id int64) (*domain.Deck, error)

	// Create returns domain.ErrConflict when the name is taken.
	Create(ctx context.Context, deck domain.Deck) (*domain.Deck, error)

	// Update returns domain.ErrNotFound or domain.ErrConflict.
	Update(ctx context.Context, deck domain.Deck) (*domain.Deck, error)

	// Delete removes the deck and, by cascade, its meanings.
	Delete(ctx context.Context, id int64) (*domain.Deck, error)

	ListCardMeanings(ctx context.Context, deckID int64) ([]domain.DeckCardMeaning, error)

	// BulkUpsertCardMeanings writes every meaning in one transaction.
	// Any failure rolls back the whole batch.
	BulkUpsertCardMeanings(ctx context.Context, deckID int64, meanings []domain.CardMeaning) ([]domain.CardMeaning, error)

	// UpdateCardMeaning returns domain.ErrNotFound if no meaning exists for the pair.
	UpdateCardMeaning(ctx context.Context, meaning domain.CardMeaning) (*domain.CardMeaning, error)

	DeleteCardMeaning(ctx context.Context, deckID, cardID int64) error
}

// SpreadRepository reads spread layouts.
type SpreadRepository interface {
	// List returns spreads ordered by name.
	List(ctx context.Context) ([]domain.SpreadType, error)

	// Get returns domain.ErrNotFound if the spread does not exist.
	Get(ctx context.Context, id int64) (*domain.SpreadType, error)
}

// ReadingRepository persists readings and their feedback.
type ReadingRepository interface {
	// List returns readings newest first.
	List(ctx context.Context) ([]domain.Reading, error)

	Get(ctx context.Context, id int64) (*domain.Reading, error)

	// Create inserts a reading and returns it with its id and timestamp.
	Create(ctx context.Context, reading domain.Reading) (*domain.Reading, error)

	// AddFeedback returns domain.ErrNotFound when the reading does not exist.
	AddFeedback(ctx context.Context, feedback domain.ReadingFeedback) (*domain.ReadingFeedback, error)
}

// PastExampleProvider supplies well-rated past readings for few-shot prompting.
type PastExampleProvider interface {
	// Sample returns at most limit readings whose accuracy or resonance
	// rating is at least minRating, most recent first.
	Sample(ctx context.Context, limit, minRating int) ([]domain.PastExample, error)
}

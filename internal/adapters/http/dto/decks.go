package dto

import (
	"fmt"
	"time"

	"github.com/jsamuelsen/tarot-service/internal/domain"
)

// DeckRequest is the body of deck create and update.
type DeckRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ImageryStyle string `json:"imagery_style"`
}

// ToDomain converts the request. Name rules are enforced by the service so
// the client sees "Deck name is required" rather than a tag message.
func (r DeckRequest) ToDomain(id int64) domain.Deck {
	return domain.Deck{
		ID:           id,
		Name:         r.Name,
		Description:  r.Description,
		ImageryStyle: r.ImageryStyle,
	}
}

// DeckResponse is a deck row.
type DeckResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ImageryStyle string    `json:"imagery_style"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewDeckResponse converts a deck.
func NewDeckResponse(d *domain.Deck) DeckResponse {
	return DeckResponse{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		ImageryStyle: d.ImageryStyle,
		CreatedAt:    d.CreatedAt,
	}
}

// NewDeckListResponse converts a deck list.
func NewDeckListResponse(decks []domain.Deck) []DeckResponse {
	out := make([]DeckResponse, 0, len(decks))
	for i := range decks {
		out = append(out, NewDeckResponse(&decks[i]))
	}

	return out
}

// DeckDeletedResponse confirms a deck deletion.
type DeckDeletedResponse struct {
	Message string       `json:"message"`
	Deck    DeckResponse `json:"deck"`
}

// CardMeaningInput is one meaning in a bulk upload or a single update.
type CardMeaningInput struct {
	CardID           int64    `json:"cardId"`
	UprightMeaning   string   `json:"uprightMeaning"`
	ReversedMeaning  string   `json:"reversedMeaning"`
	UprightKeywords  []string `json:"uprightKeywords"`
	ReversedKeywords []string `json:"reversedKeywords"`
}

// ToDomain converts the input for the given deck.
func (in CardMeaningInput) ToDomain(deckID int64) domain.CardMeaning {
	return domain.CardMeaning{
		CardID:           in.CardID,
		DeckID:           deckID,
		UprightMeaning:   in.UprightMeaning,
		ReversedMeaning:  in.ReversedMeaning,
		UprightKeywords:  nonNil(in.UprightKeywords),
		ReversedKeywords: nonNil(in.ReversedKeywords),
	}
}

// BulkCardMeaningsRequest is the bulk upload body. Elements are validated by
// the deck service so that one bad element rejects the batch.
type BulkCardMeaningsRequest struct {
	CardMeanings []CardMeaningInput `json:"cardMeanings" validate:"required,min=1"`
}

// ToDomain converts every element for the given deck.
func (r BulkCardMeaningsRequest) ToDomain(deckID int64) []domain.CardMeaning {
	out := make([]domain.CardMeaning, 0, len(r.CardMeanings))
	for _, in := range r.CardMeanings {
		out = append(out, in.ToDomain(deckID))
	}

	return out
}

// CardMeaningResponse is a stored meaning.
type CardMeaningResponse struct {
	CardID           int64    `json:"card_id"`
	DeckID           int64    `json:"deck_id"`
	UprightMeaning   string   `json:"upright_meaning"`
	ReversedMeaning  string   `json:"reversed_meaning"`
	UprightKeywords  []string `json:"upright_keywords"`
	ReversedKeywords []string `json:"reversed_keywords"`
}

// NewCardMeaningResponse converts a meaning.
func NewCardMeaningResponse(m *domain.CardMeaning) CardMeaningResponse {
	return CardMeaningResponse{
		CardID:           m.CardID,
		DeckID:           m.DeckID,
		UprightMeaning:   m.UprightMeaning,
		ReversedMeaning:  m.ReversedMeaning,
		UprightKeywords:  nonNil(m.UprightKeywords),
		ReversedKeywords: nonNil(m.ReversedKeywords),
	}
}

// DeckCardMeaningResponse is a meaning joined with its card for deck listings.
type DeckCardMeaningResponse struct {
	CardMeaningResponse
	CardName string  `json:"card_name"`
	Number   *int    `json:"number"`
	Suit     *string `json:"suit"`
	CardType string  `json:"card_type"`
}

// NewDeckCardMeaningListResponse converts a deck's meaning list.
func NewDeckCardMeaningListResponse(meanings []domain.DeckCardMeaning) []DeckCardMeaningResponse {
	out := make([]DeckCardMeaningResponse, 0, len(meanings))
	for i := range meanings {
		m := &meanings[i]
		out = append(out, DeckCardMeaningResponse{
			CardMeaningResponse: NewCardMeaningResponse(&m.CardMeaning),
			CardName:            m.CardName,
			Number:              m.Number,
			Suit:                m.Suit,
			CardType:            string(m.CardType),
		})
	}

	return out
}

// BulkCardMeaningsResponse reports a successful bulk upload.
type BulkCardMeaningsResponse struct {
	Message      string                `json:"message"`
	CardMeanings []CardMeaningResponse `json:"cardMeanings"`
}

// NewBulkCardMeaningsResponse converts the saved batch.
func NewBulkCardMeaningsResponse(saved []domain.CardMeaning) BulkCardMeaningsResponse {
	out := make([]CardMeaningResponse, 0, len(saved))
	for i := range saved {
		out = append(out, NewCardMeaningResponse(&saved[i]))
	}

	return BulkCardMeaningsResponse{
		Message:      fmt.Sprintf("Successfully uploaded %d card meanings", len(out)),
		CardMeanings: out,
	}
}

// MessageResponse is a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

package dto

import (
	"time"

	"github.com/jsamuelsen/tarot-service/internal/domain"
)

// DrawnCardInput is one card of a caller-supplied draw.
type DrawnCardInput struct {
	CardID   int64 `json:"cardId"   validate:"gt=0"`
	Position int   `json:"position" validate:"gt=0"`
	Reversed bool  `json:"reversed"`
}

func toDrawnCards(in []DrawnCardInput) []domain.DrawnCard {
	out := make([]domain.DrawnCard, 0, len(in))
	for _, c := range in {
		out = append(out, domain.DrawnCard{CardID: c.CardID, Position: c.Position, Reversed: c.Reversed})
	}

	return out
}

// CreateReadingRequest stores a reading without generating it.
type CreateReadingRequest struct {
	UserID         string           `json:"userId"`
	SpreadTypeID   int64            `json:"spreadTypeId"   validate:"required,gt=0"`
	DeckID         int64            `json:"deckId"         validate:"required,gt=0"`
	Question       string           `json:"question"`
	CardsDrawn     []DrawnCardInput `json:"cardsDrawn"     validate:"required,min=1,dive"`
	Interpretation string           `json:"interpretation" validate:"required,notempty"`
}

// ToDomain converts the request.
func (r CreateReadingRequest) ToDomain() domain.Reading {
	return domain.Reading{
		UserID:         r.UserID,
		SpreadTypeID:   r.SpreadTypeID,
		DeckID:         r.DeckID,
		Question:       r.Question,
		CardsDrawn:     toDrawnCards(r.CardsDrawn),
		Interpretation: r.Interpretation,
	}
}

// ReadingResponse is a stored reading.
type ReadingResponse struct {
	ID             int64              `json:"id"`
	UserID         *string            `json:"user_id"`
	SpreadTypeID   int64              `json:"spread_type_id"`
	DeckID         int64              `json:"deck_id"`
	Question       *string            `json:"question"`
	CardsDrawn     []domain.DrawnCard `json:"cards_drawn"`
	Interpretation string             `json:"interpretation"`
	CreatedAt      time.Time          `json:"created_at"`
}

// NewReadingResponse converts a reading. Empty optional text encodes as null.
func NewReadingResponse(r *domain.Reading) ReadingResponse {
	return ReadingResponse{
		ID:             r.ID,
		UserID:         optional(r.UserID),
		SpreadTypeID:   r.SpreadTypeID,
		DeckID:         r.DeckID,
		Question:       optional(r.Question),
		CardsDrawn:     nonNil(r.CardsDrawn),
		Interpretation: r.Interpretation,
		CreatedAt:      r.CreatedAt,
	}
}

// NewReadingListResponse converts a reading list.
func NewReadingListResponse(readings []domain.Reading) []ReadingResponse {
	out := make([]ReadingResponse, 0, len(readings))
	for i := range readings {
		out = append(out, NewReadingResponse(&readings[i]))
	}

	return out
}

// FeedbackRequest rates a reading.
type FeedbackRequest struct {
	AccuracyRating  int    `json:"accuracyRating"  validate:"required,min=1,max=5"`
	ResonanceRating int    `json:"resonanceRating" validate:"required,min=1,max=5"`
	Notes           string `json:"notes"           validate:"max=2000"`
}

// ToDomain converts the request for the given reading.
func (r FeedbackRequest) ToDomain(readingID int64) domain.ReadingFeedback {
	return domain.ReadingFeedback{
		ReadingID:       readingID,
		AccuracyRating:  r.AccuracyRating,
		ResonanceRating: r.ResonanceRating,
		Notes:           r.Notes,
	}
}

// FeedbackResponse is stored feedback.
type FeedbackResponse struct {
	ID              int64     `json:"id"`
	ReadingID       int64     `json:"reading_id"`
	AccuracyRating  int       `json:"accuracy_rating"`
	ResonanceRating int       `json:"resonance_rating"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewFeedbackResponse converts feedback.
func NewFeedbackResponse(f *domain.ReadingFeedback) FeedbackResponse {
	return FeedbackResponse{
		ID:              f.ID,
		ReadingID:       f.ReadingID,
		AccuracyRating:  f.AccuracyRating,
		ResonanceRating: f.ResonanceRating,
		Notes:           f.Notes,
		CreatedAt:       f.CreatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

package domain

import "time"

// Rating bounds for reading feedback.
const (
	MinRating = 1
	MaxRating = 5
)

// Reading is a recorded interpretation. It is written once and never updated.
type Reading struct {
	ID             int64
	UserID         string
	SpreadTypeID   int64
	DeckID         int64
	Question       string
	CardsDrawn     []DrawnCard
	Interpretation string
	CreatedAt      time.Time
}

// Validate checks the fields required before a reading can be stored.
func (r Reading) Validate() error {
	if r.SpreadTypeID <= 0 {
		return NewValidationError("spreadTypeId", "is required")
	}

	if r.DeckID <= 0 {
		return NewValidationError("deckId", "is required")
	}

	if len(r.CardsDrawn) == 0 {
		return NewValidationError("cardsDrawn", "at least one card is required")
	}

	if r.Interpretation == "" {
		return NewValidationError("interpretation", "is required")
	}

	return nil
}

// ReadingFeedback is a user's rating of a reading.
type ReadingFeedback struct {
	ID              int64
	ReadingID       int64
	AccuracyRating  int
	ResonanceRating int
	Notes           string
	CreatedAt       time.Time
}

// Validate enforces the 1..5 rating range.
func (f ReadingFeedback) Validate() error {
	if f.AccuracyRating < MinRating || f.AccuracyRating > MaxRating {
		return NewValidationErrorWithValue("accuracyRating", "must be between 1 and 5", f.AccuracyRating)
	}

	if f.ResonanceRating < MinRating || f.ResonanceRating > MaxRating {
		return NewValidationErrorWithValue("resonanceRating", "must be between 1 and 5", f.ResonanceRating)
	}

	return nil
}

// PastExample is a well-rated reading used as few-shot context.
type PastExample struct {
	ReadingID      int64
	Question       string
	Interpretation string
}

// Package domain contains the tarot entities and the rules that govern them.
// Nothing here knows about SQL, HTTP, or generation providers.
package domain

import "time"

// CardType distinguishes the major arcana from the four suits.
type CardType string

const (
	CardTypeMajor CardType = "major"
	CardTypeMinor CardType = "minor"
)

// Card is immutable reference data for one of the 78 tarot cards.
type Card struct {
	ID        int64
	Name      string
	Number    *int
	Suit      *string
	CardType  CardType
	Archetype *string
}

// CardMeaning is a deck-specific interpretation of a card.
type CardMeaning struct {
	CardID           int64
	DeckID           int64
	UprightMeaning   string
	ReversedMeaning  string
	UprightKeywords  []string
	ReversedKeywords []string
}

// Validate checks the fields every stored meaning must carry.
func (m CardMeaning) Validate() error {
	if m.CardID <= 0 {
		return NewValidationErrorWithValue("cardId", "must be a positive card id", m.CardID)
	}

	if m.UprightMeaning == "" {
		return NewValidationError("uprightMeaning", "is required")
	}

	return nil
}

// ForOrientation returns the meaning text and keywords matching the orientation.
func (m CardMeaning) ForOrientation(reversed bool) (string, []string) {
	if reversed {
		return m.ReversedMeaning, m.ReversedKeywords
	}

	return m.UprightMeaning, m.UprightKeywords
}

// CardDetail is a card optionally joined with its meaning in one deck.
// Meaning is nil when no deck was requested or the deck has no entry for the card.
type CardDetail struct {
	Card
	Meaning *CardMeaning
}

// DeckCardMeaning is a meaning row annotated with the card it describes.
type DeckCardMeaning struct {
	CardMeaning
	CardName string
	Number   *int
	Suit     *string
	CardType CardType
}

// Deck is a named collection of card meanings.
type Deck struct {
	ID           int64
	Name         string
	Description  string
	ImageryStyle string
	CreatedAt    time.Time
}

// Validate enforces the deck naming rule.
func (d Deck) Validate() error {
	if d.Name == "" {
		return NewValidationError("name", "Deck name is required")
	}

	return nil
}

package dto

import "github.com/jsamuelsen/tarot-service/internal/domain"

// CardResponse is a card row, joined with its deck meaning when one was requested.
type CardResponse struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Number           *int     `json:"number"`
	Suit             *string  `json:"suit"`
	CardType         string   `json:"card_type"`
	Archetype        *string  `json:"archetype"`
	DeckID           *int64   `json:"deck_id,omitempty"`
	UprightMeaning   *string  `json:"upright_meaning,omitempty"`
	ReversedMeaning  *string  `json:"reversed_meaning,omitempty"`
	UprightKeywords  []string `json:"upright_keywords,omitempty"`
	ReversedKeywords []string `json:"reversed_keywords,omitempty"`
}

// CardQuery is the optional deck filter on card endpoints.
type CardQuery struct {
	DeckID int64 `form:"deckId" json:"deckId" validate:"omitempty,gt=0"`
}

// NewCardResponse converts a card and its optional meaning.
func NewCardResponse(d *domain.CardDetail) CardResponse {
	resp := CardResponse{
		ID:        d.ID,
		Name:      d.Name,
		Number:    d.Number,
		Suit:      d.Suit,
		CardType:  string(d.CardType),
		Archetype: d.Archetype,
	}

	if m := d.Meaning; m != nil {
		resp.DeckID = &m.DeckID
		resp.UprightMeaning = &m.UprightMeaning
		resp.ReversedMeaning = &m.ReversedMeaning
		resp.UprightKeywords = nonNil(m.UprightKeywords)
		resp.ReversedKeywords = nonNil(m.ReversedKeywords)
	}

	return resp
}

// NewCardListResponse converts a card list. An empty list encodes as [].
func NewCardListResponse(cards []domain.CardDetail) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for i := range cards {
		out = append(out, NewCardResponse(&cards[i]))
	}

	return out
}

// SpreadResponse is a spread type with its ordered positions.
type SpreadResponse struct {
	ID            int64                   `json:"id"`
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	PositionCount int                     `json:"position_count"`
	Positions     []domain.SpreadPosition `json:"positions"`
}

// NewSpreadResponse converts a spread type.
func NewSpreadResponse(s *domain.SpreadType) SpreadResponse {
	return SpreadResponse{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description,
		PositionCount: s.CardCount(),
		Positions:     nonNil(s.Positions),
	}
}

// NewSpreadListResponse converts a spread list.
func NewSpreadListResponse(spreads []domain.SpreadType) []SpreadResponse {
	out := make([]SpreadResponse, 0, len(spreads))
	for i := range spreads {
		out = append(out, NewSpreadResponse(&spreads[i]))
	}

	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

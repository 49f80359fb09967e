package app

import (
	"io"
	"log/slog"
	"testing"

	"go.uber.org/goleak"

	"github.com/jsamuelsen/tarot-service/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func threeCardSpread() *domain.SpreadType {
	return &domain.SpreadType{
		ID:          2,
		Name:        "Past, Present, Future",
		Description: "A simple three card spread",
		Positions: []domain.SpreadPosition{
			{Name: "Past", Meaning: "What led here"},
			{Name: "Present", Meaning: "Where you stand"},
			{Name: "Future", Meaning: "Where this is heading"},
		},
	}
}

func cardFixtures() map[int64]domain.CardDetail {
	return map[int64]domain.CardDetail{
		1: {
			Card: domain.Card{ID: 1, Name: "The Fool", Number: ptr(0), CardType: domain.CardTypeMajor},
			Meaning: &domain.CardMeaning{
				CardID:           1,
				DeckID:           1,
				UprightMeaning:   "New beginnings",
				ReversedMeaning:  "Recklessness",
				UprightKeywords:  []string{"beginnings", "spontaneity"},
				ReversedKeywords: []string{"recklessness"},
			},
		},
		2: {
			Card: domain.Card{ID: 2, Name: "The Magician", Number: ptr(1), CardType: domain.CardTypeMajor},
			Meaning: &domain.CardMeaning{
				CardID:          2,
				DeckID:          1,
				UprightMeaning:  "Manifestation",
				ReversedMeaning: "Manipulation",
				UprightKeywords: []string{"skill"},
			},
		},
		3: {
			Card: domain.Card{ID: 3, Name: "The High Priestess", Number: ptr(2), CardType: domain.CardTypeMajor},
		},
	}
}

func threeCardDraw() []domain.DrawnCard {
	return []domain.DrawnCard{
		{CardID: 1, Position: 1, Reversed: true},
		{CardID: 2, Position: 2},
		{CardID: 3, Position: 3},
	}
}

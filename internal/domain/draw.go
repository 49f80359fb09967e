package domain

// RNG is the randomness source used for drawing. *math/rand/v2.Rand satisfies it.
type RNG interface {
	IntN(n int) int
}

// Draw shuffles a copy of deck with Fisher-Yates, takes the first
// spread.CardCount() cards, and flips an independent coin for each orientation.
// Positions are assigned 1..n in draw order.
func Draw(deck []Card, spread SpreadType, rng RNG) ([]DrawnCard, error) {
	n := spread.CardCount()
	if n == 0 {
		return nil, NewValidationError("spread", "has no positions")
	}

	if len(deck) < n {
		return nil, NewValidationErrorWithValue("deck", "has fewer cards than the spread needs", len(deck))
	}

	shuffled := make([]Card, len(deck))
	copy(shuffled, deck)

	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	drawn := make([]DrawnCard, n)
	for i := range n {
		drawn[i] = DrawnCard{
			CardID:   shuffled[i].ID,
			Position: i + 1,
			Reversed: rng.IntN(2) == 1,
		}
	}

	return drawn, nil
}

package domain

import "fmt"

// SpreadPosition is one slot of a spread layout.
type SpreadPosition struct {
	Name    string `json:"name"`
	Meaning string `json:"meaning"`
}

// SpreadType is a named layout. Its card count is len(Positions).
type SpreadType struct {
	ID          int64
	Name        string
	Description string
	Positions   []SpreadPosition
}

// CardCount returns how many cards the spread takes.
func (s SpreadType) CardCount() int {
	return len(s.Positions)
}

// Position returns the 1-based position n, or an InvalidPositionError when n
// falls outside [1, CardCount()].
func (s SpreadType) Position(n int) (SpreadPosition, error) {
	if n < 1 || n > len(s.Positions) {
		return SpreadPosition{}, NewInvalidPositionError(n, len(s.Positions))
	}

	return s.Positions[n-1], nil
}

// DrawnCard records which card landed in which position and its orientation.
type DrawnCard struct {
	CardID   int64 `json:"cardId"`
	Position int   `json:"position"`
	Reversed bool  `json:"reversed"`
}

// ValidateDraw checks a draw against a spread: at least one card, every
// position in range, and no position filled twice.
func ValidateDraw(spread SpreadType, cards []DrawnCard) error {
	if len(cards) == 0 {
		return NewValidationError("cardsDrawn", "at least one card is required")
	}

	seen := make(map[int]struct{}, len(cards))

	for _, dc := range cards {
		if _, err := spread.Position(dc.Position); err != nil {
			return err
		}

		if _, dup := seen[dc.Position]; dup {
			return NewValidationErrorWithValue("cardsDrawn",
				fmt.Sprintf("position %d is filled more than once", dc.Position), dc.Position)
		}

		seen[dc.Position] = struct{}{}
	}

	return nil
}

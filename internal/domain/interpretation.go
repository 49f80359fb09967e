package domain

// CardContext is one resolved entry of an interpretation context.
type CardContext struct {
	Position        int      `json:"position"`
	PositionName    string   `json:"positionName"`
	PositionMeaning string   `json:"positionMeaning"`
	CardID          int64    `json:"cardId"`
	CardName        string   `json:"cardName"`
	Reversed        bool     `json:"reversed"`
	Meaning         string   `json:"meaning"`
	Keywords        []string `json:"keywords"`
}

// InterpretationContext is everything the prompt needs about a draw.
type InterpretationContext struct {
	Spread              SpreadType
	Cards               []CardContext
	PastReadingsContext string
	PastReadingsCount   int
}

// InterpretationRequest is the caller's description of a reading to interpret.
type InterpretationRequest struct {
	UserID       string
	SpreadTypeID int64
	DeckID       int64
	CardsDrawn   []DrawnCard
	Question     string
	Tone         Tone
}

package dto

import "github.com/jsamuelsen/tarot-service/internal/domain"

// InterpretRequest is the body shared by /interpret, /interpret/stream and
// /interpret/context. Required fields are checked by the interpretation
// service so every entry point answers "Missing required fields" alike.
type InterpretRequest struct {
	UserID       string           `json:"userId"`
	SpreadTypeID int64            `json:"spreadTypeId"`
	DeckID       int64            `json:"deckId"`
	CardsDrawn   []DrawnCardInput `json:"cardsDrawn"`
	Question     string           `json:"question" validate:"max=1000"`
	Tone         string           `json:"tone"     validate:"tone"`
}

// ToDomain converts the request.
func (r InterpretRequest) ToDomain() domain.InterpretationRequest {
	return domain.InterpretationRequest{
		UserID:       r.UserID,
		SpreadTypeID: r.SpreadTypeID,
		DeckID:       r.DeckID,
		CardsDrawn:   toDrawnCards(r.CardsDrawn),
		Question:     r.Question,
		Tone:         domain.Tone(r.Tone),
	}
}

// InterpretResponse carries the recorded reading and its text.
type InterpretResponse struct {
	Reading        ReadingResponse `json:"reading"`
	Interpretation string          `json:"interpretation"`
}

// SpreadSummary names the spread in a context preview.
type SpreadSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ContextResponse is the assembled prompt context.
type ContextResponse struct {
	Spread            SpreadSummary        `json:"spread"`
	Cards             []domain.CardContext `json:"cards"`
	PastReadingsCount int                  `json:"pastReadingsCount"`
}

// NewContextResponse converts an assembled context.
func NewContextResponse(ic *domain.InterpretationContext) ContextResponse {
	return ContextResponse{
		Spread:            SpreadSummary{Name: ic.Spread.Name, Description: ic.Spread.Description},
		Cards:             nonNil(ic.Cards),
		PastReadingsCount: ic.PastReadingsCount,
	}
}

// RefineQuestionRequest asks for a clearer question.
type RefineQuestionRequest struct {
	Question string `json:"question" validate:"max=1000"`
}

// RefineQuestionResponse pairs the original and refined question.
type RefineQuestionResponse struct {
	Original string `json:"original"`
	Refined  string `json:"refined"`
}

// FollowUpRequest asks a further question about a reading.
type FollowUpRequest struct {
	ReadingID        int64  `json:"readingId"`
	FollowUpQuestion string `json:"followUpQuestion" validate:"max=1000"`
}

// FollowUpResponse is the generated answer.
type FollowUpResponse struct {
	Answer string `json:"answer"`
}

// ExplainCardRequest names one card of a reading by position.
type ExplainCardRequest struct {
	ReadingID    int64 `json:"readingId"`
	CardPosition int   `json:"cardPosition"`
}

// ExplainCardResponse is the explanation and the card it covers.
type ExplainCardResponse struct {
	Explanation string              `json:"explanation"`
	Card        *domain.CardContext `json:"card"`
}

// StreamChunkEvent carries one text delta.
type StreamChunkEvent struct {
	Chunk string `json:"chunk"`
}

// StreamDoneEvent ends a successful stream.
type StreamDoneEvent struct {
	Done      bool  `json:"done"`
	ReadingID int64 `json:"readingId"`
}

// StreamErrorEvent ends a failed stream.
type StreamErrorEvent struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewStreamErrorEvent builds the terminal error event with the same
// user-safe message the JSON endpoints would return.
func NewStreamErrorEvent(err error) StreamErrorEvent {
	code, message := Classify(err)
	return StreamErrorEvent{Error: message, Code: code}
}

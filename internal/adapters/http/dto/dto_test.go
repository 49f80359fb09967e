package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/tarot-service/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewErrorResponse(t *testing.T) {
	got := NewErrorResponse(ErrorCodeNotFound, "deck not found")

	assert.Equal(t, &ErrorResponse{
		Error: ErrorDetail{Code: ErrorCodeNotFound, Message: "deck not found"},
	}, got)
}

func TestNewErrorResponseWithDetails(t *testing.T) {
	details := map[string]string{"accuracyRating": "must be at most 5"}

	got := NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", details).
		WithTraceID("trace-1")

	assert.Equal(t, ErrorCodeValidation, got.Error.Code)
	assert.Equal(t, details, got.Error.Details)
	assert.Equal(t, "trace-1", got.TraceID)
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeInvalidPosition, http.StatusBadRequest},
		{ErrorCodeBadRequest, http.StatusBadRequest},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeQuotaExhausted, http.StatusTooManyRequests},
		{ErrorCodeUpstream, http.StatusBadGateway},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "invalid position wins over validation",
			err:         domain.NewInvalidPositionError(4, 3),
			wantCode:    ErrorCodeInvalidPosition,
			wantMessage: "position 4 is outside spread range 1..3",
		},
		{
			name:        "validation without field keeps bare message",
			err:         domain.NewValidationError("", "Missing required fields"),
			wantCode:    ErrorCodeValidation,
			wantMessage: "Missing required fields",
		},
		{
			name:        "validation with field",
			err:         domain.NewValidationError("name", "Deck name is required"),
			wantCode:    ErrorCodeValidation,
			wantMessage: "validation failed for name: Deck name is required",
		},
		{
			name:        "not found",
			err:         domain.NewNotFoundError("reading", "9"),
			wantCode:    ErrorCodeNotFound,
			wantMessage: `reading with id "9" not found`,
		},
		{
			name:     "conflict",
			err:      domain.NewConflictError("deck", "name already exists"),
			wantCode: ErrorCodeConflict,
		},
		{
			name:        "quota hides provider text",
			err:         domain.NewQuotaExhaustedError("anthropic", "credit balance is too low"),
			wantCode:    ErrorCodeQuotaExhausted,
			wantMessage: MessageQuotaExhausted,
		},
		{
			name:        "upstream hides provider text",
			err:         domain.NewUpstreamError("anthropic", http.StatusInternalServerError, "overloaded"),
			wantCode:    ErrorCodeUpstream,
			wantMessage: MessageUpstream,
		},
		{
			name:     "unavailable",
			err:      domain.NewUnavailableError("generation", "circuit open"),
			wantCode: ErrorCodeUnavailable,
		},
		{
			name:        "wrapping context stays out of the message",
			err:         fmt.Errorf("validate failed: %w", domain.NewInvalidPositionError(4, 3)),
			wantCode:    ErrorCodeInvalidPosition,
			wantMessage: "position 4 is outside spread range 1..3",
		},
		{
			name:        "wrapped not found",
			err:         fmt.Errorf("loading reading: %w", domain.NewNotFoundError("reading", "9")),
			wantCode:    ErrorCodeNotFound,
			wantMessage: `reading with id "9" not found`,
		},
		{
			name:        "unknown error",
			err:         errors.New("disk on fire"),
			wantCode:    ErrorCodeInternal,
			wantMessage: MessageInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, message := Classify(tt.err)

			assert.Equal(t, tt.wantCode, code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, message)
			} else {
				assert.NotEmpty(t, message)
			}
		})
	}
}

func TestMapDomainError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		status, resp := MapDomainError(nil)

		assert.Equal(t, http.StatusOK, status)
		assert.Nil(t, resp)
	})

	t.Run("field validation carries details", func(t *testing.T) {
		status, resp := MapDomainError(domain.NewValidationError("uprightMeaning", "is required"))

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, map[string]string{"uprightMeaning": "is required"}, resp.Error.Details)
	})

	t.Run("wrapped error is still classified", func(t *testing.T) {
		err := errors.Join(errors.New("saving reading"), domain.NewNotFoundError("spread type", "12"))

		status, resp := MapDomainError(err)

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, ErrorCodeNotFound, resp.Error.Code)
		assert.Nil(t, resp.Error.Details)
	})
}

func TestGetTraceID(t *testing.T) {
	tests := []struct {
		name         string
		setupContext func(*gin.Context)
		want         string
	}{
		{
			name: "trace ID in context",
			setupContext: func(c *gin.Context) {
				c.Set(ContextKeyTraceID, "context-trace-123")
			},
			want: "context-trace-123",
		},
		{
			name: "request ID header",
			setupContext: func(c *gin.Context) {
				c.Request.Header.Set("X-Request-ID", "header-trace-456")
			},
			want: "header-trace-456",
		},
		{
			name: "context takes precedence",
			setupContext: func(c *gin.Context) {
				c.Set(ContextKeyTraceID, "context-trace-123")
				c.Request.Header.Set("X-Request-ID", "header-trace-456")
			},
			want: "context-trace-123",
		},
		{
			name:         "no trace ID",
			setupContext: func(*gin.Context) {},
			want:         "",
		},
		{
			name: "trace ID in context with wrong type",
			setupContext: func(c *gin.Context) {
				c.Set(ContextKeyTraceID, 12345)
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			tt.setupContext(c)

			assert.Equal(t, tt.want, GetTraceID(c))
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantStatus     int
		wantCode       string
		wantMessageKey string
	}{
		{
			name:           "not found",
			err:            domain.NewNotFoundError("deck", "7"),
			wantStatus:     http.StatusNotFound,
			wantCode:       ErrorCodeNotFound,
			wantMessageKey: "deck",
		},
		{
			name:           "conflict",
			err:            domain.NewConflictError("deck", "name already exists"),
			wantStatus:     http.StatusConflict,
			wantCode:       ErrorCodeConflict,
			wantMessageKey: "deck",
		},
		{
			name:           "invalid position",
			err:            domain.NewInvalidPositionError(0, 3),
			wantStatus:     http.StatusBadRequest,
			wantCode:       ErrorCodeInvalidPosition,
			wantMessageKey: "position 0",
		},
		{
			name:           "quota exhausted",
			err:            domain.NewQuotaExhaustedError("gemini", "RESOURCE_EXHAUSTED"),
			wantStatus:     http.StatusTooManyRequests,
			wantCode:       ErrorCodeQuotaExhausted,
			wantMessageKey: "generation credits",
		},
		{
			name:           "upstream",
			err:            domain.NewUpstreamError("anthropic", http.StatusBadGateway, "bad gateway"),
			wantStatus:     http.StatusBadGateway,
			wantCode:       ErrorCodeUpstream,
			wantMessageKey: "could not be generated",
		},
		{
			name:           "unavailable",
			err:            domain.NewUnavailableError("generation", "circuit open"),
			wantStatus:     http.StatusServiceUnavailable,
			wantCode:       ErrorCodeUnavailable,
			wantMessageKey: "unavailable",
		},
		{
			name:           "internal",
			err:            errors.New("unexpected error"),
			wantStatus:     http.StatusInternalServerError,
			wantCode:       ErrorCodeInternal,
			wantMessageKey: "internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(ContextKeyTraceID, "trace-123")

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

			assert.Equal(t, tt.wantCode, response.Error.Code)
			assert.Contains(t, response.Error.Message, tt.wantMessageKey)
			assert.Equal(t, "trace-123", response.TraceID)
		})
	}
}

func TestAbortWithError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	AbortWithError(c, domain.NewForbiddenError("manage decks", "admin role required"))

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRespondWithBindError(t *testing.T) {
	type body struct {
		Name string `json:"name" validate:"required"`
	}

	tests := []struct {
		name        string
		body        string
		wantCode    string
		wantDetails map[string]string
	}{
		{
			name:        "tag failure lists fields",
			body:        `{}`,
			wantCode:    ErrorCodeValidation,
			wantDetails: map[string]string{"name": "this field is required"},
		},
		{
			name:     "malformed body",
			body:     `{"name":`,
			wantCode: ErrorCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var in body
			err := BindAndValidate(c, &in)
			require.Error(t, err)

			RespondWithBindError(c, err)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.wantCode, response.Error.Code)
			assert.Equal(t, tt.wantDetails, response.Error.Details)
		})
	}
}

func TestValidator(t *testing.T) {
	v1 := Validator()
	v2 := Validator()

	assert.NotNil(t, v1)
	assert.Same(t, v1, v2)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantErr bool
	}{
		{
			name:  "valid feedback",
			input: &FeedbackRequest{AccuracyRating: 4, ResonanceRating: 5, Notes: "spot on"},
		},
		{
			name:    "rating above five",
			input:   &FeedbackRequest{AccuracyRating: 6, ResonanceRating: 5},
			wantErr: true,
		},
		{
			name:    "missing rating",
			input:   &FeedbackRequest{AccuracyRating: 3},
			wantErr: true,
		},
		{
			name:  "empty tone defaults",
			input: &InterpretRequest{Question: "what next?"},
		},
		{
			name:  "known tone",
			input: &InterpretRequest{Tone: string(domain.ToneMystical)},
		},
		{
			name:    "unknown tone",
			input:   &InterpretRequest{Tone: "spooky"},
			wantErr: true,
		},
		{
			name:    "question too long",
			input:   &RefineQuestionRequest{Question: strings.Repeat("?", 1001)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		errType error
	}{
		{
			name: "valid reading",
			body: `{"spreadTypeId":2,"deckId":1,"cardsDrawn":[{"cardId":1,"position":1}],"interpretation":"text"}`,
		},
		{
			name:    "invalid JSON",
			body:    `{invalid}`,
			errType: ErrBinding,
		},
		{
			name:    "blank interpretation",
			body:    `{"spreadTypeId":2,"deckId":1,"cardsDrawn":[{"cardId":1,"position":1}],"interpretation":"   "}`,
			errType: ErrValidation,
		},
		{
			name:    "element without position",
			body:    `{"spreadTypeId":2,"deckId":1,"cardsDrawn":[{"cardId":1}],"interpretation":"text"}`,
			errType: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var input CreateReadingRequest
			err := BindAndValidate(c, &input)

			if tt.errType != nil {
				require.ErrorIs(t, err, tt.errType)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(2), input.SpreadTypeID)
			assert.Len(t, input.CardsDrawn, 1)
		})
	}
}

func TestBindQueryAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    int64
		errType error
	}{
		{name: "deck filter", query: "?deckId=3", want: 3},
		{name: "no filter", query: ""},
		{name: "negative deck", query: "?deckId=-1", errType: ErrValidation},
		{name: "non numeric deck", query: "?deckId=abc", errType: ErrBinding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/cards"+tt.query, nil)

			var q CardQuery
			err := BindQueryAndValidate(c, &q)

			if tt.errType != nil {
				require.ErrorIs(t, err, tt.errType)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, q.DeckID)
		})
	}
}

func TestValidationErrors(t *testing.T) {
	t.Run("nested element names", func(t *testing.T) {
		err := Validate(&CreateReadingRequest{
			SpreadTypeID:   2,
			DeckID:         1,
			CardsDrawn:     []DrawnCardInput{{CardID: 1, Position: 1}, {CardID: 5}},
			Interpretation: "text",
		})
		require.Error(t, err)

		assert.Equal(t, map[string]string{
			"cardsDrawn[1].position": "must be greater than 0",
		}, ValidationErrors(err))
	})

	t.Run("multiple fields", func(t *testing.T) {
		err := Validate(&FeedbackRequest{AccuracyRating: 9, Notes: strings.Repeat("n", 2001)})
		require.Error(t, err)

		got := ValidationErrors(err)
		assert.Equal(t, "must be at most 5", got["accuracyRating"])
		assert.Equal(t, "this field is required", got["resonanceRating"])
		assert.Equal(t, "must be at most 2000 characters", got["notes"])
	})

	t.Run("tone message", func(t *testing.T) {
		err := Validate(&InterpretRequest{Tone: "gloomy"})
		require.Error(t, err)

		assert.Equal(t, "must be one of warm, direct, mystical, analytical", ValidationErrors(err)["tone"])
	})

	t.Run("non-validation error returns empty map", func(t *testing.T) {
		assert.Empty(t, ValidationErrors(errors.New("some error")))
	})
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "validation error",
			err:  Validate(&FeedbackRequest{}),
			want: true,
		},
		{
			name: "binding error",
			err:  ErrBinding,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidationError(tt.err))
		})
	}
}

func TestValidationMessage(t *testing.T) {
	type testStruct struct {
		Name     string   `json:"name"     validate:"required"`
		Count    int      `json:"count"    validate:"min=1,max=10"`
		Role     string   `json:"role"     validate:"oneof=admin reader"`
		Cards    []int    `json:"cards"    validate:"min=3"`
		Score    int      `json:"score"    validate:"gt=0,lt=100"`
		Username string   `json:"username" validate:"notempty"`
		Tags     []string `json:"tags"     validate:"dive,notempty"`
		Origin   string   `json:"origin"   validate:"url"`
	}

	input := &testStruct{
		Name:     "",
		Count:    20,
		Role:     "seer",
		Cards:    []int{1},
		Score:    150,
		Username: "  ",
		Tags:     []string{""},
		Origin:   "not-a-url",
	}

	err := Validator().Struct(input)

	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	expected := map[string]string{
		"name":     "this field is required",
		"count":    "must be at most 10",
		"role":     "must be one of: admin reader",
		"cards":    "must be at least 3 items",
		"score":    "must be less than 100",
		"username": "must not be empty",
		"tags[0]":  "must not be empty",
		"origin":   "failed validation: url",
	}

	for _, fe := range validationErrs {
		name := fieldName(fe)

		want, ok := expected[name]
		if assert.True(t, ok, "unexpected field %s", name) {
			assert.Equal(t, want, validationMessage(fe), "field: %s", name)
		}
	}
}

func TestMinMaxMessage(t *testing.T) {
	tests := []struct {
		name  string
		tag   string
		param string
		kind  reflect.Kind
		want  string
	}{
		{"min for string", "min", "5", reflect.String, "must be at least 5 characters"},
		{"max for string", "max", "100", reflect.String, "must be at most 100 characters"},
		{"min for slice", "min", "1", reflect.Slice, "must be at least 1 items"},
		{"min for int", "min", "1", reflect.Int, "must be at least 1"},
		{"max for int", "max", "5", reflect.Int, "must be at most 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, minMaxMessage(tt.tag, tt.param, tt.kind))
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{name: "positive", raw: "42", want: 42},
		{name: "zero", raw: "0", wantErr: true},
		{name: "negative", raw: "-3", wantErr: true},
		{name: "not a number", raw: "fool", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Params = gin.Params{{Key: "id", Value: tt.raw}}

			got, err := ParseID(c, "id")

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsValidation(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterpretRequestToDomain(t *testing.T) {
	req := InterpretRequest{
		UserID:       "u-1",
		SpreadTypeID: 2,
		DeckID:       1,
		CardsDrawn: []DrawnCardInput{
			{CardID: 1, Position: 1},
			{CardID: 17, Position: 2, Reversed: true},
		},
		Question: "Where is this going?",
		Tone:     "direct",
	}

	got := req.ToDomain()

	assert.Equal(t, domain.InterpretationRequest{
		UserID:       "u-1",
		SpreadTypeID: 2,
		DeckID:       1,
		CardsDrawn: []domain.DrawnCard{
			{CardID: 1, Position: 1},
			{CardID: 17, Position: 2, Reversed: true},
		},
		Question: "Where is this going?",
		Tone:     domain.ToneDirect,
	}, got)

	assert.NotNil(t, InterpretRequest{}.ToDomain().CardsDrawn)
}

func TestNewReadingResponse(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty optional text encodes as null", func(t *testing.T) {
		resp := NewReadingResponse(&domain.Reading{ID: 3, SpreadTypeID: 2, DeckID: 1, CreatedAt: created})

		raw, err := json.Marshal(resp)
		require.NoError(t, err)

		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		assert.Nil(t, m["user_id"])
		assert.Nil(t, m["question"])
		assert.Equal(t, []any{}, m["cards_drawn"])
		assert.Contains(t, m, "spread_type_id")
	})

	t.Run("present optional text", func(t *testing.T) {
		resp := NewReadingResponse(&domain.Reading{UserID: "u-1", Question: "Why?", CreatedAt: created})

		require.NotNil(t, resp.UserID)
		require.NotNil(t, resp.Question)
		assert.Equal(t, "u-1", *resp.UserID)
		assert.Equal(t, "Why?", *resp.Question)
	})
}

func TestNewCardResponse(t *testing.T) {
	number := 0

	t.Run("without meaning", func(t *testing.T) {
		resp := NewCardResponse(&domain.CardDetail{Card: domain.Card{
			ID: 1, Name: "The Fool", Number: &number, CardType: domain.CardTypeMajor,
		}})

		raw, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "upright_meaning")
		assert.Contains(t, string(raw), `"card_type":"major"`)
	})

	t.Run("with meaning", func(t *testing.T) {
		resp := NewCardResponse(&domain.CardDetail{
			Card:    domain.Card{ID: 1, Name: "The Fool", CardType: domain.CardTypeMajor},
			Meaning: &domain.CardMeaning{CardID: 1, DeckID: 1, UprightMeaning: "beginnings"},
		})

		require.NotNil(t, resp.DeckID)
		assert.Equal(t, int64(1), *resp.DeckID)
		assert.Equal(t, "beginnings", *resp.UprightMeaning)
		assert.Equal(t, []string{}, resp.UprightKeywords)
	})
}

func TestNewSpreadResponse(t *testing.T) {
	resp := NewSpreadResponse(&domain.SpreadType{
		ID:   2,
		Name: "Past, Present, Future",
		Positions: []domain.SpreadPosition{
			{Name: "Past"}, {Name: "Present"}, {Name: "Future"},
		},
	})

	assert.Equal(t, 3, resp.PositionCount)
	assert.Len(t, resp.Positions, 3)
}

func TestNewContextResponse(t *testing.T) {
	resp := NewContextResponse(&domain.InterpretationContext{
		Spread:              domain.SpreadType{Name: "Single Card", Description: "One card"},
		PastReadingsContext: "earlier readings",
		PastReadingsCount:   2,
	})

	assert.Equal(t, SpreadSummary{Name: "Single Card", Description: "One card"}, resp.Spread)
	assert.Equal(t, []domain.CardContext{}, resp.Cards)
	assert.Equal(t, 2, resp.PastReadingsCount)
}

func TestNewBulkCardMeaningsResponse(t *testing.T) {
	resp := NewBulkCardMeaningsResponse([]domain.CardMeaning{
		{CardID: 1, DeckID: 2, UprightMeaning: "a"},
		{CardID: 2, DeckID: 2, UprightMeaning: "b"},
	})

	assert.Equal(t, "Successfully uploaded 2 card meanings", resp.Message)
	assert.Len(t, resp.CardMeanings, 2)
}

func TestCardMeaningInputToDomain(t *testing.T) {
	got := CardMeaningInput{CardID: 9, UprightMeaning: "up"}.ToDomain(4)

	assert.Equal(t, int64(4), got.DeckID)
	assert.Equal(t, []string{}, got.UprightKeywords)
	assert.Equal(t, []string{}, got.ReversedKeywords)
}

func TestNewStreamErrorEvent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want StreamErrorEvent
	}{
		{
			name: "quota",
			err:  domain.NewQuotaExhaustedError("anthropic", "credit balance is too low"),
			want: StreamErrorEvent{Error: MessageQuotaExhausted, Code: ErrorCodeQuotaExhausted},
		},
		{
			name: "upstream",
			err:  domain.NewUpstreamError("gemini", 0, "stream reset"),
			want: StreamErrorEvent{Error: MessageUpstream, Code: ErrorCodeUpstream},
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			want: StreamErrorEvent{Error: MessageInternal, Code: ErrorCodeInternal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewStreamErrorEvent(tt.err))
		})
	}
}

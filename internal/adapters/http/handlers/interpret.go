package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/tarot-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/tarot-service/internal/app"
	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
)

// InterpretHandler handles generation endpoints.
type InterpretHandler struct {
	service       *app.InterpretationService
	streamTimeout time.Duration
}

// NewInterpretHandler creates a new interpret handler. streamTimeout extends
// the connection write deadline for SSE responses; zero keeps the server's.
func NewInterpretHandler(service *app.InterpretationService, streamTimeout time.Duration) *InterpretHandler {
	return &InterpretHandler{
		service:       service,
		streamTimeout: streamTimeout,
	}
}

func bindInterpretRequest(c *gin.Context) (dto.InterpretRequest, bool) {
	var req dto.InterpretRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return req, false
	}

	return req, true
}

// Interpret handles POST /api/v1/interpret
// Generates the whole interpretation, records the reading, and returns both.
//
// @Summary Interpret a draw
// @Tags interpret
// @Accept json
// @Produce json
// @Param body body dto.InterpretRequest true "Draw"
// @Success 200 {object} dto.InterpretResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/interpret [post]
func (h *InterpretHandler) Interpret(c *gin.Context) {
	req, ok := bindInterpretRequest(c)
	if !ok {
		return
	}

	result, err := h.service.Interpret(c.Request.Context(), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.InterpretResponse{
		Reading:        dto.NewReadingResponse(result.Reading),
		Interpretation: result.Interpretation,
	})
}

// Context handles POST /api/v1/interpret/context
// Returns the assembled context without calling the generator.
func (h *InterpretHandler) Context(c *gin.Context) {
	req, ok := bindInterpretRequest(c)
	if !ok {
		return
	}

	ic, err := h.service.Preview(c.Request.Context(), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewContextResponse(ic))
}

// RefineQuestion handles POST /api/v1/interpret/refine-question
func (h *InterpretHandler) RefineQuestion(c *gin.Context) {
	var req dto.RefineQuestionRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	refined, err := h.service.RefineQuestion(c.Request.Context(), req.Question)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RefineQuestionResponse{Original: req.Question, Refined: refined})
}

// FollowUp handles POST /api/v1/interpret/follow-up
func (h *InterpretHandler) FollowUp(c *gin.Context) {
	var req dto.FollowUpRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	answer, err := h.service.FollowUp(c.Request.Context(), req.ReadingID, req.FollowUpQuestion)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FollowUpResponse{Answer: answer})
}

// ExplainCard handles POST /api/v1/interpret/explain-card
func (h *InterpretHandler) ExplainCard(c *gin.Context) {
	var req dto.ExplainCardRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	explanation, card, err := h.service.ExplainCard(c.Request.Context(), req.ReadingID, req.CardPosition)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ExplainCardResponse{Explanation: explanation, Card: card})
}

// Stream handles POST /api/v1/interpret/stream
// Malformed requests are answered with JSON before the event stream opens.
// After that every outcome is an in-band event: a chunk per text delta, then
// exactly one done or error event.
//
// @Summary Stream an interpretation
// @Tags interpret
// @Accept json
// @Produce text/event-stream
// @Param body body dto.InterpretRequest true "Draw"
// @Success 200 {string} string "data:{chunk} ... data:{done,readingId}"
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/interpret/stream [post]
func (h *InterpretHandler) Stream(c *gin.Context) {
	body, ok := bindInterpretRequest(c)
	if !ok {
		return
	}

	req := body.ToDomain()
	if err := app.ValidateRequest(&req); err != nil {
		dto.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	sink := openEventStream(ctx, c.Writer, h.streamTimeout)

	if err := h.service.Stream(ctx, req, sink); err != nil {
		logging.FromContext(ctx).DebugContext(ctx, "stream ended with error", slog.String("error", err.Error()))
	}
}

// RegisterInterpretRoutes registers the blocking interpret routes on rg and
// the stream route on stream, which must not carry a request timeout.
func (h *InterpretHandler) RegisterInterpretRoutes(rg, stream *gin.RouterGroup) {
	interpret := rg.Group("/interpret")
	interpret.POST("", h.Interpret)
	interpret.POST("/context", h.Context)
	interpret.POST("/refine-question", h.RefineQuestion)
	interpret.POST("/follow-up", h.FollowUp)
	interpret.POST("/explain-card", h.ExplainCard)

	stream.POST("/interpret/stream", h.Stream)
}

// eventSink writes relay events as SSE frames.
type eventSink struct {
	w  gin.ResponseWriter
	rc *http.ResponseController
}

var _ app.StreamSink = (*eventSink)(nil)

func openEventStream(ctx context.Context, w gin.ResponseWriter, deadline time.Duration) *eventSink {
	rc := http.NewResponseController(w)

	if deadline > 0 {
		if err := rc.SetWriteDeadline(time.Now().Add(deadline)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			logging.FromContext(ctx).WarnContext(ctx, "extending stream write deadline",
				slog.String("error", err.Error()))
		}
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	return &eventSink{w: w, rc: rc}
}

func (s *eventSink) send(v any) error {
	if err := sse.Encode(s.w, sse.Event{Data: v}); err != nil {
		return err
	}

	return s.rc.Flush()
}

func (s *eventSink) Chunk(text string) error {
	return s.send(dto.StreamChunkEvent{Chunk: text})
}

func (s *eventSink) Done(readingID int64) error {
	return s.send(dto.StreamDoneEvent{Done: true, ReadingID: readingID})
}

func (s *eventSink) Fail(err error) error {
	return s.send(dto.NewStreamErrorEvent(err))
}

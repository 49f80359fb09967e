package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/tarot-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/tarot-service/internal/app"
)

// ReadingHandler handles reading history and feedback endpoints.
type ReadingHandler struct {
	service *app.ReadingService
}

// NewReadingHandler creates a new reading handler.
func NewReadingHandler(service *app.ReadingService) *ReadingHandler {
	return &ReadingHandler{service: service}
}

// List handles GET /api/v1/readings, newest first.
func (h *ReadingHandler) List(c *gin.Context) {
	readings, err := h.service.List(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReadingListResponse(readings))
}

// Get handles GET /api/v1/readings/:id
func (h *ReadingHandler) Get(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	reading, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReadingResponse(reading))
}

// Create handles POST /api/v1/readings
// Stores a reading with a caller-supplied interpretation; nothing is generated.
func (h *ReadingHandler) Create(c *gin.Context) {
	var req dto.CreateReadingRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	reading, err := h.service.Create(c.Request.Context(), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewReadingResponse(reading))
}

// AddFeedback handles POST /api/v1/readings/:id/feedback
//
// @Summary Rate a reading
// @Tags readings
// @Accept json
// @Produce json
// @Param id path int true "Reading ID"
// @Param body body dto.FeedbackRequest true "Ratings"
// @Success 201 {object} dto.FeedbackResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/readings/{id}/feedback [post]
func (h *ReadingHandler) AddFeedback(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	var req dto.FeedbackRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	fb, err := h.service.AddFeedback(c.Request.Context(), req.ToDomain(id))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewFeedbackResponse(fb))
}

// RegisterReadingRoutes registers reading routes on the given router group.
func (h *ReadingHandler) RegisterReadingRoutes(rg *gin.RouterGroup) {
	readings := rg.Group("/readings")
	readings.GET("", h.List)
	readings.GET("/:id", h.Get)
	readings.POST("", h.Create)
	readings.POST("/:id/feedback", h.AddFeedback)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/tarot-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/tarot-service/internal/app"
)

// DeckHandler handles deck and card-meaning endpoints.
type DeckHandler struct {
	service *app.DeckService
}

// NewDeckHandler creates a new deck handler.
func NewDeckHandler(service *app.DeckService) *DeckHandler {
	return &DeckHandler{service: service}
}

// List handles GET /api/v1/decks
func (h *DeckHandler) List(c *gin.Context) {
	decks, err := h.service.List(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDeckListResponse(decks))
}

// Get handles GET /api/v1/decks/:id
func (h *DeckHandler) Get(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	deck, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDeckResponse(deck))
}

// Create handles POST /api/v1/decks
//
// @Summary Create a deck
// @Tags decks
// @Accept json
// @Produce json
// @Param body body dto.DeckRequest true "Deck"
// @Success 201 {object} dto.DeckResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/decks [post]
func (h *DeckHandler) Create(c *gin.Context) {
	var req dto.DeckRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	deck, err := h.service.Create(c.Request.Context(), req.ToDomain(0))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewDeckResponse(deck))
}

// Update handles PUT /api/v1/decks/:id
func (h *DeckHandler) Update(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	var req dto.DeckRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	deck, err := h.service.Update(c.Request.Context(), req.ToDomain(id))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDeckResponse(deck))
}

// Delete handles DELETE /api/v1/decks/:id
// Meanings of the deck are removed with it.
func (h *DeckHandler) Delete(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	deck, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeckDeletedResponse{
		Message: "Deck deleted successfully",
		Deck:    dto.NewDeckResponse(deck),
	})
}

// ListCardMeanings handles GET /api/v1/decks/:id/card-meanings
func (h *DeckHandler) ListCardMeanings(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	meanings, err := h.service.ListCardMeanings(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDeckCardMeaningListResponse(meanings))
}

// BulkUpsertCardMeanings handles POST /api/v1/decks/:id/card-meanings/bulk
// The batch is written in one transaction; any invalid element rejects all of it.
//
// @Summary Upload card meanings
// @Tags decks
// @Accept json
// @Produce json
// @Param id path int true "Deck ID"
// @Param body body dto.BulkCardMeaningsRequest true "Meanings"
// @Success 201 {object} dto.BulkCardMeaningsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/decks/{id}/card-meanings/bulk [post]
func (h *DeckHandler) BulkUpsertCardMeanings(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	var req dto.BulkCardMeaningsRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	saved, err := h.service.BulkUpsertCardMeanings(c.Request.Context(), id, req.ToDomain(id))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewBulkCardMeaningsResponse(saved))
}

// UpdateCardMeaning handles PUT /api/v1/decks/:id/card-meanings/:cardId
func (h *DeckHandler) UpdateCardMeaning(c *gin.Context) {
	deckID, cardID, ok := meaningKey(c)
	if !ok {
		return
	}

	var req dto.CardMeaningInput
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	req.CardID = cardID

	updated, err := h.service.UpdateCardMeaning(c.Request.Context(), req.ToDomain(deckID))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCardMeaningResponse(updated))
}

// DeleteCardMeaning handles DELETE /api/v1/decks/:id/card-meanings/:cardId
func (h *DeckHandler) DeleteCardMeaning(c *gin.Context) {
	deckID, cardID, ok := meaningKey(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCardMeaning(c.Request.Context(), deckID, cardID); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Card meaning deleted successfully"})
}

func meaningKey(c *gin.Context) (int64, int64, bool) {
	deckID, err := dto.ParseID(c, "id")
	if err != nil {
		dto.HandleError(c, err)
		return 0, 0, false
	}

	cardID, err := dto.ParseID(c, "cardId")
	if err != nil {
		dto.HandleError(c, err)
		return 0, 0, false
	}

	return deckID, cardID, true
}

// RegisterDeckRoutes registers deck routes on the given router group.
// Mutating routes run behind guard, which may be empty.
func (h *DeckHandler) RegisterDeckRoutes(rg *gin.RouterGroup, guard ...gin.HandlerFunc) {
	decks := rg.Group("/decks")
	decks.GET("", h.List)
	decks.GET("/:id", h.Get)
	decks.GET("/:id/card-meanings", h.ListCardMeanings)

	manage := decks.Group("", guard...)
	manage.POST("", h.Create)
	manage.PUT("/:id", h.Update)
	manage.DELETE("/:id", h.Delete)
	manage.POST("/:id/card-meanings/bulk", h.BulkUpsertCardMeanings)
	manage.PUT("/:id/card-meanings/:cardId", h.UpdateCardMeaning)
	manage.DELETE("/:id/card-meanings/:cardId", h.DeleteCardMeaning)
}

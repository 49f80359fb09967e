package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/tarot-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/tarot-service/internal/app"
)

// CatalogHandler serves the read-only card and spread endpoints.
type CatalogHandler struct {
	service *app.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service *app.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListCards handles GET /api/v1/cards
// Returns every card, joined with a deck's meanings when deckId is given.
//
// @Summary List cards
// @Tags cards
// @Produce json
// @Param deckId query int false "Deck ID"
// @Success 200 {array} dto.CardResponse
// @Router /api/v1/cards [get]
func (h *CatalogHandler) ListCards(c *gin.Context) {
	var q dto.CardQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	cards, err := h.service.ListCards(c.Request.Context(), q.DeckID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCardListResponse(cards))
}

// GetCard handles GET /api/v1/cards/:id
//
// @Summary Get a card
// @Tags cards
// @Produce json
// @Param id path int true "Card ID"
// @Param deckId query int false "Deck ID"
// @Success 200 {object} dto.CardResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/cards/{id} [get]
func (h *CatalogHandler) GetCard(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	var q dto.CardQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	card, err := h.service.GetCard(c.Request.Context(), id, q.DeckID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCardResponse(card))
}

// ListSpreads handles GET /api/v1/spreads
func (h *CatalogHandler) ListSpreads(c *gin.Context) {
	spreads, err := h.service.ListSpreads(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSpreadListResponse(spreads))
}

// GetSpread handles GET /api/v1/spreads/:id
func (h *CatalogHandler) GetSpread(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	spread, err := h.service.GetSpread(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSpreadResponse(spread))
}

// RegisterCatalogRoutes registers card and spread routes on the given router group.
func (h *CatalogHandler) RegisterCatalogRoutes(rg *gin.RouterGroup) {
	cards := rg.Group("/cards")
	cards.GET("", h.ListCards)
	cards.GET("/:id", h.GetCard)

	spreads := rg.Group("/spreads")
	spreads.GET("", h.ListSpreads)
	spreads.GET("/:id", h.GetSpread)
}

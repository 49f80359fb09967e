package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// CatalogService serves the read-only card and spread catalog.
type CatalogService struct {
	cards   ports.CardRepository
	spreads ports.SpreadRepository
	logger  *slog.Logger
}

// CatalogServiceConfig contains the dependencies of CatalogService.
type CatalogServiceConfig struct {
	Cards   ports.CardRepository
	Spreads ports.SpreadRepository
	Logger  *slog.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(cfg CatalogServiceConfig) *CatalogService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &CatalogService{
		cards:   cfg.Cards,
		spreads: cfg.Spreads,
		logger:  logger.With(slog.String("component", "app.CatalogService")),
	}
}

// ListCards returns every card, joined with deckID's meanings when deckID > 0.
func (s *CatalogService) ListCards(ctx context.Context, deckID int64) ([]domain.CardDetail, error) {
	cards, err := s.cards.List(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}

	return cards, nil
}

// GetCard returns one card, joined with deckID's meaning when deckID > 0.
func (s *CatalogService) GetCard(ctx context.Context, id, deckID int64) (*domain.CardDetail, error) {
	card, err := s.cards.Get(ctx, id, deckID)
	if err != nil {
		return nil, fmt.Errorf("getting card: %w", err)
	}

	return card, nil
}

// ListSpreads returns every spread ordered by name.
func (s *CatalogService) ListSpreads(ctx context.Context) ([]domain.SpreadType, error) {
	spreads, err := s.spreads.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing spreads: %w", err)
	}

	return spreads, nil
}

// GetSpread returns one spread.
func (s *CatalogService) GetSpread(ctx context.Context, id int64) (*domain.SpreadType, error) {
	spread, err := s.spreads.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting spread: %w", err)
	}

	return spread, nil
}

package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// ReadingService stores readings and their feedback. Record is the single
// write path used once an interpretation has been generated.
type ReadingService struct {
	readings ports.ReadingRepository
	spreads  ports.SpreadRepository
	logger   *slog.Logger
}

// ReadingServiceConfig contains the dependencies of ReadingService.
type ReadingServiceConfig struct {
	Readings ports.ReadingRepository
	Spreads  ports.SpreadRepository
	Logger   *slog.Logger
}

// NewReadingService creates a reading service.
func NewReadingService(cfg ReadingServiceConfig) *ReadingService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ReadingService{
		readings: cfg.Readings,
		spreads:  cfg.Spreads,
		logger:   logger.With(slog.String("component", "app.ReadingService")),
	}
}

// List returns readings newest first.
func (s *ReadingService) List(ctx context.Context) ([]domain.Reading, error) {
	readings, err := s.readings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing readings: %w", err)
	}

	return readings, nil
}

// Get returns one reading.
func (s *ReadingService) Get(ctx context.Context, id int64) (*domain.Reading, error) {
	reading, err := s.readings.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting reading: %w", err)
	}

	return reading, nil
}

// Create stores a caller-supplied reading after checking its draw against
// the spread.
func (s *ReadingService) Create(ctx context.Context, reading domain.Reading) (*domain.Reading, error) {
	if err := reading.Validate(); err != nil {
		return nil, err
	}

	spread, err := s.spreads.Get(ctx, reading.SpreadTypeID)
	if err != nil {
		return nil, fmt.Errorf("getting spread: %w", err)
	}

	if err := domain.ValidateDraw(*spread, reading.CardsDrawn); err != nil {
		return nil, err
	}

	return s.Record(ctx, reading)
}

// Record persists a completed reading. Context assembly has already checked
// every position against the spread; positions may repeat.
func (s *ReadingService) Record(ctx context.Context, reading domain.Reading) (*domain.Reading, error) {
	if err := reading.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.readings.Create(ctx, reading)
	if err != nil {
		return nil, fmt.Errorf("recording reading: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "reading recorded",
		slog.Int64("reading_id", saved.ID),
		slog.Int64("spread_type_id", saved.SpreadTypeID),
		slog.Int("cards", len(saved.CardsDrawn)),
	)

	return saved, nil
}

// AddFeedback attaches ratings to a reading.
func (s *ReadingService) AddFeedback(ctx context.Context, fb domain.ReadingFeedback) (*domain.ReadingFeedback, error) {
	if err := fb.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.readings.AddFeedback(ctx, fb)
	if err != nil {
		return nil, fmt.Errorf("adding feedback: %w", err)
	}

	return saved, nil
}

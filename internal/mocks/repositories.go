package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

var (
	_ ports.CardRepository      = (*MockCardRepository)(nil)
	_ ports.SpreadRepository    = (*MockSpreadRepository)(nil)
	_ ports.DeckRepository      = (*MockDeckRepository)(nil)
	_ ports.ReadingRepository   = (*MockReadingRepository)(nil)
	_ ports.PastExampleProvider = (*MockPastExampleProvider)(nil)
)

// ret0 returns the first return value as T, or the zero value when it is nil.
func ret0[T any](args mock.Arguments) T {
	var zero T

	v := args.Get(0)
	if v == nil {
		return zero
	}

	if fn, ok := v.(func() T); ok {
		return fn()
	}

	return v.(T)
}

// MockCardRepository mocks ports.CardRepository.
type MockCardRepository struct{ mock.Mock }

// NewMockCardRepository creates a card repository mock bound to t.
func NewMockCardRepository(t testing.TB) *MockCardRepository {
	m := &MockCardRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockCardRepository) List(ctx context.Context, deckID int64) ([]domain.CardDetail, error) {
	args := m.Called(ctx, deckID)

	return ret0[[]domain.CardDetail](args), args.Error(1)
}

func (m *MockCardRepository) Get(ctx context.Context, id, deckID int64) (*domain.CardDetail, error) {
	args := m.Called(ctx, id, deckID)

	return ret0[*domain.CardDetail](args), args.Error(1)
}

func (m *MockCardRepository) GetMany(
	ctx context.Context,
	ids []int64,
	deckID int64,
) (map[int64]domain.CardDetail, error) {
	args := m.Called(ctx, ids, deckID)

	return ret0[map[int64]domain.CardDetail](args), args.Error(1)
}

// MockSpreadRepository mocks ports.SpreadRepository.
type MockSpreadRepository struct{ mock.Mock }

// NewMockSpreadRepository creates a spread repository mock bound to t.
func NewMockSpreadRepository(t testing.TB) *MockSpreadRepository {
	m := &MockSpreadRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSpreadRepository) List(ctx context.Context) ([]domain.SpreadType, error) {
	args := m.Called(ctx)

	return ret0[[]domain.SpreadType](args), args.Error(1)
}

func (m *MockSpreadRepository) Get(ctx context.Context, id int64) (*domain.SpreadType, error) {
	args := m.Called(ctx, id)

	return ret0[*domain.SpreadType](args), args.Error(1)
}

// MockDeckRepository mocks ports.DeckRepository.
type MockDeckRepository struct{ mock.Mock }

// NewMockDeckRepository creates a deck repository mock bound to t.
func NewMockDeckRepository(t testing.TB) *MockDeckRepository {
	m := &MockDeckRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockDeckRepository) List(ctx context.Context) ([]domain.Deck, error) {
	args := m.Called(ctx)

	return ret0[[]domain.Deck](args), args.Error(1)
}

func (m *MockDeckRepository) Get(ctx context.Context, id int64) (*domain.Deck, error) {
	args := m.Called(ctx, id)

	return ret0[*domain.Deck](args), args.Error(1)
}

func (m *MockDeckRepository) Create(ctx context.Context, deck domain.Deck) (*domain.Deck, error) {
	args := m.Called(ctx, deck)

	return ret0[*domain.Deck](args), args.Error(1)
}

func (m *MockDeckRepository) Update(ctx context.Context, deck domain.Deck) (*domain.Deck, error) {
	args := m.Called(ctx, deck)

	return ret0[*domain.Deck](args), args.Error(1)
}

func (m *MockDeckRepository) Delete(ctx context.Context, id int64) (*domain.Deck, error) {
	args := m.Called(ctx, id)

	return ret0[*domain.Deck](args), args.Error(1)
}

func (m *MockDeckRepository) ListCardMeanings(ctx context.Context, deckID int64) ([]domain.DeckCardMeaning, error) {
	args := m.Called(ctx, deckID)

	return ret0[[]domain.DeckCardMeaning](args), args.Error(1)
}

func (m *MockDeckRepository) BulkUpsertCardMeanings(
	ctx context.Context,
	deckID int64,
	meanings []domain.CardMeaning,
) ([]domain.CardMeaning, error) {
	args := m.Called(ctx, deckID, meanings)

	return ret0[[]domain.CardMeaning](args), args.Error(1)
}

func (m *MockDeckRepository) UpdateCardMeaning(ctx context.Context, meaning domain.CardMeaning) (*domain.CardMeaning, error) {
	args := m.Called(ctx, meaning)

	return ret0[*domain.CardMeaning](args), args.Error(1)
}

func (m *MockDeckRepository) DeleteCardMeaning(ctx context.Context, deckID, cardID int64) error {
	return m.Called(ctx, deckID, cardID).Error(0)
}

// MockReadingRepository mocks ports.ReadingRepository.
type MockReadingRepository struct{ mock.Mock }

// NewMockReadingRepository creates a reading repository mock bound to t.
func NewMockReadingRepository(t testing.TB) *MockReadingRepository {
	m := &MockReadingRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockReadingRepository) List(ctx context.Context) ([]domain.Reading, error) {
	args := m.Called(ctx)

	return ret0[[]domain.Reading](args), args.Error(1)
}

func (m *MockReadingRepository) Get(ctx context.Context, id int64) (*domain.Reading, error) {
	args := m.Called(ctx, id)

	return ret0[*domain.Reading](args), args.Error(1)
}

func (m *MockReadingRepository) Create(ctx context.Context, reading domain.Reading) (*domain.Reading, error) {
	args := m.Called(ctx, reading)

	return ret0[*domain.Reading](args), args.Error(1)
}

func (m *MockReadingRepository) AddFeedback(
	ctx context.Context,
	fb domain.ReadingFeedback,
) (*domain.ReadingFeedback, error) {
	args := m.Called(ctx, fb)

	return ret0[*domain.ReadingFeedback](args), args.Error(1)
}

// MockPastExampleProvider mocks ports.PastExampleProvider.
type MockPastExampleProvider struct{ mock.Mock }

// NewMockPastExampleProvider creates a past example provider mock bound to t.
func NewMockPastExampleProvider(t testing.TB) *MockPastExampleProvider {
	m := &MockPastExampleProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPastExampleProvider) Sample(ctx context.Context, limit, minRating int) ([]domain.PastExample, error) {
	args := m.Called(ctx, limit, minRating)

	return ret0[[]domain.PastExample](args), args.Error(1)
}

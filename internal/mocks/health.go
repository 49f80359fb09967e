package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/tarot-service/internal/ports"
)

var _ ports.HealthRegistry = (*MockHealthRegistry)(nil)

// MockHealthRegistry mocks ports.HealthRegistry.
type MockHealthRegistry struct{ mock.Mock }

// NewMockHealthRegistry creates a health registry mock bound to t.
func NewMockHealthRegistry(t testing.TB) *MockHealthRegistry {
	m := &MockHealthRegistry{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockHealthRegistry) Register(checker ports.HealthChecker) error {
	return m.Called(checker).Error(0)
}

func (m *MockHealthRegistry) CheckAll(ctx context.Context) *ports.HealthResult {
	return ret0[*ports.HealthResult](m.Called(ctx))
}

package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/tarot-service/internal/ports"
)

var (
	_ ports.Generator    = (*MockGenerator)(nil)
	_ ports.FeatureFlags = (*MockFeatureFlags)(nil)
)

// MockGenerator mocks ports.Generator.
type MockGenerator struct{ mock.Mock }

// NewMockGenerator creates a generator mock bound to t.
func NewMockGenerator(t testing.TB) *MockGenerator {
	m := &MockGenerator{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)

	return args.String(0), args.Error(1)
}

func (m *MockGenerator) Stream(ctx context.Context, prompt string) (<-chan ports.StreamChunk, error) {
	args := m.Called(ctx, prompt)

	if fn, ok := args.Get(0).(func(context.Context) <-chan ports.StreamChunk); ok {
		return fn(ctx), args.Error(1)
	}

	return ret0[<-chan ports.StreamChunk](args), args.Error(1)
}

// Chunks returns a Stream return value that emits texts in order and then
// closes, stopping early if the stream context is cancelled. A non-nil
// final error is sent after the texts.
func Chunks(final error, texts ...string) func(context.Context) <-chan ports.StreamChunk {
	return func(ctx context.Context) <-chan ports.StreamChunk {
		ch := make(chan ports.StreamChunk)

		go func() {
			defer close(ch)

			for _, text := range texts {
				select {
				case ch <- ports.StreamChunk{Text: text}:
				case <-ctx.Done():
					return
				}
			}

			if final != nil {
				select {
				case ch <- ports.StreamChunk{Err: final}:
				case <-ctx.Done():
				}
			}
		}()

		return ch
	}
}

// MockFeatureFlags mocks ports.FeatureFlags.
type MockFeatureFlags struct{ mock.Mock }

// NewMockFeatureFlags creates a feature flag mock bound to t.
func NewMockFeatureFlags(t testing.TB) *MockFeatureFlags {
	m := &MockFeatureFlags{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockFeatureFlags) IsEnabled(ctx context.Context, flag string, defaultValue bool) bool {
	return m.Called(ctx, flag, defaultValue).Bool(0)
}

func (m *MockFeatureFlags) GetInt(ctx context.Context, flag string, defaultValue int) int {
	return m.Called(ctx, flag, defaultValue).Int(0)
}

package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name string
	err  error
}

func (s *stubChecker) Name() string                  { return s.name }
func (s *stubChecker) Check(_ context.Context) error { return s.err }

type slowChecker struct{ name string }

func (s *slowChecker) Name() string { return s.name }

func (s *slowChecker) Check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func TestRegister_DuplicateName(t *testing.T) {
	registry := NewHealthRegistry()

	require.NoError(t, registry.Register(&stubChecker{name: "sqlite"}))

	err := registry.Register(&stubChecker{name: "sqlite"})
	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "sqlite")
	assert.Len(t, registry.checkers, 1)
}

func TestCheckAll(t *testing.T) {
	tests := []struct {
		name       string
		checkers   []HealthChecker
		wantStatus HealthStatus
		wantChecks map[string]HealthStatus
	}{
		{
			name:       "empty registry is healthy",
			wantStatus: HealthStatusHealthy,
			wantChecks: map[string]HealthStatus{},
		},
		{
			name: "all healthy",
			checkers: []HealthChecker{
				&stubChecker{name: "sqlite"},
				&stubChecker{name: "anthropic"},
			},
			wantStatus: HealthStatusHealthy,
			wantChecks: map[string]HealthStatus{
				"sqlite":    HealthStatusHealthy,
				"anthropic": HealthStatusHealthy,
			},
		},
		{
			name: "one failing checker makes the result unhealthy",
			checkers: []HealthChecker{
				&stubChecker{name: "sqlite"},
				&stubChecker{name: "anthropic", err: errors.New("circuit open")},
			},
			wantStatus: HealthStatusUnhealthy,
			wantChecks: map[string]HealthStatus{
				"sqlite":    HealthStatusHealthy,
				"anthropic": HealthStatusUnhealthy,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewHealthRegistry()
			for _, c := range tt.checkers {
				require.NoError(t, registry.Register(c))
			}

			result := registry.CheckAll(context.Background())

			require.NotNil(t, result)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.False(t, result.Timestamp.IsZero())
			require.Len(t, result.Checks, len(tt.wantChecks))

			for name, status := range tt.wantChecks {
				assert.Equal(t, status, result.Checks[name].Status, name)
			}
		})
	}
}

func TestCheckAll_FailureMessage(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(&stubChecker{name: "sqlite", err: errors.New("database is locked")}))

	result := registry.CheckAll(context.Background())

	assert.Equal(t, "database is locked", result.Checks["sqlite"].Message)
}

func TestCheckAll_ContextCancelled(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(&slowChecker{name: "gemini"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := registry.CheckAll(ctx)

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["gemini"].Message, "context canceled")
}

type panickyChecker struct{}

func (panickyChecker) Name() string                  { return "anthropic" }
func (panickyChecker) Check(_ context.Context) error { panic("nil transport") }

func TestCheckAll_PanickingCheckIsUnhealthy(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(&stubChecker{name: "sqlite"}))
	require.NoError(t, registry.Register(panickyChecker{}))

	result := registry.CheckAll(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Equal(t, HealthStatusHealthy, result.Checks["sqlite"].Status)
	assert.Equal(t, "check panicked: nil transport", result.Checks["anthropic"].Message)
}

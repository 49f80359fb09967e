package acl

import (
	"context"
	"fmt"
	"time"

	"github.com/jsamuelsen/tarot-service/internal/adapters/clients"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// CircuitReporter exposes a gateway's circuit breaker.
type CircuitReporter interface {
	CircuitState() clients.State
	CircuitRetryAfter() time.Duration
}

// GatewayHealth reports a generation gateway as unhealthy while its circuit
// is open. It never calls the provider.
type GatewayHealth struct {
	provider string
	circuit  CircuitReporter
}

var _ ports.HealthChecker = (*GatewayHealth)(nil)

// NewGatewayHealth creates a health checker for the named provider.
func NewGatewayHealth(provider string, circuit CircuitReporter) *GatewayHealth {
	return &GatewayHealth{provider: provider, circuit: circuit}
}

// Name implements ports.HealthChecker.
func (h *GatewayHealth) Name() string {
	return "llm:" + h.provider
}

// Check implements ports.HealthChecker.
func (h *GatewayHealth) Check(context.Context) error {
	if h.circuit.CircuitState() == clients.StateOpen {
		return fmt.Errorf("%s circuit open, retry in %s",
			h.provider, h.circuit.CircuitRetryAfter().Round(time.Second))
	}

	return nil
}

package acl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/jsamuelsen/tarot-service/internal/adapters/clients"
	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// ProviderGemini names the Gemini API in errors and logs.
const ProviderGemini = "gemini"

// GeminiConfig configures the Gemini gateway.
type GeminiConfig struct {
	APIKey    string
	Model     string
	MaxTokens int

	// BaseURL overrides the Gemini endpoint. Empty uses the SDK default.
	BaseURL string

	Timeout       time.Duration
	StreamTimeout time.Duration

	// Circuit guards calls the same way clients.Client does for HTTP providers.
	Circuit clients.CircuitBreakerConfig

	// HTTPClient is optional.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// GeminiGateway implements ports.Generator over the Gemini SDK.
type GeminiGateway struct {
	models *genai.Models
	cfg    GeminiConfig
	cb     *clients.CircuitBreaker
}

var _ ports.Generator = (*GeminiGateway)(nil)

// NewGeminiGateway creates a Gemini client for cfg.APIKey.
func NewGeminiGateway(ctx context.Context, cfg GeminiConfig) (*GeminiGateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cb := clients.NewCircuitBreaker(cfg.Circuit)
	cb.OnStateChange(func(from, to clients.State) {
		logger.Warn("circuit breaker state changed",
			slog.String("downstream", ProviderGemini),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	return &GeminiGateway{models: client.Models, cfg: cfg, cb: cb}, nil
}

// CircuitState returns the state of the gateway's circuit breaker.
func (g *GeminiGateway) CircuitState() clients.State {
	return g.cb.State()
}

// CircuitRetryAfter returns how long an open circuit keeps blocking calls.
func (g *GeminiGateway) CircuitRetryAfter() time.Duration {
	return g.cb.RetryAfter()
}

func (g *GeminiGateway) contents(prompt string) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
}

func (g *GeminiGateway) config() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if g.cfg.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.cfg.MaxTokens) //nolint:gosec // bounded by config validation
	}

	return cfg
}

// record feeds the outcome of a call into the breaker. Cancellation by the
// caller says nothing about provider health.
func (g *GeminiGateway) record(err error) {
	switch {
	case err == nil:
		g.cb.RecordSuccess()
	case errors.Is(err, context.Canceled):
		g.cb.RecordSuccess()
	default:
		g.cb.RecordFailure()
	}
}

// Generate sends prompt and returns the reply text.
func (g *GeminiGateway) Generate(ctx context.Context, prompt string) (string, error) {
	if !g.cb.Allow() {
		return "", domain.NewUnavailableError(ProviderGemini, "circuit breaker open")
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.cfg.Model, g.contents(prompt), g.config())
	g.record(err)

	if err != nil {
		return "", MapGenAIError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", domain.NewUpstreamError(ProviderGemini, 0, "reply has no text content")
	}

	return text, nil
}

// Stream sends prompt and relays each partial reply as a chunk.
func (g *GeminiGateway) Stream(ctx context.Context, prompt string) (<-chan ports.StreamChunk, error) {
	if !g.cb.Allow() {
		return nil, domain.NewUnavailableError(ProviderGemini, "circuit breaker open")
	}

	streamCtx, cancel := ctx, context.CancelFunc(func() {})
	if g.cfg.StreamTimeout > 0 {
		streamCtx, cancel = context.WithTimeout(ctx, g.cfg.StreamTimeout)
	}

	out := make(chan ports.StreamChunk)

	go func() {
		defer cancel()
		defer close(out)

		logger := logging.FromContext(ctx).With(slog.String("provider", ProviderGemini))

		var streamErr error

		for resp, err := range g.models.GenerateContentStream(streamCtx, g.cfg.Model, g.contents(prompt), g.config()) {
			if err != nil {
				streamErr = err

				break
			}

			text := resp.Text()
			if text == "" {
				continue
			}

			select {
			case out <- ports.StreamChunk{Text: text}:
			case <-ctx.Done():
				g.record(ctx.Err())

				return
			}
		}

		g.record(streamErr)

		if streamErr == nil || ctx.Err() != nil {
			return
		}

		logger.DebugContext(ctx, "gemini stream failed", slog.Any("error", streamErr))

		select {
		case out <- ports.StreamChunk{Err: MapGenAIError(streamErr)}:
		case <-ctx.Done():
		}
	}()

	return out, nil
}

// MapGenAIError maps a Gemini SDK error to a domain error.
func MapGenAIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return ClassifyStatus(ProviderGemini, apiErr.Code, apiErr.Message)
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return ClassifyStatus(ProviderGemini, apiErrPtr.Code, apiErrPtr.Message)
	}

	return mapClientError(err, ProviderGemini)
}

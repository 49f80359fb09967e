package acl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jsamuelsen/tarot-service/internal/adapters/clients"
	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// ProviderAnthropic names the Anthropic Messages API in errors and logs.
const ProviderAnthropic = "anthropic"

const (
	// DefaultAnthropicVersion is sent as the anthropic-version header.
	DefaultAnthropicVersion = "2023-06-01"

	anthropicMessagesPath = "/messages"

	// maxSSELine bounds one line of the event stream.
	maxSSELine = 1 << 20
)

// AnthropicConfig configures the Anthropic gateway.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	Version   string
	MaxTokens int

	// Timeout bounds a blocking Generate call.
	Timeout time.Duration

	// StreamTimeout bounds a whole streamed generation.
	StreamTimeout time.Duration
}

// AnthropicGateway implements ports.Generator over the Anthropic Messages API.
type AnthropicGateway struct {
	BaseAdapter

	cfg AnthropicConfig
}

var _ ports.Generator = (*AnthropicGateway)(nil)

// NewAnthropicGateway creates a gateway on client. The client must be built
// with Retry.MaxAttempts of 1; generation requests are not idempotent.
func NewAnthropicGateway(client *clients.Client, cfg AnthropicConfig) *AnthropicGateway {
	if cfg.Version == "" {
		cfg.Version = DefaultAnthropicVersion
	}

	return &AnthropicGateway{
		BaseAdapter: NewBaseAdapter(client, ProviderAnthropic),
		cfg:         cfg,
	}
}

// AuthFunc returns the clients.Config AuthFunc that signs Anthropic requests.
func (cfg AnthropicConfig) AuthFunc() func(*http.Request) {
	version := cfg.Version
	if version == "" {
		version = DefaultAnthropicVersion
	}

	return func(r *http.Request) {
		r.Header.Set("x-api-key", cfg.APIKey)
		r.Header.Set("anthropic-version", version)
	}
}

// messageRequest is the Messages API request body.
type messageRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	Messages  []messageParam `json:"messages"`
	Stream    bool           `json:"stream,omitempty"`
}

type messageParam struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messageResponse is the subset of a Messages API reply the gateway reads.
type messageResponse struct {
	ID         string         `json:"id"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// streamEvent is one SSE data payload of a streamed reply.
type streamEvent struct {
	Type  string      `json:"type"`
	Delta streamDelta `json:"delta"`
	Error ErrorDetail `json:"error"`
}

type streamDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (g *AnthropicGateway) newRequest(ctx context.Context, prompt string, stream bool) (*http.Request, error) {
	return g.NewJSONRequest(ctx, g.Client().URL(anthropicMessagesPath), messageRequest{
		Model:     g.cfg.Model,
		MaxTokens: g.cfg.MaxTokens,
		Messages:  []messageParam{{Role: "user", Content: prompt}},
		Stream:    stream,
	})
}

// firstText returns the first text block of a reply.
func firstText(resp *messageResponse) (string, error) {
	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", domain.NewUpstreamError(ProviderAnthropic, 0, "reply has no text content")
}

// Generate sends prompt and returns the first text block of the reply.
func (g *AnthropicGateway) Generate(ctx context.Context, prompt string) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	req, err := g.newRequest(ctx, prompt, false)
	if err != nil {
		return "", err
	}

	body, err := g.DoRequest(ctx, req)
	if err != nil {
		return "", err
	}

	return Translate[messageResponse, string](body, ProviderAnthropic, firstText)
}

// Stream sends prompt with streaming enabled and relays text deltas.
func (g *AnthropicGateway) Stream(ctx context.Context, prompt string) (<-chan ports.StreamChunk, error) {
	streamCtx, cancel := ctx, context.CancelFunc(func() {})
	if g.cfg.StreamTimeout > 0 {
		streamCtx, cancel = context.WithTimeout(ctx, g.cfg.StreamTimeout)
	}

	req, err := g.newRequest(streamCtx, prompt, true)
	if err != nil {
		cancel()

		return nil, err
	}

	body, err := g.DoStreamRequest(streamCtx, req)
	if err != nil {
		cancel()

		return nil, err
	}

	out := make(chan ports.StreamChunk)

	go func() {
		defer cancel()
		defer close(out)
		defer func() { _ = body.Close() }()

		relayEvents(ctx, streamCtx, body, out)
	}()

	return out, nil
}

// relayEvents parses the event stream in body and sends deltas to out until
// message_stop or an error event. Nothing is sent once ctx, the consumer's
// context, is done; streamCtx additionally carries the stream timeout.
func relayEvents(ctx, streamCtx context.Context, body io.Reader, out chan<- ports.StreamChunk) {
	logger := logging.FromContext(ctx).With(slog.String("provider", ProviderAnthropic))

	send := func(chunk ports.StreamChunk) bool {
		select {
		case out <- chunk:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64<<10), maxSSELine)

	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data:")
		if !ok {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &ev); err != nil {
			logger.DebugContext(ctx, "skipping malformed stream event", slog.Any("error", err))

			continue
		}

		switch ev.Type {
		case "content_block_delta":
			if ev.Delta.Type != "text_delta" || ev.Delta.Text == "" {
				continue
			}

			if !send(ports.StreamChunk{Text: ev.Delta.Text}) {
				return
			}
		case "message_stop":
			return
		case "error":
			send(ports.StreamChunk{Err: ClassifyStatus(ProviderAnthropic, 0, ev.Error.Message)})

			return
		}
	}

	if ctx.Err() != nil {
		return
	}

	if errors.Is(streamCtx.Err(), context.DeadlineExceeded) {
		send(ports.StreamChunk{Err: domain.NewUnavailableError(ProviderAnthropic, "stream timed out")})

		return
	}

	reason := "stream ended before message_stop"
	if err := scanner.Err(); err != nil {
		reason = fmt.Sprintf("stream interrupted: %v", err)
	}

	send(ports.StreamChunk{Err: domain.NewUpstreamError(ProviderAnthropic, 0, reason)})
}

// CircuitState returns the state of the underlying client's circuit breaker.
func (g *AnthropicGateway) CircuitState() clients.State {
	return g.Client().CircuitState()
}

// CircuitRetryAfter returns how long an open circuit keeps blocking calls.
func (g *AnthropicGateway) CircuitRetryAfter() time.Duration {
	return g.Client().CircuitRetryAfter()
}

package clients

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jsamuelsen/tarot-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/tarot-service/internal/platform/config"
	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
)

const (
	defaultTimeout = 30 * time.Second

	transportMaxIdleConns        = 100
	transportMaxIdleConnsPerHost = 10
	transportIdleConnTimeout     = 90 * time.Second
)

// Config configures a Client for one generation provider.
type Config struct {
	// BaseURL prefixes every path passed to Post and URL.
	BaseURL string

	// ServiceName identifies the provider in logs, spans and metrics.
	ServiceName string

	// Timeout bounds each attempt of Do. Retries and backoff come on top.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// AuthFunc sets credentials on a request. It runs before every attempt.
	AuthFunc func(*http.Request)

	Logger *slog.Logger
}

// Client calls a generation provider over HTTP. Requests pass through a
// circuit breaker, carry trace and request ID headers, and are retried with
// jittered exponential backoff on 5xx and network errors.
//
// Streaming requests go through DoStream, which is bounded by the request
// context instead of Timeout and is never retried.
type Client struct {
	http        *http.Client
	stream      *http.Client
	baseURL     string
	serviceName string
	cfg         *Config
	logger      *slog.Logger
	cb          *CircuitBreaker
	retry       retryPolicy
	telemetry   *instruments
}

// New creates a client for cfg. ServiceName is required.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	logger := cmp.Or(cfg.Logger, slog.Default()).With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})
	cb.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	inst, err := newInstruments(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	transport := newTransport(cfg.Transport)

	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout, Transport: transport},
		stream:      &http.Client{Transport: transport},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName: cfg.ServiceName,
		cfg:         cfg,
		logger:      logger,
		cb:          cb,
		retry:       newRetryPolicy(cfg.Retry),
		telemetry:   inst,
	}, nil
}

func newTransport(tc config.TransportConfig) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is an *http.Transport
	t.MaxIdleConns = cmp.Or(tc.MaxIdleConns, transportMaxIdleConns)
	t.MaxIdleConnsPerHost = cmp.Or(tc.MaxIdleConnsPerHost, transportMaxIdleConnsPerHost)
	t.IdleConnTimeout = cmp.Or(tc.IdleConnTimeout, transportIdleConnTimeout)

	return t
}

// Do sends req with retries. Retried requests must have no body or a
// GetBody func. A 5xx on the final attempt is returned to the caller with
// its body intact.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.do(ctx, req, c.http, c.cfg.Retry.MaxAttempts)
}

// DoStream sends req once without the client timeout so the caller can
// read a long-lived body. Cancel ctx to stop the stream.
func (c *Client) DoStream(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.do(ctx, req, c.stream, 1)
}

// Post sends a JSON body to path.
func (c *Client) Post(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.Do(ctx, req)
}

// URL resolves path against the configured base URL.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

// CircuitState returns the current state of the circuit breaker.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

// CircuitRetryAfter returns how long an open circuit keeps blocking requests.
func (c *Client) CircuitRetryAfter() time.Duration {
	return c.cb.RetryAfter()
}

func (c *Client) do(ctx context.Context, req *http.Request, hc *http.Client, attempts int) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.cb.Allow() {
		c.telemetry.record(ctx, req.Method, 0, time.Since(start), "circuit_open")
		logger.WarnContext(ctx, "request blocked by circuit breaker")

		return nil, ErrCircuitOpen
	}

	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}

	ctx, span := c.telemetry.startSpan(ctx, req)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.send(ctx, req, hc, max(attempts, 1), logger)
	duration := time.Since(start)

	if err != nil {
		c.cb.RecordFailure()
		c.telemetry.fail(ctx, span, req.Method, duration, err)
		logger.ErrorContext(ctx, "request failed", slog.Duration("duration", duration), slog.Any("error", err))

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.cb.RecordFailure()
	} else {
		c.cb.RecordSuccess()
	}

	c.telemetry.complete(ctx, span, req.Method, resp.StatusCode, duration)
	logger.DebugContext(ctx, "request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp, nil
}

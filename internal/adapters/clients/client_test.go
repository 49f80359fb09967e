package clients

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/tarot-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/tarot-service/internal/platform/config"
)

func defaultConfig() *Config {
	return &Config{
		ServiceName: "llm-test",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 2,
		},
	}
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()

	if err := resp.Body.Close(); err != nil {
		t.Errorf("failed to close response body: %v", err)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*Config)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	if mutate != nil {
		mutate(cfg)
	}

	client, err := New(cfg)
	require.NoError(t, err)

	return client
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)

	_, err = New(&Config{})
	require.Error(t, err)

	client, err := New(&Config{ServiceName: "anthropic"})
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, client.cfg.Timeout)
	assert.Equal(t, StateClosed, client.CircuitState())
}

func TestClient_Post_PropagatesHeaders(t *testing.T) {
	var (
		requestID, correlationID, contentType, apiKey string
		body                                          []byte
	)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get(middleware.HeaderRequestID)
		correlationID = r.Header.Get(middleware.HeaderCorrelationID)
		contentType = r.Header.Get("Content-Type")
		apiKey = r.Header.Get("x-api-key")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}, func(cfg *Config) {
		cfg.AuthFunc = func(r *http.Request) { r.Header.Set("x-api-key", "sk-ant-test") }
	})

	ctx := middleware.ContextWithRequestID(context.Background(), "req-1")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-1")

	resp, err := client.Post(ctx, "messages", strings.NewReader(`{"model":"m"}`))
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, "corr-1", correlationID)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "sk-ant-test", apiKey)
	assert.JSONEq(t, `{"model":"m"}`, string(body))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	tests := []struct {
		name       string
		failures   int32
		wantStatus int
		wantCalls  int32
	}{
		{name: "recovers after retries", failures: 2, wantStatus: http.StatusOK, wantCalls: 3},
		{name: "final attempt response is returned", failures: 10, wantStatus: http.StatusBadGateway, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				assert.Equal(t, `{"retry":true}`, string(body))

				if atomic.AddInt32(&calls, 1) <= tt.failures {
					w.WriteHeader(http.StatusBadGateway)
					_, _ = w.Write([]byte(`{"error":"bad gateway"}`))

					return
				}

				w.WriteHeader(http.StatusOK)
			}, nil)

			resp, err := client.Post(context.Background(), "/messages", strings.NewReader(`{"retry":true}`))
			require.NoError(t, err)
			defer closeBody(t, resp)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))

			if tt.wantStatus >= http.StatusInternalServerError {
				body, _ := io.ReadAll(resp.Body)
				assert.Contains(t, string(body), "bad gateway")
			}
		})
	}
}

func TestJudge(t *testing.T) {
	newResp := func(status int, retryAfter string) *http.Response {
		resp := &http.Response{StatusCode: status, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}
		if retryAfter != "" {
			resp.Header.Set("Retry-After", retryAfter)
		}

		return resp
	}

	t.Run("server error is retried", func(t *testing.T) {
		v := judge(newResp(http.StatusBadGateway, ""), nil, false)
		assert.True(t, v.retry)

		var statusErr *StatusError
		require.ErrorAs(t, v.err, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
		assert.Equal(t, "server error: 502", v.err.Error())
	})

	t.Run("overloaded carries retry after", func(t *testing.T) {
		v := judge(newResp(529, "2"), nil, false)
		assert.True(t, v.retry)
		assert.Equal(t, 2*time.Second, v.hint)
	})

	t.Run("final attempt returns the response", func(t *testing.T) {
		v := judge(newResp(http.StatusBadGateway, ""), nil, true)
		assert.False(t, v.retry)
		assert.NoError(t, v.err)
	})

	t.Run("client error is not retried", func(t *testing.T) {
		v := judge(newResp(http.StatusBadRequest, ""), nil, false)
		assert.False(t, v.retry)
		assert.NoError(t, v.err)
	})

	t.Run("transport error", func(t *testing.T) {
		refused := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}

		assert.True(t, judge(nil, refused, false).retry)
		assert.False(t, judge(nil, context.Canceled, false).retry)
		assert.ErrorIs(t, judge(nil, refused, true).err, syscall.ECONNREFUSED)
	})
}

func TestClient_HonoursRetryAfter(t *testing.T) {
	var calls int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(529)

			return
		}

		w.WriteHeader(http.StatusOK)
	}, func(cfg *Config) {
		cfg.Retry.MaxInterval = 150 * time.Millisecond
	})

	start := time.Now()

	resp, err := client.Post(context.Background(), "/messages", strings.NewReader("{}"))
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	// The one second hint is capped at MaxInterval.
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{"0", 0},
		{"-1", 0},
		{"Wed, 21 Oct 2026 07:28:00 GMT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			h := http.Header{}
			h.Set("Retry-After", tt.header)

			assert.Equal(t, tt.want, retryAfter(h))
		})
	}
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var calls int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, nil)

	resp, err := client.Post(context.Background(), "/messages", strings.NewReader("{}"))
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, StateClosed, client.CircuitState())
}

func TestClient_CircuitOpensOnServerErrors(t *testing.T) {
	var calls int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(cfg *Config) {
		cfg.Retry.MaxAttempts = 1
		cfg.Circuit.MaxFailures = 2
	})

	for range 2 {
		resp, err := client.Post(context.Background(), "/messages", strings.NewReader("{}"))
		require.NoError(t, err)
		closeBody(t, resp)
	}

	assert.Equal(t, StateOpen, client.CircuitState())

	callsBefore := atomic.LoadInt32(&calls)

	_, err := client.Post(context.Background(), "/messages", strings.NewReader("{}"))
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, callsBefore, atomic.LoadInt32(&calls))
}

func TestClient_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}, func(cfg *Config) {
		cfg.Timeout = 20 * time.Millisecond
		cfg.Retry.MaxAttempts = 1
	})

	_, err := client.Post(context.Background(), "/messages", strings.NewReader("{}"))
	require.Error(t, err)
	assert.Equal(t, 1, client.cb.Failures())
}

func TestClient_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.Post(ctx, "/messages", strings.NewReader("{}"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrMaxRetriesExceeded)
}

func TestClient_DoStream_OutlivesTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		w.Header().Set("Content-Type", "text/event-stream")

		for _, word := range []string{"The", "Fool", "awaits"} {
			_, _ = w.Write([]byte("data: " + word + "\n\n"))
			flusher.Flush()
			time.Sleep(30 * time.Millisecond)
		}
	}, func(cfg *Config) {
		cfg.Timeout = 40 * time.Millisecond
	})

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, client.URL("/messages"), strings.NewReader("{}"))
	require.NoError(t, err)

	resp, err := client.DoStream(context.Background(), req)
	require.NoError(t, err)
	defer closeBody(t, resp)

	var words []string

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if data, ok := strings.CutPrefix(scanner.Text(), "data: "); ok {
			words = append(words, data)
		}
	}

	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"The", "Fool", "awaits"}, words)
}

func TestClient_DoStream_NeverRetries(t *testing.T) {
	var calls int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, nil)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, client.URL("messages"), strings.NewReader("{}"))
	require.NoError(t, err)

	resp, err := client.DoStream(context.Background(), req)
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := newRetryPolicy(config.RetryConfig{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
	})
	p.rand = func() float64 { return 0.5 } // no jitter

	assert.Equal(t, 100*time.Millisecond, p.delay(0, 0))
	assert.Equal(t, 200*time.Millisecond, p.delay(1, 0))
	assert.Equal(t, time.Second, p.delay(10, 0))

	assert.Equal(t, 500*time.Millisecond, p.delay(0, 500*time.Millisecond), "hint above backoff wins")
	assert.Equal(t, 200*time.Millisecond, p.delay(1, 50*time.Millisecond), "hint below backoff is ignored")
	assert.Equal(t, time.Second, p.delay(0, time.Minute), "hint is capped")

	p.rand = func() float64 { return 0 }
	assert.Equal(t, 75*time.Millisecond, p.delay(0, 0), "default jitter is 25%")
}

type testNetError struct {
	timeout bool
}

func (e testNetError) Error() string   { return "test net error" }
func (e testNetError) Timeout() bool   { return e.timeout }
func (e testNetError) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"net error with timeout", testNetError{timeout: true}, true},
		{"net error without timeout", testNetError{timeout: false}, false},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}

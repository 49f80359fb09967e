package clients

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jsamuelsen/tarot-service/internal/platform/config"
)

// retryPolicy computes the wait before each retry.
type retryPolicy struct {
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64
	// rand returns a value in [0,1).
	rand func() float64
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	jitter := cfg.JitterFactor
	if jitter <= 0 {
		jitter = 0.25
	}

	return retryPolicy{
		initial:    cfg.InitialInterval,
		max:        cfg.MaxInterval,
		multiplier: cfg.Multiplier,
		jitter:     jitter,
		rand:       rand.Float64, //nolint:gosec // jitter needs no crypto-grade randomness
	}
}

// delay returns initial*multiplier^attempt, capped at max and spread by
// ±jitter. A Retry-After hint from the provider raises the wait up to max.
func (p retryPolicy) delay(attempt int, hint time.Duration) time.Duration {
	backoff := float64(p.initial) * math.Pow(p.multiplier, float64(attempt))
	backoff = math.Min(backoff, float64(p.max))
	backoff += backoff * p.jitter * (p.rand()*2 - 1)

	wait := time.Duration(backoff)
	if hint > wait {
		wait = min(hint, p.max)
	}

	return wait
}

// verdict is the outcome of one attempt.
type verdict struct {
	retry bool
	// err replaces the attempt's error when retrying a response.
	err error
	// hint is the provider's Retry-After, if any.
	hint time.Duration
}

// judge decides whether an attempt is retried. Nothing is retried on the
// final attempt, so a last 5xx reaches the caller as a response.
func judge(resp *http.Response, err error, final bool) verdict {
	if final {
		return verdict{err: err}
	}

	if err != nil {
		return verdict{retry: isRetryableError(err), err: err}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return verdict{
			retry: true,
			err:   &StatusError{StatusCode: resp.StatusCode},
			hint:  retryAfter(resp.Header),
		}
	}

	return verdict{}
}

// send runs up to attempts attempts of req on hc.
func (c *Client) send(
	ctx context.Context,
	req *http.Request,
	hc *http.Client,
	attempts int,
	logger *slog.Logger,
) (*http.Response, error) {
	var hint time.Duration

	for attempt := range attempts {
		if attempt > 0 {
			if err := c.wait(ctx, attempt, hint, logger); err != nil {
				return nil, err
			}

			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}

				req.Body = body
			}
		}

		if c.cfg.AuthFunc != nil {
			c.cfg.AuthFunc(req)
		}

		resp, err := hc.Do(req.WithContext(ctx))

		v := judge(resp, err, attempt == attempts-1)
		if !v.retry {
			return resp, v.err
		}

		logger.DebugContext(ctx, "attempt failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Any("error", v.err),
		)

		if resp != nil {
			if closeErr := resp.Body.Close(); closeErr != nil {
				logger.DebugContext(ctx, "failed to close response body", slog.Any("error", closeErr))
			}
		}

		hint = v.hint
	}

	// Unreachable: the final attempt is never retried.
	return nil, errors.New("no attempts made")
}

func (c *Client) wait(ctx context.Context, attempt int, hint time.Duration, logger *slog.Logger) error {
	backoff := c.retry.delay(attempt-1, hint)
	logger.DebugContext(ctx, "backing off", slog.Int("attempt", attempt+1), slog.Duration("backoff", backoff))

	timer := time.NewTimer(backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryAfter parses a Retry-After header given in seconds. Anthropic sends
// it with 529 overloaded responses.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}

	return time.Duration(secs) * time.Second
}

// isRetryableError reports whether a transport error is worth another
// attempt: network timeouts and dial or connection failures are, while
// context cancellation is not.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}

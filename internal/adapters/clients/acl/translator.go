package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/tarot-service/internal/adapters/clients"
	"github.com/jsamuelsen/tarot-service/internal/domain"
)

// BaseAdapter holds what every HTTP provider adapter needs: the instrumented
// client and the provider name used in errors.
type BaseAdapter struct {
	client   *clients.Client
	provider string
}

// NewBaseAdapter creates a base adapter for provider.
func NewBaseAdapter(client *clients.Client, provider string) BaseAdapter {
	return BaseAdapter{
		client:   client,
		provider: provider,
	}
}

// Client returns the underlying HTTP client.
func (a *BaseAdapter) Client() *clients.Client {
	return a.client
}

// Provider returns the provider name.
func (a *BaseAdapter) Provider() string {
	return a.provider
}

// NewJSONRequest builds a POST request carrying payload as JSON.
func (a *BaseAdapter) NewJSONRequest(ctx context.Context, url string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", a.provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", a.provider, err)
	}

	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// DoRequest executes req and returns the body of a successful response
// (caller must close) or a mapped domain error.
func (a *BaseAdapter) DoRequest(ctx context.Context, req *http.Request) (io.ReadCloser, error) {
	resp, err := a.client.Do(ctx, req)

	return a.checkResponse(resp, err)
}

// DoStreamRequest is DoRequest for long-lived streaming bodies.
func (a *BaseAdapter) DoStreamRequest(ctx context.Context, req *http.Request) (io.ReadCloser, error) {
	resp, err := a.client.DoStream(ctx, req)

	return a.checkResponse(resp, err)
}

func (a *BaseAdapter) checkResponse(resp *http.Response, err error) (io.ReadCloser, error) {
	if err != nil {
		return nil, MapHTTPError(nil, err, a.provider)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.provider)
	}

	return resp.Body, nil
}

// DecodeResponse reads and decodes a JSON body into T and closes it.
func DecodeResponse[T any](body io.ReadCloser) (*T, error) {
	if body == nil {
		return nil, fmt.Errorf("response body is nil")
	}
	defer func() { _ = body.Close() }()

	var result T
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// Translator converts a provider DTO into a domain value, rejecting
// payloads the domain cannot use.
type Translator[External any, Domain any] func(ext *External) (Domain, error)

// Translate decodes body into External and applies translate. Decode
// failures become UpstreamErrors for provider.
func Translate[E any, D any](body io.ReadCloser, provider string, translate Translator[E, D]) (D, error) {
	var zero D

	ext, err := DecodeResponse[E](body)
	if err != nil {
		return zero, domain.NewUpstreamError(provider, 0, err.Error())
	}

	return translate(ext)
}

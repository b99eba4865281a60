// Package providers implements HTTP plumbing shared by the image generation
// provider clients.
//
// The two concrete clients live in subpackages:
//   - providers/bfl: the polling client (task id + poll-until-ready model)
//   - providers/reve: the synchronous client (image returned inline)
//
// They deliberately share no interface; their operation shapes differ and the
// pipeline service branches on the configured backend. What they do share is
// this package's BaseClient (request/response handling, logging, error
// mapping) and the error taxonomy in errors.go.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single HTTP round-trip to a provider.
// Image generation downloads can be tens of megabytes.
const DefaultTimeout = 120 * time.Second

// RequestHeaders is a map of HTTP header key-value pairs.
type RequestHeaders map[string]string

// BaseClient provides common functionality shared across provider clients.
// It should be embedded in concrete client structs.
type BaseClient struct {
	name   string
	client *http.Client
}

// NewBaseClient creates a BaseClient. The name is used for logging and error
// messages. A nil httpClient gets a default with DefaultTimeout.
func NewBaseClient(name string, httpClient *http.Client) BaseClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return BaseClient{name: name, client: httpClient}
}

// Name returns the provider name used in logs and errors.
func (b *BaseClient) Name() string {
	return b.name
}

// HTTPClient returns the underlying HTTP client for client-specific use.
func (b *BaseClient) HTTPClient() *http.Client {
	return b.client
}

// Close closes the HTTP client's idle connections.
func (b *BaseClient) Close() error {
	if b.client != nil {
		b.client.CloseIdleConnections()
	}
	return nil
}

// PostJSON performs a JSON POST and returns the response body. Non-2xx
// responses and transport failures are mapped to *APIError.
func (b *BaseClient) PostJSON(ctx context.Context, url string, request any, headers RequestHeaders) ([]byte, error) {
	reqBytes, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return b.do(ctx, http.MethodPost, url, reqBytes, headers)
}

// GetJSON performs a GET and returns the response body. Non-2xx responses and
// transport failures are mapped to *APIError.
func (b *BaseClient) GetJSON(ctx context.Context, url string, headers RequestHeaders) ([]byte, error) {
	return b.do(ctx, http.MethodGet, url, nil, headers)
}

func (b *BaseClient) do(ctx context.Context, method, url string, body []byte, headers RequestHeaders) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logRequest(b.name, method, url, headers, body)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, &APIError{Provider: b.name, Body: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Provider: b.name, Body: "failed to read response: " + err.Error(), Cause: err}
	}

	logResponse(b.name, resp.StatusCode, respBytes)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Provider:   b.name,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       string(respBytes),
		}
	}

	return respBytes, nil
}

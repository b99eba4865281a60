// Package bfl implements the polling client for the Black Forest Labs (Flux)
// image generation API.
//
// The interaction model is asynchronous: a POST to the model-named endpoint
// returns a task id, and the caller polls the result endpoint until the task
// reaches a terminal status (Ready, Error, or one of the moderation states).
// The client enforces a process-wide cap on concurrent in-flight tasks; a
// concurrency slot is reserved when a task is created and released exactly
// once when the task reaches any terminal outcome, including poll timeouts
// and caller cancellation.
package bfl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/TrinityDev369/thumbgen/logger"
	"github.com/TrinityDev369/thumbgen/providers"
)

const (
	providerName = "BFL"

	// DefaultMaxConcurrent caps in-flight tasks per client.
	DefaultMaxConcurrent = 24

	// DefaultPollInterval is the wait between result probes.
	DefaultPollInterval = 2 * time.Second

	// DefaultMaxAttempts bounds the polling loop. Combined with the interval
	// this yields a deterministic upper bound on poll duration.
	DefaultMaxAttempts = 60
)

// regionEndpoints maps the supported API regions to their base URLs.
var regionEndpoints = map[string]string{
	"global": "https://api.bfl.ai",
	"eu":     "https://api.eu1.bfl.ai",
	"us":     "https://api.us1.bfl.ai",
}

// TaskStatus is a provider-reported task state.
type TaskStatus string

// Task states observed from the result endpoint.
const (
	StatusReady            TaskStatus = "Ready"
	StatusPending          TaskStatus = "Pending"
	StatusError            TaskStatus = "Error"
	StatusRequestModerated TaskStatus = providers.ModerationRequest
	StatusContentModerated TaskStatus = providers.ModerationContent
)

// Terminal reports whether the status ends the polling loop.
func (s TaskStatus) Terminal() bool {
	switch s {
	case StatusReady, StatusError, StatusRequestModerated, StatusContentModerated:
		return true
	}
	return false
}

// Config configures a Client.
type Config struct {
	// APIKey is required; it is sent in the x-key header on every call.
	APIKey string

	// Region selects the API endpoint: "global" (default), "eu", or "us".
	Region string

	// BaseURL overrides the regional endpoint when set.
	BaseURL string

	// MaxConcurrent caps in-flight tasks. Default: DefaultMaxConcurrent.
	MaxConcurrent int

	// HTTPClient overrides the default HTTP client (used by tests).
	HTTPClient *http.Client
}

// Client is the polling provider client. Safe for shared use across
// goroutines.
type Client struct {
	providers.BaseClient

	baseURL       string
	apiKey        string
	maxConcurrent int

	slots *semaphore.Weighted

	// reserved tracks task ids holding a concurrency slot so release is
	// idempotent: a double release for the same task is a no-op and the
	// counter can never go negative.
	mu       sync.Mutex
	reserved map[string]bool
	inFlight int
}

// New creates a Client. The API key is required; a missing key is a
// construction-time failure.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("bfl: API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		region := cfg.Region
		if region == "" {
			region = "global"
		}
		endpoint, ok := regionEndpoints[region]
		if !ok {
			return nil, fmt.Errorf("bfl: unknown region %q", region)
		}
		baseURL = endpoint
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	return &Client{
		BaseClient:    providers.NewBaseClient(providerName, cfg.HTTPClient),
		baseURL:       baseURL,
		apiKey:        cfg.APIKey,
		maxConcurrent: maxConcurrent,
		slots:         semaphore.NewWeighted(int64(maxConcurrent)),
		reserved:      make(map[string]bool),
	}, nil
}

// GenerateParams are the generation inputs sent to the model endpoint.
// Field names are snake_case on the wire.
type GenerateParams struct {
	Prompt          string `json:"prompt"`
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
	Seed            *int64 `json:"seed,omitempty"`
	SafetyTolerance *int   `json:"safety_tolerance,omitempty"`
}

// TaskHandle identifies a created task.
type TaskHandle struct {
	ID         string `json:"id"`
	PollingURL string `json:"polling_url,omitempty"`
}

// TaskResult is the payload of a Ready task.
type TaskResult struct {
	ID     string
	Status TaskStatus

	// Sample is the signed URL of the generated image.
	Sample string

	// Seed is the seed the provider actually used.
	Seed int64

	// Attempts is the number of result polls it took to reach Ready.
	Attempts int

	// Raw is the raw result object for callers that need provider extras.
	Raw json.RawMessage
}

// PollOptions tune the polling loop. Zero values select the defaults.
type PollOptions struct {
	Interval    time.Duration
	MaxAttempts int
}

func (o *PollOptions) withDefaults() (time.Duration, int) {
	interval := DefaultPollInterval
	attempts := DefaultMaxAttempts
	if o != nil {
		if o.Interval > 0 {
			interval = o.Interval
		}
		if o.MaxAttempts > 0 {
			attempts = o.MaxAttempts
		}
	}
	return interval, attempts
}

// InFlight returns the number of tasks currently holding a concurrency slot.
func (c *Client) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// acquire reserves a slot without blocking. Callers at capacity observe
// CapacityError synchronously, before any network traffic.
func (c *Client) acquire() error {
	if !c.slots.TryAcquire(1) {
		return &providers.CapacityError{Max: c.maxConcurrent}
	}
	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()
	return nil
}

// track binds an acquired slot to a task id so release(taskID) is idempotent.
func (c *Client) track(taskID string) {
	c.mu.Lock()
	c.reserved[taskID] = true
	c.mu.Unlock()
}

// release frees the slot held by taskID. Releasing an unknown or already
// released task is a no-op.
func (c *Client) release(taskID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.reserved[taskID] {
		return
	}
	delete(c.reserved, taskID)
	c.inFlight--
	c.slots.Release(1)
}

// releaseUntracked frees a slot acquired before a task id existed
// (create-request failures).
func (c *Client) releaseUntracked() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight == 0 {
		return
	}
	c.inFlight--
	c.slots.Release(1)
}

func (c *Client) headers() providers.RequestHeaders {
	return providers.RequestHeaders{"x-key": c.apiKey}
}

// Create submits a generation task to the model-named endpoint and reserves a
// concurrency slot for it. The slot is released by Poll when the task reaches
// a terminal outcome.
func (c *Client) Create(ctx context.Context, model string, params GenerateParams) (*TaskHandle, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}

	body, err := c.PostJSON(ctx, c.baseURL+"/"+model, params, c.headers())
	if err != nil {
		c.releaseUntracked()
		return nil, err
	}

	var handle TaskHandle
	if err := json.Unmarshal(body, &handle); err != nil {
		c.releaseUntracked()
		return nil, fmt.Errorf("bfl: failed to decode create response: %w", err)
	}
	if handle.ID == "" {
		c.releaseUntracked()
		return nil, &providers.APIError{Provider: providerName, Body: "create response missing task id"}
	}

	c.track(handle.ID)
	logger.Debug("task created", "provider", providerName, "model", model, "task_id", handle.ID)
	return &handle, nil
}

// pollResponse is the wire shape of the result endpoint.
type pollResponse struct {
	ID      string          `json:"id"`
	Status  TaskStatus      `json:"status"`
	Result  json.RawMessage `json:"result,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

// resultPayload is the result object of a Ready task.
type resultPayload struct {
	Sample string `json:"sample"`
	Seed   int64  `json:"seed"`
}

// Poll queries the result endpoint until the task is terminal or the attempt
// budget is spent. Every terminal branch, including transport errors, context
// cancellation, and timeout, releases the task's concurrency slot exactly
// once.
func (c *Client) Poll(ctx context.Context, taskID string, opts *PollOptions) (*TaskResult, error) {
	interval, maxAttempts := opts.withDefaults()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := c.fetchResult(ctx, taskID)
		if err != nil {
			// Transport errors inside the poll loop are not retried at this
			// layer; a single failure terminates the poll.
			c.release(taskID)
			return nil, err
		}

		switch resp.Status {
		case StatusReady:
			result, err := decodeResult(taskID, resp)
			c.release(taskID)
			if result != nil {
				result.Attempts = attempt
			}
			return result, err

		case StatusError:
			c.release(taskID)
			return nil, &providers.APIError{
				Provider: providerName,
				Body:     errorText(resp),
			}

		case StatusRequestModerated, StatusContentModerated:
			c.release(taskID)
			return nil, &providers.ModerationError{TaskID: taskID, Kind: string(resp.Status)}
		}

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			c.release(taskID)
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}

	c.release(taskID)
	return nil, &providers.TimeoutError{TaskID: taskID, Attempts: maxAttempts}
}

// Status performs a single non-blocking probe of the task. It does not touch
// the concurrency slot.
func (c *Client) Status(ctx context.Context, taskID string) (TaskStatus, error) {
	resp, err := c.fetchResult(ctx, taskID)
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *Client) fetchResult(ctx context.Context, taskID string) (*pollResponse, error) {
	u := c.baseURL + "/get_result?id=" + url.QueryEscape(taskID)
	body, err := c.GetJSON(ctx, u, c.headers())
	if err != nil {
		return nil, err
	}
	var resp pollResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bfl: failed to decode poll response: %w", err)
	}
	return &resp, nil
}

func decodeResult(taskID string, resp *pollResponse) (*TaskResult, error) {
	var payload resultPayload
	if len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, &payload); err != nil {
			return nil, fmt.Errorf("bfl: failed to decode task result: %w", err)
		}
	}
	return &TaskResult{
		ID:     taskID,
		Status: StatusReady,
		Sample: payload.Sample,
		Seed:   payload.Seed,
		Raw:    resp.Result,
	}, nil
}

// errorText extracts the provider's error message from a failed task.
func errorText(resp *pollResponse) string {
	for _, raw := range []json.RawMessage{resp.Result, resp.Details} {
		if len(raw) == 0 {
			continue
		}
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &payload); err == nil {
			if payload.Error != "" {
				return payload.Error
			}
			if payload.Message != "" {
				return payload.Message
			}
		}
		return string(raw)
	}
	return "task failed without details"
}

// Download fetches the generated image from its signed sample URL. The URL is
// presigned, so no auth header is sent.
func (c *Client) Download(ctx context.Context, sampleURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sampleURL, nil)
	if err != nil {
		return nil, &providers.DownloadError{URL: sampleURL, Cause: err}
	}

	resp, err := c.HTTPClient().Do(req)
	if err != nil {
		return nil, &providers.DownloadError{URL: sampleURL, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &providers.DownloadError{URL: sampleURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &providers.DownloadError{URL: sampleURL, Cause: err}
	}
	return data, nil
}

// Generate creates a task and polls it to completion.
func (c *Client) Generate(ctx context.Context, model string, params GenerateParams, opts *PollOptions) (*TaskResult, string, error) {
	handle, err := c.Create(ctx, model, params)
	if err != nil {
		return nil, "", err
	}
	result, err := c.Poll(ctx, handle.ID, opts)
	return result, handle.ID, err
}

// GenerateAndDownload creates a task, polls it to completion, and downloads
// the resulting image.
func (c *Client) GenerateAndDownload(ctx context.Context, model string, params GenerateParams, opts *PollOptions) (string, *TaskResult, []byte, error) {
	result, taskID, err := c.Generate(ctx, model, params, opts)
	if err != nil {
		return taskID, nil, nil, err
	}
	if result.Sample == "" {
		return taskID, result, nil, &providers.APIError{
			Provider: providerName,
			Body:     "ready result missing sample URL",
		}
	}

	data, err := c.Download(ctx, result.Sample)
	if err != nil {
		return taskID, result, nil, err
	}
	return taskID, result, data, nil
}

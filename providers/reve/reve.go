// Package reve implements the synchronous client for the Reve image API.
//
// Unlike the polling provider, Reve returns the generated image inline as a
// base64 payload in the initial HTTP response. Three operations are exposed:
// Create (text to image), Edit (instruction + reference image), and Remix
// (prompt + reference image). Billing is credit-based and tracked by the
// provider; each response reports credits used and remaining.
package reve

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/TrinityDev369/thumbgen/providers"
)

const (
	providerName = "Reve"

	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.reve.com"
)

// AspectRatios are the only aspect ratio strings the API accepts.
var AspectRatios = []string{"16:9", "9:16", "3:2", "2:3", "4:3", "3:4", "1:1"}

// ValidAspectRatio reports whether the API accepts the given ratio string.
func ValidAspectRatio(ratio string) bool {
	for _, r := range AspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}

// Config configures a Client.
type Config struct {
	// APIKey is required; it is sent as a bearer token on every call.
	APIKey string

	// BaseURL overrides DefaultBaseURL when set.
	BaseURL string

	// HTTPClient overrides the default HTTP client (used by tests).
	HTTPClient *http.Client
}

// Client is the synchronous provider client. Safe for shared use across
// goroutines.
type Client struct {
	providers.BaseClient

	baseURL string
	apiKey  string
}

// New creates a Client. The API key is required.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("reve: API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseClient: providers.NewBaseClient(providerName, cfg.HTTPClient),
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
	}, nil
}

// Options carry the optional knobs shared by all three operations.
type Options struct {
	AspectRatio     string
	Version         string
	TestTimeScaling *float64
	Postprocessing  *bool
}

// Response is a successful generation result.
type Response struct {
	// Image is the base64-encoded generated image.
	Image string `json:"image"`

	Version          string `json:"version"`
	ContentViolation bool   `json:"content_violation"`
	RequestID        string `json:"request_id"`
	CreditsUsed      int    `json:"credits_used"`
	CreditsRemaining int    `json:"credits_remaining"`
}

// ImageBytes decodes the base64 payload.
func (r *Response) ImageBytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(r.Image)
	if err != nil {
		return nil, fmt.Errorf("reve: failed to decode image payload: %w", err)
	}
	return data, nil
}

// request is the wire shape shared by create, edit, and remix.
type request struct {
	Prompt          string   `json:"prompt,omitempty"`
	Instruction     string   `json:"instruction,omitempty"`
	ReferenceImage  string   `json:"reference_image,omitempty"`
	AspectRatio     string   `json:"aspect_ratio,omitempty"`
	Version         string   `json:"version,omitempty"`
	TestTimeScaling *float64 `json:"test_time_scaling,omitempty"`
	Postprocessing  *bool    `json:"postprocessing,omitempty"`
}

// Create generates an image from a text prompt.
func (c *Client) Create(ctx context.Context, prompt string, opts *Options) (*Response, error) {
	req := request{Prompt: prompt}
	applyOptions(&req, opts)
	return c.call(ctx, "create", req)
}

// Edit modifies a reference image according to an instruction. The reference
// image is sent base64-encoded.
func (c *Client) Edit(ctx context.Context, instruction string, referenceImage []byte, opts *Options) (*Response, error) {
	req := request{
		Instruction:    instruction,
		ReferenceImage: base64.StdEncoding.EncodeToString(referenceImage),
	}
	applyOptions(&req, opts)
	return c.call(ctx, "edit", req)
}

// Remix generates a new image guided by both a prompt and a reference image.
func (c *Client) Remix(ctx context.Context, prompt string, referenceImage []byte, opts *Options) (*Response, error) {
	req := request{
		Prompt:         prompt,
		ReferenceImage: base64.StdEncoding.EncodeToString(referenceImage),
	}
	applyOptions(&req, opts)
	return c.call(ctx, "remix", req)
}

func applyOptions(req *request, opts *Options) {
	if opts == nil {
		return
	}
	req.AspectRatio = opts.AspectRatio
	req.Version = opts.Version
	req.TestTimeScaling = opts.TestTimeScaling
	req.Postprocessing = opts.Postprocessing
}

func (c *Client) call(ctx context.Context, operation string, req request) (*Response, error) {
	if req.AspectRatio != "" && !ValidAspectRatio(req.AspectRatio) {
		return nil, &providers.RequestError{
			Reason: fmt.Sprintf("unsupported aspect ratio %q", req.AspectRatio),
		}
	}

	headers := providers.RequestHeaders{"Authorization": "Bearer " + c.apiKey}
	body, err := c.PostJSON(ctx, c.baseURL+"/v1/image/"+operation, req, headers)
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("reve: failed to decode %s response: %w", operation, err)
	}

	if resp.ContentViolation {
		return nil, &providers.ContentViolationError{RequestID: resp.RequestID}
	}
	return &resp, nil
}

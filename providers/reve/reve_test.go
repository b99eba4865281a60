package reve

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrinityDev369/thumbgen/providers"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{APIKey: "reve-key", BaseURL: server.URL, HTTPClient: server.Client()})
	require.NoError(t, err)
	return client, server
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestCreateSendsBearerAndDecodesImage(t *testing.T) {
	image := []byte("generated image bytes")
	var gotAuth, gotPath string
	var gotReq map[string]any

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprintf(w, `{"image":%q,"version":"v1","request_id":"req-1","credits_used":1,"credits_remaining":99}`,
			base64.StdEncoding.EncodeToString(image))
	})

	resp, err := client.Create(context.Background(), "a lighthouse at dusk", &Options{AspectRatio: "16:9"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer reve-key", gotAuth)
	assert.Equal(t, "/v1/image/create", gotPath)
	assert.Equal(t, "a lighthouse at dusk", gotReq["prompt"])
	assert.Equal(t, "16:9", gotReq["aspect_ratio"])

	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, 99, resp.CreditsRemaining)

	data, err := resp.ImageBytes()
	require.NoError(t, err)
	assert.Equal(t, image, data)
}

func TestCreateContentViolation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"content_violation":true,"request_id":"req-9"}`)
	})

	_, err := client.Create(context.Background(), "something disallowed", nil)
	var violation *providers.ContentViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "req-9", violation.RequestID)
}

func TestInvalidAspectRatioFailsBeforeNetwork(t *testing.T) {
	var requests atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{}`)
	})

	_, err := client.Create(context.Background(), "x", &Options{AspectRatio: "21:9"})
	var reqErr *providers.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Contains(t, reqErr.Reason, "21:9")
	assert.Zero(t, requests.Load())
}

func TestValidAspectRatio(t *testing.T) {
	for _, ratio := range AspectRatios {
		assert.True(t, ValidAspectRatio(ratio), ratio)
	}
	assert.False(t, ValidAspectRatio("21:9"))
	assert.False(t, ValidAspectRatio(""))
}

func TestEditSendsReferenceImageBase64(t *testing.T) {
	reference := []byte{0x89, 'P', 'N', 'G'}
	var gotReq map[string]any

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		assert.Equal(t, "/v1/image/edit", r.URL.Path)
		fmt.Fprintf(w, `{"image":%q}`, base64.StdEncoding.EncodeToString([]byte("edited")))
	})

	_, err := client.Edit(context.Background(), "make it night time", reference, nil)
	require.NoError(t, err)
	assert.Equal(t, "make it night time", gotReq["instruction"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(reference), gotReq["reference_image"])
}

func TestRemixSendsPromptAndReference(t *testing.T) {
	var gotReq map[string]any

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		assert.Equal(t, "/v1/image/remix", r.URL.Path)
		fmt.Fprintf(w, `{"image":%q}`, base64.StdEncoding.EncodeToString([]byte("remixed")))
	})

	_, err := client.Remix(context.Background(), "same scene in winter", []byte("ref"), nil)
	require.NoError(t, err)
	assert.Equal(t, "same scene in winter", gotReq["prompt"])
	assert.NotEmpty(t, gotReq["reference_image"])
}

func TestCreateNon2xx(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"detail":"out of credits"}`)
	})

	_, err := client.Create(context.Background(), "x", nil)
	var apiErr *providers.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "out of credits")
}

func TestImageBytesRejectsBadBase64(t *testing.T) {
	resp := &Response{Image: "not base64!!!"}
	_, err := resp.ImageBytes()
	assert.Error(t, err)
}

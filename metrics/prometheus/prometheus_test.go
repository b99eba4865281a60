package prometheus

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporterServesRecordedMetrics(t *testing.T) {
	exporter := NewExporter(":0")

	RecordGenerationStart()
	RecordGenerationEnd("polling", "flux-2-pro", StatusSuccess, 3.2)
	RecordPollAttempts(4)
	RecordGenerationCost("flux-2-pro", 5)
	RecordStorageUpload(StatusSuccess, 2048)

	server := httptest.NewServer(exporter.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `thumbgen_generations_total{backend="polling",model="flux-2-pro",status="success"} 1`)
	assert.Contains(t, text, "thumbgen_generation_duration_seconds_bucket")
	assert.Contains(t, text, "thumbgen_provider_poll_attempts_bucket")
	assert.Contains(t, text, `thumbgen_generation_cost_cents_total{model="flux-2-pro"} 5`)
	assert.Contains(t, text, "thumbgen_storage_upload_bytes_total 2048")
	assert.Contains(t, text, "go_goroutines", "runtime collectors must be registered")
}

func TestExporterCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	exporter := NewExporterWithRegistry(":0", reg)
	assert.Same(t, reg, exporter.Registry())
}

func TestExporterShutdownBeforeStart(t *testing.T) {
	exporter := NewExporter(":0")
	assert.NoError(t, exporter.Shutdown(context.Background()))
}

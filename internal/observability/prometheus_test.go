package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"chwresume/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestPrometheusReader_ServesParserMetrics(t *testing.T) {
	reader, handler, err := newPrometheusReader()
	require.NoError(t, err)

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := newMetrics(provider.Meter("test"))
	require.NoError(t, err)
	metrics.RecordRateLimitRejection(context.Background(), "/parse")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "chwresume_ratelimit_rejections")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestPrometheusConfigFrom(t *testing.T) {
	assert.Equal(t, defaultPrometheusConfig, prometheusConfigFrom(nil))

	cfg := &config.Config{}
	cfg.Observability.Prometheus = config.PrometheusConfig{Enabled: false, Endpoint: "/scrape", Port: "9300"}
	assert.Equal(t, PrometheusConfig{Endpoint: "/scrape", Port: "9300"}, prometheusConfigFrom(cfg))
}

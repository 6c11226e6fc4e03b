package observability

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"chwresume/internal/config"
	"chwresume/internal/errors"
	"chwresume/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func testLogger() *errors.Logger {
	return errors.NewLoggerWithWriter(&bytes.Buffer{}, slog.LevelDebug)
}

func newTestManager(t *testing.T) (*ObservabilityManager, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	om, err := newObservabilityManager(ObservabilityConfig{
		ServiceName:     "chwresume-test",
		ServiceVersion:  "test",
		ServiceInstance: "test-1",
		Enabled:         true,
		TracingEnabled:  true,
		MetricsEnabled:  true,
		SampleRate:      1.0,
	}, testLogger(), reader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })
	return om, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func counterTotal(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestTrackParse_Success(t *testing.T) {
	om, reader := newTestManager(t)

	resume := types.NewParsedResume()
	resume.FirstName = "Maria"
	resume.WorkHistory = []types.WorkEntry{{Title: "CHW"}, {Title: "Promotora"}}

	result := om.TrackParse(context.Background(), "text", func(ctx context.Context) ParseResult {
		return ParseResult{Resume: resume}
	})
	require.NoError(t, result.Error)
	assert.Equal(t, "Maria", result.Resume.FirstName)

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), counterTotal(t, metrics["chwresume.resumes.parsed"]))
	assert.Contains(t, metrics, "chwresume.parse.duration")
	assert.Contains(t, metrics, "chwresume.work_entries")

	work, ok := metrics["chwresume.work_entries"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, work.DataPoints, 1)
	assert.Equal(t, int64(2), work.DataPoints[0].Sum)
}

func TestTrackParse_ExtractionError(t *testing.T) {
	om, reader := newTestManager(t)

	extractErr := errors.NewExtractionError(errors.ErrCodeEmptyText, "no text", nil)
	result := om.TrackParse(context.Background(), "file", func(ctx context.Context) ParseResult {
		return ParseResult{Error: extractErr}
	})
	assert.ErrorIs(t, result.Error, extractErr)

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), counterTotal(t, metrics["chwresume.resumes.parsed"]))
	assert.Equal(t, int64(1), counterTotal(t, metrics["chwresume.extraction.errors"]))
	assert.NotContains(t, metrics, "chwresume.fields.extracted")
}

func TestTrackParse_OtherErrorNotCountedAsExtraction(t *testing.T) {
	om, reader := newTestManager(t)

	om.TrackParse(context.Background(), "text", func(ctx context.Context) ParseResult {
		return ParseResult{Error: fmt.Errorf("boom")}
	})

	metrics := collect(t, reader)
	assert.NotContains(t, metrics, "chwresume.extraction.errors")
}

func TestMetrics_InfrastructureCounters(t *testing.T) {
	om, reader := newTestManager(t)
	ctx := context.Background()

	m := om.GetMetrics()
	m.RecordRateLimitRejection(ctx, "/parse")
	m.RecordRateLimitRejection(ctx, "/parse/file")
	m.RecordCertReload(ctx, "file", true)
	m.RecordCertExpiry(ctx, 48*time.Hour)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), counterTotal(t, metrics["chwresume.ratelimit.rejections"]))
	assert.Equal(t, int64(1), counterTotal(t, metrics["chwresume.cert.reloads"]))
	assert.Contains(t, metrics, "chwresume.cert.expiry")
}

func TestDisabledManager(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{Enabled: false}, testLogger())
	require.NoError(t, err)

	result := om.TrackParse(context.Background(), "text", func(ctx context.Context) ParseResult {
		return ParseResult{Resume: types.NewParsedResume()}
	})
	assert.NoError(t, result.Error)

	om.GetMetrics().RecordRateLimitRejection(context.Background(), "/parse")
	assert.NoError(t, om.Shutdown(context.Background()))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordCertReload(context.Background(), "file", false) })
}

func TestNewObservabilityConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.Enabled = true
	cfg.Observability.ServiceName = "chwresume"
	cfg.Observability.ServiceInstance = "chwresume-host"
	cfg.Observability.Tracing.Enabled = true
	cfg.Observability.Tracing.SampleRate = 0.5
	cfg.Observability.Metrics.CollectionInterval = time.Minute
	cfg.Observability.Prometheus.Port = "9191"

	obs := NewObservabilityConfig(cfg, "1.2.3")
	assert.Equal(t, "1.2.3", obs.ServiceVersion)
	assert.Equal(t, "chwresume-host", obs.ServiceInstance)
	assert.True(t, obs.TracingEnabled)
	assert.False(t, obs.MetricsEnabled)
	assert.Equal(t, 0.5, obs.SampleRate)
	assert.Equal(t, time.Minute, obs.CollectionInterval)
	assert.Equal(t, "9191", obs.Prometheus.Port)

	cfg.Observability.ServiceVersion = "pinned"
	assert.Equal(t, "pinned", NewObservabilityConfig(cfg, "1.2.3").ServiceVersion)

	fallback := NewObservabilityConfig(nil, "dev")
	assert.Equal(t, "chwresume", fallback.ServiceName)
	assert.True(t, fallback.Prometheus.Enabled)
}

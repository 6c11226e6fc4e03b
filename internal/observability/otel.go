// Package observability wires OpenTelemetry tracing and metrics for the
// parse pipeline and the HTTP API.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"chwresume/internal/config"
	"chwresume/internal/errors"
	"chwresume/internal/types"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	Enabled            bool
	TracingEnabled     bool
	MetricsEnabled     bool
	ConsoleOutput      bool
	PrettyPrint        bool
	SampleRate         float64
	CollectionInterval time.Duration
	Prometheus         PrometheusConfig
	OTLP               config.OTLPConfig
}

// Metrics holds the instruments recorded by the parse pipeline.
// A zero Metrics records nothing.
type Metrics struct {
	ResumesParsed    metric.Int64Counter
	ParseDuration    metric.Float64Histogram
	FieldsExtracted  metric.Int64Histogram
	WorkEntries      metric.Int64Histogram
	EducationEntries metric.Int64Histogram
	ExtractionErrors metric.Int64Counter

	RateLimitRejections metric.Int64Counter

	CertReloadCount metric.Int64Counter
	CertExpiryTime  metric.Float64Gauge
}

// ObservabilityManager owns the tracer and meter providers
type ObservabilityManager struct {
	config           ObservabilityConfig
	logger           *errors.Logger
	resource         *resource.Resource
	tracerProvider   oteltrace.TracerProvider
	meterProvider    metric.MeterProvider
	metrics          *Metrics
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.Server
}

// NewObservabilityManager creates a manager. A disabled config yields no-op
// providers and empty metrics.
func NewObservabilityManager(obsConfig ObservabilityConfig, logger *errors.Logger) (*ObservabilityManager, error) {
	return newObservabilityManager(obsConfig, logger)
}

func newObservabilityManager(obsConfig ObservabilityConfig, logger *errors.Logger, extraReaders ...sdkmetric.Reader) (*ObservabilityManager, error) {
	om := &ObservabilityManager{
		config:         obsConfig,
		logger:         logger,
		tracerProvider: noop.NewTracerProvider(),
		metrics:        &Metrics{},
	}
	if !obsConfig.Enabled {
		return om, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(obsConfig.ServiceName),
			semconv.ServiceVersion(obsConfig.ServiceVersion),
			semconv.ServiceInstanceID(obsConfig.ServiceInstance),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	om.resource = res

	if obsConfig.TracingEnabled {
		if err := om.initTracing(); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if obsConfig.MetricsEnabled {
		if err := om.initMetrics(extraReaders); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	return om, nil
}

// initTracing sets up the tracer provider with the configured exporter
func (om *ObservabilityManager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case om.config.ConsoleOutput:
		opts := []stdouttrace.Option{}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case om.config.OTLP.Enabled:
		exporter, err = om.createOTLPExporter()
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	opts := []trace.TracerProviderOption{
		trace.WithResource(om.resource),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(om.config.SampleRate))),
	}
	if exporter != nil {
		opts = append(opts, trace.WithBatcher(exporter))
	}

	tp := trace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

// initMetrics sets up the meter provider with every configured reader
func (om *ObservabilityManager) initMetrics(extraReaders []sdkmetric.Reader) error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}
	readers = append(readers, extraReaders...)
	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(om.resource)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	metrics, err := newMetrics(mp.Meter(om.config.ServiceName))
	if err != nil {
		return err
	}
	om.metrics = metrics
	return nil
}

// setupMetricReaders builds the console, OTLP and Prometheus readers
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader
	interval := om.collectionInterval()

	if om.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	}

	if om.config.OTLP.Enabled {
		reader, err := om.createOTLPMetricsReader(interval)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if om.config.Prometheus.Enabled {
		reader, handler, err := newPrometheusReader()
		if err != nil {
			return nil, err
		}
		readers = append(readers, reader)
		om.prometheusServer = startMetricsServer(om.config.Prometheus, handler, om.logger)
		om.shutdownFuncs = append(om.shutdownFuncs, om.prometheusServer.Shutdown)
	}

	return readers, nil
}

// newMetrics creates every instrument on meter
func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.ResumesParsed, err = meter.Int64Counter("chwresume.resumes.parsed",
		metric.WithDescription("Resumes run through the parser")); err != nil {
		return nil, fmt.Errorf("failed to create resumes parsed metric: %w", err)
	}
	if m.ParseDuration, err = meter.Float64Histogram("chwresume.parse.duration",
		metric.WithDescription("Time spent extracting and parsing a resume"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create parse duration metric: %w", err)
	}
	if m.FieldsExtracted, err = meter.Int64Histogram("chwresume.fields.extracted",
		metric.WithDescription("Populated top-level fields per parsed resume")); err != nil {
		return nil, fmt.Errorf("failed to create fields extracted metric: %w", err)
	}
	if m.WorkEntries, err = meter.Int64Histogram("chwresume.work_entries",
		metric.WithDescription("Work history entries per parsed resume")); err != nil {
		return nil, fmt.Errorf("failed to create work entries metric: %w", err)
	}
	if m.EducationEntries, err = meter.Int64Histogram("chwresume.education_entries",
		metric.WithDescription("Education entries per parsed resume")); err != nil {
		return nil, fmt.Errorf("failed to create education entries metric: %w", err)
	}
	if m.ExtractionErrors, err = meter.Int64Counter("chwresume.extraction.errors",
		metric.WithDescription("Documents whose text could not be extracted")); err != nil {
		return nil, fmt.Errorf("failed to create extraction errors metric: %w", err)
	}
	if m.RateLimitRejections, err = meter.Int64Counter("chwresume.ratelimit.rejections",
		metric.WithDescription("Requests rejected by the rate limiter")); err != nil {
		return nil, fmt.Errorf("failed to create rate limit metric: %w", err)
	}
	if m.CertReloadCount, err = meter.Int64Counter("chwresume.cert.reloads",
		metric.WithDescription("TLS certificate reload attempts")); err != nil {
		return nil, fmt.Errorf("failed to create certificate reload metric: %w", err)
	}
	if m.CertExpiryTime, err = meter.Float64Gauge("chwresume.cert.expiry",
		metric.WithDescription("Seconds until the serving certificate expires"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create certificate expiry metric: %w", err)
	}

	return m, nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	return om.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	opts := []otelhttp.Option{otelhttp.WithTracerProvider(om.tracerProvider)}
	if om.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(om.meterProvider))
	}
	return otelhttp.NewMiddleware(om.config.ServiceName, opts...)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	return om.tracerProvider.Tracer(name)
}

// Shutdown flushes and stops every exporter
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ParseResult is what a traced parse operation reports back
type ParseResult struct {
	Resume types.ParsedResume
	Error  error
}

// TrackParse runs fn inside a span named "parse.<source>" and records the
// parse metrics for its result
func (om *ObservabilityManager) TrackParse(ctx context.Context, source string, fn func(context.Context) ParseResult) ParseResult {
	ctx, span := om.Tracer("chwresume.parser").Start(ctx, "parse."+source)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start)

	om.metrics.RecordParse(ctx, source, result, duration)

	span.SetAttributes(
		attribute.String("parse.source", source),
		attribute.Bool("success", result.Error == nil),
	)
	if result.Error != nil {
		span.RecordError(result.Error)
		span.SetStatus(codes.Error, result.Error.Error())
		return result
	}

	r := result.Resume
	span.SetAttributes(
		attribute.Int("resume.fields", r.FieldCount()),
		attribute.Int("resume.work_entries", len(r.WorkHistory)),
		attribute.Int("resume.education_entries", len(r.Education)),
		attribute.Int("resume.certifications", len(r.Certifications)),
		attribute.Int("resume.languages", len(r.Languages)),
		attribute.Bool("resume.has_region", r.Region != ""),
	)
	return result
}

// RecordParse records one parse attempt
func (m *Metrics) RecordParse(ctx context.Context, source string, result ParseResult, duration time.Duration) {
	if m == nil || m.ResumesParsed == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("success", result.Error == nil),
	)
	m.ResumesParsed.Add(ctx, 1, attrs)
	m.ParseDuration.Record(ctx, duration.Seconds(), attrs)

	if result.Error != nil {
		if appErr, ok := errors.AsAppError(result.Error); ok && appErr.Type == errors.ErrorTypeExtraction {
			m.ExtractionErrors.Add(ctx, 1, metric.WithAttributes(
				attribute.String("source", source),
				attribute.String("code", appErr.Code),
			))
		}
		return
	}

	sourceAttr := metric.WithAttributes(attribute.String("source", source))
	m.FieldsExtracted.Record(ctx, int64(result.Resume.FieldCount()), sourceAttr)
	m.WorkEntries.Record(ctx, int64(len(result.Resume.WorkHistory)), sourceAttr)
	m.EducationEntries.Record(ctx, int64(len(result.Resume.Education)), sourceAttr)
}

// RecordRateLimitRejection counts a request refused by the rate limiter
func (m *Metrics) RecordRateLimitRejection(ctx context.Context, endpoint string) {
	if m == nil || m.RateLimitRejections == nil {
		return
	}
	m.RateLimitRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// RecordCertReload counts a certificate reload attempt
func (m *Metrics) RecordCertReload(ctx context.Context, trigger string, success bool) {
	if m == nil || m.CertReloadCount == nil {
		return
	}
	m.CertReloadCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.Bool("success", success),
	))
}

// RecordCertExpiry records the time left on the serving certificate
func (m *Metrics) RecordCertExpiry(ctx context.Context, remaining time.Duration) {
	if m == nil || m.CertExpiryTime == nil {
		return
	}
	m.CertExpiryTime.Record(ctx, remaining.Seconds())
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	otlpConfig := om.config.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// createOTLPMetricsReader creates a periodic OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader(interval time.Duration) (sdkmetric.Reader, error) {
	otlpConfig := om.config.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), nil
}

func (om *ObservabilityManager) collectionInterval() time.Duration {
	if om.config.CollectionInterval > 0 {
		return om.config.CollectionInterval
	}
	return 15 * time.Second
}

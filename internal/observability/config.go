package observability

import (
	"time"

	"chwresume/internal/config"
)

// NewObservabilityConfig builds the manager configuration from the app config.
// version is used when no service version is configured.
func NewObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:        "chwresume",
			ServiceVersion:     version,
			ServiceInstance:    "chwresume-1",
			Enabled:            true,
			SampleRate:         1.0,
			CollectionInterval: 15 * time.Second,
			Prometheus:         prometheusConfigFrom(nil),
		}
	}

	obs := cfg.Observability

	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	return ObservabilityConfig{
		ServiceName:        obs.ServiceName,
		ServiceVersion:     serviceVersion,
		ServiceInstance:    obs.ServiceInstance,
		Enabled:            obs.Enabled,
		TracingEnabled:     obs.Tracing.Enabled,
		MetricsEnabled:     obs.Metrics.Enabled,
		ConsoleOutput:      obs.Console.Enabled,
		PrettyPrint:        obs.Console.PrettyPrint,
		SampleRate:         obs.Tracing.SampleRate,
		CollectionInterval: obs.Metrics.CollectionInterval,
		Prometheus:         prometheusConfigFrom(cfg),
		OTLP:               obs.OTLP,
	}
}
